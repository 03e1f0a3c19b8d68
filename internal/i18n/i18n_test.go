package i18n

import "testing"

func TestUserReadableStreet_French(t *testing.T) {
	loc := Get("fr_FR.UTF-8")

	tests := []struct{ in, want string }{
		{"Rue du Moulin", "Moulin (Rue du)"},
		{"Avenue de la République", "République (Avenue de la)"},
		{"Grand Place", "Grand Place"},
		{"  Rue   du   Moulin ", "Moulin (Rue du)"},
		{"Route forestière des Cygnes", "Cygnes (Route forestière des)"},
		{"Routemont", "Routemont"},
		{"Rue", "Rue"},
	}
	for _, tt := range tests {
		if got := loc.UserReadableStreet(tt.in); got != tt.want {
			t.Fatalf("UserReadableStreet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserReadableStreet_Italian(t *testing.T) {
	loc := Get("it_IT.UTF-8")
	if got := loc.UserReadableStreet("Via della Scala"); got != "Scala (Via della)" {
		t.Fatalf("got %q", got)
	}
}

func TestUserReadableStreet_PolishCommaStyle(t *testing.T) {
	loc := Get("pl_PL.UTF-8")
	if got := loc.UserReadableStreet("Aleja Wilanowska"); got != "Wilanowska, Aleja" {
		t.Fatalf("got %q", got)
	}
}

func TestUserReadableStreet_DutchCountingPrefix(t *testing.T) {
	loc := Get("nl_NL.UTF-8")

	if got := loc.UserReadableStreet("1e Walstraat"); got != "Walstraat (1e)" {
		t.Fatalf("counting prefix: got %q", got)
	}
	if got := loc.UserReadableStreet("Prins van Oranjestraat"); got != "Oranjestraat (Prins van)" {
		t.Fatalf("titled name: got %q", got)
	}
}

func TestUserReadableStreet_RussianStatusParts(t *testing.T) {
	loc := Get("ru_RU.UTF-8")

	tests := []struct{ in, want string }{
		// Abbreviation expanded, status moved after the name.
		{"ул. Ленина", "Ленина, улица"},
		{"улица Ленина", "Ленина, улица"},
		// Numeric ordinal joins the relocated status.
		{"1-я Парковая улица", "Парковая улица, 1-я"},
		// Bare status word stays put.
		{"улица", "улица"},
		{"Садовая улица", "Садовая улица"},
	}
	for _, tt := range tests {
		if got := loc.UserReadableStreet(tt.in); got != tt.want {
			t.Fatalf("UserReadableStreet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserReadableStreet_Idempotent(t *testing.T) {
	// Applying the transform to its own output must not move anything
	// again, otherwise re-rendered jobs would drift.
	for _, code := range []string{"fr_FR.UTF-8", "it_IT.UTF-8", "ru_RU.UTF-8", "pl_PL.UTF-8"} {
		loc := Get(code)
		for _, name := range []string{"Rue du Moulin", "Via della Scala", "ул. Ленина", "Aleja Wilanowska"} {
			once := loc.UserReadableStreet(name)
			twice := loc.UserReadableStreet(once)
			if once != twice {
				t.Fatalf("%s: %q -> %q -> %q not stable", code, name, once, twice)
			}
		}
	}
}

func TestFirstLetterEqual(t *testing.T) {
	fr := Get("fr_FR.UTF-8")
	if !fr.FirstLetterEqual("É", "E") {
		t.Fatalf("fr: É and E must bucket together")
	}
	if fr.FirstLetterEqual("E", "F") {
		t.Fatalf("fr: E and F must not bucket together")
	}

	es := Get("es_ES.UTF-8")
	if !es.FirstLetterEqual("Ñ", "N") {
		t.Fatalf("es: Ñ folds to N")
	}

	generic := Get("en_GB.UTF-8")
	if generic.FirstLetterEqual("É", "E") {
		t.Fatalf("generic locale compares letters exactly")
	}
}

func TestFirstLetterEqual_CroatianDigraphs(t *testing.T) {
	hr := Get("hr_HR.UTF-8")
	if !hr.FirstLetterEqual("dž", "d") {
		t.Fatalf("hr: dž folds to d")
	}
	if !hr.FirstLetterEqual("Š", "s") {
		t.Fatalf("hr: Š folds to s")
	}
}

func TestGet_UnknownLocaleFallsBack(t *testing.T) {
	loc := Get("xx_XX.UTF-8")
	if got := loc.UserReadableStreet("Rue du Moulin"); got != "Rue du Moulin" {
		t.Fatalf("generic rules must not touch names, got %q", got)
	}
	if loc.IsRTL() {
		t.Fatalf("generic rules are not RTL")
	}
}

func TestIsRTL(t *testing.T) {
	if !Get("ar_EG.UTF-8").IsRTL() {
		t.Fatalf("arabic locales are RTL")
	}
	if Get("fr_FR.UTF-8").IsRTL() {
		t.Fatalf("french is not RTL")
	}
}

func TestCompare_FrenchAccentOrdering(t *testing.T) {
	fr := Get("fr_FR.UTF-8")
	// Under collation, "Écluse" sorts with the E entries rather than
	// after Z the way a byte comparison would put it.
	if fr.Compare("Écluse", "Zola") >= 0 {
		t.Fatalf("collation should order Écluse before Zola")
	}
	if fr.Compare("Abbaye", "Écluse") >= 0 {
		t.Fatalf("collation should order Abbaye before Écluse")
	}
}

func TestFirstLetter(t *testing.T) {
	if got := FirstLetter("École"); got != "É" {
		t.Fatalf("FirstLetter = %q", got)
	}
	if got := FirstLetter(""); got != "" {
		t.Fatalf("FirstLetter of empty = %q", got)
	}
}
