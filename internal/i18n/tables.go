package i18n

import (
	"regexp"
	"strings"
)

// Accent fold tables, lowercase; input is lowered before folding.
func latinFolds(extra map[rune]rune) map[rune]rune {
	m := map[rune]rune{
		'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ẽ': 'e',
		'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ĩ': 'i',
		'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a',
		'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
		'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ũ': 'u',
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

var frRules = rules{
	appellations: []string{
		"Accès", "Allée", "Allées", "Autoroute", "Avenue", "Avenues",
		"Barrage", "Boulevard", "Carrefour", "Chaussée", "Chemin",
		"Chemin rural", "Cheminement", "Cale", "Cales", "Cavée", "Cité",
		"Clos", "Coin", "Côte", "Cour", "Cours", "Descente", "Degré",
		"Escalier", "Escaliers", "Esplanade", "Funiculaire", "Giratoire",
		"Hameau", "Impasse", "Jardin", "Jardins", "Liaison",
		"Lotissement", "Mail", "Montée", "Môle", "Parc", "Passage",
		"Passerelle", "Passerelles", "Place", "Placette", "Pont",
		"Promenade", "Petite Avenue", "Petite Rue", "Quai", "Rampe",
		"Rang", "Résidence", "Rond-Point", "Route forestière", "Route",
		"Rue", "Ruelle", "Square", "Sente", "Sentier", "Sentiers",
		"Terre-Plein", "Télécabine", "Traboule", "Traverse", "Tunnel",
		"Venelle", "Villa", "Virage",
	},
	determinants: []string{
		" des", " du", " de la", " de l'", " de", " d'", " aux", "",
	},
	folds: latinFolds(map[rune]rune{'æ': 'a', 'œ': 'o', 'ÿ': 'y'}),
}

var itRules = rules{
	appellations: []string{
		"Via", "Viale", "Piazza", "Scali", "Strada", "Largo", "Corso",
		"Calle", "Sottoportico", "Sottoportego", "Vicolo", "Piazzetta",
	},
	determinants: []string{
		" delle", " dell'", " dei", " degli", " della", " del", " di", "",
	},
	folds: latinFolds(nil),
}

var esRules = rules{
	appellations: []string{
		"Avenida", "Avinguda", "Calle", "Callejón", "Calzada", "Camino",
		"Camí", "Carrer", "Carretera", "Glorieta", "Parque", "Pasaje",
		"Pasarela", "Paseo", "Plaza", "Plaça", "Privada", "Puente",
		"Ronda", "Salida", "Travesia",
	},
	determinants: []string{
		" de la", " de los", " de las", " dels", " del", " d'",
		" de l'", " de", "",
	},
	folds: latinFolds(map[rune]rune{'ñ': 'n'}),
}

var caRules = rules{
	appellations: []string{
		// Catalan
		"Autopista", "Autovia", "Avinguda", "Baixada", "Barranc",
		"Barri", "Barriada", "Biblioteca", "Carrer", "Carreró",
		"Carretera", "Cantonada", "Església", "Estació", "Hospital",
		"Monestir", "Monument", "Museu", "Passatge", "Passeig", "Plaça",
		"Planta", "Polígon", "Pujada", "Rambla", "Ronda", "Travessera",
		"Travessia", "Urbanització", "Via",
		// Spanish
		"Acceso", "Alameda", "Andador", "Avenida", "Bajada", "Bulevar",
		"Calle", "Calleja", "Callejón", "Callejuela", "Calzada",
		"Camino", "Carrera", "Cinturón", "Costera", "Cuesta",
		"Diagonal", "Escalera", "Escalinata", "Explanada", "Glorieta",
		"Gran Vía", "Jardín", "Malecón", "Mirador", "Muelle", "Pasadizo",
		"Pasaje", "Paseo", "Paseo marítimo", "Pasillo", "Plaza",
		"Plazoleta", "Plazuela", "Polígono", "Prolongación", "Puente",
		"Puerta", "Puerto", "Rampla", "Ribera", "Rincón", "Rinconada",
		"Sendera", "Sendero", "Subida", "Torrente", "Tránsito",
		"Transversal", "Travesía", "Urbanización", "Vereda", "Viaducto",
		// French
		"Allée", "Allées", "Avenue", "Boulevard", "Chaussée", "Chemin",
		"Cité", "Cours", "Esplanade", "Impasse", "Jardin", "Jardins",
		"Mail", "Montée", "Passage", "Passerelle", "Place", "Placette",
		"Pont", "Promenade", "Quai", "Rampe", "Résidence", "Rond-Point",
		"Route forestière", "Route", "Rue", "Ruelle", "Square", "Sente",
		"Sentier", "Sentiers", "Traverse", "Tunnel", "Venelle", "Villa",
	},
	determinants: []string{
		" de la", " de las", " de los", " dels", " del", " de l'",
		" d'en", " de na", " de n'", " de sa", " de ses", " de son",
		" de s'", " d'", " de", " du", "",
	},
	folds: latinFolds(map[rune]rune{'ñ': 'n', 'ç': 'c'}),
}

var ptBrRules = rules{
	appellations: []string{
		"Aeroporto", "Aer.", "Alameda", "Al.", "Apartamento", "Ap.",
		"Área", "Avenida", "Av.", "Beco", "Bc.", "Bloco", "Bl.",
		"Caminho", "Cam.", "Campo", "Chácara", "Colônia", "Condomínio",
		"Conjunto", "Cj.", "Distrito", "Esplanada", "Espl.", "Estação",
		"Est.", "Estrada", "Estr.", "Favela", "Fazenda", "Feira",
		"Jardim", "Jd.", "Ladeira", "Lago", "Lagoa", "Largo",
		"Loteamento", "Morro", "Núcleo", "Parque", "Pq.", "Passarela",
		"Pátio", "Praça", "Pç.", "Quadra", "Recanto", "Residencial",
		"Resid.", "Rua", "R.", "Setor", "Sítio", "Travessa", "Tv.",
		"Trecho", "Trevo", "Vale", "Vereda", "Via", "V.", "Viaduto",
		"Viela", "Vila", "Vl.",
	},
	determinants: []string{" do", " da", " dos", " das", ""},
	folds:        latinFolds(nil),
}

var arRules = rules{
	appellations: []string{
		"شارع", "طريق", "زقاق", "نهج", "جادة", "ممر", "حارة", "كوبري",
		"كوبرى", "جسر", "مطلع", "منزل", "مفرق", "ملف", "تقاطع", "ساحل",
		"ميدان", "ساحة", "دوار",
	},
	determinants: []string{" ال", ""},
	folds:        map[rune]rune{'ا': 'أ', 'إ': 'أ', 'آ': 'أ'},
	rtl:          true,
}

var nlRules = rules{
	appellations: []string{
		"St.", "Sint", "Ptr.", "Pater", "Prof.", "Professor", "Past.",
		"Pastoor", "Pr.", "Prins", "Prinses", "Gen.", "Generaal",
		"Mgr.", "Monseigneur", "Mr.", "Meester", "Burg.",
		"Burgermeester", "Dr.", "Dokter", "Ir.", "Ingenieur", "Ds.",
		"Dominee", "Deken", "Drs.", "Maj.", "Majoor",
	},
	// Titled street names keep the surname's middle words with the
	// prefix: "Prins van Oranjestraat" => "Oranjestraat (Prins van)".
	determinants: []string{
		" van der", " van den", " van de", " van", "van der", "van den",
		"van de", "van", "Den", "D'n", "D'", "De", "'T", "Het", "",
	},
	numApp:   regexp.MustCompile(`^\d+e`),
	emptyApp: true,
	folds:    latinFolds(nil),
}

var deRules = rules{
	appellations: []string{
		"Alte", "Alter", "Doktor", "Dr.", "Flughafen", "Flugplatz",
		"Gen.", "General", "Neue", "Neuer", "Platz", "Prinz",
		"Prinzessin", "Prof.", "Professor",
	},
	determinants: []string{
		" an den", " an der", " am", " auf den", " auf der", " an",
		" des", " der", " von", " vor", "",
	},
	folds: latinFolds(nil),
}

var hrRules = rules{
	digraphs: []digraphFold{{"dž", "d"}, {"nj", "n"}, {"lj", "l"}},
	folds: map[rune]rune{
		'ć': 'c', 'č': 'c', 'đ': 'd', 'š': 's', 'ž': 'z',
	},
}

var plRules = rules{
	appellations: []string{
		"Dr.", "Doktora", "Ks.", "Księdza", "Generała", "Gen.", "Aleja",
		"Plac", "Pl.", "Rondo", "Profesora", "Prof.",
	},
	determinants: []string{
		" im.", " imienia", " pw.", "im.", "imienia", "pw.", "",
	},
	emptyApp:   true,
	comma:      true,
	exactFirst: true,
}

var trRules = rules{
	appellations: []string{"Sokak", "Sokağı"},
	determinants: []string{""},
}

var ruRules = rules{
	statusParts: []statusPart{
		{"улица", []string{"ул"}},
		{"площадь", []string{"пл"}},
		{"переулок", []string{"пер", "пер-к"}},
		{"проезд", []string{"пр-д"}},
		{"шоссе", []string{"ш"}},
		{"бульвар", []string{"бул", "б-р"}},
		{"тупик", []string{"туп"}},
		{"набережная", []string{"наб"}},
		{"проспект", []string{"просп", "пр-кт", "пр-т"}},
		{"линия", nil},
		{"аллея", nil},
		{"метромост", nil},
		{"мост", nil},
		{"просек", nil},
		{"просека", nil},
		{"путепровод", nil},
		{"тракт", []string{"тр-т", "тр"}},
		{"тропа", nil},
		{"туннель", nil},
		{"тоннель", nil},
		{"эстакада", []string{"эст"}},
		{"дорога", []string{"дор"}},
		{"спуск", nil},
		{"подход", nil},
		{"подъезд", nil},
		{"съезд", nil},
		{"заезд", nil},
		{"разъезд", nil},
		{"слобода", nil},
		{"район", []string{"р-н"}},
		{"микрорайон", []string{"мкр-н", "мк-н", "мкр", "мкрн"}},
		{"посёлок", []string{"поселок", "пос"}},
		{"деревня", []string{"дер", "д"}},
		{"квартал", []string{"кв-л", "кв"}},
	},
	numSuffixes: []string{"ый", "й", "я"},
	numFirst:    false,
	rewrite:     statusRewrite,
}

var beRules = rules{
	statusParts: []statusPart{
		{"вуліца", []string{"вул"}},
		{"плошча", []string{"пл"}},
		{"завулак", []string{"зав", "зав-к"}},
		{"праезд", []string{"пр-д"}},
		{"шаша", []string{"ш"}},
		{"бульвар", []string{"бул", "б-р"}},
		{"тупік", []string{"туп"}},
		{"набярэжная", []string{"наб"}},
		{"праспект", []string{"пр-кт", "пр-т"}},
		{"алея", nil},
		{"мост", nil},
		{"парк", nil},
		{"тракт", []string{"тр-т", "тр"}},
		{"раён", []string{"р-н"}},
		{"мікрараён", []string{"мкр-н", "мк-н", "мкр", "мкрн"}},
		{"пасёлак", []string{"пас"}},
		{"вёска", []string{"в"}},
		{"квартал", []string{"кв-л", "кв"}},
	},
	numSuffixes: []string{"і", "ы", "я"},
	numFirst:    true,
	rewrite:     statusRewrite,
}

var genericRules = rules{exactFirst: true}

// statusRewrite implements the eastern Slavic index form: status
// abbreviations are expanded, then a leading status word and numeric
// ordinal are moved behind the name, comma separated.
// "ул. Ленина" becomes "Ленина, улица".
func statusRewrite(r *rules, name string) string {
	name = r.expandAbbrevs(name)

	numPrefix, rest := r.splitNumPrefix(name)
	status, base := r.splitStatusPrefix(rest)

	if numPrefix == "" && status == "" {
		return name
	}
	if base == "" {
		return name
	}
	if numPrefix == "" && r.isFullStatus(base) {
		return name
	}

	parts := []string{strings.ToLower(status), strings.ToLower(numPrefix)}
	if r.numFirst {
		parts[0], parts[1] = parts[1], parts[0]
	}
	tail := strings.TrimSpace(strings.Join(parts, " "))
	return base + ", " + tail
}

// expandAbbrevs rewrites abbreviated status tokens ("ул", "ул.") into
// the full lowercase status word, token by token.
func (r *rules) expandAbbrevs(name string) string {
	tokens := strings.Split(name, " ")
	for i, tok := range tokens {
		bare := strings.ToLower(strings.TrimSuffix(tok, "."))
		for _, sp := range r.statusParts {
			for _, ab := range sp.abbrevs {
				if bare == ab {
					tokens[i] = sp.full
				}
			}
		}
	}
	return strings.Join(tokens, " ")
}

// splitNumPrefix detaches a leading ordinal such as "1-й " or "2-я ".
func (r *rules) splitNumPrefix(name string) (num, rest string) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", name
	}
	tail := name[i:]
	tail = strings.TrimPrefix(tail, "-")
	for _, suf := range r.numSuffixes {
		if strings.HasPrefix(strings.ToLower(tail), suf) {
			end := len(name) - len(tail) + len(suf)
			num = name[:end]
			rest = strings.TrimLeft(name[end:], " ")
			return num, rest
		}
	}
	return "", name
}

// splitStatusPrefix detaches a leading full status word, with an
// optional trailing dot.
func (r *rules) splitStatusPrefix(name string) (status, rest string) {
	lower := strings.ToLower(name)
	for _, sp := range r.statusParts {
		if !strings.HasPrefix(lower, sp.full) {
			continue
		}
		end := len(sp.full)
		tail := name[end:]
		tail = strings.TrimPrefix(tail, ".")
		if tail != "" && !strings.HasPrefix(tail, " ") {
			continue
		}
		return name[:end], strings.TrimLeft(tail, " ")
	}
	return "", name
}

func (r *rules) isFullStatus(s string) bool {
	lower := strings.ToLower(s)
	for _, sp := range r.statusParts {
		if lower == sp.full {
			return true
		}
	}
	return false
}

// registry maps locale codes to their rule records. Codes absent here
// fall back to the generic rules.
var registry = buildRegistry()

func buildRegistry() map[string]*rules {
	m := map[string]*rules{}
	add := func(r *rules, codes ...string) {
		for _, c := range codes {
			m[c] = r
		}
	}
	add(&frRules, "fr_BE.UTF-8", "fr_FR.UTF-8", "fr_CA.UTF-8",
		"fr_CH.UTF-8", "fr_LU.UTF-8")
	add(&nlRules, "nl_BE.UTF-8", "nl_NL.UTF-8")
	add(&itRules, "it_IT.UTF-8", "it_CH.UTF-8")
	add(&deRules, "de_AT.UTF-8", "de_BE.UTF-8", "de_DE.UTF-8",
		"de_LU.UTF-8", "de_CH.UTF-8")
	add(&esRules, "es_ES.UTF-8", "es_AR.UTF-8", "es_BO.UTF-8",
		"es_CL.UTF-8", "es_CR.UTF-8", "es_DO.UTF-8", "es_EC.UTF-8",
		"es_SV.UTF-8", "es_GT.UTF-8", "es_HN.UTF-8", "es_MX.UTF-8",
		"es_NI.UTF-8", "es_PA.UTF-8", "es_PY.UTF-8", "es_PE.UTF-8",
		"es_PR.UTF-8", "es_US.UTF-8", "es_UY.UTF-8", "es_VE.UTF-8")
	add(&caRules, "ca_ES.UTF-8", "ca_AD.UTF-8", "ca_FR.UTF-8")
	add(&ptBrRules, "pt_BR.UTF-8")
	add(&arRules, "ar_AE.UTF-8", "ar_BH.UTF-8", "ar_DZ.UTF-8",
		"ar_EG.UTF-8", "ar_IN", "ar_IQ.UTF-8", "ar_JO.UTF-8",
		"ar_KW.UTF-8", "ar_LB.UTF-8", "ar_LY.UTF-8", "ar_MA.UTF-8",
		"ar_OM.UTF-8", "ar_QA.UTF-8", "ar_SA.UTF-8", "ar_SD.UTF-8",
		"ar_SY.UTF-8", "ar_TN.UTF-8", "ar_YE.UTF-8")
	add(&hrRules, "hr_HR.UTF-8")
	add(&ruRules, "ru_RU.UTF-8")
	add(&beRules, "be_BY.UTF-8")
	add(&plRules, "pl_PL.UTF-8")
	add(&trRules, "tr_TR.UTF-8")
	return m
}
