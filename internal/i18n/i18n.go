// Package i18n carries the per-language rules used to build a readable
// street index: moving the street appellation ("Rue du", "Via della")
// behind the proper name, folding accents when comparing first letters,
// and locale-aware ordering.
//
// Rules are plain data records looked up by locale code; sorting is
// done with an injected collator so that no process-wide locale state
// is involved.
package i18n

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Locale bundles the street-name rules and the collator for one locale
// code. Get a fresh instance per render job: the collator is not safe
// for concurrent use.
type Locale struct {
	code     string
	rules    *rules
	tag      language.Tag
	collator *collate.Collator
}

// rules is one language record. The zero value behaves like the
// generic fallback: no prefix relocation, exact first letters.
type rules struct {
	appellations []string
	determinants []string

	// comma style renders "Name, Prefix" instead of "Name (Prefix)".
	comma bool
	rtl   bool

	// exactFirst compares index letters strictly instead of through
	// FoldUpper.
	exactFirst bool

	folds    map[rune]rune
	digraphs []digraphFold

	// numApp accepts counting prefixes such as the Dutch "1e"; emptyApp
	// lets a determinant alone form the prefix ("Den Urling").
	numApp   *regexp.Regexp
	emptyApp bool

	// rewrite, when set, replaces the appellation matching entirely
	// (used for the Russian and Belarusian status-part grammar).
	rewrite func(*rules, string) string

	statusParts []statusPart
	numSuffixes []string
	numFirst    bool
}

type digraphFold struct {
	from, to string
}

// statusPart is a full status word with its accepted abbreviations,
// both stored lowercase.
type statusPart struct {
	full    string
	abbrevs []string
}

// Get returns the locale for a code such as "fr_FR.UTF-8". Unknown
// codes get the generic rules: names pass through untouched and first
// letters compare exactly.
func Get(code string) *Locale {
	r, ok := registry[code]
	if !ok {
		r = &genericRules
	}
	tag := tagFor(code)
	return &Locale{
		code:     code,
		rules:    r,
		tag:      tag,
		collator: collate.New(tag),
	}
}

// Supported lists the locale codes with dedicated rule records, sorted.
func Supported() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func tagFor(code string) language.Tag {
	s := code
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

func (l *Locale) Code() string           { return l.code }
func (l *Locale) Language() language.Tag { return l.tag }
func (l *Locale) IsRTL() bool            { return l.rules.rtl }

// Compare orders two strings under the locale's collation.
func (l *Locale) Compare(a, b string) int {
	return l.collator.CompareString(a, b)
}

var spaceReduce = regexp.MustCompile(`\s+`)

// UserReadableStreet turns a raw street name into its index form,
// e.g. "Rue du Moulin" into "Moulin (Rue du)" for French.
func (l *Locale) UserReadableStreet(name string) string {
	name = spaceReduce.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return name
	}
	if l.rules.rewrite != nil {
		return l.rules.rewrite(l.rules, name)
	}
	prefix, rest, ok := l.rules.matchPrefix(name)
	if !ok {
		return name
	}
	if l.rules.comma {
		return rest + ", " + prefix
	}
	return rest + " (" + prefix + ")"
}

// matchPrefix finds a leading appellation plus optional determinant,
// trying appellations in declaration order and determinants in
// declaration order, first match wins.
func (r *rules) matchPrefix(name string) (prefix, rest string, ok bool) {
	for _, app := range r.appellations {
		if p, t, ok := r.tryApp(name, app); ok {
			return p, t, true
		}
	}
	if r.numApp != nil {
		if m := r.numApp.FindString(name); m != "" {
			if p, t, ok := r.tryApp(name, m); ok {
				return p, t, true
			}
		}
	}
	if r.emptyApp {
		if p, t, ok := r.tryApp(name, ""); ok {
			return p, t, true
		}
	}
	return "", "", false
}

func (r *rules) tryApp(name, app string) (prefix, rest string, ok bool) {
	if !hasFoldPrefix(name, app) {
		return "", "", false
	}
	dets := r.determinants
	if len(dets) == 0 {
		dets = []string{""}
	}
	for _, det := range dets {
		full := app + det
		if full == "" {
			continue
		}
		if !hasFoldPrefix(name, full) {
			continue
		}
		matched := name[:len(full)]
		tail := name[len(full):]
		spaceEaten := false
		if strings.HasPrefix(tail, " ") {
			tail = tail[1:]
			spaceEaten = true
		}
		if tail == "" {
			continue
		}
		if !prefixBoundary(matched, tail, spaceEaten) {
			continue
		}
		return matched, tail, true
	}
	return "", "", false
}

// prefixBoundary mimics a word boundary between the matched prefix and
// the start of the remaining name, so "Route" never eats into
// "Routemont" while "de l'" may run straight into the name.
func prefixBoundary(prefix, rest string, spaceEaten bool) bool {
	next, _ := firstRune(rest)
	if spaceEaten {
		return isWordRune(next)
	}
	prev := lastRune(prefix)
	return isWordRune(prev) != isWordRune(next)
}

// hasFoldPrefix reports whether s starts with prefix under simple
// case folding, byte positions aligned so s[len(prefix):] is the tail.
func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FoldUpper uppercases a string after applying the locale's accent and
// digraph folds, the form under which first letters are compared.
func (l *Locale) FoldUpper(s string) string {
	r := l.rules
	if len(r.folds) == 0 && len(r.digraphs) == 0 {
		return strings.ToUpper(s)
	}
	s = strings.ToLower(s)
	for _, d := range r.digraphs {
		s = strings.ReplaceAll(s, d.from, d.to)
	}
	if len(r.folds) > 0 {
		s = strings.Map(func(c rune) rune {
			if to, ok := r.folds[c]; ok {
				return to
			}
			return c
		}, s)
	}
	return strings.ToUpper(s)
}

// FirstLetterEqual reports whether two index letters belong to the
// same bucket of the locale.
func (l *Locale) FirstLetterEqual(a, b string) bool {
	if l.rules.exactFirst {
		return a == b
	}
	return l.FoldUpper(a) == l.FoldUpper(b)
}

// FirstLetter returns the first rune of a name as a string, empty for
// empty input.
func FirstLetter(s string) string {
	r, ok := firstRune(s)
	if !ok {
		return ""
	}
	return string(r)
}
