package fontmetrics

import "unicode/utf8"

// Fixed is an Oracle with uniform glyph widths, for tests and dry
// runs that must not depend on real font tables.
type Fixed struct {
	// CharWidth is the advance of every rune, in em fractions.
	CharWidth float64
	// LineHeight is the line height in em fractions.
	LineHeight float64
}

func (f Fixed) TextWidth(font string, size float64, s string) (float64, error) {
	return f.CharWidth * size * float64(utf8.RuneCountInString(s)), nil
}

func (f Fixed) Extents(font string, size float64) (float64, float64, float64, error) {
	return 0.8 * size, f.LineHeight * size, f.CharWidth * size, nil
}
