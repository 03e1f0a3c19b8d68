// Package fit computes how a street index packs into a fixed page
// area: the whole index is first measured as one tall column, which is
// then split into as many page columns as the area allows, searching
// font sizes downward until the index fits.
package fit

import (
	"fmt"
	"math"

	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

// Metrics measures text for the fitting computation, so layouts can be
// computed without a live PDF canvas.
type Metrics interface {
	// TextWidth is the advance width of s at the given size, in points.
	TextWidth(font string, size float64, s string) (float64, error)
	// Extents returns the ascent, total line height and em width of
	// the font at the given size, in points.
	Extents(font string, size float64) (ascent, height, em float64, err error)
}

// Freedom names the area dimension allowed to shrink under the index.
type Freedom string

// Alignment names the area side the index sticks to.
type Alignment string

const (
	FreedomHeight Freedom = "height"
	FreedomWidth  Freedom = "width"

	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
)

// Default fonts and the font size search range of the index body.
const (
	DefaultHeaderFont = "Times-Bold"
	DefaultLabelFont  = "Helvetica"

	MinLabelFontSize = 2
	MaxLabelFontSize = 12

	// Header text runs this much larger than the labels.
	headerSizeDelta = 4
)

// Style is a concrete font choice for the index.
type Style struct {
	HeaderFont string
	LabelFont  string
	HeaderSize float64
	LabelSize  float64
}

// Area is a computed index placement: where it goes, how big it is,
// how many columns it holds and in which style it is rendered.
type Area struct {
	Style   Style
	X, Y    float64
	W, H    float64
	Columns int
}

// Fitter computes index placements.
type Fitter struct {
	Metrics    Metrics
	HeaderFont string
	LabelFont  string

	// MinSize and MaxSize bound the label font size search; zero
	// values take the package defaults.
	MinSize int
	MaxSize int
}

func (f *Fitter) headerFont() string {
	if f.HeaderFont == "" {
		return DefaultHeaderFont
	}
	return f.HeaderFont
}

func (f *Fitter) labelFont() string {
	if f.LabelFont == "" {
		return DefaultLabelFont
	}
	return f.LabelFont
}

func (f *Fitter) sizeRange() (int, int) {
	lo, hi := f.MinSize, f.MaxSize
	if lo == 0 {
		lo = MinLabelFontSize
	}
	if hi == 0 {
		hi = MaxLabelFontSize
	}
	return lo, hi
}

// Place computes the index area within the rectangle (x, y, w, h). The
// font size is searched by bisection for the largest label size whose
// layout fits; when even the minimum size does not fit,
// streetindex.ErrIndexDoesNotFit is returned. An empty index yields
// streetindex.ErrIndexEmpty. Incompatible freedom and alignment values
// are a programming error and panic.
func (f *Fitter) Place(ix *streetindex.Index, x, y, w, h float64, freedom Freedom, align Alignment) (Area, error) {
	switch freedom {
	case FreedomHeight:
		if align != AlignTop && align != AlignBottom {
			panic(fmt.Sprintf("fit: freedom %q incompatible with alignment %q", freedom, align))
		}
	case FreedomWidth:
		if align != AlignLeft && align != AlignRight {
			panic(fmt.Sprintf("fit: freedom %q incompatible with alignment %q", freedom, align))
		}
	default:
		panic(fmt.Sprintf("fit: invalid freedom direction %q", freedom))
	}

	if ix == nil || len(ix.Categories) == 0 {
		return Area{}, streetindex.ErrIndexEmpty
	}

	lo, hi := f.sizeRange()

	// Larger sizes need more room, so the predicate "fits at size s"
	// is monotone and the largest fitting size can be bisected.
	best, bestOK := split{}, false
	for lo <= hi {
		mid := (lo + hi + 1) / 2
		sp, err := f.trySize(ix, mid, w, h, freedom)
		if err == nil {
			best, bestOK = sp, true
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if !bestOK {
		return Area{}, streetindex.ErrIndexDoesNotFit
	}

	indexW, indexH := w, best.minDimension
	if freedom == FreedomWidth {
		indexW, indexH = best.minDimension, h
	}
	offsetX, offsetY := 0.0, 0.0
	if align == AlignBottom {
		offsetY = h - indexH
	}
	if align == AlignRight {
		offsetX = w - indexW
	}

	return Area{
		Style:   best.style,
		X:       x + offsetX,
		Y:       y + offsetY,
		W:       indexW,
		H:       indexH,
		Columns: best.columns,
	}, nil
}

type split struct {
	style        Style
	columns      int
	minDimension float64
}

// trySize measures the tall column at the given label size and splits
// it into page columns. streetindex.ErrIndexDoesNotFit reports a
// failed fit; other errors are measurement failures.
func (f *Fitter) trySize(ix *streetindex.Index, labelSize int, w, h float64, freedom Freedom) (split, error) {
	style := Style{
		HeaderFont: f.headerFont(),
		LabelFont:  f.labelFont(),
		HeaderSize: float64(labelSize + headerSizeDelta),
		LabelSize:  float64(labelSize),
	}

	occ, err := f.columnOccupation(ix, style)
	if err != nil {
		return split{}, err
	}

	if w < occ.width {
		return split{}, streetindex.ErrIndexDoesNotFit
	}

	switch freedom {
	case FreedomHeight:
		nCols := math.Floor(w / occ.width)
		if nCols <= 0 {
			return split{}, streetindex.ErrIndexDoesNotFit
		}
		minHeight := math.Ceil((occ.height + nCols*occ.verticalExtra) / nCols)
		if minHeight > h {
			return split{}, streetindex.ErrIndexDoesNotFit
		}
		return split{style: style, columns: int(nCols), minDimension: minHeight}, nil

	default: // FreedomWidth, validated in Place
		nCols := math.Ceil(occ.height / h)
		minWidth := nCols * occ.width
		if minWidth > w || occ.height+nCols*occ.verticalExtra > nCols*h {
			return split{}, streetindex.ErrIndexDoesNotFit
		}
		return split{style: style, columns: int(nCols), minDimension: minWidth}, nil
	}
}

type occupation struct {
	width         float64
	height        float64
	verticalExtra float64
}

// columnOccupation measures the single tall column holding every
// header and label, plus the vertical slack to reserve per page
// column so a trailing header is never orphaned.
func (f *Fitter) columnOccupation(ix *streetindex.Index, style Style) (occupation, error) {
	// Room for the square span at worst " " plus "Z99-Z99".
	labels, err := f.linesOccupation(style.LabelFont, style.LabelSize, 1+7, allLabels(ix))
	if err != nil {
		return occupation{}, err
	}
	headers, err := f.linesOccupation(style.HeaderFont, style.HeaderSize, 2, categoryNames(ix))
	if err != nil {
		return occupation{}, err
	}

	return occupation{
		width:         math.Max(labels.width, headers.width),
		height:        labels.height + headers.height,
		verticalExtra: labels.lineHeight + headers.lineHeight + labels.em,
	}, nil
}

type linesBlock struct {
	width      float64
	height     float64
	lineHeight float64
	em         float64
}

func (f *Fitter) linesOccupation(font string, size float64, emPadding int, lines []string) (linesBlock, error) {
	_, lineHeight, em, err := f.Metrics.Extents(font, size)
	if err != nil {
		return linesBlock{}, fmt.Errorf("font extents %s: %w", font, err)
	}
	width := 0.0
	for _, s := range lines {
		tw, err := f.Metrics.TextWidth(font, size, s)
		if err != nil {
			return linesBlock{}, fmt.Errorf("measure %q: %w", s, err)
		}
		width = math.Max(width, tw)
	}
	return linesBlock{
		width:      width + float64(emPadding)*em,
		height:     lineHeight * float64(len(lines)),
		lineHeight: lineHeight,
		em:         em,
	}, nil
}

func allLabels(ix *streetindex.Index) []string {
	var out []string
	for _, c := range ix.Categories {
		out = append(out, c.Labels()...)
	}
	return out
}

func categoryNames(ix *streetindex.Index) []string {
	out := make([]string, len(ix.Categories))
	for i, c := range ix.Categories {
		out[i] = c.Name
	}
	return out
}
