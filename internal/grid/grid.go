// Package grid lays the labeled reference grid over a map bounding
// box: squares sized to a round number of meters, columns labeled A,
// B, ... AA, AB and rows labeled 1, 2, 3.
package grid

import (
	"math"
	"strconv"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
)

// ApproxPaperSizeMM is the targeted on-paper edge of a grid square,
// accurate to roughly a third either way after rounding.
const ApproxPaperSizeMM = 40

// Grid describes the reference grid of one rendered map.
type Grid struct {
	// SizeMeters is the terrain edge of a square.
	SizeMeters float64

	// HorizCount and VertCount are the real-valued square counts; the
	// last column and row may be partial.
	HorizCount float64
	VertCount  float64

	// HorizontalLines are the latitudes of the interior horizontal
	// lines, top to bottom; VerticalLines the longitudes of the
	// vertical ones, left to right.
	HorizontalLines []float64
	VerticalLines   []float64

	// HorizontalLabels labels the columns with letters,
	// VerticalLabels the rows with 1-based numbers.
	HorizontalLabels []string
	VerticalLabels   []string

	RTL bool

	bbox           coords.BoundingBox
	horizAngleSpan float64
	vertAngleSpan  float64
	horizUnitAngle float64
	vertUnitAngle  float64
}

// New computes the grid for a bounding box at the given scale
// denominator. rtl mirrors the column labels for right-to-left
// locales.
func New(bbox coords.BoundingBox, scale float64, rtl bool) *Grid {
	widthM, heightM := bbox.SphericSizes()

	size := niceSize(ApproxPaperSizeMM * scale / 1000)

	g := &Grid{
		SizeMeters: size,
		RTL:        rtl,
		bbox:       bbox,
	}
	if widthM > 0 {
		g.HorizCount = snap(widthM / size)
	}
	if heightM > 0 {
		g.VertCount = snap(heightM / size)
	}

	tl := bbox.TopLeft()
	br := bbox.BottomRight()
	g.horizAngleSpan = math.Abs(tl.Long - br.Long)
	g.vertAngleSpan = math.Abs(tl.Lat - br.Lat)
	if g.HorizCount > 0 {
		g.horizUnitAngle = g.horizAngleSpan / g.HorizCount
	}
	if g.VertCount > 0 {
		g.vertUnitAngle = g.vertAngleSpan / g.VertCount
	}

	for x := 0; x < int(math.Floor(g.VertCount)); x++ {
		g.HorizontalLines = append(g.HorizontalLines,
			tl.Lat-float64(x+1)*g.vertUnitAngle)
	}
	for x := 0; x < int(math.Floor(g.HorizCount)); x++ {
		g.VerticalLines = append(g.VerticalLines,
			tl.Long+float64(x+1)*g.horizUnitAngle)
	}

	for x := 0; x < int(math.Ceil(g.HorizCount)); x++ {
		g.HorizontalLabels = append(g.HorizontalLabels, g.columnLabel(x))
	}
	for x := 0; x < int(math.Ceil(g.VertCount)); x++ {
		g.VerticalLabels = append(g.VerticalLabels, rowLabel(x))
	}
	return g
}

// Area returns the bounding box the grid was computed for.
func (g *Grid) Area() coords.BoundingBox {
	return g.bbox
}

// snap rounds away the float noise the spheric size computation leaves
// on square counts, so a box measuring 4.000000001 squares wide does
// not grow a fifth column.
func snap(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// niceSize rounds a terrain size to a 1, 2, 2.5 or 5 significand times
// a power of ten, so squares come out at 50m, 100m, 250m rather than
// arbitrary fractions.
func niceSize(size float64) float64 {
	exponent := int(math.Log10(size))
	significand := size / math.Pow(10, float64(exponent))
	switch {
	case significand < 1.5:
		significand = 1
	case significand < 2.25:
		significand = 2
	case significand < 3.75:
		significand = 2.5
	case significand < 7.5:
		significand = 5
	default:
		significand = 10
	}
	return significand * math.Pow(10, float64(exponent))
}

// columnLabel yields A..Z, then AA, AB and so on. In RTL mode the
// column order is mirrored.
func (g *Grid) columnLabel(x int) string {
	if g.RTL {
		x = len(g.VerticalLines) - x
	}
	label := ""
	for x != -1 {
		label = string(rune('A'+x%26)) + label
		x = x/26 - 1
	}
	return label
}

func rowLabel(x int) string {
	return strconv.Itoa(x + 1)
}

// LocationString names the square containing the point, e.g. "C5".
// Points on or beyond the box edge are clamped into the nearest
// square. A degenerate grid has no labels and yields "".
func (g *Grid) LocationString(p coords.Point) string {
	if len(g.HorizontalLabels) == 0 || len(g.VerticalLabels) == 0 {
		return ""
	}
	tl := g.bbox.TopLeft()

	hdelta := math.Min(math.Abs(p.Long-tl.Long), g.horizAngleSpan)
	hidx := 0
	if g.horizUnitAngle > 0 {
		hidx = int(snap(hdelta / g.horizUnitAngle))
	}
	if hidx >= len(g.HorizontalLabels) {
		hidx = len(g.HorizontalLabels) - 1
	}

	vdelta := math.Min(math.Abs(p.Lat-tl.Lat), g.vertAngleSpan)
	vidx := 0
	if g.vertUnitAngle > 0 {
		vidx = int(snap(vdelta / g.vertUnitAngle))
	}
	if vidx >= len(g.VerticalLabels) {
		vidx = len(g.VerticalLabels) - 1
	}

	return g.HorizontalLabels[hidx] + g.VerticalLabels[vidx]
}
