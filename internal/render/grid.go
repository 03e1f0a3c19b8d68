package render

import (
	"github.com/maposmatic/ocitysmap-go/internal/grid"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
)

const (
	gridLineWidth = 0.5
	gridLineGray  = 0.4

	labelFont = "Helvetica-Bold"
	labelGray = 0.25
)

var gridDash = []float64{6, 3}

// DrawGrid overlays the reference grid on the map area: dashed square
// boundaries plus the column letters along the top edge and the row
// numbers along the left edge (right edge for RTL grids).
func DrawGrid(c Canvas, g *grid.Grid, area Rect) {
	bbox := g.Area()
	tl := bbox.TopLeft()
	br := bbox.BottomRight()
	spanLong := br.Long - tl.Long
	spanLat := tl.Lat - br.Lat
	if spanLong <= 0 || spanLat <= 0 {
		return
	}

	for _, long := range g.VerticalLines {
		x := area.X + (long-tl.Long)/spanLong*area.W
		c.Line(x, area.Y, x, area.Y+area.H, gridLineWidth, gridDash, gridLineGray)
	}
	for _, lat := range g.HorizontalLines {
		y := area.Y + (tl.Lat-lat)/spanLat*area.H
		c.Line(area.X, y, area.X+area.W, y, gridLineWidth, gridDash, gridLineGray)
	}

	legend := paper.GridLegendMarginRatio * area.H
	fontSize := 0.6 * legend

	// Column letters, centered between the vertical boundaries.
	xBounds := boundaries(g.VerticalLines, tl.Long, br.Long)
	for i, label := range g.HorizontalLabels {
		if i+1 >= len(xBounds) {
			break
		}
		cx := area.X + (xBounds[i]+xBounds[i+1])/2*area.W
		c.TextCentered(labelFont, fontSize, cx, area.Y+0.75*legend, labelGray, label)
	}

	// Row numbers down the reading-side edge.
	yBounds := boundaries(g.HorizontalLines, tl.Lat, br.Lat)
	x := area.X + 0.5*paper.GridLegendMarginRatio*area.W
	if g.RTL {
		x = area.X + area.W - 0.5*paper.GridLegendMarginRatio*area.W
	}
	for i, label := range g.VerticalLabels {
		if i+1 >= len(yBounds) {
			break
		}
		cy := area.Y + (yBounds[i]+yBounds[i+1])/2*area.H
		c.TextCentered(labelFont, fontSize, x, cy+0.3*fontSize, labelGray, label)
	}
}

// boundaries converts interior line angles to 0..1 fractions of the
// span from lo to hi, bracketed by the two edges.
func boundaries(lines []float64, lo, hi float64) []float64 {
	out := make([]float64, 0, len(lines)+2)
	out = append(out, 0)
	span := hi - lo
	for _, v := range lines {
		out = append(out, (v-lo)/span)
	}
	out = append(out, 1)
	return out
}
