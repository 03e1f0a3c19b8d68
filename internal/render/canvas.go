// Package render draws finished map pages: the reference grid with
// its labels, the title and copyright bands, the street index columns
// and the page outlines of the multi-page overview.
//
// Layout math uses a top-left origin, like the rest of the module.
// Canvas implementations translate to whatever their backend wants.
package render

// Rect is a layout rectangle, Y growing downwards from the top edge.
type Rect struct {
	X, Y, W, H float64
}

// Shrink insets the rectangle by m points on every side.
func (r Rect) Shrink(m float64) Rect {
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}

// Canvas is one drawable page. Coordinates are points from the
// top-left corner, gray runs from 0 (black) to 1 (white).
type Canvas interface {
	// Size returns the page width and height.
	Size() (w, h float64)

	// Line strokes a straight line. A nil dash draws solid.
	Line(x1, y1, x2, y2, width float64, dash []float64, gray float64)

	// StrokeRect strokes the outline of r.
	StrokeRect(r Rect, width, gray float64)

	// FillRect fills r.
	FillRect(r Rect, gray float64)

	// Text draws s with its baseline at y, starting at x.
	Text(font string, size, x, y, gray float64, s string)

	// TextCentered draws s horizontally centered on cx, baseline at y.
	TextCentered(font string, size, cx, y, gray float64, s string)
}
