package render

import (
	"fmt"

	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex/fit"
)

const (
	headerBandGray = 0.85
	leaderGray     = 0.6
	textGray       = 0
)

var leaderDash = []float64{1, 2}

// DrawIndex renders the fitted index into its area, filling the
// columns computed by the fitter. On RTL indexes the columns run
// right to left.
func DrawIndex(c Canvas, ix *streetindex.Index, area fit.Area, m fontmetrics.Oracle) error {
	if area.Columns <= 0 {
		return fmt.Errorf("index area has no columns")
	}
	st := area.Style

	labelAscent, labelHeight, em, err := m.Extents(st.LabelFont, st.LabelSize)
	if err != nil {
		return fmt.Errorf("label extents: %w", err)
	}
	_, headerHeight, _, err := m.Extents(st.HeaderFont, st.HeaderSize)
	if err != nil {
		return fmt.Errorf("header extents: %w", err)
	}

	colWidth := area.W / float64(area.Columns)
	col := 0
	y := area.Y

	colRect := func(col int) Rect {
		i := col
		if ix.RTL {
			i = area.Columns - 1 - col
		}
		return Rect{X: area.X + float64(i)*colWidth, Y: area.Y, W: colWidth, H: area.H}
	}

	nextColumn := func() error {
		col++
		if col >= area.Columns {
			return streetindex.ErrIndexDoesNotFit
		}
		y = area.Y
		return nil
	}

	for _, cat := range ix.Categories {
		if len(cat.Items) == 0 {
			continue
		}
		// Do not leave a header alone at the bottom of a column.
		if y+headerHeight+labelHeight > area.Y+area.H {
			if err := nextColumn(); err != nil {
				return err
			}
		}
		r := colRect(col)
		c.FillRect(Rect{X: r.X, Y: y, W: r.W, H: headerHeight}, headerBandGray)
		c.TextCentered(st.HeaderFont, st.HeaderSize, r.X+r.W/2,
			y+0.75*headerHeight, textGray, cat.Name)
		y += headerHeight

		prevLabel := ""
		for _, it := range cat.Items {
			if y+labelHeight > area.Y+area.H {
				if err := nextColumn(); err != nil {
					return err
				}
				r = colRect(col)
				prevLabel = ""
			}

			label := it.Label
			if label == prevLabel {
				// Same street continuing from the previous page of a
				// multi-page map.
				label = ""
			} else {
				prevLabel = it.Label
			}

			loc := it.Location
			if loc == "" {
				loc = streetindex.UnknownLocation
			}
			if it.Page > 0 {
				loc = fmt.Sprintf("%d, %s", it.Page, loc)
			}

			baseline := y + labelAscent
			x0 := r.X + 0.5*em
			x1 := r.X + r.W - 0.5*em

			labelW := 0.0
			if label != "" {
				c.Text(st.LabelFont, st.LabelSize, x0, baseline, textGray, label)
				labelW, err = m.TextWidth(st.LabelFont, st.LabelSize, label)
				if err != nil {
					return fmt.Errorf("measure %q: %w", label, err)
				}
			}
			locW, err := m.TextWidth(st.LabelFont, st.LabelSize, loc)
			if err != nil {
				return fmt.Errorf("measure %q: %w", loc, err)
			}
			c.Text(st.LabelFont, st.LabelSize, x1-locW, baseline, textGray, loc)

			// Dotted leader between the name and the square.
			lead0 := x0 + labelW + 0.5*em
			lead1 := x1 - locW - 0.5*em
			if lead1 > lead0 {
				c.Line(lead0, baseline, lead1, baseline, 0.5, leaderDash, leaderGray)
			}

			y += labelHeight
		}
	}
	return nil
}
