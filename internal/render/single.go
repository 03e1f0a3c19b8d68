package render

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/grid"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex/fit"
)

const (
	titleFont     = "Times-Bold"
	copyrightFont = "Helvetica"

	frameLineWidth = 1
)

// Job describes one map to render.
type Job struct {
	Title     string
	Copyright string

	Area      coords.BoundingBox
	Paper     paper.Size
	Landscape bool
	IndexPos  paper.IndexPosition

	// Scale is the denominator of the map scale, e.g. 10000.
	Scale float64

	RTL bool
}

// Renderer draws map pages. Metrics must measure the same fonts the
// PDF backend embeds.
type Renderer struct {
	Metrics fontmetrics.Oracle
	Logger  zerolog.Logger
}

// RenderSingle draws a one-page map: title band, map with grid, the
// fitted street index and the copyright line. An empty index is
// skipped; an index that does not fit in its allotted share aborts the
// rendering with streetindex.ErrIndexDoesNotFit so the caller can
// retry on larger paper.
func (r *Renderer) RenderSingle(doc *Document, job Job, ix *streetindex.Index) error {
	c := doc.AddPage()
	w, h := c.Size()

	safe := Rect{X: 0, Y: 0, W: w, H: h}.Shrink(paper.PrintSafeMarginPt)

	titleH := paper.TitleMarginRatio * h
	copyrightH := paper.CopyrightMarginRatio * h

	body := Rect{
		X: safe.X,
		Y: safe.Y + titleH,
		W: safe.W,
		H: safe.H - titleH - copyrightH,
	}

	mapArea, indexArea, err := r.placeIndex(body, job, ix)
	if err != nil {
		return err
	}

	r.drawTitle(c, Rect{X: safe.X, Y: safe.Y, W: safe.W, H: titleH}, job.Title)

	g := grid.New(job.Area, job.Scale, job.RTL)
	c.StrokeRect(mapArea, frameLineWidth, 0)
	DrawGrid(c, g, mapArea)

	if indexArea != nil {
		annotated := ix.ApplyGrid(g)
		if err := DrawIndex(c, annotated, *indexArea, r.Metrics); err != nil {
			return fmt.Errorf("draw index: %w", err)
		}
	}

	r.drawCopyright(c, Rect{
		X: safe.X,
		Y: safe.Y + safe.H - copyrightH,
		W: safe.W,
		H: copyrightH,
	}, job.Copyright)

	return c.Close()
}

// placeIndex fits the index beside or below the map, bounded by the
// occupation ratio. It returns the map area and, when there is an
// index, its computed area.
func (r *Renderer) placeIndex(body Rect, job Job, ix *streetindex.Index) (Rect, *fit.Area, error) {
	if job.IndexPos == paper.IndexNone || ix == nil {
		return body, nil, nil
	}

	f := &fit.Fitter{Metrics: r.Metrics}

	var area fit.Area
	var err error
	mapArea := body

	switch job.IndexPos {
	case paper.IndexSide:
		maxW := body.W * paper.MaxIndexOccupationRatio
		align := fit.AlignRight
		if job.RTL {
			align = fit.AlignLeft
		}
		x := body.X + body.W - maxW
		if job.RTL {
			x = body.X
		}
		area, err = f.Place(ix, x, body.Y, maxW, body.H, fit.FreedomWidth, align)
		if err == nil {
			mapArea.W -= area.W
			if job.RTL {
				mapArea.X += area.W
			}
		}
	default: // paper.IndexBottom
		maxH := body.H * paper.MaxIndexOccupationRatio
		area, err = f.Place(ix, body.X, body.Y+body.H-maxH, body.W, maxH,
			fit.FreedomHeight, fit.AlignBottom)
		if err == nil {
			mapArea.H -= area.H
		}
	}

	if err != nil {
		if errors.Is(err, streetindex.ErrIndexEmpty) {
			r.Logger.Debug().Msg("empty index, rendering map only")
			return body, nil, nil
		}
		return body, nil, fmt.Errorf("place index: %w", err)
	}
	return mapArea, &area, nil
}

func (r *Renderer) drawTitle(c Canvas, band Rect, title string) {
	if title == "" {
		return
	}
	c.FillRect(band, 0.9)
	c.StrokeRect(band, frameLineWidth, 0)
	size := 0.5 * band.H
	c.TextCentered(titleFont, size, band.X+band.W/2, band.Y+0.7*band.H, 0, title)
}

func (r *Renderer) drawCopyright(c Canvas, band Rect, notice string) {
	if notice == "" {
		return
	}
	size := 0.5 * band.H
	c.Text(copyrightFont, size, band.X, band.Y+0.7*band.H, 0.3, notice)
}
