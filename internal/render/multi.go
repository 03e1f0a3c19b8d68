package render

import (
	"fmt"
	"math"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/grid"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex/fit"
)

// OverlapMarginMM is the strip shared by neighboring pages of a
// multi-page map, so features on a page break stay readable.
const OverlapMarginMM = 20

// Index font sizes of the multi-page booklet. The per-page maps carry
// no inline index, so no size search is needed.
const (
	multiIndexLabelSize  = 8
	multiIndexHeaderSize = multiIndexLabelSize + 4
)

// PaginateArea splits the area into per-page bounding boxes for the
// given paper at the given scale, row by row from the top. Neighboring
// pages overlap by OverlapMarginMM of paper.
func PaginateArea(area coords.BoundingBox, size paper.Size, landscape bool, scale float64) []coords.BoundingBox {
	wmm, hmm := float64(size.WidthMM), float64(size.HeightMM)
	if landscape {
		wmm, hmm = hmm, wmm
	}
	safeMM := paper.PtToMM(paper.PrintSafeMarginPt)
	usableWmm := wmm - 2*safeMM
	usableHmm := hmm - 2*safeMM

	// Terrain covered by one page and by the overlap strip, in meters.
	pageWm := usableWmm * scale / 1000
	pageHm := usableHmm * scale / 1000
	overlapM := OverlapMarginMM * scale / 1000
	stepWm := pageWm - overlapM
	stepHm := pageHm - overlapM

	areaWm, areaHm := area.SphericSizes()
	if areaWm <= 0 || areaHm <= 0 {
		return []coords.BoundingBox{area}
	}

	cols := int(math.Max(1, math.Ceil((areaWm-overlapM)/stepWm)))
	rows := int(math.Max(1, math.Ceil((areaHm-overlapM)/stepHm)))

	tl := area.TopLeft()
	br := area.BottomRight()
	longPerM := (br.Long - tl.Long) / areaWm
	latPerM := (tl.Lat - br.Lat) / areaHm

	var pages []coords.BoundingBox
	for row := 0; row < rows; row++ {
		topM := float64(row) * stepHm
		for col := 0; col < cols; col++ {
			leftM := float64(col) * stepWm
			pages = append(pages, coords.New(
				tl.Lat-topM*latPerM,
				tl.Long+leftM*longPerM,
				tl.Lat-(topM+pageHm)*latPerM,
				tl.Long+(leftM+pageWm)*longPerM,
			))
		}
	}
	return pages
}

// RenderMulti draws a multi-page booklet: an overview page showing the
// page layout, one map page per area chunk and the merged index on
// trailing pages. build supplies the index of one page area; the page
// numbers it sees match the printed ones.
func (r *Renderer) RenderMulti(doc *Document, job Job,
	build func(page int, bb coords.BoundingBox) (*streetindex.Index, error)) error {

	pages := PaginateArea(job.Area, job.Paper, job.Landscape, job.Scale)

	// Page 1 is the overview, content starts at 2.
	const firstContentPage = 2
	ov := grid.NewOverview(job.Area, pages, job.RTL, firstContentPage)

	if err := r.renderOverview(doc, job, ov); err != nil {
		return fmt.Errorf("overview page: %w", err)
	}

	var annotated []*streetindex.Index
	for i, bb := range pages {
		pageNo := firstContentPage + i
		g := grid.New(bb, job.Scale, job.RTL)

		ix, err := build(pageNo, bb)
		if err != nil {
			return fmt.Errorf("index of page %d: %w", pageNo, err)
		}
		annotated = append(annotated, ix.ApplyGrid(g))

		if err := r.renderMapPage(doc, job, g, pageNo); err != nil {
			return fmt.Errorf("map page %d: %w", pageNo, err)
		}
	}

	merged := streetindex.Merge(annotated...)
	if merged.Len() == 0 {
		r.Logger.Debug().Msg("empty merged index, skipping index pages")
		return nil
	}
	return r.renderIndexPages(doc, job, merged)
}

func (r *Renderer) renderOverview(doc *Document, job Job, ov *grid.OverviewGrid) error {
	c := doc.AddPage()
	w, h := c.Size()
	safe := Rect{W: w, H: h}.Shrink(paper.PrintSafeMarginPt)

	titleH := paper.TitleMarginRatio * h
	r.drawTitle(c, Rect{X: safe.X, Y: safe.Y, W: safe.W, H: titleH}, job.Title)

	area := Rect{X: safe.X, Y: safe.Y + titleH, W: safe.W, H: safe.H - titleH}
	c.StrokeRect(area, frameLineWidth, 0)

	tl := ov.Area.TopLeft()
	br := ov.Area.BottomRight()
	spanLong := br.Long - tl.Long
	spanLat := tl.Lat - br.Lat
	if spanLong <= 0 || spanLat <= 0 {
		return c.Close()
	}

	for i, bb := range ov.Pages {
		ptl := bb.TopLeft()
		pbr := bb.BottomRight()
		pr := Rect{
			X: area.X + clamp01((ptl.Long-tl.Long)/spanLong)*area.W,
			Y: area.Y + clamp01((tl.Lat-ptl.Lat)/spanLat)*area.H,
		}
		pr.W = area.X + clamp01((pbr.Long-tl.Long)/spanLong)*area.W - pr.X
		pr.H = area.Y + clamp01((tl.Lat-pbr.Lat)/spanLat)*area.H - pr.Y

		c.StrokeRect(pr, 0.75, 0.3)
		c.TextCentered(labelFont, math.Min(0.3*pr.H, 18),
			pr.X+pr.W/2, pr.Y+0.55*pr.H, 0.3, ov.PageLabel(i))
	}
	return c.Close()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (r *Renderer) renderMapPage(doc *Document, job Job, g *grid.Grid, pageNo int) error {
	c := doc.AddPage()
	w, h := c.Size()
	safe := Rect{W: w, H: h}.Shrink(paper.PrintSafeMarginPt)

	copyrightH := paper.CopyrightMarginRatio * h
	mapArea := Rect{X: safe.X, Y: safe.Y, W: safe.W, H: safe.H - copyrightH}

	c.StrokeRect(mapArea, frameLineWidth, 0)
	DrawGrid(c, g, mapArea)

	r.drawCopyright(c, Rect{
		X: safe.X,
		Y: safe.Y + safe.H - copyrightH,
		W: safe.W,
		H: copyrightH,
	}, job.Copyright)
	c.TextCentered(copyrightFont, 0.5*copyrightH, safe.X+safe.W/2,
		safe.Y+safe.H-0.3*copyrightH, 0.3, fmt.Sprintf("- %d -", pageNo))

	return c.Close()
}

// renderIndexPages paints the merged index over as many trailing pages
// as needed, at a fixed font size.
func (r *Renderer) renderIndexPages(doc *Document, job Job, ix *streetindex.Index) error {
	style := fit.Style{
		HeaderFont: fit.DefaultHeaderFont,
		LabelFont:  fit.DefaultLabelFont,
		HeaderSize: multiIndexHeaderSize,
		LabelSize:  multiIndexLabelSize,
	}

	w, h := doc.PageSize()
	safe := Rect{W: w, H: h}.Shrink(paper.PrintSafeMarginPt)

	chunks, columns, err := r.paginateIndex(ix, style, safe)
	if err != nil {
		return fmt.Errorf("paginate index: %w", err)
	}

	for _, chunk := range chunks {
		c := doc.AddPage()
		area := fit.Area{
			Style:   style,
			X:       safe.X,
			Y:       safe.Y,
			W:       safe.W,
			H:       safe.H,
			Columns: columns,
		}
		if err := DrawIndex(c, chunk, area, r.Metrics); err != nil {
			return fmt.Errorf("draw index page: %w", err)
		}
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// paginateIndex splits the index into page-sized chunks, mirroring the
// column walk of DrawIndex.
func (r *Renderer) paginateIndex(ix *streetindex.Index, style fit.Style, page Rect) ([]*streetindex.Index, int, error) {
	_, labelHeight, em, err := r.Metrics.Extents(style.LabelFont, style.LabelSize)
	if err != nil {
		return nil, 0, err
	}
	_, headerHeight, _, err := r.Metrics.Extents(style.HeaderFont, style.HeaderSize)
	if err != nil {
		return nil, 0, err
	}

	maxLabelW := 0.0
	for _, c := range ix.Categories {
		for _, it := range c.Items {
			w, err := r.Metrics.TextWidth(style.LabelFont, style.LabelSize, it.Label)
			if err != nil {
				return nil, 0, err
			}
			maxLabelW = math.Max(maxLabelW, w)
		}
	}
	colWidth := maxLabelW + 8*em
	columns := int(math.Max(1, math.Floor(page.W/colWidth)))

	var chunks []*streetindex.Index
	var cur *streetindex.Index
	col, y := 0, page.Y

	newChunk := func() {
		cur = &streetindex.Index{RTL: ix.RTL}
		chunks = append(chunks, cur)
		col, y = 0, page.Y
	}
	newChunk()

	needColumn := func(need float64) {
		if y+need <= page.Y+page.H {
			return
		}
		col++
		y = page.Y
		if col >= columns {
			newChunk()
		}
	}

	appendCategory := func(name string, isStreet bool) *streetindex.Category {
		c := &streetindex.Category{Name: name, IsStreet: isStreet}
		cur.Categories = append(cur.Categories, c)
		return c
	}

	for _, cat := range ix.Categories {
		if len(cat.Items) == 0 {
			continue
		}
		needColumn(headerHeight + labelHeight)
		curCat := appendCategory(cat.Name, cat.IsStreet)
		y += headerHeight
		for _, it := range cat.Items {
			before := cur
			needColumn(labelHeight)
			if cur != before {
				// The category continues on a fresh page and gets its
				// header again there.
				curCat = appendCategory(cat.Name, cat.IsStreet)
				y += headerHeight
			}
			curCat.Items = append(curCat.Items, it)
			y += labelHeight
		}
	}
	return chunks, columns, nil
}
