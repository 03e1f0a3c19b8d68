package render

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/grid"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex/fit"
)

type op struct {
	kind string
	x, y float64
	text string
}

// recorder is a Canvas remembering what was drawn.
type recorder struct {
	w, h float64
	ops  []op
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }

func (r *recorder) Line(x1, y1, x2, y2, width float64, dash []float64, gray float64) {
	r.ops = append(r.ops, op{kind: "line", x: x1, y: y1})
}

func (r *recorder) StrokeRect(rect Rect, width, gray float64) {
	r.ops = append(r.ops, op{kind: "strokerect", x: rect.X, y: rect.Y})
}

func (r *recorder) FillRect(rect Rect, gray float64) {
	r.ops = append(r.ops, op{kind: "fillrect", x: rect.X, y: rect.Y})
}

func (r *recorder) Text(font string, size, x, y, gray float64, s string) {
	r.ops = append(r.ops, op{kind: "text", x: x, y: y, text: s})
}

func (r *recorder) TextCentered(font string, size, cx, y, gray float64, s string) {
	r.ops = append(r.ops, op{kind: "text", x: cx, y: y, text: s})
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.ops {
		if o.kind == "text" {
			out = append(out, o.text)
		}
	}
	return out
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func area2km() coords.BoundingBox {
	const lat = 45.0
	dLat := 2000.0 / coords.EarthRadius * 180 / math.Pi
	dLong := dLat / math.Cos(lat*math.Pi/180)
	return coords.New(lat, 2.0, lat-dLat, 2.0+dLong)
}

func TestDrawGrid(t *testing.T) {
	g := grid.New(area2km(), 10000, false)
	c := &recorder{w: 595, h: 842}

	DrawGrid(c, g, Rect{X: 50, Y: 50, W: 400, H: 400})

	wantLines := len(g.VerticalLines) + len(g.HorizontalLines)
	if got := c.count("line"); got != wantLines {
		t.Fatalf("grid lines drawn = %d, want %d", got, wantLines)
	}

	labels := strings.Join(c.texts(), " ")
	for _, want := range []string{"A", "D", "1", "4"} {
		if !strings.Contains(labels, want) {
			t.Fatalf("labels %q missing %q", labels, want)
		}
	}
}

func twoColumnIndex(n int) *streetindex.Index {
	c := &streetindex.Category{Name: "R", IsStreet: true}
	for i := 0; i < n; i++ {
		c.Items = append(c.Items, &streetindex.Item{
			Label:    "Rosiers (Rue des)",
			Location: "B2",
		})
	}
	return &streetindex.Index{Categories: []*streetindex.Category{c}}
}

func TestDrawIndex(t *testing.T) {
	m := fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}
	c := &recorder{w: 595, h: 842}

	area := fit.Area{
		Style: fit.Style{
			HeaderFont: fit.DefaultHeaderFont,
			LabelFont:  fit.DefaultLabelFont,
			HeaderSize: 12,
			LabelSize:  8,
		},
		X: 50, Y: 50, W: 400, H: 300,
		Columns: 2,
	}

	ix := twoColumnIndex(3)
	if err := DrawIndex(c, ix, area, m); err != nil {
		t.Fatalf("DrawIndex: %v", err)
	}

	// One header band plus label and location per item.
	if got := c.count("fillrect"); got != 1 {
		t.Fatalf("header bands = %d, want 1", got)
	}
	texts := c.texts()
	if texts[0] != "R" {
		t.Fatalf("first text = %q, want the category header", texts[0])
	}
	wantTexts := 1 + 2*3
	if len(texts) != wantTexts {
		t.Fatalf("texts drawn = %d, want %d", len(texts), wantTexts)
	}
}

func TestDrawIndex_OverflowErrors(t *testing.T) {
	m := fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}
	c := &recorder{w: 595, h: 842}

	// 8pt labels at 1.2 line height in 20pt of column height: two
	// lines per column, four lines total, but five are needed.
	area := fit.Area{
		Style: fit.Style{
			HeaderFont: fit.DefaultHeaderFont,
			LabelFont:  fit.DefaultLabelFont,
			HeaderSize: 8,
			LabelSize:  8,
		},
		X: 0, Y: 0, W: 400, H: 20,
		Columns: 2,
	}
	if err := DrawIndex(c, twoColumnIndex(4), area, m); err == nil {
		t.Fatal("want an error when the items overflow the columns")
	}
}

func TestPaginateArea(t *testing.T) {
	area := area2km()
	pages := PaginateArea(area, paper.Size{Name: "A4", WidthMM: 210, HeightMM: 297}, false, 10000)

	if len(pages) < 2 {
		t.Fatalf("pages = %d, want the area split over several pages", len(pages))
	}

	// Every page must stay inside nothing, but their union must cover
	// the area corners.
	tl := area.TopLeft()
	br := area.BottomRight()
	covered := func(p coords.Point) bool {
		for _, bb := range pages {
			if bb.Contains(p) {
				return true
			}
		}
		return false
	}
	for _, p := range []coords.Point{tl, br, coords.NewPoint(tl.Lat, br.Long), coords.NewPoint(br.Lat, tl.Long)} {
		if !covered(p) {
			t.Fatalf("corner %v not covered by any page", p)
		}
	}

	// Neighboring pages share an overlap strip.
	if len(pages) >= 2 {
		first := pages[0]
		second := pages[1]
		if !first.Contains(second.TopLeft()) && !second.Contains(first.BottomRight()) {
			t.Fatal("first two pages do not overlap")
		}
	}
}

func TestPaginateIndex_SplitsAcrossPages(t *testing.T) {
	r := &Renderer{Metrics: fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}}
	style := fit.Style{
		HeaderFont: fit.DefaultHeaderFont,
		LabelFont:  fit.DefaultLabelFont,
		HeaderSize: multiIndexHeaderSize,
		LabelSize:  multiIndexLabelSize,
	}

	ix := twoColumnIndex(500)
	chunks, columns, err := r.paginateIndex(ix, style, Rect{X: 0, Y: 0, W: 300, H: 200})
	if err != nil {
		t.Fatalf("paginateIndex: %v", err)
	}
	if columns < 1 {
		t.Fatalf("columns = %d, want at least 1", columns)
	}
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want the items spread over several pages", len(chunks))
	}

	total := 0
	for _, chunk := range chunks {
		total += chunk.Len()
	}
	if total != 500 {
		t.Fatalf("items over all chunks = %d, want 500", total)
	}
}

func TestRenderSingle_IndexDoesNotFit(t *testing.T) {
	doc, err := CreateDocument(filepath.Join(t.TempDir(), "out.pdf"),
		paper.Size{Name: "A6", WidthMM: 105, HeightMM: 148}, false)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	defer doc.Close()

	r := &Renderer{Metrics: fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}}
	job := Job{
		Title:    "Chevreuse",
		Area:     area2km(),
		Paper:    paper.Size{Name: "A6", WidthMM: 105, HeightMM: 148},
		IndexPos: paper.IndexSide,
		Scale:    10000,
	}

	err = r.RenderSingle(doc, job, twoColumnIndex(5000))
	if !errors.Is(err, streetindex.ErrIndexDoesNotFit) {
		t.Fatalf("RenderSingle error = %v, want ErrIndexDoesNotFit", err)
	}
}

func TestPlaceIndex_SkipsEmptyIndex(t *testing.T) {
	r := &Renderer{Metrics: fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}}
	body := Rect{X: 10, Y: 10, W: 400, H: 600}
	job := Job{IndexPos: paper.IndexBottom}

	mapArea, indexArea, err := r.placeIndex(body, job, &streetindex.Index{})
	if err != nil {
		t.Fatalf("placeIndex: %v", err)
	}
	if indexArea != nil {
		t.Fatalf("index area = %+v, want none for an empty index", indexArea)
	}
	if mapArea != body {
		t.Fatalf("map area = %+v, want the full body %+v", mapArea, body)
	}
}

func TestDrawIndex_PaginatedLocations(t *testing.T) {
	m := fontmetrics.Fixed{CharWidth: 0.5, LineHeight: 1.2}
	c := &recorder{w: 595, h: 842}

	area := fit.Area{
		Style: fit.Style{
			HeaderFont: fit.DefaultHeaderFont,
			LabelFont:  fit.DefaultLabelFont,
			HeaderSize: 12,
			LabelSize:  8,
		},
		X: 50, Y: 50, W: 400, H: 300,
		Columns: 1,
	}
	ix := &streetindex.Index{Categories: []*streetindex.Category{{
		Name:     "M",
		IsStreet: true,
		Items: []*streetindex.Item{
			{Label: "Moulin (Rue du)", Location: "C4", Page: 3},
		},
	}}}

	if err := DrawIndex(c, ix, area, m); err != nil {
		t.Fatalf("DrawIndex: %v", err)
	}
	texts := c.texts()
	if texts[len(texts)-1] != "3, C4" {
		t.Fatalf("location text = %q, want %q", texts[len(texts)-1], "3, C4")
	}
}
