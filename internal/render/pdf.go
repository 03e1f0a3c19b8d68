package render

import (
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/font/type1"
	"seehuhn.de/go/pdf/graphics/color"

	"github.com/maposmatic/ocitysmap-go/internal/paper"
)

// Document is a PDF under construction. Pages must be finished with
// PDFCanvas.Close before the next one is added.
type Document struct {
	doc   *document.MultiPage
	fonts map[string]*type1.Instance

	widthPt  float64
	heightPt float64
}

// CreateDocument opens a PDF file sized to the given paper, in
// points.
func CreateDocument(path string, size paper.Size, landscape bool) (*Document, error) {
	wmm, hmm := float64(size.WidthMM), float64(size.HeightMM)
	if landscape {
		wmm, hmm = hmm, wmm
	}
	w, h := paper.MMToPt(wmm), paper.MMToPt(hmm)

	doc, err := document.CreateMultiPage(path, &pdf.Rectangle{URx: w, URy: h}, pdf.V1_7, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Document{
		doc:      doc,
		fonts:    map[string]*type1.Instance{},
		widthPt:  w,
		heightPt: h,
	}, nil
}

// Close finishes the PDF.
func (d *Document) Close() error {
	return d.doc.Close()
}

// PageSize returns the page dimensions in points.
func (d *Document) PageSize() (w, h float64) {
	return d.widthPt, d.heightPt
}

func (d *Document) font(name string) (*type1.Instance, error) {
	if inst, ok := d.fonts[name]; ok {
		return inst, nil
	}
	inst, err := standard.Font(name).New()
	if err != nil {
		return nil, fmt.Errorf("load font %q: %w", name, err)
	}
	d.fonts[name] = inst
	return inst, nil
}

// AddPage starts a new page.
func (d *Document) AddPage() *PDFCanvas {
	return &PDFCanvas{doc: d, page: d.doc.AddPage()}
}

// PDFCanvas draws on one PDF page, converting from the top-left
// layout origin to the bottom-left PDF one.
type PDFCanvas struct {
	doc  *Document
	page *document.Page

	// err remembers the first font failure; drawing after it is a
	// no-op and Close reports it.
	err error
}

// Close finishes the page.
func (c *PDFCanvas) Close() error {
	if c.err != nil {
		return c.err
	}
	return c.page.Close()
}

func (c *PDFCanvas) flip(y float64) float64 {
	return c.doc.heightPt - y
}

func (c *PDFCanvas) Size() (float64, float64) {
	return c.doc.widthPt, c.doc.heightPt
}

func (c *PDFCanvas) Line(x1, y1, x2, y2, width float64, dash []float64, gray float64) {
	if c.err != nil {
		return
	}
	c.page.PushGraphicsState()
	c.page.SetLineWidth(width)
	c.page.SetStrokeColor(color.DeviceGray(gray))
	if dash != nil {
		c.page.SetLineDash(dash, 0)
	}
	c.page.MoveTo(x1, c.flip(y1))
	c.page.LineTo(x2, c.flip(y2))
	c.page.Stroke()
	c.page.PopGraphicsState()
}

func (c *PDFCanvas) StrokeRect(r Rect, width, gray float64) {
	if c.err != nil {
		return
	}
	c.page.PushGraphicsState()
	c.page.SetLineWidth(width)
	c.page.SetStrokeColor(color.DeviceGray(gray))
	c.page.Rectangle(r.X, c.flip(r.Y+r.H), r.W, r.H)
	c.page.Stroke()
	c.page.PopGraphicsState()
}

func (c *PDFCanvas) FillRect(r Rect, gray float64) {
	if c.err != nil {
		return
	}
	c.page.PushGraphicsState()
	c.page.SetFillColor(color.DeviceGray(gray))
	c.page.Rectangle(r.X, c.flip(r.Y+r.H), r.W, r.H)
	c.page.Fill()
	c.page.PopGraphicsState()
}

func (c *PDFCanvas) Text(font string, size, x, y, gray float64, s string) {
	c.text(font, size, x, y, gray, s, false)
}

func (c *PDFCanvas) TextCentered(font string, size, cx, y, gray float64, s string) {
	c.text(font, size, cx, y, gray, s, true)
}

func (c *PDFCanvas) text(font string, size, x, y, gray float64, s string, centered bool) {
	if c.err != nil {
		return
	}
	inst, err := c.doc.font(font)
	if err != nil {
		c.err = err
		return
	}
	c.page.PushGraphicsState()
	c.page.SetFillColor(color.DeviceGray(gray))
	c.page.TextBegin()
	c.page.TextSetFont(inst, size)
	c.page.TextFirstLine(x, c.flip(y))
	if centered {
		c.page.TextShowAligned(s, 0, 0.5)
	} else {
		c.page.TextShow(s)
	}
	c.page.TextEnd()
	c.page.PopGraphicsState()
}
