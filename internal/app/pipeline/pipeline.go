// Package pipeline assembles one rendering job end to end: geometry
// lookup, index building, grid layout and PDF output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/i18n"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/metrics"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
	"github.com/maposmatic/ocitysmap-go/internal/render"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

// DefaultCopyright is printed at the bottom of every map page.
const DefaultCopyright = "Map data (c) OpenStreetMap contributors, ODbL"

// Pipeline renders accepted jobs into PDF files under OutputDir.
type Pipeline struct {
	Source    streetindex.GeometrySource
	Fonts     fontmetrics.Oracle
	OutputDir string
	Copyright string
	Logger    zerolog.Logger
	Metrics   *metrics.Provider
}

// Render runs one job and returns the path of the finished PDF. It is
// the worker's jobs.RenderFunc.
func (p *Pipeline) Render(ctx context.Context, job jobs.Job) (string, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	outPath := filepath.Join(p.OutputDir, job.ID+".pdf")
	if err := p.RenderTo(ctx, job.Request, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// RenderTo renders one request into the named PDF file.
func (p *Pipeline) RenderTo(ctx context.Context, req jobs.Request, outPath string) error {
	area, err := coords.ParseWKT(req.AreaWKT)
	if err != nil {
		return fmt.Errorf("area: %w", err)
	}
	loc := i18n.Get(req.Locale)

	size, err := paper.Lookup(req.Paper)
	if err != nil {
		return err
	}
	landscape := req.Landscape
	if size.Name == paper.BestFit {
		size, landscape = bestFitSize(area, paper.IndexPosition(req.IndexPos))
	}

	scale := req.Scale
	if !req.Multipage {
		scale = singlePageScale(area, size, landscape)
	}

	doc, err := render.CreateDocument(outPath, size, landscape)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	copyright := p.Copyright
	if copyright == "" {
		copyright = DefaultCopyright
	}
	rjob := render.Job{
		Title:     req.Title,
		Copyright: copyright,
		Area:      area,
		Paper:     size,
		Landscape: landscape,
		IndexPos:  paper.IndexPosition(req.IndexPos),
		Scale:     scale,
		RTL:       loc.IsRTL(),
	}
	renderer := &render.Renderer{Metrics: p.Fonts, Logger: p.Logger}

	var index *streetindex.Index
	if req.Multipage {
		var annotated []*streetindex.Index
		build := func(page int, bb coords.BoundingBox) (*streetindex.Index, error) {
			b := &streetindex.Builder{Source: p.Source, Locale: loc, Logger: p.Logger, Page: page}
			ix, err := b.Build(ctx, bb)
			if err == nil {
				annotated = append(annotated, ix)
			}
			return ix, err
		}
		err = renderer.RenderMulti(doc, rjob, build)
		index = streetindex.Merge(annotated...)
	} else {
		b := &streetindex.Builder{Source: p.Source, Locale: loc, Logger: p.Logger}
		index, err = b.Build(ctx, area)
		if err == nil {
			err = renderer.RenderSingle(doc, rjob, index)
		}
	}
	if err != nil {
		_ = doc.Close()
		_ = os.Remove(outPath)
		if errors.Is(err, streetindex.ErrIndexDoesNotFit) && p.Metrics != nil {
			p.Metrics.IndexFitFailed.Inc()
		}
		return err
	}
	if err := doc.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}

	if p.Metrics != nil && index != nil {
		p.Metrics.IndexEntryCount.Observe(float64(index.Len()))
	}

	if index != nil && index.Len() > 0 {
		if err := p.writeCSV(outPath, req.Title, index); err != nil {
			p.Logger.Warn().Err(err).Msg("csv sidecar")
		}
	}
	return nil
}

// writeCSV drops a spreadsheet rendition of the index next to the PDF.
func (p *Pipeline) writeCSV(pdfPath, title string, ix *streetindex.Index) error {
	csvPath := strings.TrimSuffix(pdfPath, ".pdf") + ".csv"
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := ix.WriteCSV(f, title); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// bestFitSize builds a synthetic paper sized for the area at the
// default resolution, rounded up to whole millimeters.
func bestFitSize(area coords.BoundingBox, pos paper.IndexPosition) (paper.Size, bool) {
	geoW, geoH := area.SphericSizes()
	wMM := geoW / 1000 * paper.DefaultKmInMM
	hMM := geoH / 1000 * paper.DefaultKmInMM
	switch pos {
	case paper.IndexSide:
		wMM /= 1 - paper.MaxIndexOccupationRatio
	case paper.IndexBottom:
		hMM /= 1 - paper.MaxIndexOccupationRatio
	}
	wMM += 2 * paper.PtToMM(paper.PrintSafeMarginPt)
	hMM += 2 * paper.PtToMM(paper.PrintSafeMarginPt)
	hMM /= 1 - paper.TitleMarginRatio - paper.CopyrightMarginRatio

	size := paper.Size{
		Name:     paper.BestFit,
		WidthMM:  int(math.Ceil(math.Min(wMM, hMM))),
		HeightMM: int(math.Ceil(math.Max(wMM, hMM))),
	}
	return size, wMM > hMM
}

// singlePageScale derives the scale denominator that makes the area
// fill the printable body of the page.
func singlePageScale(area coords.BoundingBox, size paper.Size, landscape bool) float64 {
	wMM, hMM := float64(size.WidthMM), float64(size.HeightMM)
	if landscape {
		wMM, hMM = hMM, wMM
	}
	margin := 2 * paper.PtToMM(paper.PrintSafeMarginPt)
	usableW := wMM - margin
	usableH := hMM*(1-paper.TitleMarginRatio-paper.CopyrightMarginRatio) - margin
	if usableW <= 0 || usableH <= 0 {
		return 0
	}

	geoW, geoH := area.SphericSizes()
	return math.Max(geoW/(usableW/1000), geoH/(usableH/1000))
}
