// Package fontmetrics measures text in the 14 standard PDF fonts
// without a live PDF document, so index layouts can be computed before
// any page exists.
package fontmetrics

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/font/type1"
)

// Oracle measures text for layout computations. All dimensions are in
// points.
type Oracle interface {
	// TextWidth is the advance width of s set at the given size.
	TextWidth(font string, size float64, s string) (float64, error)
	// Extents returns the ascent, line height and em width of the
	// font at the given size.
	Extents(font string, size float64) (ascent, height, em float64, err error)
}

// Line height as a multiple of ascent minus descent, matching the
// default leading of the renderer.
const leading = 1.2

// stringCacheSize bounds the memoized string width entries. Index
// fitting measures the same street names once per attempted font
// size, so the hit rate is high.
const stringCacheSize = 8192

// StandardOracle measures text against the metrics of the built-in
// fonts. Safe for concurrent use.
type StandardOracle struct {
	mu    sync.Mutex
	fonts map[string]*type1.Instance

	// widths holds advance widths at 1pt, keyed by font and string.
	// Advances are linear in the size, so one entry serves every
	// attempted font size.
	widths *lru.Cache[string, float64]
}

// NewStandardOracle returns an oracle with an empty cache.
func NewStandardOracle() (*StandardOracle, error) {
	widths, err := lru.New[string, float64](stringCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create width cache: %w", err)
	}
	return &StandardOracle{
		fonts:  map[string]*type1.Instance{},
		widths: widths,
	}, nil
}

func (o *StandardOracle) instance(font string) (*type1.Instance, error) {
	if inst, ok := o.fonts[font]; ok {
		return inst, nil
	}
	found := false
	for _, f := range standard.All {
		if string(f) == font {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("font %q is not one of the standard 14", font)
	}
	inst, err := standard.Font(font).New()
	if err != nil {
		return nil, fmt.Errorf("load font %q: %w", font, err)
	}
	o.fonts[font] = inst
	return inst, nil
}

// TextWidth implements Oracle.
func (o *StandardOracle) TextWidth(font string, size float64, s string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := font + "\x00" + s
	if w, ok := o.widths.Get(key); ok {
		return w * size, nil
	}

	inst, err := o.instance(font)
	if err != nil {
		return 0, err
	}
	seq := inst.Layout(nil, 1, s)
	w := 0.0
	for _, g := range seq.Seq {
		w += g.Advance
	}
	o.widths.Add(key, w)
	return w * size, nil
}

// Extents implements Oracle. The em width is the advance of "m", the
// usual padding unit of index layouts.
func (o *StandardOracle) Extents(font string, size float64) (float64, float64, float64, error) {
	em, err := o.TextWidth(font, size, "m")
	if err != nil {
		return 0, 0, 0, err
	}

	o.mu.Lock()
	inst, err := o.instance(font)
	o.mu.Unlock()
	if err != nil {
		return 0, 0, 0, err
	}
	ascent := inst.Geometry.Ascent * size
	height := (inst.Geometry.Ascent - inst.Geometry.Descent) * leading * size
	return ascent, height, em, nil
}
