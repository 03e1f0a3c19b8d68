package fit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

// fixedMetrics ignores the font size, so every size attempt measures
// the same and the column arithmetic can be checked exactly.
type fixedMetrics struct{}

func (fixedMetrics) TextWidth(font string, size float64, s string) (float64, error) {
	if font == DefaultHeaderFont {
		return 40, nil
	}
	return 60, nil
}

func (fixedMetrics) Extents(font string, size float64) (float64, float64, float64, error) {
	if font == DefaultHeaderFont {
		return 4, 5, 2, nil
	}
	return 8, 10, 5, nil
}

// scaledMetrics grows linearly with the font size, giving the size
// search something to bisect over.
type scaledMetrics struct{}

func (scaledMetrics) TextWidth(font string, size float64, s string) (float64, error) {
	return 0.5 * size * float64(len(s)), nil
}

func (scaledMetrics) Extents(font string, size float64) (float64, float64, float64, error) {
	return 0.8 * size, 1.2 * size, 0.5 * size, nil
}

// indexWithItems builds categories of the given sizes.
func indexWithItems(counts ...int) *streetindex.Index {
	ix := &streetindex.Index{}
	for ci, n := range counts {
		c := &streetindex.Category{Name: fmt.Sprintf("C%d", ci)}
		for i := 0; i < n; i++ {
			c.Items = append(c.Items, &streetindex.Item{
				Label:    fmt.Sprintf("Street %d-%d", ci, i),
				Location: "A1",
			})
		}
		ix.Categories = append(ix.Categories, c)
	}
	return ix
}

// With fixedMetrics the tall column measures 100pt wide (60pt labels
// plus 8em padding of 5pt) and, for 49 labels in 2 categories,
// 10*49+5*2 = 500pt high, with 20pt of per-column slack. In a 350pt
// wide area that splits into floor(350/100) = 3 columns needing
// ceil((500+3*20)/3) = 187pt of height.
func TestPlace_HeightFreedomColumnSplit(t *testing.T) {
	f := &Fitter{Metrics: fixedMetrics{}}
	ix := indexWithItems(24, 25)

	area, err := f.Place(ix, 10, 20, 350, 200, FreedomHeight, AlignBottom)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if area.Columns != 3 {
		t.Fatalf("columns = %d, want 3", area.Columns)
	}
	if area.W != 350 || area.H != 187 {
		t.Fatalf("area = %fx%f, want 350x187", area.W, area.H)
	}
	if area.X != 10 || area.Y != 20+(200-187) {
		t.Fatalf("origin = (%f, %f), want bottom aligned at (10, 33)", area.X, area.Y)
	}
	if area.Style.LabelSize != MaxLabelFontSize {
		t.Fatalf("label size = %f, want the maximum %d with size-blind metrics",
			area.Style.LabelSize, MaxLabelFontSize)
	}
	if area.Style.HeaderSize != area.Style.LabelSize+headerSizeDelta {
		t.Fatalf("header size = %f, want label size + %d", area.Style.HeaderSize, headerSizeDelta)
	}
}

func TestPlace_WidthFreedom(t *testing.T) {
	f := &Fitter{Metrics: fixedMetrics{}}
	ix := indexWithItems(24, 25)

	// 500pt of column split over 200pt of height is ceil(500/200) = 3
	// columns of 100pt each.
	area, err := f.Place(ix, 0, 0, 350, 200, FreedomWidth, AlignRight)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if area.Columns != 3 {
		t.Fatalf("columns = %d, want 3", area.Columns)
	}
	if area.W != 300 || area.H != 200 {
		t.Fatalf("area = %fx%f, want 300x200", area.W, area.H)
	}
	if area.X != 350-300 {
		t.Fatalf("x = %f, want right aligned at 50", area.X)
	}
}

func TestPlace_BisectsFontSize(t *testing.T) {
	f := &Fitter{Metrics: scaledMetrics{}}
	ix := indexWithItems(10)

	big, err := f.Place(ix, 0, 0, 400, 300, FreedomHeight, AlignTop)
	if err != nil {
		t.Fatalf("Place in large area: %v", err)
	}
	small, err := f.Place(ix, 0, 0, 150, 80, FreedomHeight, AlignTop)
	if err != nil {
		t.Fatalf("Place in small area: %v", err)
	}
	if small.Style.LabelSize >= big.Style.LabelSize {
		t.Fatalf("label sizes = %f (small area) vs %f (large area), want the small area to shrink the font",
			small.Style.LabelSize, big.Style.LabelSize)
	}
}

func TestPlace_EmptyIndex(t *testing.T) {
	f := &Fitter{Metrics: fixedMetrics{}}
	_, err := f.Place(&streetindex.Index{}, 0, 0, 350, 200, FreedomHeight, AlignTop)
	if !errors.Is(err, streetindex.ErrIndexEmpty) {
		t.Fatalf("err = %v, want ErrIndexEmpty", err)
	}
}

func TestPlace_DoesNotFit(t *testing.T) {
	f := &Fitter{Metrics: fixedMetrics{}}
	ix := indexWithItems(24, 25)

	// Narrower than a single column at any size.
	if _, err := f.Place(ix, 0, 0, 50, 1000, FreedomHeight, AlignTop); !errors.Is(err, streetindex.ErrIndexDoesNotFit) {
		t.Fatalf("narrow area err = %v, want ErrIndexDoesNotFit", err)
	}
	// Wide enough for one column but far too short.
	if _, err := f.Place(ix, 0, 0, 120, 30, FreedomHeight, AlignTop); !errors.Is(err, streetindex.ErrIndexDoesNotFit) {
		t.Fatalf("short area err = %v, want ErrIndexDoesNotFit", err)
	}
}

func TestPlace_InvalidCombinationsPanic(t *testing.T) {
	f := &Fitter{Metrics: fixedMetrics{}}
	ix := indexWithItems(1)

	mustPanic := func(freedom Freedom, align Alignment) {
		defer func() {
			if recover() == nil {
				t.Fatalf("Place(%q, %q) did not panic", freedom, align)
			}
		}()
		f.Place(ix, 0, 0, 100, 100, freedom, align)
	}
	mustPanic(FreedomHeight, AlignLeft)
	mustPanic(FreedomWidth, AlignTop)
	mustPanic(Freedom("diagonal"), AlignTop)
}
