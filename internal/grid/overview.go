package grid

import (
	"strconv"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
)

// OverviewGrid is the page outline overlay drawn on the overview map
// of a multi-page render: one box per content page, labeled with the
// page number.
type OverviewGrid struct {
	Area  coords.BoundingBox
	Pages []coords.BoundingBox
	RTL   bool

	// FirstPageNumber is the number printed in the first page box.
	FirstPageNumber int
}

func NewOverview(area coords.BoundingBox, pages []coords.BoundingBox, rtl bool, firstPage int) *OverviewGrid {
	return &OverviewGrid{Area: area, Pages: pages, RTL: rtl, FirstPageNumber: firstPage}
}

// PageLabel returns the label of the i-th page box.
func (o *OverviewGrid) PageLabel(i int) string {
	return strconv.Itoa(o.FirstPageNumber + i)
}

// PageFor returns the 0-based index of the first page box containing
// the point, or -1.
func (o *OverviewGrid) PageFor(p coords.Point) int {
	for i, bb := range o.Pages {
		if bb.Contains(p) {
			return i
		}
	}
	return -1
}
