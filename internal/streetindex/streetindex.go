// Package streetindex builds the alphabetical street and amenity index
// of a rendered map: locale-normalized labels grouped into categories,
// each item annotated with the grid square(s) it spans.
package streetindex

import (
	"errors"
	"sort"
	"strings"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/grid"
)

var (
	// ErrIndexEmpty is returned when there is nothing to render.
	ErrIndexEmpty = errors.New("street index is empty")

	// ErrIndexDoesNotFit is returned when the index cannot be laid out
	// in the given area at any attempted font size. Callers are
	// expected to retry with more room, it is not a programming error.
	ErrIndexDoesNotFit = errors.New("street index does not fit in area")
)

// UnknownLocation is printed for items whose grid square could not be
// determined.
const UnknownLocation = "???"

// Item is one index entry, a street or point of interest with the two
// most distant endpoints of its geometry.
type Item struct {
	Label     string
	Endpoint1 *coords.Point
	Endpoint2 *coords.Point

	// Location is the grid square span, e.g. "A1" or "A1-B2", filled
	// in by ApplyGrid. Empty until then.
	Location string

	// Page is the map page the item belongs to, zero for single-page
	// renderings.
	Page int
}

// UpdateLocation computes the grid square span of the item. Items
// spanning several squares get a "min-max" range, reversed on RTL
// grids.
func (it *Item) UpdateLocation(g *grid.Grid) {
	var l1, l2 string
	if it.Endpoint1 != nil {
		l1 = g.LocationString(*it.Endpoint1)
	}
	if it.Endpoint2 != nil {
		l2 = g.LocationString(*it.Endpoint2)
	}
	if l1 == "" {
		l1 = l2
	}
	if l2 == "" {
		l2 = l1
	}

	switch {
	case l1 == "":
		it.Location = UnknownLocation
	case l1 == l2:
		it.Location = l1
	case g.RTL:
		it.Location = maxStr(l1, l2) + "-" + minStr(l1, l2)
	default:
		it.Location = minStr(l1, l2) + "-" + maxStr(l1, l2)
	}
}

func minStr(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func maxStr(a, b string) string {
	if a < b {
		return b
	}
	return a
}

// Category is a set of items sharing a first letter (streets) or an
// amenity kind.
type Category struct {
	Name     string
	Items    []*Item
	IsStreet bool
}

// Labels returns the labels of all items, the raw material of the
// column width computation.
func (c *Category) Labels() []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Label
	}
	return out
}

// Index is the full street index of one map (or one page of a
// multi-page map).
type Index struct {
	Categories []*Category

	// RTL mirrors the location spans and the index column order.
	RTL bool

	// compare is the locale's collation, set by Builder.Build and kept
	// through Merge so merged categories sort the way the per-page ones
	// did. Nil falls back to byte order.
	compare func(a, b string) int
}

// Len counts the items over all categories.
func (ix *Index) Len() int {
	n := 0
	for _, c := range ix.Categories {
		n += len(c.Items)
	}
	return n
}

// ApplyGrid annotates every item with its grid square span and merges
// identical non-street entries. It consumes the index and returns the
// annotated one; the receiver must not be used afterwards.
func (ix *Index) ApplyGrid(g *grid.Grid) *Index {
	for _, c := range ix.Categories {
		for _, it := range c.Items {
			it.UpdateLocation(g)
		}
	}
	ix.groupIdenticalLocations()
	return ix
}

// groupIdenticalLocations collapses non-street items bearing the same
// label and the same square span into a single entry, so a church
// mapped both as point and polygon shows up once.
func (ix *Index) groupIdenticalLocations() {
	for _, c := range ix.Categories {
		if c.IsStreet {
			continue
		}
		sort.SliceStable(c.Items, func(i, j int) bool {
			a, b := c.Items[i], c.Items[j]
			if a.Label != b.Label {
				return a.Label < b.Label
			}
			return a.Location < b.Location
		})
		var out []*Item
		for _, it := range c.Items {
			if len(out) > 0 {
				last := out[len(out)-1]
				if last.Label == it.Label && last.Location == it.Location {
					continue
				}
			}
			out = append(out, it)
		}
		c.Items = out
	}
}

// Merge combines per-page indexes into one. Street categories are
// re-sorted under the locale's collation, so a street crossing several
// pages lists its pages on neighboring lines, and non-street entries
// appearing on several pages with the same label and square span
// collapse to one. Items keep their page numbers.
func Merge(indexes ...*Index) *Index {
	merged := &Index{}
	byName := map[string]*Category{}
	for _, ix := range indexes {
		if ix == nil {
			continue
		}
		merged.RTL = merged.RTL || ix.RTL
		if merged.compare == nil {
			merged.compare = ix.compare
		}
		for _, c := range ix.Categories {
			if dst, ok := byName[c.Name]; ok {
				dst.Items = append(dst.Items, c.Items...)
				continue
			}
			nc := &Category{Name: c.Name, Items: c.Items, IsStreet: c.IsStreet}
			byName[c.Name] = nc
			merged.Categories = append(merged.Categories, nc)
		}
	}

	cmp := merged.compare
	if cmp == nil {
		cmp = strings.Compare
	}
	sort.SliceStable(merged.Categories, func(i, j int) bool {
		a, b := merged.Categories[i], merged.Categories[j]
		if a.IsStreet != b.IsStreet {
			return a.IsStreet
		}
		if !a.IsStreet {
			return false
		}
		return cmp(a.Name, b.Name) < 0
	})
	for _, c := range merged.Categories {
		if !c.IsStreet {
			continue
		}
		items := c.Items
		sort.SliceStable(items, func(i, j int) bool {
			return cmp(strings.ToLower(items[i].Label),
				strings.ToLower(items[j].Label)) < 0
		})
	}
	merged.groupIdenticalLocations()
	return merged
}
