package streetindex

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/i18n"
)

// NamedWay is a named feature reduced to the two most distant points
// of its geometry.
type NamedWay struct {
	Name      string
	Endpoint1 *coords.Point
	Endpoint2 *coords.Point
}

// GeometrySource delivers the named features inside an area, given as
// a WKT polygon.
type GeometrySource interface {
	Streets(ctx context.Context, areaWKT string) ([]NamedWay, error)
	Amenities(ctx context.Context, areaWKT, amenity string) ([]NamedWay, error)
	Villages(ctx context.Context, areaWKT string) ([]NamedWay, error)
}

// amenityCategories maps index category headers to the OSM amenity
// values feeding them, in display order.
var amenityCategories = []struct {
	Category string
	Amenity  string
}{
	{"Places of worship", "place_of_worship"},
	{"Education", "kindergarten"},
	{"Education", "school"},
	{"Education", "college"},
	{"Education", "university"},
	{"Education", "library"},
	{"Public buildings", "townhall"},
	{"Public buildings", "post_office"},
	{"Public buildings", "public_building"},
	{"Public buildings", "police"},
}

const villagesCategory = "Villages"

// Builder assembles the index of one map page from a geometry source.
type Builder struct {
	Source GeometrySource
	Locale *i18n.Locale
	Logger zerolog.Logger

	// Page is recorded on every item, zero for single-page maps.
	Page int
}

// Build queries the source for the area and assembles the categorized
// index. The returned index has no grid locations yet; see
// Index.ApplyGrid.
func (b *Builder) Build(ctx context.Context, area coords.BoundingBox) (*Index, error) {
	areaWKT := area.AsWKT()

	ix := &Index{RTL: b.Locale.IsRTL(), compare: b.Locale.Compare}

	streets, err := b.buildStreets(ctx, areaWKT)
	if err != nil {
		return nil, fmt.Errorf("list streets: %w", err)
	}
	ix.Categories = append(ix.Categories, streets...)

	amenities, err := b.buildAmenities(ctx, areaWKT)
	if err != nil {
		return nil, fmt.Errorf("list amenities: %w", err)
	}
	ix.Categories = append(ix.Categories, amenities...)

	villages, err := b.buildVillages(ctx, areaWKT)
	if err != nil {
		return nil, fmt.Errorf("list villages: %w", err)
	}
	ix.Categories = append(ix.Categories, villages...)

	b.Logger.Debug().
		Int("categories", len(ix.Categories)).
		Int("items", ix.Len()).
		Msg("street index built")
	return ix, nil
}

// buildStreets normalizes, sorts and buckets the street names into
// first-letter categories under the locale's collation.
func (b *Builder) buildStreets(ctx context.Context, areaWKT string) ([]*Category, error) {
	ways, err := b.Source.Streets(ctx, areaWKT)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name string
		way  NamedWay
	}
	entries := make([]entry, 0, len(ways))
	for _, w := range ways {
		entries = append(entries, entry{b.Locale.UserReadableStreet(w.Name), w})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return b.Locale.Compare(strings.ToLower(entries[i].name),
			strings.ToLower(entries[j].name)) < 0
	})

	var out []*Category
	var current *Category
	for _, e := range entries {
		if e.name == "" {
			continue
		}
		first := i18n.FirstLetter(e.name)
		if current == nil || !b.Locale.FirstLetterEqual(first, current.Name) {
			current = &Category{
				Name:     b.Locale.FoldUpper(first),
				IsStreet: true,
			}
			out = append(out, current)
		}
		current.Items = append(current.Items, &Item{
			Label:     e.name,
			Endpoint1: e.way.Endpoint1,
			Endpoint2: e.way.Endpoint2,
			Page:      b.Page,
		})
	}
	return out, nil
}

func (b *Builder) buildAmenities(ctx context.Context, areaWKT string) ([]*Category, error) {
	var out []*Category
	var current *Category
	for _, ac := range amenityCategories {
		if current == nil || current.Name != ac.Category {
			current = &Category{Name: ac.Category}
			out = append(out, current)
		}
		ways, err := b.Source.Amenities(ctx, areaWKT, ac.Amenity)
		if err != nil {
			return nil, fmt.Errorf("amenity %s: %w", ac.Amenity, err)
		}
		for _, w := range ways {
			current.Items = append(current.Items, &Item{
				Label:     w.Name,
				Endpoint1: w.Endpoint1,
				Endpoint2: w.Endpoint2,
				Page:      b.Page,
			})
		}
	}
	return withItems(out), nil
}

func (b *Builder) buildVillages(ctx context.Context, areaWKT string) ([]*Category, error) {
	ways, err := b.Source.Villages(ctx, areaWKT)
	if err != nil {
		return nil, err
	}
	c := &Category{Name: villagesCategory}
	for _, w := range ways {
		c.Items = append(c.Items, &Item{
			Label:     w.Name,
			Endpoint1: w.Endpoint1,
			Endpoint2: w.Endpoint2,
			Page:      b.Page,
		})
	}
	return withItems([]*Category{c}), nil
}

func withItems(cats []*Category) []*Category {
	var out []*Category
	for _, c := range cats {
		if len(c.Items) > 0 {
			out = append(out, c)
		}
	}
	return out
}
