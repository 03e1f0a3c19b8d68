// Package coords defines the geographic primitives the renderer works
// with: WGS84 points and normalized bounding boxes, plus the metric and
// pixel size estimates the layout code needs.
package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EarthRadius is the sphere radius, in meters, used for all metric
// approximations.
const EarthRadius = 6370986

// Point is a WGS84 location.
type Point struct {
	Lat  float64
	Long float64
}

func NewPoint(lat, long float64) Point {
	return Point{Lat: lat, Long: long}
}

// ParsePointWKT parses a "POINT(long lat)" string.
func ParsePointWKT(s string) (Point, error) {
	p, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return Point{}, fmt.Errorf("parse point wkt: %w", err)
	}
	return Point{Lat: p.Lat(), Long: p.Lon()}, nil
}

// AsWKT renders the point in WKT, longitude first.
func (p Point) AsWKT() string {
	return wkt.MarshalString(p.Orb())
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.Long, p.Lat}
}

func (p Point) String() string {
	return fmt.Sprintf("Point(lat=%f, long=%f)", p.Lat, p.Long)
}

// BoundingBox is a geographic rectangle. The fields are kept normalized
// so that (Lat1, Long1) is always the top-left corner and (Lat2, Long2)
// the bottom-right one.
type BoundingBox struct {
	lat1, long1 float64 // top left
	lat2, long2 float64 // bottom right
}

// New builds a normalized bounding box from two opposite corners, given
// in any order.
func New(lat1, long1, lat2, long2 float64) BoundingBox {
	b := BoundingBox{lat1: lat1, long1: long1, lat2: lat2, long2: long2}
	if b.lat1 < b.lat2 {
		b.lat1, b.lat2 = b.lat2, b.lat1
	}
	if b.long1 > b.long2 {
		b.long1, b.long2 = b.long2, b.long1
	}
	return b
}

func FromPoints(a, b Point) BoundingBox {
	return New(a.Lat, a.Long, b.Lat, b.Long)
}

// ParseWKT builds a bounding box from the envelope of a WKT POLYGON.
// Polygons spanning more than 180 degrees of longitude would wrap the
// antimeridian and are rejected.
func ParseWKT(s string) (BoundingBox, error) {
	poly, err := wkt.UnmarshalPolygon(s)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("parse polygon wkt: %w", err)
	}
	if len(poly) == 0 || len(poly[0]) == 0 {
		return BoundingBox{}, fmt.Errorf("empty polygon")
	}
	bound := poly.Bound()
	if bound.Right()-bound.Left() > 180 {
		return BoundingBox{}, fmt.Errorf("bounding box spans more than 180 degrees of longitude")
	}
	return New(bound.Top(), bound.Left(), bound.Bottom(), bound.Right()), nil
}

// ParseLatLongPair builds a bounding box from two "lat,long" strings.
func ParseLatLongPair(corner1, corner2 string) (BoundingBox, error) {
	lat1, long1, err := parseLatLong(corner1)
	if err != nil {
		return BoundingBox{}, err
	}
	lat2, long2, err := parseLatLong(corner2)
	if err != nil {
		return BoundingBox{}, err
	}
	if math.Abs(long1-long2) > 180 {
		return BoundingBox{}, fmt.Errorf("bounding box spans more than 180 degrees of longitude")
	}
	return New(lat1, long1, lat2, long2), nil
}

func parseLatLong(s string) (lat, long float64, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed lat,long pair %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude in %q: %w", s, err)
	}
	long, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude in %q: %w", s, err)
	}
	return lat, long, nil
}

func (b BoundingBox) TopLeft() Point     { return Point{Lat: b.lat1, Long: b.long1} }
func (b BoundingBox) BottomRight() Point { return Point{Lat: b.lat2, Long: b.long2} }

func (b BoundingBox) Center() Point {
	return Point{Lat: (b.lat1 + b.lat2) / 2, Long: (b.long1 + b.long2) / 2}
}

// Contains reports whether the point lies inside the box, edges
// included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat <= b.lat1 && p.Lat >= b.lat2 &&
		p.Long >= b.long1 && p.Long <= b.long2
}

// Merge returns the smallest box covering both boxes.
func (b BoundingBox) Merge(o BoundingBox) BoundingBox {
	return New(math.Max(b.lat1, o.lat1), math.Min(b.long1, o.long1),
		math.Min(b.lat2, o.lat2), math.Max(b.long2, o.long2))
}

// Expand returns a box grown by dLat on the top and bottom sides and by
// dLong on the left and right sides.
func (b BoundingBox) Expand(dLat, dLong float64) BoundingBox {
	return New(b.lat1+dLat, b.long1-dLong, b.lat2-dLat, b.long2+dLong)
}

// Extend returns a box grown by the given fraction of its own spans on
// every side.
func (b BoundingBox) Extend(frac float64) BoundingBox {
	return b.Expand(frac*(b.lat1-b.lat2), frac*(b.long2-b.long1))
}

// AsWKT renders the box as a closed five point WKT polygon.
func (b BoundingBox) AsWKT() string {
	return fmt.Sprintf("POLYGON((%f %f, %f %f, %f %f, %f %f, %f %f))",
		b.long1, b.lat2, b.long1, b.lat1, b.long2, b.lat1,
		b.long2, b.lat2, b.long1, b.lat2)
}

// Orb returns the box as an orb bound (min/max in long, lat order).
func (b BoundingBox) Orb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.long1, b.lat2},
		Max: orb.Point{b.long2, b.lat1},
	}
}

// SphericSizes returns the metric extent of the box as (width, height),
// the width measured along the top latitude.
func (b BoundingBox) SphericSizes() (width, height float64) {
	deltaLat := b.lat1 - b.lat2
	deltaLong := b.long2 - b.long1
	radiusAtLat := EarthRadius * math.Cos(toRadians(b.lat1))
	return radiusAtLat * toRadians(deltaLong), EarthRadius * toRadians(deltaLat)
}

// PixelSize estimates the size in pixels needed to render the box at a
// slippy-map zoom factor, 2^zoom tiles of 256 pixels covering the
// -85..85 degree Mercator band.
func (b BoundingBox) PixelSize(zoom int) (width, height int) {
	deltaLong := b.long2 - b.long1
	pixX := deltaLong * math.Pow(2, float64(zoom+8)) / 360
	pixY := (mercatorY(b.lat1) - mercatorY(b.lat2)) *
		math.Pow(2, float64(zoom+7)) / mercatorY(85)
	return int(math.Ceil(pixX)), int(math.Ceil(pixY))
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox(%.4f,%.4f %.4f,%.4f)", b.lat1, b.long1, b.lat2, b.long2)
}

func mercatorY(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4 + toRadians(lat)/2))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
