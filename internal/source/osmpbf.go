package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/qedus/osmpbf"
	"github.com/rs/zerolog"
	h3 "github.com/uber/h3-go/v4"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

// prefilterRes is the H3 resolution of the node prefilter, around
// half a kilometer per cell edge.
const prefilterRes = 8

// PBF reads named features from a raw OpenStreetMap .osm.pbf extract.
// The extract is scanned once per area and the relevant features kept
// in memory, so one PBF instance can serve all three feature queries
// of an index build.
type PBF struct {
	path   string
	logger zerolog.Logger

	mu   sync.Mutex
	area string
	scan *pbfScan
}

type pbfScan struct {
	streets   []streetindex.NamedWay
	amenities map[string][]streetindex.NamedWay
	villages  []streetindex.NamedWay
}

// NewPBF returns a source reading from the given extract. The file is
// opened on first use.
func NewPBF(path string, logger zerolog.Logger) *PBF {
	return &PBF{path: path, logger: logger}
}

func (s *PBF) Streets(ctx context.Context, areaWKT string) ([]streetindex.NamedWay, error) {
	sc, err := s.scanArea(ctx, areaWKT)
	if err != nil {
		return nil, err
	}
	return sc.streets, nil
}

func (s *PBF) Amenities(ctx context.Context, areaWKT, amenity string) ([]streetindex.NamedWay, error) {
	sc, err := s.scanArea(ctx, areaWKT)
	if err != nil {
		return nil, err
	}
	return sc.amenities[amenity], nil
}

func (s *PBF) Villages(ctx context.Context, areaWKT string) ([]streetindex.NamedWay, error) {
	sc, err := s.scanArea(ctx, areaWKT)
	if err != nil {
		return nil, err
	}
	return sc.villages, nil
}

func (s *PBF) scanArea(ctx context.Context, areaWKT string) (*pbfScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scan != nil && s.area == areaWKT {
		return s.scan, nil
	}

	area, err := coords.ParseWKT(areaWKT)
	if err != nil {
		return nil, fmt.Errorf("parse area: %w", err)
	}

	sc, err := s.decode(ctx, area)
	if err != nil {
		return nil, err
	}
	s.area = areaWKT
	s.scan = sc
	return sc, nil
}

// cellCover is the set of H3 cells overlapping the area, padded by
// one ring so boundary nodes are not lost.
func cellCover(area coords.BoundingBox) (map[h3.Cell]struct{}, error) {
	tl := area.TopLeft()
	br := area.BottomRight()
	loop := h3.GeoLoop{
		{Lat: tl.Lat, Lng: tl.Long},
		{Lat: tl.Lat, Lng: br.Long},
		{Lat: br.Lat, Lng: br.Long},
		{Lat: br.Lat, Lng: tl.Long},
	}
	cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: loop}, prefilterRes)
	if err != nil {
		return nil, fmt.Errorf("cover area: %w", err)
	}

	cover := make(map[h3.Cell]struct{}, len(cells))
	for _, c := range cells {
		ring, err := h3.GridDisk(c, 1)
		if err != nil {
			return nil, fmt.Errorf("pad cover: %w", err)
		}
		for _, r := range ring {
			cover[r] = struct{}{}
		}
	}
	return cover, nil
}

func (s *PBF) decode(ctx context.Context, area coords.BoundingBox) (*pbfScan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open extract: %w", err)
	}
	defer f.Close()

	cover, err := cellCover(area)
	if err != nil {
		return nil, err
	}

	d := osmpbf.NewDecoder(f)
	d.SetBufferSize(osmpbf.MaxBlobSize)
	if err := d.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return nil, fmt.Errorf("start decoder: %w", err)
	}

	nodes := map[int64]orb.Point{}
	sc := &pbfScan{amenities: map[string][]streetindex.NamedWay{}}
	streetNodes := map[string][]int64{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := d.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode extract: %w", err)
		}

		switch v := v.(type) {
		case *osmpbf.Node:
			cell, err := h3.LatLngToCell(h3.LatLng{Lat: v.Lat, Lng: v.Lon}, prefilterRes)
			if err != nil {
				continue
			}
			if _, ok := cover[cell]; !ok {
				continue
			}
			nodes[v.ID] = orb.Point{v.Lon, v.Lat}

			p := coords.NewPoint(v.Lat, v.Lon)
			if !area.Contains(p) {
				continue
			}
			name := strings.TrimSpace(v.Tags["name"])
			if name == "" {
				continue
			}
			if amenity := v.Tags["amenity"]; amenity != "" {
				sc.amenities[amenity] = append(sc.amenities[amenity],
					streetindex.NamedWay{Name: name, Endpoint1: &p, Endpoint2: &p})
			}
			switch v.Tags["place"] {
			case "locality", "hamlet", "isolated_dwelling":
				sc.villages = append(sc.villages,
					streetindex.NamedWay{Name: name, Endpoint1: &p, Endpoint2: &p})
			}

		case *osmpbf.Way:
			name := strings.TrimSpace(v.Tags["name"])
			if name == "" || v.Tags["highway"] == "" {
				continue
			}
			streetNodes[name] = append(streetNodes[name], v.NodeIDs...)
		}
	}

	for name, ids := range streetNodes {
		var pts []orb.Point
		inArea := false
		for _, id := range ids {
			p, ok := nodes[id]
			if !ok {
				continue
			}
			pts = append(pts, p)
			if area.Contains(coords.NewPoint(p.Lat(), p.Lon())) {
				inArea = true
			}
		}
		if !inArea {
			continue
		}
		w := streetindex.NamedWay{Name: name}
		w.Endpoint1, w.Endpoint2 = farthestPair(pts)
		sc.streets = append(sc.streets, w)
	}

	s.logger.Debug().
		Int("streets", len(sc.streets)).
		Int("villages", len(sc.villages)).
		Msg("extract scanned")
	return sc, nil
}

// farthestPair returns the two most distant points of the set, the
// printed span of the street in the index.
func farthestPair(pts []orb.Point) (*coords.Point, *coords.Point) {
	if len(pts) == 0 {
		return nil, nil
	}
	bi, bj := 0, 0
	best := -1.0
	for i := 0; i < len(pts); i++ {
		for j := i; j < len(pts); j++ {
			if d := geo.Distance(pts[i], pts[j]); d > best {
				best, bi, bj = d, i, j
			}
		}
	}
	p1 := coords.NewPoint(pts[bi].Lat(), pts[bi].Lon())
	p2 := coords.NewPoint(pts[bj].Lat(), pts[bj].Lon())
	return &p1, &p2
}
