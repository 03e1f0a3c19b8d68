// Package source feeds the street index with named geometry, either
// from an osm2pgsql PostGIS database or from a raw .osm.pbf extract.
package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

// PostGIS reads named features from the osm2pgsql schema, tables
// planet_osm_line, planet_osm_point and planet_osm_polygon.
type PostGIS struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostGIS connects to the rendering database.
func NewPostGIS(ctx context.Context, dsn string, logger zerolog.Logger) (*PostGIS, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgis: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgis: %w", err)
	}
	return &PostGIS{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostGIS) Close() {
	s.pool.Close()
}

// Streets returns the distinct street names crossing the area, each
// reduced to the two most distant points of its longest segment.
func (s *PostGIS) Streets(ctx context.Context, areaWKT string) ([]streetindex.NamedWay, error) {
	const q = `
SELECT name,
       ST_AsText(ST_LongestLine(way, way)) AS longest
FROM (SELECT name,
             ST_Intersection(ST_Transform(way, 4326),
                             ST_GeomFromText($1, 4326)) AS way
      FROM planet_osm_line
      WHERE trim(name) != ''
        AND highway IS NOT NULL
        AND ST_Intersects(ST_Transform(way, 4326),
                          ST_GeomFromText($1, 4326))) AS clipped
GROUP BY name, way
ORDER BY name`

	rows, err := s.pool.Query(ctx, q, areaWKT)
	if err != nil {
		return nil, fmt.Errorf("query streets: %w", err)
	}
	defer rows.Close()

	var out []streetindex.NamedWay
	for rows.Next() {
		var name, longest string
		if err := rows.Scan(&name, &longest); err != nil {
			return nil, fmt.Errorf("scan street row: %w", err)
		}
		w := streetindex.NamedWay{Name: name}
		w.Endpoint1, w.Endpoint2 = lineEndpoints(longest)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read street rows: %w", err)
	}
	s.logger.Debug().Int("streets", len(out)).Msg("streets loaded")
	return out, nil
}

// Amenities returns the named features tagged with the given amenity
// value, from both the point and the polygon table.
func (s *PostGIS) Amenities(ctx context.Context, areaWKT, amenity string) ([]streetindex.NamedWay, error) {
	const q = `
SELECT name, ST_AsText(ST_Centroid(ST_Transform(way, 4326))) AS center
FROM planet_osm_point
WHERE trim(name) != '' AND amenity = $2
  AND ST_Intersects(ST_Transform(way, 4326), ST_GeomFromText($1, 4326))
UNION ALL
SELECT name, ST_AsText(ST_Centroid(ST_Transform(way, 4326))) AS center
FROM planet_osm_polygon
WHERE trim(name) != '' AND amenity = $2
  AND ST_Intersects(ST_Transform(way, 4326), ST_GeomFromText($1, 4326))`

	return s.queryPoints(ctx, q, areaWKT, amenity)
}

// Villages returns the named settlements too small to be index
// sections of their own.
func (s *PostGIS) Villages(ctx context.Context, areaWKT string) ([]streetindex.NamedWay, error) {
	const q = `
SELECT name, ST_AsText(ST_Transform(way, 4326)) AS center
FROM planet_osm_point
WHERE trim(name) != ''
  AND place IN ('locality', 'hamlet', 'isolated_dwelling')
  AND ST_Intersects(ST_Transform(way, 4326), ST_GeomFromText($1, 4326))`

	return s.queryPoints(ctx, q, areaWKT)
}

func (s *PostGIS) queryPoints(ctx context.Context, q string, args ...any) ([]streetindex.NamedWay, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var out []streetindex.NamedWay
	for rows.Next() {
		var name, center string
		if err := rows.Scan(&name, &center); err != nil {
			return nil, fmt.Errorf("scan point row: %w", err)
		}
		w := streetindex.NamedWay{Name: name}
		if p, err := coords.ParsePointWKT(center); err == nil {
			w.Endpoint1 = &p
			w.Endpoint2 = &p
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read point rows: %w", err)
	}
	return out, nil
}

// lineEndpoints extracts the two ends of a WKT LINESTRING. A geometry
// that is not a linestring yields nil ends, the index prints "???"
// for those.
func lineEndpoints(s string) (*coords.Point, *coords.Point) {
	geom, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, nil
	}
	ls, ok := geom.(orb.LineString)
	if !ok || len(ls) == 0 {
		return nil, nil
	}
	p1 := coords.NewPoint(ls[0].Lat(), ls[0].Lon())
	p2 := coords.NewPoint(ls[len(ls)-1].Lat(), ls[len(ls)-1].Lon())
	return &p1, &p2
}
