// ocitysmap renders one city map from the command line, without the
// job queue: a PDF with the gridded map, the street index and an
// optional CSV rendition of the index.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/app/pipeline"
	"github.com/maposmatic/ocitysmap-go/internal/config"
	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/logger"
	"github.com/maposmatic/ocitysmap-go/internal/source"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		title     = flag.String("title", "", "map title")
		areaWKT   = flag.String("area", "", "bounding box as a WKT polygon")
		corner1   = flag.String("corner1", "", "first corner as lat,long (alternative to -area)")
		corner2   = flag.String("corner2", "", "second corner as lat,long")
		paperName = flag.String("paper", "", "paper size name, or Best fit")
		landscape = flag.Bool("landscape", false, "rotate the sheet")
		indexPos  = flag.String("index-position", "side", "street index placement: side, bottom or none")
		locale    = flag.String("locale", "", "locale code for street name handling")
		scale     = flag.Float64("scale", 0, "scale denominator for multipage maps")
		multipage = flag.Bool("multipage", false, "render a multi-page booklet")
		dsn       = flag.String("dsn", "", "PostGIS connection string")
		pbf       = flag.String("pbf", "", "OSM PBF extract (alternative to -dsn)")
		out       = flag.String("out", "map.pdf", "output PDF path")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log := logger.Build(logger.Config{Level: *logLevel, Console: true, Component: "ocitysmap"}, os.Stderr)

	// flags win over the config file, the config file over its defaults
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return 1
	}
	if *paperName == "" {
		*paperName = cfg.Render.DefaultPaper
	}
	if *locale == "" {
		*locale = cfg.Render.DefaultLocale
	}
	if *scale == 0 {
		*scale = cfg.Render.DefaultScale
	}
	if *dsn == "" && *pbf == "" {
		*dsn, *pbf = cfg.Data.DSN, cfg.Data.PBFPath
	}

	area, err := resolveArea(*areaWKT, *corner1, *corner2)
	if err != nil {
		log.Error().Err(err).Msg("invalid area")
		return 2
	}
	if *title == "" {
		log.Error().Msg("a title is required")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openSource(ctx, *dsn, *pbf, log)
	if err != nil {
		log.Error().Err(err).Msg("open map data source")
		return 1
	}
	defer closeSrc()

	pos := strings.TrimSpace(*indexPos)
	if pos == "none" {
		pos = ""
	}
	req := jobs.Request{
		Title:     *title,
		AreaWKT:   area.AsWKT(),
		Paper:     *paperName,
		Landscape: *landscape,
		IndexPos:  pos,
		Locale:    *locale,
		Multipage: *multipage,
	}
	if *multipage {
		req.Scale = *scale
	}

	fonts, err := fontmetrics.NewStandardOracle()
	if err != nil {
		log.Error().Err(err).Msg("create font oracle")
		return 1
	}

	p := &pipeline.Pipeline{
		Source: src,
		Fonts:  fonts,
		Logger: log,
	}
	if err := p.RenderTo(ctx, req, *out); err != nil {
		log.Error().Err(err).Msg("render failed")
		return 1
	}
	log.Info().Str("out", *out).Msg("map rendered")
	return 0
}

func resolveArea(wkt, corner1, corner2 string) (coords.BoundingBox, error) {
	if wkt != "" {
		return coords.ParseWKT(wkt)
	}
	if corner1 != "" && corner2 != "" {
		return coords.ParseLatLongPair(corner1, corner2)
	}
	return coords.BoundingBox{}, errors.New("give either -area or both -corner1 and -corner2")
}

func openSource(ctx context.Context, dsn, pbf string, log zerolog.Logger) (streetindex.GeometrySource, func(), error) {
	if dsn != "" {
		pg, err := source.NewPostGIS(ctx, dsn, log)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	if pbf != "" {
		return source.NewPBF(pbf, log), func() {}, nil
	}
	return nil, nil, errors.New("give either -dsn or -pbf")
}
