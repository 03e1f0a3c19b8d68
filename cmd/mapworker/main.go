// mapworker consumes rendering orders from Kafka, renders them and
// records the outcome in Redis.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/app/pipeline"
	"github.com/maposmatic/ocitysmap-go/internal/config"
	"github.com/maposmatic/ocitysmap-go/internal/fontmetrics"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/logger"
	"github.com/maposmatic/ocitysmap-go/internal/metrics"
	"github.com/maposmatic/ocitysmap-go/internal/source"
	"github.com/maposmatic/ocitysmap-go/internal/streetindex"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.Build(logger.Config{Component: "mapworker"}, os.Stderr)
		errLog.Error().Err(err).Msg("load config")
		return 1
	}

	log := logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		Component: "mapworker",
	}, os.Stdout)
	log.Info().Str("version", Version).Strs("brokers", cfg.Kafka.Brokers).Msg("starting mapworker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ttl, err := time.ParseDuration(cfg.Redis.JobTTL)
	if err != nil {
		log.Error().Err(err).Msg("invalid redis.job_ttl")
		return 1
	}
	store, err := jobs.NewStore(ctx, cfg.Redis.Addr, ttl)
	if err != nil {
		log.Error().Err(err).Msg("connect redis")
		return 1
	}
	defer store.Close()

	src, closeSrc, err := openSource(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("open map data source")
		return 1
	}
	defer closeSrc()

	prov := metrics.Init(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Addr:    cfg.Metrics.Addr,
		Path:    cfg.Metrics.Path,
		Build:   metrics.BuildInfo{Version: Version},
	})
	if cfg.Metrics.Enabled {
		go serveMetrics(ctx, cfg, prov, log)
	}

	fonts, err := fontmetrics.NewStandardOracle()
	if err != nil {
		log.Error().Err(err).Msg("create font oracle")
		return 1
	}

	p := &pipeline.Pipeline{
		Source:    src,
		Fonts:     fonts,
		OutputDir: cfg.Render.OutputDir,
		Logger:    log,
		Metrics:   prov,
	}

	render := func(ctx context.Context, job jobs.Job) (string, error) {
		start := time.Now()
		path, err := p.Render(ctx, job)
		prov.RenderDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			prov.JobsRendered.WithLabelValues("failed").Inc()
		} else {
			prov.JobsRendered.WithLabelValues("done").Inc()
		}
		return path, err
	}

	worker := jobs.NewWorker(jobs.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, store, render, log)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker error")
		return 1
	}
	log.Info().Msg("worker stopped")
	return 0
}

func openSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (streetindex.GeometrySource, func(), error) {
	if cfg.Data.DSN != "" {
		pg, err := source.NewPostGIS(ctx, cfg.Data.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	if cfg.Data.PBFPath != "" {
		return source.NewPBF(cfg.Data.PBFPath, log), func() {}, nil
	}
	return nil, nil, errors.New("either data.dsn or data.pbf_path must be set")
}

func serveMetrics(ctx context.Context, cfg *config.Config, prov *metrics.Provider, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, prov.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server")
	}
}
