// mapserver is the HTTP API: it accepts rendering orders, tracks
// their state in Redis and queues them on Kafka for the workers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maposmatic/ocitysmap-go/internal/app/server"
	"github.com/maposmatic/ocitysmap-go/internal/config"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/logger"
	"github.com/maposmatic/ocitysmap-go/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.Build(logger.Config{Component: "mapserver"}, os.Stderr)
		errLog.Error().Err(err).Msg("load config")
		return 1
	}

	log := logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		Component: "mapserver",
	}, os.Stdout)
	log.Info().Str("addr", cfg.HTTP.Addr).Str("version", Version).Msg("starting mapserver")

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

	producer, err := jobs.NewProducer(jobs.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	if err != nil {
		log.Error().Err(err).Msg("connect kafka")
		return 1
	}
	defer producer.Close()

	prov := metrics.Init(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Addr:    cfg.Metrics.Addr,
		Path:    cfg.Metrics.Path,
		Build:   metrics.BuildInfo{Version: Version},
	})

	if err := server.Run(ctx, cfg, log, store, producer, prov); err != nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	log.Info().Msg("server stopped")
	return 0
}
