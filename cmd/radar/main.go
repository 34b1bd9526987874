package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-radar/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-radar/internal/adapter/kafka"
	"github.com/couchcryptid/storm-radar/internal/adapter/mrms"
	"github.com/couchcryptid/storm-radar/internal/config"
	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/couchcryptid/storm-radar/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	noise := domain.NewLockedRand(cfg.NoiseSeed)
	grid := domain.NewGridGenerator(domain.NewModel(noise), cfg.SampleStride, nil)
	random := domain.NewRandomGenerator(noise, nil)
	decoder := pipeline.NewDecoder(pipeline.ProceduralResolver{Grid: grid}, random, logger, metrics)
	client := mrms.NewClient(cfg.MRMSURL, cfg.MRMSTimeout, metrics, logger)

	opts := pipeline.Options{UpstreamHost: cfg.UpstreamHost()}

	// Snapshot events are feature-flagged via KAFKA_ENABLED.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("snapshot events enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot events disabled")
	}

	p := pipeline.New(client, decoder, grid, pipeline.NewCache(cfg.CacheTTL, nil), logger, metrics, opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.AllowedOrigins, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Warm the cache so readiness does not wait for the first client.
	go func() {
		if _, err := p.Snapshot(ctx); err != nil {
			logger.Warn("initial snapshot failed", "error", err)
		}
	}()

	logger.Info("radar service started",
		"addr", cfg.HTTPAddr,
		"upstream", client.URL(),
		"cache_ttl", cfg.CacheTTL,
		"sample_stride", cfg.SampleStride,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := p.Wait(shutdownCtx); err != nil {
		logger.Error("snapshot events did not drain", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
