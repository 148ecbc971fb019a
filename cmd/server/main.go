package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/gustmaps/windshear-service/internal/adapter/http"
	kafkaadapter "github.com/gustmaps/windshear-service/internal/adapter/kafka"
	"github.com/gustmaps/windshear-service/internal/adapter/landcover"
	"github.com/gustmaps/windshear-service/internal/adapter/reanalysis"
	"github.com/gustmaps/windshear-service/internal/config"
	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/gustmaps/windshear-service/internal/observability"
	"github.com/gustmaps/windshear-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	weather := reanalysis.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)

	var roughness domain.RoughnessEstimator = landcover.NewClient(cfg.LandCoverBaseURL, cfg.LandCoverTimeout, metrics, logger)
	roughness = landcover.NewCachedEstimator(roughness, cfg.LandCoverCacheSize, metrics)

	projector := domain.Projector{MaxFactor: cfg.MaxShearFactor}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(weather, roughness, projector, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, projector, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
