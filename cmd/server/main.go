package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/groundwater-insights/internal/adapter/dataset"
	httpadapter "github.com/couchcryptid/groundwater-insights/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/groundwater-insights/internal/adapter/kafka"
	"github.com/couchcryptid/groundwater-insights/internal/adapter/predict"
	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/config"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/couchcryptid/groundwater-insights/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := dataset.LoadFile(cfg.RegionsFile, logger)
	if err != nil {
		logger.Error("failed to load region dataset", "error", err)
		os.Exit(1)
	}

	analyzer := analysis.New(cfg.SyntheticSeed, cfg.AnalysisConcurrency, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var checks readiness

	// Prediction service proxy (feature-flagged via PREDICTION_URL / PREDICTION_ENABLED).
	var predictions httpadapter.Predictions
	var redisStore *predict.RedisStore
	if cfg.PredictionEnabled {
		client := predict.NewClient(cfg.PredictionURL, cfg.PredictionTimeout, metrics, logger)

		store, err := newPredictionStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to create prediction cache", "error", err)
			os.Exit(1)
		}
		if rs, ok := store.(*predict.RedisStore); ok {
			redisStore = rs
			checks = append(checks, rs)
		}

		if store != nil {
			predictions = predict.NewSessions(predict.NewCachedPredictor(client, store, metrics, logger), metrics)
		} else {
			predictions = predict.NewSessions(client, metrics)
		}
		metrics.PredictionEnabled.Set(1)
		logger.Info("prediction service enabled",
			"url", cfg.PredictionURL,
			"cache", cfg.PredictionCache,
			"timeout", cfg.PredictionTimeout,
		)
	} else {
		logger.Info("prediction service disabled")
	}

	// Streaming recompute (feature-flagged via PIPELINE_ENABLED).
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	var p *pipeline.Pipeline
	if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(analyzer, catalog, logger)
		p = pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		checks = append(checks, p)
	}

	handler := httpadapter.NewHandler(catalog, analyzer, predictions, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, handler, checks, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newPredictionStore builds the configured prediction cache. It returns a nil
// Store when caching is disabled.
func newPredictionStore(ctx context.Context, cfg *config.Config) (predict.Store, error) {
	switch cfg.PredictionCache {
	case config.CacheRedis:
		return predict.NewRedisStore(ctx, cfg.RedisAddr, cfg.PredictionCacheTTL)
	case config.CacheMemory:
		return predict.NewMemoryStore(cfg.PredictionCacheSize, cfg.PredictionCacheTTL, nil), nil
	case config.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown prediction cache %q", cfg.PredictionCache)
	}
}

// readiness is ready when every registered check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
