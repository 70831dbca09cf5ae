package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/relief-geocoder-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/relief-geocoder-service/internal/adapter/kafka"
	"github.com/couchcryptid/relief-geocoder-service/internal/adapter/nominatim"
	"github.com/couchcryptid/relief-geocoder-service/internal/config"
	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
	"github.com/couchcryptid/relief-geocoder-service/internal/pipeline"
)

// alwaysReady is the readiness check when the API runs without the pipeline.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	provider := nominatim.NewProvider(cfg, metrics, logger)
	resolver := domain.NewResolver(provider, logger,
		domain.WithObserver(metrics),
		domain.WithCallTimeout(cfg.NominatimTimeout),
	)
	logger.Info("nominatim geocoding configured",
		"url", cfg.NominatimURL,
		"rate_limit", cfg.NominatimRateLimit,
		"cache_size", cfg.CacheSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		ready  sharedobs.ReadinessChecker = alwaysReady{}
	)
	pipelineDone := make(chan struct{})

	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(resolver, metrics, logger)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize,
			pipeline.WithHoldLimit(cfg.GeocodeHoldLimit),
		)
		ready = p

		go func() {
			defer close(pipelineDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("report pipeline enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		close(pipelineDone)
		logger.Info("report pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, resolver, ready, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
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

	logger.Info("shutdown complete")
}
