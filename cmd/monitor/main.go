package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/tidewatch/coastal-monitor/internal/adapter/http"
	kafkaadapter "github.com/tidewatch/coastal-monitor/internal/adapter/kafka"
	"github.com/tidewatch/coastal-monitor/internal/classifier"
	"github.com/tidewatch/coastal-monitor/internal/config"
	"github.com/tidewatch/coastal-monitor/internal/observability"
	"github.com/tidewatch/coastal-monitor/internal/pipeline"
	"github.com/tidewatch/coastal-monitor/internal/source"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	registry := classifier.NewRegistry(cfg.ModelManifest, logger)

	sources := []source.Source{
		source.NewNOAAClient(cfg.NOAABaseURL, cfg.SourceTimeout, logger),
		source.NewUSGSClient(cfg.USGSBaseURL, cfg.SourceTimeout, logger),
	}

	// Alert publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var notifier pipeline.AlertNotifier
	var notifierCloser *kafkaadapter.Notifier
	if cfg.KafkaEnabled {
		n := kafkaadapter.NewNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		notifier = n
		notifierCloser = n
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("alert publishing disabled")
	}

	settings := pipeline.Settings{
		IngestWindow:           cfg.IngestWindow,
		FeatureWindow:          cfg.FeatureWindow,
		AlertThreshold:         cfg.AlertThreshold,
		ReadingRetention:       cfg.ReadingRetention,
		AssessmentRetention:    cfg.AssessmentRetention,
		ResolvedAlertRetention: cfg.ResolvedAlertRetention,
		IngestionLogRetention:  cfg.IngestionLogRetention,
		RecentDataWindow:       2 * time.Hour,
		StuckAlertAge:          24 * time.Hour,
	}

	p := pipeline.New(store, sources, registry, notifier, logger, metrics, settings)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go runSchedule(ctx, cfg.IngestInterval, func() { p.RunIngestionCycle(ctx) })
	go runSchedule(ctx, cfg.PredictInterval, func() { p.RunPredictionCycle(ctx) })
	go runSchedule(ctx, cfg.RetentionInterval, func() { p.RunRetentionSweep(ctx) })
	go runSchedule(ctx, cfg.HealthInterval, func() { p.RunHealthCheck(ctx) })

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if notifierCloser != nil {
		if err := notifierCloser.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// runSchedule invokes fn immediately and then on every tick until the
// context is cancelled. The entry points are safe to invoke on a timer;
// they return summaries instead of raising for expected failures.
func runSchedule(ctx context.Context, interval time.Duration, fn func()) {
	fn()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
