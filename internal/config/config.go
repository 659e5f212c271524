// Package config loads service settings from environment variables,
// applying operational defaults and validating what must be set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// External source configuration.
	NOAABaseURL   string
	USGSBaseURL   string
	SourceTimeout time.Duration

	// Pipeline tunables.
	IngestWindow   time.Duration
	FeatureWindow  time.Duration
	AlertThreshold float64

	// Classifier artifact registry.
	ModelManifest string

	// Alert event publishing (disabled when no brokers configured).
	KafkaBrokers    []string
	KafkaAlertTopic string
	KafkaEnabled    bool

	// Scheduler intervals.
	IngestInterval    time.Duration
	PredictInterval   time.Duration
	RetentionInterval time.Duration
	HealthInterval    time.Duration

	// Retention horizons.
	ReadingRetention       time.Duration
	AssessmentRetention    time.Duration
	ResolvedAlertRetention time.Duration
	IngestionLogRetention  time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		NOAABaseURL:     envOrDefault("NOAA_BASE_URL", "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"),
		USGSBaseURL:     envOrDefault("USGS_BASE_URL", "https://waterservices.usgs.gov/nwis/iv/"),
		ModelManifest:   os.Getenv("MODEL_MANIFEST"),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "coastal-alerts"),
	}

	var err error
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SourceTimeout, err = envDuration("SOURCE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.IngestWindow, err = envDuration("INGEST_WINDOW", time.Hour); err != nil {
		return nil, err
	}
	if cfg.FeatureWindow, err = envDuration("FEATURE_WINDOW", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.IngestInterval, err = envDuration("INGEST_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PredictInterval, err = envDuration("PREDICT_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RetentionInterval, err = envDuration("RETENTION_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = envDuration("HEALTH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.ReadingRetention, err = envDays("READING_RETENTION_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.AssessmentRetention, err = envDays("ASSESSMENT_RETENTION_DAYS", 90); err != nil {
		return nil, err
	}
	if cfg.ResolvedAlertRetention, err = envDays("RESOLVED_ALERT_RETENTION_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.IngestionLogRetention, err = envDays("INGESTION_LOG_RETENTION_DAYS", 7); err != nil {
		return nil, err
	}

	if cfg.AlertThreshold, err = envFloat("ALERT_THRESHOLD", 0.7); err != nil {
		return nil, err
	}
	if cfg.AlertThreshold <= 0 || cfg.AlertThreshold > 1 {
		return nil, errors.New("ALERT_THRESHOLD must be in (0, 1]")
	}

	cfg.KafkaBrokers = parseBrokers(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envDays(key string, fallback int) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return time.Duration(fallback) * 24 * time.Hour, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(n) * 24 * time.Hour, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func parseBrokers(csv string) []string {
	parts := strings.Split(csv, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			brokers = append(brokers, v)
		}
	}
	return brokers
}
