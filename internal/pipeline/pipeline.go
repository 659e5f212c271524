// Package pipeline orchestrates the ingestion → feature assembly →
// classification → alert triggering flow, plus the retention and health
// sweeps that run against the same storage on their own schedules.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/classifier"
	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/observability"
	"github.com/tidewatch/coastal-monitor/internal/source"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

// ErrNoData reports a feature window with zero readings of any kind. It is
// a skip condition, not a failure: no assessment is produced and no alert
// is evaluated for that cycle.
var ErrNoData = errors.New("no sensor data in window")

// ClassifierProvider yields the active classifier. It is consulted exactly
// once at the start of a run so one run never observes two models.
type ClassifierProvider interface {
	Active() classifier.Classifier
}

// AlertNotifier publishes created alerts to external consumers. Publishing
// is best-effort: a notifier error is logged and never fails the trigger.
type AlertNotifier interface {
	PublishAlertCreated(ctx context.Context, alert domain.Alert) error
}

// Settings are the tunables of one pipeline instance.
type Settings struct {
	IngestWindow   time.Duration // pull range per ingestion attempt
	FeatureWindow  time.Duration // lookback for feature assembly
	AlertThreshold float64       // minimum probability that triggers alert evaluation

	ReadingRetention       time.Duration
	AssessmentRetention    time.Duration
	ResolvedAlertRetention time.Duration
	IngestionLogRetention  time.Duration

	RecentDataWindow time.Duration // health: how fresh readings must be
	StuckAlertAge    time.Duration // health: active-alert age flagged as stuck
}

// DefaultSettings mirror the operational defaults of the monitoring system.
func DefaultSettings() Settings {
	return Settings{
		IngestWindow:           time.Hour,
		FeatureWindow:          6 * time.Hour,
		AlertThreshold:         0.7,
		ReadingRetention:       30 * 24 * time.Hour,
		AssessmentRetention:    90 * 24 * time.Hour,
		ResolvedAlertRetention: 30 * 24 * time.Hour,
		IngestionLogRetention:  7 * 24 * time.Hour,
		RecentDataWindow:       2 * time.Hour,
		StuckAlertAge:          24 * time.Hour,
	}
}

// Pipeline wires storage, sources, and the classifier into the schedulable
// entry points. Entry points return structured summaries and never
// propagate expected failures past a single location's run.
type Pipeline struct {
	store    storage.Store
	sources  []source.Source
	models   ClassifierProvider
	notifier AlertNotifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	settings Settings
	ready    atomic.Bool
}

// New creates a Pipeline. notifier may be nil to disable alert publishing.
func New(store storage.Store, sources []source.Source, models ClassifierProvider, notifier AlertNotifier, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *Pipeline {
	return &Pipeline{
		store:    store,
		sources:  sources,
		models:   models,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		settings: settings,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// cycle of any kind.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a cycle yet")
	}
	return nil
}

// LocationRunResult summarizes a full single-location run: ingestion from
// every source followed by one prediction pass.
type LocationRunResult struct {
	StationID        string             `json:"station_id"`
	ReadingsStored   int                `json:"readings_stored"`
	ReadingsRejected int                `json:"readings_rejected"`
	FailedSources    []string           `json:"failed_sources,omitempty"`
	SkippedNoData    bool               `json:"skipped_no_data"`
	Assessment       *domain.Assessment `json:"assessment,omitempty"`
	Alert            *domain.Alert      `json:"alert,omitempty"`
	AlertSuppressed  bool               `json:"alert_suppressed"`
}

// RunForLocation ingests and then scores a single station. An unknown
// station is a caller error; source failures degrade per the usual taxonomy
// and are reported in the result. A prediction failure is returned as an
// error alongside the partial result, which still carries the ingestion
// counts, so callers can tell "failed" apart from "below threshold".
func (p *Pipeline) RunForLocation(ctx context.Context, stationID string) (LocationRunResult, error) {
	loc, err := p.store.GetLocationByStation(ctx, stationID)
	if err != nil {
		return LocationRunResult{}, err
	}

	result := LocationRunResult{StationID: loc.StationID}

	for _, attempt := range p.ingestLocation(ctx, loc) {
		result.ReadingsStored += attempt.stored
		result.ReadingsRejected += attempt.rejected
		if attempt.err != nil {
			result.FailedSources = append(result.FailedSources, attempt.source)
		}
	}

	outcome := p.predictLocation(ctx, loc, p.models.Active())
	result.SkippedNoData = outcome.skipped
	result.Assessment = outcome.assessment
	result.Alert = outcome.alert
	result.AlertSuppressed = outcome.suppressed

	p.ready.Store(true)
	if outcome.err != nil {
		return result, fmt.Errorf("predict %s: %w", loc.StationID, outcome.err)
	}
	return result, nil
}

// ResolveAlert transitions an alert to resolved. Resolving twice is a
// no-op reported as storage.ErrAlreadyResolved; ResolvedAt is set once and
// never moved.
func (p *Pipeline) ResolveAlert(ctx context.Context, alertID string) error {
	return p.store.ResolveAlert(ctx, alertID)
}

func (p *Pipeline) observeCycle(cycle string, start time.Time) {
	p.metrics.CycleDuration.WithLabelValues(cycle).Observe(time.Since(start).Seconds())
	p.ready.Store(true)
}
