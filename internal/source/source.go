// Package source contains HTTP clients for the external time-series APIs
// readings are pulled from. Each client satisfies the Source interface and
// normalizes its provider-specific response shape into flat observations.
package source

import (
	"context"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// Observation is one provider-agnostic data point before validation.
type Observation struct {
	Kind        domain.MeasurementKind
	Value       float64
	Unit        string
	ObservedAt  time.Time
	QualityFlag string
}

// Source pulls timestamped observations for a station over a bounded time
// range. Implementations apply a fixed per-call HTTP timeout; a failed call
// is terminal for the cycle, there is no retry.
type Source interface {
	// Name tags provenance on readings and ingestion log entries.
	Name() string
	// Endpoint is the base URL recorded in ingestion log entries.
	Endpoint() string
	Fetch(ctx context.Context, stationID string, from, to time.Time) ([]Observation, error)
}
