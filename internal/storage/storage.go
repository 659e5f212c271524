// Package storage defines the persistence contract for the monitoring
// pipeline and provides two implementations: a Postgres store for
// production and an in-memory store for tests and local runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyResolved indicates a resolve call on an alert that has
	// already left the active state. ResolvedAt is never overwritten.
	ErrAlreadyResolved = errors.New("alert already resolved")
)

// Store is the persistence contract the pipeline runs against.
//
// Latest-reading queries order by observed timestamp descending; readings
// with equal timestamps resolve to the most recently inserted row. Both
// implementations honor that tie-break.
type Store interface {
	LocationStore
	ReadingStore
	AssessmentStore
	AlertStore
	IngestionLogStore
	RetentionStore
}

// LocationStore manages monitoring stations.
type LocationStore interface {
	InsertLocation(ctx context.Context, loc *domain.Location) error
	ListActiveLocations(ctx context.Context) ([]domain.Location, error)
	// GetLocationByStation returns ErrNotFound for unknown station ids.
	GetLocationByStation(ctx context.Context, stationID string) (domain.Location, error)
}

// ReadingStore persists and queries sensor readings.
type ReadingStore interface {
	InsertReadings(ctx context.Context, readings []domain.Reading) error
	// LatestReading returns the most recent reading of the kind observed at
	// or after since, or ErrNotFound when none exists.
	LatestReading(ctx context.Context, locationID int64, kind domain.MeasurementKind, since time.Time) (domain.Reading, error)
	// HasReadingsInWindow reports whether any reading of any kind,
	// canonical or not, was observed at or after since for the location.
	HasReadingsInWindow(ctx context.Context, locationID int64, since time.Time) (bool, error)
	// CountReadingsSince counts readings created at or after since,
	// system-wide when locationID is zero, otherwise for that location.
	CountReadingsSince(ctx context.Context, locationID int64, since time.Time) (int, error)
}

// AssessmentStore persists risk assessments (append-only).
type AssessmentStore interface {
	InsertAssessment(ctx context.Context, a domain.Assessment) error
}

// AlertStore persists alerts and their single lifecycle transition.
type AlertStore interface {
	InsertAlert(ctx context.Context, a domain.Alert) error
	// FindActiveAlert returns the active alert for the (location, type)
	// pair, or ErrNotFound when there is none.
	FindActiveAlert(ctx context.Context, locationID int64, alertType domain.AlertType) (domain.Alert, error)
	// ResolveAlert transitions an active alert to resolved and stamps
	// ResolvedAt. Returns ErrAlreadyResolved if the alert is no longer
	// active and ErrNotFound if it does not exist.
	ResolveAlert(ctx context.Context, alertID string) error
	// CountActiveAlertsOlderThan counts alerts still active that were
	// created before the cutoff.
	CountActiveAlertsOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// IngestionLogStore records ingestion attempts.
type IngestionLogStore interface {
	InsertIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error
}

// RetentionStore deletes aged rows. Each method returns the number of rows
// removed; deleting from an empty set is not an error.
type RetentionStore interface {
	DeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAssessmentsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// DeleteResolvedAlertsBefore removes resolved alerts whose ResolvedAt
	// precedes the cutoff. Active alerts are never swept.
	DeleteResolvedAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteIngestionLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
