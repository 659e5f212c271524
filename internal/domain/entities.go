package domain

import "time"

// MeasurementKind identifies what a sensor reading measures. The canonical
// kinds are enumerated below; kinds outside the enumeration (such as USGS
// discharge) are stored as-is and skip range validation.
type MeasurementKind string

const (
	KindWaterLevel       MeasurementKind = "water_level"
	KindWaveHeight       MeasurementKind = "wave_height"
	KindWindSpeed        MeasurementKind = "wind_speed"
	KindWindDirection    MeasurementKind = "wind_direction"
	KindAirPressure      MeasurementKind = "air_pressure"
	KindWaterTemperature MeasurementKind = "water_temperature"
	KindSalinity         MeasurementKind = "salinity"
)

// RiskLevel is the categorical form of a risk probability.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// AlertType categorizes the hazard an alert describes.
type AlertType string

const (
	AlertStormSurge      AlertType = "storm_surge"
	AlertHighWaves       AlertType = "high_waves"
	AlertCoastalFlooding AlertType = "coastal_flooding"
	AlertErosion         AlertType = "erosion"
	AlertWaterQuality    AlertType = "water_quality"
	AlertGeneral         AlertType = "general"
)

// Severity grades how urgent an alert is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityUrgent   Severity = "urgent"
	SeverityCritical Severity = "critical"
)

// AlertStatus tracks an alert's lifecycle. The only permitted transition is
// active → resolved (or dismissed by an operator); alerts are never reopened.
type AlertStatus string

const (
	StatusActive    AlertStatus = "active"
	StatusResolved  AlertStatus = "resolved"
	StatusDismissed AlertStatus = "dismissed"
)

// IngestionStatus records the outcome of one ingestion attempt.
type IngestionStatus string

const (
	IngestionSuccess IngestionStatus = "success"
	IngestionError   IngestionStatus = "error"
)

// Location is a coastal monitoring station. StationID is the stable external
// identifier used by the data sources; it is unique across locations.
type Location struct {
	ID        int64   `json:"id"`
	StationID string  `json:"station_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`  // [-90, 90]
	Longitude float64 `json:"longitude"` // [-180, 180]
	Active    bool    `json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

// Reading is one timestamped sensor observation. Immutable once stored.
// ObservedAt is the instant the sensor reported; CreatedAt is when the
// reading entered storage. The two routinely differ.
type Reading struct {
	ID          int64           `json:"id"`
	LocationID  int64           `json:"location_id"`
	Kind        MeasurementKind `json:"kind"`
	Value       float64         `json:"value"`
	Unit        string          `json:"unit"`
	ObservedAt  time.Time       `json:"observed_at"`
	Source      string          `json:"source"` // e.g. "NOAA", "USGS"
	QualityFlag string          `json:"quality_flag"`

	CreatedAt time.Time `json:"created_at"`
}

// Assessment is one classifier-derived risk evaluation for a location.
// Append-only; the feature snapshot preserves the exact model input.
type Assessment struct {
	ID           string             `json:"id"`
	LocationID   int64              `json:"location_id"`
	Probability  float64            `json:"probability"` // [0, 1]
	Level        RiskLevel          `json:"level"`
	Confidence   float64            `json:"confidence"` // [0, 1]
	Features     map[string]float64 `json:"features"`
	ModelVersion string             `json:"model_version"`

	CreatedAt time.Time `json:"created_at"`
}

// Alert is a user-facing notification spawned by an assessment crossing the
// alert threshold. Its lifecycle is independent of the assessment.
type Alert struct {
	ID           string      `json:"id"`
	LocationID   int64       `json:"location_id"`
	AssessmentID string      `json:"assessment_id"`
	Type         AlertType   `json:"type"`
	Severity     Severity    `json:"severity"`
	Title        string      `json:"title"`
	Message      string      `json:"message"`
	Status       AlertStatus `json:"status"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// IngestionLogEntry records one ingestion attempt for one (station, source)
// pair. Write-once; consumed only by observability queries and retention.
type IngestionLogEntry struct {
	ID               int64           `json:"id"`
	Source           string          `json:"source"`
	StationID        string          `json:"station_id"`
	Endpoint         string          `json:"endpoint"`
	Status           IngestionStatus `json:"status"`
	RecordsProcessed int             `json:"records_processed"`
	RecordsRejected  int             `json:"records_rejected"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	Duration         time.Duration   `json:"duration"`

	CreatedAt time.Time `json:"created_at"`
}
