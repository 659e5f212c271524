package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// PostgresStore implements Store on a pgx connection pool.
//
// The partial index on (location_id, alert_type) WHERE status='active' is
// deliberately non-unique: the dedup invariant is enforced by the alert
// trigger's read-then-insert check, and the remaining race window under
// concurrent runs for the same pair is an accepted, documented risk.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the embedded schema files in lexical order. Statements are
// idempotent (IF NOT EXISTS), so running at every startup is safe.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) InsertLocation(ctx context.Context, loc *domain.Location) error {
	err := s.pool.QueryRow(ctx, `
        INSERT INTO locations (station_id, name, latitude, longitude, active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (station_id) DO UPDATE
            SET name = EXCLUDED.name,
                latitude = EXCLUDED.latitude,
                longitude = EXCLUDED.longitude,
                active = EXCLUDED.active
        RETURNING id, created_at
    `, loc.StationID, loc.Name, loc.Latitude, loc.Longitude, loc.Active).
		Scan(&loc.ID, &loc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, station_id, name, latitude, longitude, active, created_at
        FROM locations
        WHERE active
        ORDER BY name
    `)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.StationID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Active, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLocationByStation(ctx context.Context, stationID string) (domain.Location, error) {
	var loc domain.Location
	err := s.pool.QueryRow(ctx, `
        SELECT id, station_id, name, latitude, longitude, active, created_at
        FROM locations
        WHERE station_id = $1
    `, stationID).Scan(&loc.ID, &loc.StationID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Active, &loc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Location{}, ErrNotFound
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	return loc, nil
}

func (s *PostgresStore) InsertReadings(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(`
            INSERT INTO readings (location_id, kind, value, unit, observed_at, source, quality_flag)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, r.LocationID, r.Kind, r.Value, r.Unit, r.ObservedAt, r.Source, r.QualityFlag)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range readings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) LatestReading(ctx context.Context, locationID int64, kind domain.MeasurementKind, since time.Time) (domain.Reading, error) {
	var r domain.Reading
	// id DESC breaks observed_at ties in favor of the later insert.
	err := s.pool.QueryRow(ctx, `
        SELECT id, location_id, kind, value, unit, observed_at, source, quality_flag, created_at
        FROM readings
        WHERE location_id = $1 AND kind = $2 AND observed_at >= $3
        ORDER BY observed_at DESC, id DESC
        LIMIT 1
    `, locationID, kind, since).
		Scan(&r.ID, &r.LocationID, &r.Kind, &r.Value, &r.Unit, &r.ObservedAt, &r.Source, &r.QualityFlag, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reading{}, ErrNotFound
	}
	if err != nil {
		return domain.Reading{}, fmt.Errorf("latest reading: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) HasReadingsInWindow(ctx context.Context, locationID int64, since time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM readings WHERE location_id = $1 AND observed_at >= $2
        )
    `, locationID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check readings in window: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CountReadingsSince(ctx context.Context, locationID int64, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM readings
        WHERE created_at >= $1 AND ($2 = 0 OR location_id = $2)
    `, since, locationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) InsertAssessment(ctx context.Context, a domain.Assessment) error {
	features, err := json.Marshal(a.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO assessments (id, location_id, probability, level, confidence, features, model_version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
    `, a.ID, a.LocationID, a.Probability, a.Level, a.Confidence, string(features), a.ModelVersion, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertAlert(ctx context.Context, a domain.Alert) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO alerts (id, location_id, assessment_id, alert_type, severity, title, message, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, a.ID, a.LocationID, a.AssessmentID, a.Type, a.Severity, a.Title, a.Message, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActiveAlert(ctx context.Context, locationID int64, alertType domain.AlertType) (domain.Alert, error) {
	var a domain.Alert
	err := s.pool.QueryRow(ctx, `
        SELECT id, location_id, assessment_id, alert_type, severity, title, message, status, created_at, resolved_at
        FROM alerts
        WHERE location_id = $1 AND alert_type = $2 AND status = 'active'
        ORDER BY created_at DESC
        LIMIT 1
    `, locationID, alertType).
		Scan(&a.ID, &a.LocationID, &a.AssessmentID, &a.Type, &a.Severity, &a.Title, &a.Message, &a.Status, &a.CreatedAt, &a.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Alert{}, ErrNotFound
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("find active alert: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, alertID string) error {
	cmd, err := s.pool.Exec(ctx, `
        UPDATE alerts
        SET status = 'resolved', resolved_at = NOW()
        WHERE id = $1 AND status = 'active'
    `, alertID)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var status string
		err := s.pool.QueryRow(ctx, `SELECT status FROM alerts WHERE id = $1`, alertID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("resolve alert: %w", err)
		}
		return ErrAlreadyResolved
	}
	return nil
}

func (s *PostgresStore) CountActiveAlertsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM alerts WHERE status = 'active' AND created_at < $1
    `, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stuck alerts: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) InsertIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO ingestion_log (source, station_id, endpoint, status, records_processed, records_rejected, error_message, duration_ms)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, entry.Source, entry.StationID, entry.Endpoint, entry.Status, entry.RecordsProcessed, entry.RecordsRejected, entry.ErrorMessage, entry.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert ingestion log: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM readings WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) DeleteAssessmentsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM assessments WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete assessments: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) DeleteResolvedAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `
        DELETE FROM alerts WHERE status = 'resolved' AND resolved_at < $1
    `, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) DeleteIngestionLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM ingestion_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete ingestion logs: %w", err)
	}
	return cmd.RowsAffected(), nil
}
