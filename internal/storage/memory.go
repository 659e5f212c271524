package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// MemoryStore is a mutex-guarded Store used by tests and local runs.
// Slices preserve insertion order, which is what gives latest-reading
// queries their tie-break: a scan keeps `>=` matches, so among equal
// observed timestamps the later insert wins.
type MemoryStore struct {
	mu sync.Mutex

	locations   []domain.Location
	readings    []domain.Reading
	assessments []domain.Assessment
	alerts      []domain.Alert
	logs        []domain.IngestionLogEntry

	nextLocationID int64
	nextReadingID  int64
	nextLogID      int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextLocationID: 1, nextReadingID: 1, nextLogID: 1}
}

func (s *MemoryStore) InsertLocation(_ context.Context, loc *domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc.ID = s.nextLocationID
	s.nextLocationID++
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = domain.Now()
	}
	s.locations = append(s.locations, *loc)
	return nil
}

func (s *MemoryStore) ListActiveLocations(_ context.Context) ([]domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Location
	for _, loc := range s.locations {
		if loc.Active {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetLocationByStation(_ context.Context, stationID string) (domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, loc := range s.locations {
		if strings.EqualFold(loc.StationID, stationID) {
			return loc, nil
		}
	}
	return domain.Location{}, ErrNotFound
}

func (s *MemoryStore) InsertReadings(_ context.Context, readings []domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range readings {
		r.ID = s.nextReadingID
		s.nextReadingID++
		if r.CreatedAt.IsZero() {
			r.CreatedAt = domain.Now()
		}
		s.readings = append(s.readings, r)
	}
	return nil
}

func (s *MemoryStore) LatestReading(_ context.Context, locationID int64, kind domain.MeasurementKind, since time.Time) (domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  domain.Reading
		found bool
	)
	for _, r := range s.readings {
		if r.LocationID != locationID || r.Kind != kind || r.ObservedAt.Before(since) {
			continue
		}
		if !found || !r.ObservedAt.Before(best.ObservedAt) {
			best = r
			found = true
		}
	}
	if !found {
		return domain.Reading{}, ErrNotFound
	}
	return best, nil
}

func (s *MemoryStore) HasReadingsInWindow(_ context.Context, locationID int64, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.readings {
		if r.LocationID == locationID && !r.ObservedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CountReadingsSince(_ context.Context, locationID int64, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.readings {
		if locationID != 0 && r.LocationID != locationID {
			continue
		}
		if !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertAssessment(_ context.Context, a domain.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = domain.Now()
	}
	s.assessments = append(s.assessments, a)
	return nil
}

func (s *MemoryStore) InsertAlert(_ context.Context, a domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = domain.Now()
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *MemoryStore) FindActiveAlert(_ context.Context, locationID int64, alertType domain.AlertType) (domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.LocationID == locationID && a.Type == alertType && a.Status == domain.StatusActive {
			return a, nil
		}
	}
	return domain.Alert{}, ErrNotFound
}

func (s *MemoryStore) ResolveAlert(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID != alertID {
			continue
		}
		if s.alerts[i].Status != domain.StatusActive {
			return ErrAlreadyResolved
		}
		now := domain.Now()
		s.alerts[i].Status = domain.StatusResolved
		s.alerts[i].ResolvedAt = &now
		return nil
	}
	return ErrNotFound
}

func (s *MemoryStore) CountActiveAlertsOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, a := range s.alerts {
		if a.Status == domain.StatusActive && a.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertIngestionLog(_ context.Context, entry domain.IngestionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextLogID
	s.nextLogID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = domain.Now()
	}
	s.logs = append(s.logs, entry)
	return nil
}

func (s *MemoryStore) DeleteReadingsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.readings[:0]
	var deleted int64
	for _, r := range s.readings {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.readings = kept
	return deleted, nil
}

func (s *MemoryStore) DeleteAssessmentsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assessments[:0]
	var deleted int64
	for _, a := range s.assessments {
		if a.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	s.assessments = kept
	return deleted, nil
}

func (s *MemoryStore) DeleteResolvedAlertsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.alerts[:0]
	var deleted int64
	for _, a := range s.alerts {
		if a.Status == domain.StatusResolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	return deleted, nil
}

func (s *MemoryStore) DeleteIngestionLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.logs[:0]
	var deleted int64
	for _, e := range s.logs {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.logs = kept
	return deleted, nil
}
