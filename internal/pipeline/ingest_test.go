package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/source"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

// loggingStore wraps a MemoryStore and records ingestion log writes.
type loggingStore struct {
	*storage.MemoryStore

	mu        sync.Mutex
	logged    []domain.IngestionLogEntry
	insertErr error
}

func (s *loggingStore) InsertReadings(ctx context.Context, readings []domain.Reading) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemoryStore.InsertReadings(ctx, readings)
}

func (s *loggingStore) InsertIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error {
	s.mu.Lock()
	s.logged = append(s.logged, entry)
	s.mu.Unlock()
	return s.MemoryStore.InsertIngestionLog(ctx, entry)
}

func (s *loggingStore) entriesFor(sourceName string) []domain.IngestionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.IngestionLogEntry
	for _, e := range s.logged {
		if e.Source == sourceName {
			out = append(out, e)
		}
	}
	return out
}

func TestIngestionCycle_FailureIsolation(t *testing.T) {
	ctx := context.Background()

	store := &loggingStore{MemoryStore: storage.NewMemoryStore()}
	loc := insertTestLocation(t, store.MemoryStore, "Test Bay", "0001")

	good := &stubSource{name: "NOAA", observations: []source.Observation{
		{Kind: domain.KindWaterLevel, Value: 2.1, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
		{Kind: domain.KindWindSpeed, Value: 12.0, Unit: "m/s", ObservedAt: domain.Now(), QualityFlag: "good"},
	}}
	bad := &stubSource{name: "USGS", err: errors.New("connection refused")}

	clf := stubClassifier{probability: 0.1, confidence: 0.9, version: "coastal_risk_v2"}
	p := newTestPipeline(t, store, []source.Source{good, bad}, clf, nil)

	summary := p.RunIngestionCycle(ctx)

	assert.Equal(t, 1, summary.Locations)
	assert.Equal(t, 2, summary.Attempts)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.ReadingsStored)

	r, err := store.LatestReading(ctx, loc.ID, domain.KindWaterLevel, domain.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2.1, r.Value)
	assert.Equal(t, "NOAA", r.Source)
}

func TestIngestionCycle_OneLogEntryPerAttempt(t *testing.T) {
	ctx := context.Background()

	store := &loggingStore{MemoryStore: storage.NewMemoryStore()}
	insertTestLocation(t, store.MemoryStore, "Test Bay", "0001")
	insertTestLocation(t, store.MemoryStore, "North Point", "0002")

	good := &stubSource{name: "NOAA", observations: []source.Observation{
		{Kind: domain.KindWaterLevel, Value: 2.1, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
	}}
	bad := &stubSource{name: "USGS", err: errors.New("connection refused")}

	clf := stubClassifier{probability: 0.1, confidence: 0.9, version: "coastal_risk_v2"}
	p := newTestPipeline(t, store, []source.Source{good, bad}, clf, nil)

	p.RunIngestionCycle(ctx)

	require.Len(t, store.logged, 4, "one entry per (location, source) attempt")

	for _, e := range store.entriesFor("NOAA") {
		assert.Equal(t, domain.IngestionSuccess, e.Status)
		assert.Equal(t, 1, e.RecordsProcessed)
		assert.Empty(t, e.ErrorMessage)
		assert.Equal(t, "stub://NOAA", e.Endpoint)
	}
	for _, e := range store.entriesFor("USGS") {
		assert.Equal(t, domain.IngestionError, e.Status)
		assert.Zero(t, e.RecordsProcessed)
		assert.Equal(t, "connection refused", e.ErrorMessage)
	}
}

func TestIngestion_ValidationRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()

	store := &loggingStore{MemoryStore: storage.NewMemoryStore()}
	loc := insertTestLocation(t, store.MemoryStore, "Test Bay", "0001")

	src := &stubSource{name: "NOAA", observations: []source.Observation{
		{Kind: domain.KindWaterLevel, Value: 25.0, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
		{Kind: domain.KindWaterLevel, Value: 2.5, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
		{Kind: domain.KindWindSpeed, Value: -3.0, Unit: "m/s", ObservedAt: domain.Now(), QualityFlag: "good"},
	}}

	clf := stubClassifier{probability: 0.1, confidence: 0.9, version: "coastal_risk_v2"}
	p := newTestPipeline(t, store, []source.Source{src}, clf, nil)

	summary := p.RunIngestionCycle(ctx)

	assert.Equal(t, 1, summary.Succeeded, "rejection is not an attempt failure")
	assert.Equal(t, 1, summary.ReadingsStored)
	assert.Equal(t, 2, summary.ReadingsRejected)

	r, err := store.LatestReading(ctx, loc.ID, domain.KindWaterLevel, domain.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2.5, r.Value)

	entries := store.entriesFor("NOAA")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.IngestionSuccess, entries[0].Status)
	assert.Equal(t, 1, entries[0].RecordsProcessed, "only stored readings count as processed")
	assert.Equal(t, 2, entries[0].RecordsRejected)
}

func TestIngestion_StoreFailureLogsError(t *testing.T) {
	ctx := context.Background()

	store := &loggingStore{MemoryStore: storage.NewMemoryStore(), insertErr: errors.New("connection pool exhausted")}
	insertTestLocation(t, store.MemoryStore, "Test Bay", "0001")

	src := &stubSource{name: "NOAA", observations: []source.Observation{
		{Kind: domain.KindWaterLevel, Value: 2.5, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
		{Kind: domain.KindWaterLevel, Value: 25.0, Unit: "meters", ObservedAt: domain.Now(), QualityFlag: "good"},
	}}

	clf := stubClassifier{probability: 0.1, confidence: 0.9, version: "coastal_risk_v2"}
	p := newTestPipeline(t, store, []source.Source{src}, clf, nil)

	summary := p.RunIngestionCycle(ctx)

	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.ReadingsStored)

	entries := store.entriesFor("NOAA")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.IngestionError, entries[0].Status)
	assert.Equal(t, "connection pool exhausted", entries[0].ErrorMessage)
	assert.Zero(t, entries[0].RecordsProcessed)
	assert.Equal(t, 1, entries[0].RecordsRejected, "rejections established before the store failure are kept")
}
