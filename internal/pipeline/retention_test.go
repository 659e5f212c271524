package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

func TestRetentionSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 26, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	store := storage.NewMemoryStore()
	loc := insertTestLocation(t, store, "Test Bay", "0001")

	day := 24 * time.Hour
	resolvedAt := now.Add(-45 * day)

	require.NoError(t, store.InsertReadings(ctx, []domain.Reading{
		{LocationID: loc.ID, Kind: domain.KindWaterLevel, Value: 1, ObservedAt: now.Add(-31 * day), CreatedAt: now.Add(-31 * day)},
		{LocationID: loc.ID, Kind: domain.KindWaterLevel, Value: 2, ObservedAt: now.Add(-day), CreatedAt: now.Add(-day)},
	}))
	require.NoError(t, store.InsertAssessment(ctx, domain.Assessment{
		ID: "old-assessment", LocationID: loc.ID, CreatedAt: now.Add(-91 * day),
	}))
	require.NoError(t, store.InsertAssessment(ctx, domain.Assessment{
		ID: "recent-assessment", LocationID: loc.ID, CreatedAt: now.Add(-89 * day),
	}))
	require.NoError(t, store.InsertAlert(ctx, domain.Alert{
		ID: "old-resolved", LocationID: loc.ID, Type: domain.AlertGeneral,
		Status: domain.StatusResolved, CreatedAt: now.Add(-50 * day), ResolvedAt: &resolvedAt,
	}))
	require.NoError(t, store.InsertAlert(ctx, domain.Alert{
		ID: "ancient-active", LocationID: loc.ID, Type: domain.AlertHighWaves,
		Status: domain.StatusActive, CreatedAt: now.Add(-100 * day),
	}))
	require.NoError(t, store.InsertIngestionLog(ctx, domain.IngestionLogEntry{
		Source: "NOAA", StationID: "0001", CreatedAt: now.Add(-8 * day),
	}))

	clf := stubClassifier{probability: 0.1, confidence: 0.9, version: "coastal_risk_v2"}
	p := newTestPipeline(t, store, nil, clf, nil)

	summary := p.RunRetentionSweep(ctx)

	assert.Equal(t, int64(1), summary.Readings)
	assert.Equal(t, int64(1), summary.Assessments)
	assert.Equal(t, int64(1), summary.ResolvedAlerts)
	assert.Equal(t, int64(1), summary.IngestionLogs)
	assert.Empty(t, summary.Issues)

	t.Run("active alerts survive regardless of age", func(t *testing.T) {
		alert, err := store.FindActiveAlert(ctx, loc.ID, domain.AlertHighWaves)
		require.NoError(t, err)
		assert.Equal(t, "ancient-active", alert.ID)
	})

	t.Run("recent rows survive", func(t *testing.T) {
		_, err := store.LatestReading(ctx, loc.ID, domain.KindWaterLevel, now.Add(-2*day))
		assert.NoError(t, err)
	})

	t.Run("repeat sweep deletes nothing", func(t *testing.T) {
		again := p.RunRetentionSweep(ctx)
		assert.Zero(t, again.Readings)
		assert.Zero(t, again.Assessments)
		assert.Zero(t, again.ResolvedAlerts)
		assert.Zero(t, again.IngestionLogs)
	})
}
