package pipeline

import (
	"context"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// RetentionSummary reports rows deleted per record kind by one sweep.
type RetentionSummary struct {
	Readings       int64         `json:"readings_deleted"`
	Assessments    int64         `json:"assessments_deleted"`
	ResolvedAlerts int64         `json:"resolved_alerts_deleted"`
	IngestionLogs  int64         `json:"ingestion_logs_deleted"`
	Issues         []string      `json:"issues,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// RunRetentionSweep deletes rows past their per-kind horizons. Horizons are
// independent; a failure on one kind is recorded and the others still run.
// The sweep holds no locks and only touches rows already past their cutoff,
// so it is safe to run while ingestion is active. Sweeping an already-clean
// store deletes zero rows.
func (p *Pipeline) RunRetentionSweep(ctx context.Context) RetentionSummary {
	start := time.Now()
	defer p.observeCycle("retention", start)

	var summary RetentionSummary

	for _, sweep := range []struct {
		kind      string
		retention time.Duration
		run       func(ctx context.Context, cutoff time.Time) (int64, error)
		total     *int64
	}{
		{"readings", p.settings.ReadingRetention, p.store.DeleteReadingsBefore, &summary.Readings},
		{"assessments", p.settings.AssessmentRetention, p.store.DeleteAssessmentsBefore, &summary.Assessments},
		{"resolved_alerts", p.settings.ResolvedAlertRetention, p.store.DeleteResolvedAlertsBefore, &summary.ResolvedAlerts},
		{"ingestion_logs", p.settings.IngestionLogRetention, p.store.DeleteIngestionLogsBefore, &summary.IngestionLogs},
	} {
		deleted, err := sweep.run(ctx, domain.Now().Add(-sweep.retention))
		if err != nil {
			p.logger.Error("retention sweep failed", "kind", sweep.kind, "error", err)
			summary.Issues = append(summary.Issues, sweep.kind+": "+err.Error())
			continue
		}
		*sweep.total = deleted
		p.metrics.RetentionDeleted.WithLabelValues(sweep.kind).Add(float64(deleted))
	}

	summary.Duration = time.Since(start)
	p.logger.Info("retention sweep complete",
		"readings", summary.Readings,
		"assessments", summary.Assessments,
		"resolved_alerts", summary.ResolvedAlerts,
		"ingestion_logs", summary.IngestionLogs,
		"duration", summary.Duration,
	)
	return summary
}
