package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

// triggerAlert evaluates one threshold-crossing assessment. It derives the
// alert type and severity, suppresses the occurrence when an active alert
// for the same (location, type) already exists, and otherwise creates the
// alert and hands it to the notifier.
//
// The dedup check and the insert are a read-then-write without a spanning
// lock. Concurrent runs for the same (location, type) can race past the
// check and create duplicates; cycle scheduling keeps each location in at
// most one run at a time, so the exposure is limited to ad-hoc
// RunForLocation calls overlapping a cycle. Accepted and documented, not
// locked (see DESIGN.md).
func (p *Pipeline) triggerAlert(ctx context.Context, loc domain.Location, a domain.Assessment) (*domain.Alert, bool) {
	alertType, severity := domain.DeriveAlertKind(a.Level, a.Features)

	existing, err := p.store.FindActiveAlert(ctx, loc.ID, alertType)
	if err == nil {
		p.logger.Info("active alert exists, suppressing duplicate",
			"station", loc.StationID, "type", alertType, "existing_alert", existing.ID)
		p.metrics.AlertsSuppressed.Inc()
		return nil, true
	}
	if !errors.Is(err, storage.ErrNotFound) {
		p.logger.Error("active alert lookup failed", "station", loc.StationID, "error", err)
		return nil, false
	}

	alert := domain.Alert{
		ID:           uuid.NewString(),
		LocationID:   loc.ID,
		AssessmentID: a.ID,
		Type:         alertType,
		Severity:     severity,
		Title:        domain.AlertTitle(alertType, loc.Name),
		Message:      domain.AlertMessage(loc.Name, a.Probability, a.Level),
		Status:       domain.StatusActive,
		CreatedAt:    domain.Now(),
	}

	if err := p.store.InsertAlert(ctx, alert); err != nil {
		p.logger.Error("store alert failed", "station", loc.StationID, "error", err)
		return nil, false
	}

	p.metrics.AlertsCreated.WithLabelValues(string(alertType), string(severity)).Inc()
	p.logger.Info("alert triggered",
		"station", loc.StationID,
		"type", alertType,
		"severity", severity,
		"probability", a.Probability,
	)

	if p.notifier != nil {
		if err := p.notifier.PublishAlertCreated(ctx, alert); err != nil {
			p.logger.Error("publish alert event failed", "alert", alert.ID, "error", err)
		}
	}

	return &alert, false
}
