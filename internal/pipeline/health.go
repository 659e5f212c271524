package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// HealthReport is the structured result of one diagnostic pass.
type HealthReport struct {
	Status               string   `json:"status"` // "healthy" or "warning"
	Issues               []string `json:"issues,omitempty"`
	RecentReadingCount   int      `json:"recent_reading_count"`
	StuckAlerts          int      `json:"stuck_alerts"`
	LocationsWithoutData []string `json:"locations_without_data,omitempty"`
}

// Healthy reports whether the pass found no issues.
func (r HealthReport) Healthy() bool { return r.Status == "healthy" }

// RunHealthCheck is a read-only diagnostic pass. It flags a system-wide
// ingestion stall, alerts stuck active past the configured age, and
// individual active locations with no recent readings. It mutates nothing
// and never creates alerts; query errors surface as issues in the report.
func (p *Pipeline) RunHealthCheck(ctx context.Context) HealthReport {
	defer p.observeCycle("health", time.Now())

	report := HealthReport{Status: "healthy"}
	recentCutoff := domain.Now().Add(-p.settings.RecentDataWindow)

	recentCount, err := p.store.CountReadingsSince(ctx, 0, recentCutoff)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("count recent readings: %v", err))
	} else {
		report.RecentReadingCount = recentCount
		if recentCount == 0 {
			report.Issues = append(report.Issues, "No recent sensor data ingested")
		}
	}

	stuckCutoff := domain.Now().Add(-p.settings.StuckAlertAge)
	stuck, err := p.store.CountActiveAlertsOlderThan(ctx, stuckCutoff)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("count stuck alerts: %v", err))
	} else {
		report.StuckAlerts = stuck
		if stuck > 0 {
			report.Issues = append(report.Issues,
				fmt.Sprintf("%d alerts have been active for more than %d hours", stuck, int(p.settings.StuckAlertAge.Hours())))
		}
	}

	locations, err := p.store.ListActiveLocations(ctx)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("list locations: %v", err))
	} else {
		for _, loc := range locations {
			count, err := p.store.CountReadingsSince(ctx, loc.ID, recentCutoff)
			if err != nil {
				report.Issues = append(report.Issues, fmt.Sprintf("count readings for %s: %v", loc.StationID, err))
				continue
			}
			if count == 0 {
				report.LocationsWithoutData = append(report.LocationsWithoutData, loc.Name)
			}
		}
		if len(report.LocationsWithoutData) > 0 {
			report.Issues = append(report.Issues,
				"No recent data for locations: "+strings.Join(report.LocationsWithoutData, ", "))
		}
	}

	if len(report.Issues) > 0 {
		report.Status = "warning"
		p.logger.Warn("health check found issues", "issues", strings.Join(report.Issues, "; "))
	} else {
		p.logger.Info("health check passed", "recent_readings", report.RecentReadingCount)
	}
	return report
}
