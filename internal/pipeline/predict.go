package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tidewatch/coastal-monitor/internal/classifier"
	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// PredictionSummary is the structured result of one prediction cycle.
type PredictionSummary struct {
	Locations        int           `json:"locations"`
	Assessments      int           `json:"assessments"`
	SkippedNoData    int           `json:"skipped_no_data"`
	Failed           int           `json:"failed"`
	AlertsCreated    int           `json:"alerts_created"`
	AlertsSuppressed int           `json:"alerts_suppressed"`
	ModelVersion     string        `json:"model_version"`
	Duration         time.Duration `json:"duration"`
}

type predictOutcome struct {
	skipped    bool
	assessment *domain.Assessment
	alert      *domain.Alert
	suppressed bool
	err        error
}

// RunPredictionCycle scores every active location against the classifier
// that is active when the cycle starts. The classifier reference is taken
// once up front: a model reload mid-cycle never splits a cycle across two
// artifacts. Failures are per-location; the summary is always returned.
func (p *Pipeline) RunPredictionCycle(ctx context.Context) PredictionSummary {
	start := time.Now()
	defer p.observeCycle("prediction", start)

	clf := p.models.Active()
	summary := PredictionSummary{ModelVersion: clf.Version()}

	if clf.Version() == classifier.FallbackVersion {
		p.metrics.ModelLoaded.Set(0)
	} else {
		p.metrics.ModelLoaded.Set(1)
	}

	locations, err := p.store.ListActiveLocations(ctx)
	if err != nil {
		p.logger.Error("prediction cycle: list locations failed", "error", err)
		summary.Duration = time.Since(start)
		return summary
	}
	summary.Locations = len(locations)

	for _, loc := range locations {
		outcome := p.predictLocation(ctx, loc, clf)
		switch {
		case outcome.err != nil:
			summary.Failed++
		case outcome.skipped:
			summary.SkippedNoData++
		default:
			summary.Assessments++
		}
		if outcome.alert != nil {
			summary.AlertsCreated++
		}
		if outcome.suppressed {
			summary.AlertsSuppressed++
		}
	}

	summary.Duration = time.Since(start)
	p.logger.Info("prediction cycle complete",
		"locations", summary.Locations,
		"assessments", summary.Assessments,
		"skipped_no_data", summary.SkippedNoData,
		"failed", summary.Failed,
		"alerts_created", summary.AlertsCreated,
		"alerts_suppressed", summary.AlertsSuppressed,
		"model_version", summary.ModelVersion,
		"duration", summary.Duration,
	)
	return summary
}

// predictLocation runs the assemble → score → persist → trigger sequence
// for one location. Steps are strictly sequential: assembly observes
// whatever readings storage holds at this instant.
func (p *Pipeline) predictLocation(ctx context.Context, loc domain.Location, clf classifier.Classifier) predictOutcome {
	features, err := p.assembleFeatures(ctx, loc)
	if errors.Is(err, ErrNoData) {
		p.logger.Warn("no sensor data in window, skipping prediction",
			"station", loc.StationID)
		return predictOutcome{skipped: true}
	}
	if err != nil {
		p.logger.Error("feature assembly failed", "station", loc.StationID, "error", err)
		return predictOutcome{err: err}
	}

	vector := domain.BuildVector(features)

	probability, confidence, err := clf.Score(ctx, vector)
	if err != nil {
		// Contract violation between vector and artifact. Degrade to the
		// fallback stand-in rather than losing the cycle for this location.
		p.logger.Error("classifier scoring failed, using fallback",
			"station", loc.StationID, "model_version", clf.Version(), "error", err)
		clf = classifier.Fallback{}
		probability, confidence, _ = clf.Score(ctx, vector)
	}
	if clf.Version() == classifier.FallbackVersion {
		p.metrics.FallbackScores.Inc()
	}

	assessment := domain.Assessment{
		ID:           uuid.NewString(),
		LocationID:   loc.ID,
		Probability:  probability,
		Level:        domain.LevelFor(probability),
		Confidence:   confidence,
		Features:     features,
		ModelVersion: clf.Version(),
		CreatedAt:    domain.Now(),
	}

	if err := p.store.InsertAssessment(ctx, assessment); err != nil {
		p.logger.Error("store assessment failed", "station", loc.StationID, "error", err)
		return predictOutcome{err: err}
	}
	p.metrics.AssessmentsCreated.Inc()

	outcome := predictOutcome{assessment: &assessment}
	if probability >= p.settings.AlertThreshold {
		outcome.alert, outcome.suppressed = p.triggerAlert(ctx, loc, assessment)
	}
	return outcome
}
