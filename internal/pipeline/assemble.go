package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

// assembleFeatures builds the named feature snapshot for a location from
// the most recent reading of each canonical kind within the lookback
// window. Kinds with no reading substitute their domain default; that is a
// normal result. ErrNoData is returned only when the window holds zero
// readings of any kind at all: a window with only non-canonical readings
// (such as USGS discharge) still assembles an all-defaults snapshot.
//
// Ties on observed timestamp resolve to the most recently inserted reading
// (the storage contract's tie-break rule).
func (p *Pipeline) assembleFeatures(ctx context.Context, loc domain.Location) (map[string]float64, error) {
	since := domain.Now().Add(-p.settings.FeatureWindow)

	has, err := p.store.HasReadingsInWindow(ctx, loc.ID, since)
	if err != nil {
		return nil, fmt.Errorf("check readings in window: %w", err)
	}
	if !has {
		return nil, ErrNoData
	}

	features := make(map[string]float64, len(domain.FeatureColumns)+1)
	for kind, def := range domain.MeasurementDefaults {
		reading, err := p.store.LatestReading(ctx, loc.ID, kind, since)
		switch {
		case err == nil:
			features[string(kind)] = reading.Value
		case errors.Is(err, storage.ErrNotFound):
			features[string(kind)] = def
		default:
			return nil, fmt.Errorf("latest %s reading: %w", kind, err)
		}
	}
	return features, nil
}
