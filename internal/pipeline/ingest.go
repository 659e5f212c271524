package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/source"
)

// IngestionSummary is the structured result of one ingestion cycle.
type IngestionSummary struct {
	Locations        int           `json:"locations"`
	Attempts         int           `json:"attempts"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	ReadingsStored   int           `json:"readings_stored"`
	ReadingsRejected int           `json:"readings_rejected"`
	Duration         time.Duration `json:"duration"`
}

// attemptResult is the outcome of one (station, source) pull.
type attemptResult struct {
	source   string
	stored   int
	rejected int
	err      error
}

// RunIngestionCycle pulls readings for every active location from every
// configured source. Each (location, source) pair is its own unit of work
// on its own goroutine: a transport failure there is logged and counted
// without touching any other pair. The summary is always returned, even
// when every attempt failed.
func (p *Pipeline) RunIngestionCycle(ctx context.Context) IngestionSummary {
	start := time.Now()
	defer p.observeCycle("ingestion", start)

	var summary IngestionSummary

	locations, err := p.store.ListActiveLocations(ctx)
	if err != nil {
		p.logger.Error("ingestion cycle: list locations failed", "error", err)
		summary.Duration = time.Since(start)
		return summary
	}
	summary.Locations = len(locations)

	var (
		wg      sync.WaitGroup
		results = make(chan attemptResult, len(locations)*len(p.sources))
	)
	for _, loc := range locations {
		for _, src := range p.sources {
			wg.Add(1)
			go func(loc domain.Location, src source.Source) {
				defer wg.Done()
				results <- p.ingestOne(ctx, loc, src)
			}(loc, src)
		}
	}
	wg.Wait()
	close(results)

	for r := range results {
		summary.Attempts++
		summary.ReadingsStored += r.stored
		summary.ReadingsRejected += r.rejected
		if r.err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	summary.Duration = time.Since(start)
	p.logger.Info("ingestion cycle complete",
		"locations", summary.Locations,
		"attempts", summary.Attempts,
		"failed", summary.Failed,
		"readings_stored", summary.ReadingsStored,
		"readings_rejected", summary.ReadingsRejected,
		"duration", summary.Duration,
	)
	return summary
}

// ingestLocation runs every source against one location concurrently and
// returns all attempt results.
func (p *Pipeline) ingestLocation(ctx context.Context, loc domain.Location) []attemptResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []attemptResult
	)
	for _, src := range p.sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			r := p.ingestOne(ctx, loc, src)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return results
}

// ingestOne performs a single (station, source) pull: fetch, validate,
// store, and write exactly one ingestion log entry regardless of outcome.
//
// Overlapping pull windows are not deduplicated: re-ingesting the same
// hour may store duplicate readings. That matches the upstream system and
// is harmless to latest-reading queries; see DESIGN.md.
func (p *Pipeline) ingestOne(ctx context.Context, loc domain.Location, src source.Source) attemptResult {
	start := time.Now()
	result := attemptResult{source: src.Name()}

	to := domain.Now()
	from := to.Add(-p.settings.IngestWindow)

	observations, err := src.Fetch(ctx, loc.StationID, from, to)
	if err != nil {
		result.err = err
		p.logger.Error("ingestion attempt failed",
			"source", src.Name(), "station", loc.StationID, "error", err)
		p.metrics.IngestionAttempts.WithLabelValues(src.Name(), "error").Inc()
		p.logAttempt(ctx, loc, src, domain.IngestionError, 0, 0, err.Error(), time.Since(start))
		return result
	}

	readings := make([]domain.Reading, 0, len(observations))
	for _, obs := range observations {
		if !domain.ValidateReading(obs.Kind, obs.Value) {
			result.rejected++
			p.logger.Warn("reading rejected by validation",
				"source", src.Name(), "station", loc.StationID,
				"kind", obs.Kind, "value", obs.Value)
			continue
		}
		readings = append(readings, domain.Reading{
			LocationID:  loc.ID,
			Kind:        obs.Kind,
			Value:       obs.Value,
			Unit:        obs.Unit,
			ObservedAt:  obs.ObservedAt,
			Source:      src.Name(),
			QualityFlag: obs.QualityFlag,
		})
	}

	if err := p.store.InsertReadings(ctx, readings); err != nil {
		result.err = err
		p.logger.Error("ingestion attempt failed to store readings",
			"source", src.Name(), "station", loc.StationID, "error", err)
		p.metrics.IngestionAttempts.WithLabelValues(src.Name(), "error").Inc()
		p.logAttempt(ctx, loc, src, domain.IngestionError, 0, result.rejected, err.Error(), time.Since(start))
		return result
	}

	result.stored = len(readings)
	p.metrics.ReadingsIngested.Add(float64(result.stored))
	p.metrics.ReadingsRejected.Add(float64(result.rejected))
	p.metrics.IngestionAttempts.WithLabelValues(src.Name(), "success").Inc()
	p.metrics.IngestionDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	p.logAttempt(ctx, loc, src, domain.IngestionSuccess, result.stored, result.rejected, "", time.Since(start))
	return result
}

func (p *Pipeline) logAttempt(ctx context.Context, loc domain.Location, src source.Source, status domain.IngestionStatus, records, rejected int, errMsg string, elapsed time.Duration) {
	entry := domain.IngestionLogEntry{
		Source:           src.Name(),
		StationID:        loc.StationID,
		Endpoint:         src.Endpoint(),
		Status:           status,
		RecordsProcessed: records,
		RecordsRejected:  rejected,
		ErrorMessage:     errMsg,
		Duration:         elapsed,
	}
	if err := p.store.InsertIngestionLog(ctx, entry); err != nil {
		p.logger.Error("write ingestion log failed",
			"source", src.Name(), "station", loc.StationID, "error", err)
	}
}
