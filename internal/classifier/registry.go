package classifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// manifestEntry describes one registered artifact. Exactly one entry is
// expected to be active; with several, the first active entry wins.
type manifestEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"` // relative to the manifest directory
	Active  bool   `json:"active"`
}

// Registry selects and holds the active classifier. The active
// implementation lives behind an atomic pointer: Reload swaps it in one
// store, and scoring calls already holding the previous pointer finish
// against the old artifact undisturbed.
//
// Loading failures never propagate: the registry degrades to the Fallback
// stand-in and logs why.
type Registry struct {
	manifestPath string
	logger       *slog.Logger
	active       atomic.Pointer[Classifier]
}

// NewRegistry creates a registry and performs the initial load. Pass an
// empty manifest path to run on the fallback permanently.
func NewRegistry(manifestPath string, logger *slog.Logger) *Registry {
	r := &Registry{manifestPath: manifestPath, logger: logger}
	r.Reload()
	return r
}

// Active returns the current classifier. Callers grab it once at the start
// of a pipeline run and use that reference throughout, so a mid-run Reload
// can never make one run observe two different models.
func (r *Registry) Active() Classifier {
	return *r.active.Load()
}

// Reload re-reads the manifest and atomically swaps the active classifier.
func (r *Registry) Reload() {
	c := r.load()
	r.active.Store(&c)
}

func (r *Registry) load() Classifier {
	if r.manifestPath == "" {
		r.logger.Warn("no model manifest configured, scoring with fallback")
		return Fallback{}
	}

	entry, err := r.activeEntry()
	if err != nil {
		r.logger.Error("model manifest unusable, scoring with fallback", "error", err)
		return Fallback{}
	}

	modelPath := entry.Path
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(filepath.Dir(r.manifestPath), modelPath)
	}

	model, err := LoadLogisticModel(modelPath)
	if err != nil {
		r.logger.Error("model artifact failed to load, scoring with fallback",
			"model", entry.Name, "version", entry.Version, "error", err)
		return Fallback{}
	}

	r.logger.Info("model artifact loaded", "version", model.Version())
	return model
}

func (r *Registry) activeEntry() (manifestEntry, error) {
	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		return manifestEntry{}, fmt.Errorf("read manifest: %w", err)
	}

	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return manifestEntry{}, fmt.Errorf("parse manifest: %w", err)
	}

	for _, e := range entries {
		if e.Active {
			return e, nil
		}
	}
	return manifestEntry{}, fmt.Errorf("no active model in manifest")
}
