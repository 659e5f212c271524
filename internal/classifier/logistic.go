package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LogisticModel is a trained binary logistic regression artifact loaded
// from a JSON weights file. Probability is sigmoid(w·x + b); confidence is
// the maximum class probability, max(p, 1-p).
type LogisticModel struct {
	name    string
	version string
	weights []float64
	bias    float64
}

// logisticFile is the on-disk artifact format exported by the training
// pipeline.
type logisticFile struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LoadLogisticModel reads and validates an artifact file.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var file logisticFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if len(file.Weights) == 0 {
		return nil, fmt.Errorf("model %q has no weights", path)
	}

	return &LogisticModel{
		name:    file.Name,
		version: file.Version,
		weights: file.Weights,
		bias:    file.Bias,
	}, nil
}

func (m *LogisticModel) Score(_ context.Context, features []float64) (float64, float64, error) {
	if len(features) != len(m.weights) {
		return 0, 0, fmt.Errorf("feature vector length %d does not match model width %d", len(features), len(m.weights))
	}

	z := m.bias
	for i, w := range m.weights {
		z += w * features[i]
	}
	p := 1.0 / (1.0 + math.Exp(-z))

	return p, math.Max(p, 1-p), nil
}

func (m *LogisticModel) Version() string {
	return fmt.Sprintf("%s_v%s", m.name, m.version)
}
