package predict

import (
	"encoding/json"
	"fmt"
	"os"
)

// artifact is the on-disk layout of a pre-trained tabular regressor: a
// linear model exported as JSON with named input coefficients, an
// intercept, and a named output. The artifact is produced offline by a
// training pipeline; this package only reads it.
type artifact struct {
	Inputs    []artifactInput `json:"inputs"`
	Intercept float64         `json:"intercept"`
	Output    string          `json:"output"`
}

type artifactInput struct {
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`
}

// LinearModel is a Model backed by a loaded regression artifact. It is
// immutable after load and safe for concurrent use.
type LinearModel struct {
	inputs    []artifactInput
	intercept float64
	output    string
}

// LoadArtifact reads and validates a regression artifact from disk. A
// missing or malformed file yields ErrModelUnavailable.
func LoadArtifact(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, path, err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, path, err)
	}
	if len(a.Inputs) == 0 || a.Output == "" {
		return nil, fmt.Errorf("%w: artifact %s declares no usable features", ErrModelUnavailable, path)
	}
	return &LinearModel{inputs: a.Inputs, intercept: a.Intercept, output: a.Output}, nil
}

func (m *LinearModel) InputNames() []string {
	names := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		names[i] = in.Name
	}
	return names
}

func (m *LinearModel) OutputNames() []string {
	return []string{m.output}
}

// Predict evaluates the linear form over the supplied inputs. Features
// absent from the input map contribute nothing, matching the best-effort
// binding the caller performs.
func (m *LinearModel) Predict(inputs map[string]float64) (map[string]float64, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs supplied", ErrPredictionFailed)
	}
	value := m.intercept
	for _, in := range m.inputs {
		if v, ok := inputs[in.Name]; ok {
			value += in.Coefficient * v
		}
	}
	return map[string]float64{m.output: value}, nil
}
