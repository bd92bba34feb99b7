// Package predict produces a next-month expense forecast from cumulative
// income and expense totals. A pre-trained regression model is preferred
// when one is configured; every model failure falls back to a
// deterministic heuristic, so callers always receive a number.
package predict

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrModelUnavailable reports a missing or unloadable model artifact.
	ErrModelUnavailable = errors.New("prediction model unavailable")
	// ErrPredictionFailed reports malformed inputs or outputs at inference time.
	ErrPredictionFailed = errors.New("prediction failed")
)

// Model is the capability offered by a loaded regression artifact: named
// numeric inputs in, named numeric outputs out.
type Model interface {
	InputNames() []string
	OutputNames() []string
	Predict(inputs map[string]float64) (map[string]float64, error)
}

// Roles maps the two semantic inputs and the output to the name patterns
// used to locate them among a model's declared features. Matching is a
// case-insensitive substring test, mirroring how the artifact was trained
// with loosely conventional column names.
type Roles struct {
	Income  []string
	Expense []string
	Output  []string
}

// DefaultRoles returns the conventional pattern set.
func DefaultRoles() Roles {
	return Roles{
		Income:  []string{"income"},
		Expense: []string{"expense"},
		Output:  []string{"next", "predict", "expense", "output"},
	}
}

func matchName(names []string, patterns []string) (string, bool) {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, p := range patterns {
			if strings.Contains(lower, p) {
				return name, true
			}
		}
	}
	return "", false
}

// Predictor computes the forecast. The zero value is unusable; construct
// with NewHeuristic or NewModelBacked. A model-backed predictor loads its
// model lazily at most once per process: the first Predict call triggers
// the load, and a load failure is permanent for the process lifetime.
// After a successful load the cached handle is read-only, so concurrent
// Predict calls are safe without further locking.
type Predictor struct {
	roles Roles

	loader   func() (Model, error)
	loadOnce sync.Once
	model    Model
	loadErr  error
}

// NewHeuristic returns a predictor that always uses the fallback formula.
func NewHeuristic() *Predictor {
	return &Predictor{roles: DefaultRoles()}
}

// NewModelBacked returns a predictor that lazily loads a model via loader
// on first use and prefers it over the heuristic.
func NewModelBacked(loader func() (Model, error), roles Roles) *Predictor {
	return &Predictor{roles: roles, loader: loader}
}

// Predict returns the forecast for next month's total expense. Model
// failures of any kind are absorbed silently into the heuristic; they are
// never surfaced, retried, or raised to the caller.
func (p *Predictor) Predict(totalIncome, totalExpense float64) float64 {
	if value, ok := p.fromModel(totalIncome, totalExpense); ok {
		return value
	}
	return Heuristic(totalIncome, totalExpense)
}

func (p *Predictor) fromModel(totalIncome, totalExpense float64) (float64, bool) {
	if p.loader == nil {
		return 0, false
	}
	p.loadOnce.Do(func() {
		p.model, p.loadErr = p.loader()
		if p.loadErr != nil {
			slog.Debug("prediction model load failed, using heuristic", "error", p.loadErr)
		}
	})
	if p.loadErr != nil || p.model == nil {
		return 0, false
	}

	inputs := map[string]float64{}
	if name, ok := matchName(p.model.InputNames(), p.roles.Income); ok {
		inputs[name] = totalIncome
	}
	if name, ok := matchName(p.model.InputNames(), p.roles.Expense); ok {
		inputs[name] = totalExpense
	}
	// A model with no recognizable inputs cannot be fed anything useful.
	if len(inputs) == 0 {
		return 0, false
	}

	outputs, err := p.model.Predict(inputs)
	if err != nil {
		slog.Debug("model inference failed, using heuristic", "error", err)
		return 0, false
	}

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	name, ok := matchName(p.model.OutputNames(), p.roles.Output)
	if !ok {
		declared := p.model.OutputNames()
		if len(declared) > 0 {
			name = declared[0]
		} else if len(names) > 0 {
			name = names[0]
		} else {
			return 0, false
		}
	}
	value, ok := outputs[name]
	if !ok {
		return 0, false
	}
	// The raw model value is returned as-is: no clamping, no validation.
	return value, true
}

// Heuristic is the deterministic fallback formula. With no income the
// current expense total is reported as the baseline, never negative.
// Otherwise a 5% upward adjustment is applied, halved to 2.5% while
// spending stays under 90% of income.
func Heuristic(totalIncome, totalExpense float64) float64 {
	if totalIncome <= 0 {
		return max(totalExpense, 0)
	}
	ratio := totalExpense / totalIncome
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 2 {
		ratio = 2
	}
	factor := 1.0
	if ratio < 0.9 {
		factor = 0.5
	}
	adjustment := 0.05 * totalExpense * factor
	return max(totalExpense+adjustment, 0)
}
