package predict

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regressor.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadArtifact(t *testing.T) {
	path := writeArtifact(t, `{
		"inputs": [
			{"name": "total_income", "coefficient": 0.02},
			{"name": "total_expense", "coefficient": 1.01}
		],
		"intercept": 10,
		"output": "next_month_expense"
	}`)

	model, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact() error: %v", err)
	}

	if got := model.InputNames(); len(got) != 2 || got[0] != "total_income" {
		t.Fatalf("InputNames() = %v", got)
	}
	if got := model.OutputNames(); len(got) != 1 || got[0] != "next_month_expense" {
		t.Fatalf("OutputNames() = %v", got)
	}

	out, err := model.Predict(map[string]float64{"total_income": 1000, "total_expense": 500})
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	want := 10 + 0.02*1000 + 1.01*500
	if got := out["next_month_expense"]; got != want {
		t.Fatalf("Predict() = %v, want %v", got, want)
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
}

func TestLoadArtifactMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{not json`},
		{"no inputs", `{"inputs": [], "output": "y"}`},
		{"no output", `{"inputs": [{"name": "income", "coefficient": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArtifact(writeArtifact(t, tt.content))
			if !errors.Is(err, ErrModelUnavailable) {
				t.Fatalf("error = %v, want ErrModelUnavailable", err)
			}
		})
	}
}

func TestLinearModelOmittedFeature(t *testing.T) {
	path := writeArtifact(t, `{
		"inputs": [
			{"name": "income", "coefficient": 0.5},
			{"name": "expense", "coefficient": 2}
		],
		"intercept": 1,
		"output": "next"
	}`)
	model, err := LoadArtifact(path)
	if err != nil {
		t.Fatal(err)
	}
	// A feature absent from the inputs contributes nothing.
	out, err := model.Predict(map[string]float64{"expense": 10})
	if err != nil {
		t.Fatal(err)
	}
	if got := out["next"]; got != 21 {
		t.Fatalf("Predict() = %v, want 21", got)
	}
}

func TestLinearModelNoInputs(t *testing.T) {
	path := writeArtifact(t, `{
		"inputs": [{"name": "income", "coefficient": 1}],
		"output": "next"
	}`)
	model, err := LoadArtifact(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model.Predict(nil); !errors.Is(err, ErrPredictionFailed) {
		t.Fatalf("error = %v, want ErrPredictionFailed", err)
	}
}
