package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateExperimentBytes_Valid(t *testing.T) {
	doc := `name: overnight
model: anthropic/claude-sonnet-4.5
turns: 15
samples: 10
temperature: 1.0
output_dir: data
judge:
  model: anthropic/claude-4.5-haiku-20251001
  workers: 4
`
	errs := ValidateExperimentBytes([]byte(doc))
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateExperimentBytes_MinimalValid(t *testing.T) {
	errs := ValidateExperimentBytes([]byte("model: test/model\n"))
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateExperimentBytes_MissingModel(t *testing.T) {
	errs := ValidateExperimentBytes([]byte("turns: 5\n"))
	if len(errs) == 0 {
		t.Fatal("expected an error for missing model")
	}
}

func TestValidateExperimentBytes_CollectsAllErrors(t *testing.T) {
	doc := `model: test/model
turns: 0
temperature: 9
typo_field: true
`
	errs := ValidateExperimentBytes([]byte(doc))
	if len(errs) < 3 {
		t.Errorf("expected at least 3 errors (turns, temperature, unknown field), got %v", errs)
	}
}

func TestValidateExperimentBytes_WrongType(t *testing.T) {
	errs := ValidateExperimentBytes([]byte("model: test/model\nturns: lots\n"))
	if len(errs) == 0 {
		t.Fatal("expected a type error for turns")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "/turns") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error located at /turns, got %v", errs)
	}
}

func TestValidateExperimentBytes_BadYAML(t *testing.T) {
	errs := ValidateExperimentBytes([]byte(":\n  - ]["))
	if len(errs) != 1 || !strings.Contains(errs[0], "YAML parse error") {
		t.Errorf("expected a single parse error, got %v", errs)
	}
}

func TestValidateExperimentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")
	if err := os.WriteFile(path, []byte("model: test/model\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	errs, err := ValidateExperimentFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Errorf("expected no schema errors, got %v", errs)
	}

	if _, err := ValidateExperimentFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
