package pricing

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLookup_KnownModel(t *testing.T) {
	table := DefaultTable()

	e := table.Lookup("anthropic/claude-sonnet-4.5")
	if e.Input != 3.0 || e.Output != 15.0 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestLookup_UnknownModelFallsBack(t *testing.T) {
	table := DefaultTable()

	e := table.Lookup("some-lab/brand-new-model")
	if e != table.Default {
		t.Errorf("expected default entry, got %+v", e)
	}
}

func TestCost(t *testing.T) {
	table := DefaultTable()

	// 1M prompt + 1M completion at $3/$15 per million.
	got := table.Cost("anthropic/claude-sonnet-4.5", 1_000_000, 1_000_000)
	if math.Abs(got-18.0) > 1e-9 {
		t.Errorf("Cost() = %g, want 18.0", got)
	}

	// Unknown model uses the default $1/$2 rates.
	got = table.Cost("unknown/model", 500_000, 500_000)
	if math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Cost() = %g, want 1.5", got)
	}

	if table.Cost("unknown/model", 0, 0) != 0 {
		t.Error("zero tokens should cost zero")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")

	content := `models:
  my-lab/my-model:
    input: 5.0
    output: 25.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := table.Lookup("my-lab/my-model")
	if e.Input != 5.0 || e.Output != 25.0 {
		t.Errorf("unexpected entry: %+v", e)
	}

	// A file without a default entry inherits the built-in one.
	if table.Default != DefaultTable().Default {
		t.Errorf("expected built-in default, got %+v", table.Default)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
