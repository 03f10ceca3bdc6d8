// Package pricing holds the read-only table used to estimate call costs
// before the provider's authoritative figures are available.
package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is a model's price in USD per million tokens.
type Entry struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Table maps model identifiers to pricing entries. Unknown models fall
// back to Default. Tables are loaded once at startup and never mutated,
// so they are safe to share across the whole process.
type Table struct {
	Models  map[string]Entry `yaml:"models"`
	Default Entry            `yaml:"default"`
}

// DefaultTable returns the built-in pricing table. Values track
// https://openrouter.ai/models as of late 2025; pass a YAML file to Load
// when they drift.
func DefaultTable() *Table {
	return &Table{
		Models: map[string]Entry{
			"anthropic/claude-sonnet-4.5":       {Input: 3.0, Output: 15.0},
			"anthropic/claude-3.7-sonnet":       {Input: 3.0, Output: 15.0},
			"anthropic/claude-3.5-sonnet":       {Input: 3.0, Output: 15.0},
			"anthropic/claude-haiku-4":          {Input: 0.25, Output: 1.25},
			"anthropic/claude-haiku-4.5":        {Input: 0.25, Output: 1.25},
			"anthropic/claude-opus-4":           {Input: 15.0, Output: 75.0},
			"openai/gpt-4":                      {Input: 30.0, Output: 60.0},
			"openai/gpt-4-turbo":                {Input: 10.0, Output: 30.0},
			"openai/gpt-4o":                     {Input: 2.5, Output: 10.0},
			"openai/gpt-4.1":                    {Input: 2.0, Output: 8.0},
			"meta-llama/llama-3.3-70b-instruct": {Input: 0.35, Output: 0.40},
			"google/gemini-2.0-flash-exp":       {Input: 0.0, Output: 0.0},
		},
		Default: Entry{Input: 1.0, Output: 2.0},
	}
}

// Load reads a pricing table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing pricing table %s: %w", path, err)
	}

	if t.Default == (Entry{}) {
		t.Default = DefaultTable().Default
	}

	return &t, nil
}

// Lookup returns the pricing entry for a model, falling back to Default.
func (t *Table) Lookup(modelID string) Entry {
	if e, ok := t.Models[modelID]; ok {
		return e
	}
	return t.Default
}

// Cost estimates the USD cost of a call from its token counts.
func (t *Table) Cost(modelID string, promptTokens, completionTokens int) float64 {
	e := t.Lookup(modelID)
	return float64(promptTokens)/1e6*e.Input + float64(completionTokens)/1e6*e.Output
}
