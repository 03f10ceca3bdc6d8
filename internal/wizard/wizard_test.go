package wizard

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/idlethoughts/soliloquy/internal/models"
)

func testAnswers() *Answers {
	return &Answers{
		Name:        "night-run",
		ModelID:     "anthropic/claude-sonnet-4.5",
		Turns:       10,
		Samples:     5,
		Temperature: 0.8,
		OutputDir:   "data",
		JudgeModel:  "anthropic/claude-4.5-haiku-20251001",
	}
}

func TestGenerateExperimentYAML_RoundTrips(t *testing.T) {
	content, err := GenerateExperimentYAML(testAnswers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var spec models.ExperimentSpec
	if err := yaml.Unmarshal([]byte(content), &spec); err != nil {
		t.Fatalf("generated YAML does not parse: %v\n%s", err, content)
	}

	if spec.ModelID != "anthropic/claude-sonnet-4.5" {
		t.Errorf("model = %q", spec.ModelID)
	}
	if spec.Turns != 10 || spec.Samples != 5 {
		t.Errorf("turns/samples = %d/%d", spec.Turns, spec.Samples)
	}
	if spec.Temperature == nil || *spec.Temperature != 0.8 {
		t.Errorf("temperature = %v", spec.Temperature)
	}
	if spec.Judge["model"] != "anthropic/claude-4.5-haiku-20251001" {
		t.Errorf("judge not rendered: %v", spec.Judge)
	}
}

func TestGenerateExperimentYAML_OmitsEmptySections(t *testing.T) {
	a := testAnswers()
	a.JudgeModel = ""
	a.OutputDir = ""

	content, err := GenerateExperimentYAML(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var spec models.ExperimentSpec
	if err := yaml.Unmarshal([]byte(content), &spec); err != nil {
		t.Fatalf("generated YAML does not parse: %v\n%s", err, content)
	}
	if spec.Judge != nil {
		t.Errorf("judge section should be absent: %v", spec.Judge)
	}
	if spec.OutputDir != "" {
		t.Errorf("output_dir should be absent: %q", spec.OutputDir)
	}
}

func TestAnswersSpec(t *testing.T) {
	spec := testAnswers().Spec()

	if err := spec.Validate(); err != nil {
		t.Fatalf("wizard answers should produce a valid spec: %v", err)
	}
	if spec.SystemPrompt == "" || spec.Greeting == "" {
		t.Error("defaults should be applied")
	}
	if spec.Judge["model"] != "anthropic/claude-4.5-haiku-20251001" {
		t.Errorf("judge not carried: %v", spec.Judge)
	}
}
