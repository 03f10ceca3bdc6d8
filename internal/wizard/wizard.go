// Package wizard collects experiment parameters interactively and renders
// them as an experiment YAML file.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/idlethoughts/soliloquy/internal/models"
)

const experimentTemplate = `# Self-conversation experiment
name: {{ .Name }}
model: {{ .ModelID }}
turns: {{ .Turns }}
samples: {{ .Samples }}
temperature: {{ .Temperature }}
{{- if .OutputDir }}
output_dir: {{ .OutputDir }}
{{- end }}
{{- if .JudgeModel }}

judge:
  model: {{ .JudgeModel }}
{{- end }}
`

// Answers holds everything the wizard collects.
type Answers struct {
	Name        string
	ModelID     string
	Turns       int
	Samples     int
	Temperature float64
	OutputDir   string
	JudgeModel  string
}

// RunExperimentWizard runs an interactive huh form to collect experiment
// parameters.
func RunExperimentWizard(in io.Reader, out io.Writer) (*Answers, error) {
	var (
		name        = "self-conversation"
		modelID     string
		turnsRaw    = "15"
		samplesRaw  = "1"
		tempRaw     = "1.0"
		outputDir   = "data"
		judgeModel  string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Experiment name").
				Placeholder("self-conversation").
				Value(&name),
			huh.NewInput().
				Title("Model").
				Description("OpenRouter model id, e.g. anthropic/claude-sonnet-4.5").
				Value(&modelID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Turns per conversation").
				Value(&turnsRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Samples").
				Description("Independent conversations to run").
				Value(&samplesRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Temperature").
				Value(&tempRaw).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v < 0 || v > 2 {
						return fmt.Errorf("must be a number between 0 and 2")
					}
					return nil
				}),
			huh.NewInput().
				Title("Output directory").
				Value(&outputDir),
			huh.NewInput().
				Title("Judge model").
				Description("Optional; leave empty to skip judge configuration").
				Value(&judgeModel),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	turns, _ := strconv.Atoi(strings.TrimSpace(turnsRaw))
	samples, _ := strconv.Atoi(strings.TrimSpace(samplesRaw))
	temperature, _ := strconv.ParseFloat(strings.TrimSpace(tempRaw), 64)

	return &Answers{
		Name:        strings.TrimSpace(name),
		ModelID:     strings.TrimSpace(modelID),
		Turns:       turns,
		Samples:     samples,
		Temperature: temperature,
		OutputDir:   strings.TrimSpace(outputDir),
		JudgeModel:  strings.TrimSpace(judgeModel),
	}, nil
}

// GenerateExperimentYAML renders an experiment YAML file from wizard
// answers. The rendered file round-trips through models.LoadExperimentSpec.
func GenerateExperimentYAML(a *Answers) (string, error) {
	tmpl, err := template.New("experiment").Parse(experimentTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// Spec converts wizard answers to an experiment spec with defaults applied.
func (a *Answers) Spec() *models.ExperimentSpec {
	spec := &models.ExperimentSpec{
		Name:        a.Name,
		ModelID:     a.ModelID,
		Turns:       a.Turns,
		Samples:     a.Samples,
		Temperature: &a.Temperature,
		OutputDir:   a.OutputDir,
	}
	if a.JudgeModel != "" {
		spec.Judge = map[string]any{"model": a.JudgeModel}
	}
	spec.ApplyDefaults()
	return spec
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
