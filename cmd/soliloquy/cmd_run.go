package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idlethoughts/soliloquy/internal/batch"
	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/pricing"
	"github.com/idlethoughts/soliloquy/internal/reporting"
	"github.com/idlethoughts/soliloquy/internal/transcript"
	"github.com/idlethoughts/soliloquy/internal/validation"
)

var (
	runSpecPath    string
	runModelID     string
	runTurns       int
	runSamples     int
	runTemperature float64
	runMaxTokens   int
	runOutputDir   string
	runPricingPath string
	runShowConvo   bool
	runMock        bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of self-conversations",
		Long: `Run a batch of self-conversation samples against one model.

Configuration comes from an experiment YAML file (--spec), from flags, or
both; flags override the file. Transcripts are appended to a JSONL file in
the output directory, along with a JSON batch summary.

Requires OPENROUTER_API_KEY unless --mock is set.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&runSpecPath, "spec", "", "Experiment YAML file")
	cmd.Flags().StringVar(&runModelID, "model", "", "OpenRouter model id (required without --spec)")
	cmd.Flags().IntVar(&runTurns, "turns", 0, "Maximum turns per conversation (default: 15)")
	cmd.Flags().IntVar(&runSamples, "samples", 0, "Number of conversations to run (default: 1)")
	cmd.Flags().Float64Var(&runTemperature, "temperature", 0, "Sampling temperature (default: 1.0)")
	cmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "Per-call output token limit (default: 10024)")
	cmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "Output directory for transcripts (default: data)")
	cmd.Flags().StringVar(&runPricingPath, "pricing", "", "Pricing table YAML file (default: embedded table)")
	cmd.Flags().BoolVar(&runShowConvo, "show-convo", false, "Render the conversation live as it happens")
	cmd.Flags().BoolVar(&runMock, "mock", false, "Use a deterministic in-process model instead of OpenRouter")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	spec, err := resolveSpec(cmd)
	if err != nil {
		return err
	}

	table := pricing.DefaultTable()
	if runPricingPath != "" {
		table, err = pricing.Load(runPricingPath)
		if err != nil {
			return fmt.Errorf("failed to load pricing table: %w", err)
		}
	}

	var client openrouter.ChatClient
	var lookup openrouter.GenerationLookup
	if runMock {
		mock := openrouter.NewMockClient()
		client = mock
		lookup = mock
	} else {
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is not set (use --mock to run without a provider)")
		}
		real := openrouter.NewClient(apiKey)
		client = real
		lookup = real
	}

	started := time.Now()
	transcriptPath := filepath.Join(spec.OutputDir, transcript.Filename(spec.ModelID, spec.Turns, started))
	sink, err := transcript.NewWriter(transcriptPath)
	if err != nil {
		return err
	}

	opts := []batch.Option{batch.WithGenerationLookup(lookup)}
	if runShowConvo {
		opts = append(opts, batch.WithListener(newConvoRenderer(cmd.OutOrStdout()).Listen))
	} else {
		opts = append(opts, batch.WithListener(newProgressPrinter(cmd.OutOrStdout()).Listen))
	}

	controller := batch.NewController(spec, table, client, sink, opts...)

	summary, runErr := controller.Run(cmd.Context())

	// The report and summary file cover whatever ran, failure included.
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, reporting.FormatBatchReport(summary))
	fmt.Fprintf(out, "\nTranscripts: %s\n", transcriptPath)

	summaryPath := filepath.Join(spec.OutputDir, transcript.SummaryFilename(spec.ModelID, started))
	if err := batch.WriteSummaryFile(summaryPath, spec, summary); err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary:     %s\n", summaryPath)

	return runErr
}

// resolveSpec builds the effective experiment spec from --spec and flags.
// Flags override file values only when explicitly set.
func resolveSpec(cmd *cobra.Command) (*models.ExperimentSpec, error) {
	var spec *models.ExperimentSpec

	if runSpecPath != "" {
		if errs, err := validation.ValidateExperimentFile(runSpecPath); err != nil {
			return nil, err
		} else if len(errs) > 0 {
			return nil, fmt.Errorf("invalid experiment spec %s:\n  %s", runSpecPath, strings.Join(errs, "\n  "))
		}

		loaded, err := models.LoadExperimentSpec(runSpecPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load experiment spec: %w", err)
		}
		spec = loaded
	} else {
		if runModelID == "" {
			return nil, fmt.Errorf("--model is required without --spec")
		}
		spec = &models.ExperimentSpec{ModelID: runModelID}
	}

	// Defaults first, then explicit flags on top, so a flag set to a
	// zero value is not mistaken for an unset field.
	spec.ApplyDefaults()

	flags := cmd.Flags()
	if flags.Changed("model") {
		spec.ModelID = runModelID
	}
	if flags.Changed("turns") {
		spec.Turns = runTurns
	}
	if flags.Changed("samples") {
		spec.Samples = runSamples
	}
	if flags.Changed("temperature") {
		spec.Temperature = &runTemperature
	}
	if flags.Changed("max-tokens") {
		spec.MaxTokens = runMaxTokens
	}
	if flags.Changed("output") {
		spec.OutputDir = runOutputDir
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}
