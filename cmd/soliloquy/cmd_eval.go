package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idlethoughts/soliloquy/internal/judge"
	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/reporting"
	"github.com/idlethoughts/soliloquy/internal/transcript"
)

var (
	evalSpecPath   string
	evalJudgeModel string
	evalWorkers    int
	evalMock       bool
)

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <conversations.jsonl>",
		Short: "Judge finished conversations with a second model",
		Long: `Judge every conversation in a transcript file.

Each conversation is classified against a rubric by a judge model; the
verdicts are written next to the input as <file>-eval.jsonl and a tally
is printed.

The judge model, rubric, and worker count come from the experiment
file's judge section when --spec is given; --judge-model and --workers
override it.

Requires OPENROUTER_API_KEY unless --mock is set.`,
		Args: cobra.ExactArgs(1),
		RunE: evalCommandE,
	}

	cmd.Flags().StringVar(&evalSpecPath, "spec", "", "Experiment YAML file supplying the judge configuration")
	cmd.Flags().StringVar(&evalJudgeModel, "judge-model", "", "Judge model id (default: "+judge.DefaultJudgeModel+")")
	cmd.Flags().IntVar(&evalWorkers, "workers", 0, "Concurrent judge calls (default: 4)")
	cmd.Flags().BoolVar(&evalMock, "mock", false, "Use a deterministic in-process judge instead of OpenRouter")

	return cmd
}

func evalCommandE(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]

	records, err := transcript.ReadAll(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no conversations found in %s", transcriptPath)
	}

	var client openrouter.ChatClient
	if evalMock {
		client = openrouter.NewMockClient()
	} else {
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is not set (use --mock to run without a provider)")
		}
		client = openrouter.NewClient(apiKey)
	}

	var judgeConfig map[string]any
	if evalSpecPath != "" {
		spec, err := models.LoadExperimentSpec(evalSpecPath)
		if err != nil {
			return fmt.Errorf("failed to load experiment spec: %w", err)
		}
		judgeConfig = spec.Judge
	}

	jArgs, err := judge.DecodeArgs(judgeConfig)
	if err != nil {
		return err
	}
	if evalJudgeModel != "" {
		jArgs.Model = evalJudgeModel
	}
	if evalWorkers > 0 {
		jArgs.Workers = evalWorkers
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Judging %d conversations with %s...\n", len(records), jArgs.Model)

	verdicts, err := judge.New(client, jArgs).EvaluateAll(cmd.Context(), records)
	if err != nil {
		return err
	}

	evalPath := transcript.EvalFilename(transcriptPath)
	if err := writeVerdicts(evalPath, verdicts); err != nil {
		return err
	}

	tally := make(map[string]int)
	for _, v := range verdicts {
		tally[v.Verdict]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, reporting.FormatVerdictTally(tally, len(verdicts)))
	fmt.Fprintf(out, "\nVerdicts: %s\n", evalPath)

	return nil
}

func writeVerdicts(path string, verdicts []*judge.Verdict) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	for _, v := range verdicts {
		if err := enc.Encode(v); err != nil {
			f.Close()
			return fmt.Errorf("failed to write verdict: %w", err)
		}
	}
	return f.Close()
}
