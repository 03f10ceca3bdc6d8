package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idlethoughts/soliloquy/internal/wizard"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Create an experiment file interactively",
		Long: `Create an experiment YAML file through a guided wizard.

The wizard collects the model, turn and sample counts, temperature, and
optional judge configuration, then writes an experiment file you can pass
to run --spec.

If no file is specified, experiment.yaml in the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	path := "experiment.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	answers, err := wizard.RunExperimentWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	content, err := wizard.GenerateExperimentYAML(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Run it with: soliloquy run --spec %s\n", path)
	return nil
}
