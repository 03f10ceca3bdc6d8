package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idlethoughts/soliloquy/internal/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <experiment.yaml>",
		Short: "Validate an experiment file against its schema",
		Long: `Validate an experiment YAML file without running anything.

Every schema violation is reported, not just the first one.`,
		Args: cobra.ExactArgs(1),
		RunE: validateCommandE,
	}

	return cmd
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	path := args[0]

	errs, err := validation.ValidateExperimentFile(path)
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has %d problem(s):\n", path, len(errs))
		for _, e := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
		}
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
	return nil
}
