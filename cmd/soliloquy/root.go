package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soliloquy",
		Short: "Soliloquy - run a language model in conversation with itself",
		Long: `Soliloquy puts a language model in a chatroom with a copy of itself
and records what it chooses to talk about.

It drives turn-by-turn self-conversations over OpenRouter, tracks spend
per participant, persists transcripts as JSONL, and can judge finished
conversations with a second model.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newValidateCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
