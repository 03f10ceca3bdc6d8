package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idlethoughts/soliloquy/internal/batch"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Batch finished; every sample reached a terminal conversation
	ExitSampleFailed = 1 // A sample failed on a provider error
	ExitError        = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var sampleErr *batch.SampleError
		if errors.As(err, &sampleErr) {
			os.Exit(ExitSampleFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
