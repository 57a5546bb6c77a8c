package main

import (
	"fmt"
	"os"

	"github.com/roach88/microlog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Rejections already printed through the output formatter and
		// arrive here as bare exit codes with an empty message.
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
