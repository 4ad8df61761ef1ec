package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nukpro/DeedRecreator/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "drafterd",
	Short: "Deed Drafter backend service",
	Long: `The Deed Drafter backend: session registry, versioned geometry
storage, and the HTTP API the drafting client talks to.

Examples:
  drafterd serve                       # serve on the configured port
  drafterd serve --port 8080           # override the port`,
	Version: version.Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
