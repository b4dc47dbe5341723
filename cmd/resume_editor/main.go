// Package main provides the resume_editor CLI: it edits experience, education, and
// personal info against a positional resume backend, and can run that backend locally.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "resume_editor",
	Short:             "Resume Editor",
	Long:              "Resume Editor views and edits the experience, education, and personal info sections of a resume stored by a resume backend.",
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
	PersistentPostRun: teardownApp,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
