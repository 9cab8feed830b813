// Package main provides the entry point for the historian CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bramblewood/historian/cmd/historian/commands"
	"github.com/bramblewood/historian/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "historian",
		Short: "Historian - narrative changelog generation from git history",
		Long: `Historian turns a repository's commit history into a stakeholder-facing
narrative, a Keep-a-Changelog document, and a daily activity log, using a
tiered LLM pipeline with content-addressed caching.

Commands:
  run          Analyze a window of repository history and write artifacts
  clear-cache  Remove cached analysis results
  serve        Run the /metrics and /healthz HTTP endpoints
  version      Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewClearCacheCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCode(err))
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "historian %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
