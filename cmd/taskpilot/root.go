package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "AI task pipeline for project management",
	Long: `TaskPilot runs project descriptions through a five-stage AI pipeline:
task creation, priority assignment, suggestion generation, collaboration
planning, and optional report generation.

Each stage grounds its prompt on similar past tasks, projects, and team
data retrieved from a local store, and degrades to deterministic fallback
values when the model or retrieval layer fails.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
