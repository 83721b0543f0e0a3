package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/retrieval"
)

var seedDBPath string

var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load projects, teams, and history into the store",
	Long: `Seed loads a YAML fixtures file of projects, team members, and
historical documents into the TaskPilot database. The similarity index is
built from these documents on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		dbPath := seedDBPath
		if dbPath == "" {
			dbPath = cfg.Retrieval.DBPath
		}
		if dbPath == "" {
			dbPath = retrieval.DefaultDBPath()
		}

		seed, err := retrieval.LoadSeedFile(args[0])
		if err != nil {
			return err
		}

		store, err := retrieval.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		if err := store.ApplySeed(seed); err != nil {
			return err
		}

		color.Green("Seeded %d projects and %d documents into %s",
			len(seed.Projects), len(seed.Documents), store.Path())
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDBPath, "db", "", "Path to the TaskPilot database")
}
