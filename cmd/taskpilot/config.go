package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/retrieval"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Config displays the effective TaskPilot configuration after merging
defaults, the user config, the project config, and environment variables.

Configuration is stored at ~/.config/taskpilot/config.yaml
Project-specific overrides can be placed in .taskpilot.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		apiKeyDisplay := "(not set)"
		if cfg.Anthropic.APIKey != "" {
			apiKeyDisplay = "****"
		}
		modelDisplay := cfg.Anthropic.Model
		if modelDisplay == "" {
			modelDisplay = "(sdk default)"
		}
		dbDisplay := cfg.Retrieval.DBPath
		if dbDisplay == "" {
			dbDisplay = retrieval.DefaultDBPath()
		}

		fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
		fmt.Printf("anthropic.model: %s\n", modelDisplay)
		fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
		fmt.Printf("anthropic.max_retries: %d\n", cfg.Anthropic.MaxRetries)
		fmt.Printf("retrieval.db_path: %s\n", dbDisplay)
		fmt.Printf("retrieval.similar_k: %d\n", cfg.Retrieval.SimilarK)
		fmt.Printf("pipeline.invoke_timeout: %s\n", cfg.Pipeline.InvokeTimeout)

		if projectCfg := config.GetProjectConfigPath(); projectCfg != "" {
			fmt.Printf("\nproject config: %s\n", projectCfg)
		}
	},
}
