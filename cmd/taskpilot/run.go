package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/pipeline"
	"github.com/taskpilot/taskpilot/internal/retrieval"
	"github.com/taskpilot/taskpilot/internal/tui"
	"github.com/taskpilot/taskpilot/pkg/models"
)

var (
	runProjectID int
	runReport    bool
	runPlain     bool
	runDBPath    string
)

var runCmd = &cobra.Command{
	Use:   "run [description...]",
	Short: "Run the task pipeline for a description",
	Long: `Run threads a free-text task description through the full pipeline
for the given project. With --report, a project report is generated from
the accumulated tasks at the end of the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	runCmd.Flags().IntVarP(&runProjectID, "project", "p", 0, "Project ID (required)")
	runCmd.Flags().BoolVar(&runReport, "report", false, "Generate a project report at the end of the run")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Plain output instead of the interactive view")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "Path to the TaskPilot database")
	runCmd.MarkFlagRequired("project")
}

func runPipeline(ctx context.Context, description string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := runDBPath
	if dbPath == "" {
		dbPath = cfg.Retrieval.DBPath
	}
	if dbPath == "" {
		dbPath = retrieval.DefaultDBPath()
	}

	store, err := retrieval.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	retriever, err := retrieval.NewRetrieverFromStore(store)
	if err != nil {
		return fmt.Errorf("build retriever: %w", err)
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
		Timeout:       cfg.Pipeline.InvokeTimeout,
		MaxRetries:    cfg.Anthropic.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Retriever: retriever,
		Invoker:   client,
	})
	if err != nil {
		return fmt.Errorf("wire pipeline: %w", err)
	}

	state := pipeline.NewState(runProjectID, description, runReport)

	resultCh := make(chan runResult, 1)
	go func() {
		final, outcome, err := pipe.Run(ctx, state)
		resultCh <- runResult{state: final, outcome: outcome, err: err}
	}()

	if runPlain {
		printEvents(pipe.Events())
	} else {
		model := tui.NewRunModel(pipe.Events(), client.Tracker())
		if _, err := tea.NewProgram(model).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "display error: %v\n", err)
		}
	}

	result := <-resultCh
	printResults(result.state, result.outcome)
	if result.err != nil {
		return fmt.Errorf("pipeline: %w", result.err)
	}
	return nil
}

// runResult carries a finished run back to the command goroutine.
type runResult struct {
	state   *models.WorkflowState
	outcome pipeline.Outcome
	err     error
}

// printEvents streams pipeline events as plain lines until the run
// signals completion.
func printEvents(events <-chan pipeline.Event) {
	stage := color.New(color.FgCyan)
	for ev := range events {
		switch ev.Type {
		case pipeline.EventStageStarted:
			stage.Printf("> %s\n", ev.State)
		case pipeline.EventStageCompleted:
			stage.Printf("ok %s\n", ev.State)
		case pipeline.EventTaskEnriched:
			if ev.Message != "" {
				fmt.Printf("  %s -> %s\n", ev.TaskTitle, ev.Message)
			} else {
				fmt.Printf("  %s\n", ev.TaskTitle)
			}
		case pipeline.EventReportSkipped:
			fmt.Println("- report skipped")
		case pipeline.EventPipelineDone:
			return
		}
	}
}

// printResults renders the final workflow state.
func printResults(state *models.WorkflowState, outcome pipeline.Outcome) {
	if state == nil {
		return
	}

	title := color.New(color.Bold)
	label := color.New(color.FgHiBlack)

	fmt.Println()
	title.Printf("Run %s (%s)\n", state.RunID, outcome)
	for _, t := range state.Tasks {
		fmt.Println()
		title.Printf("%d. %s", t.ID, t.Title)
		if t.Priority != nil {
			fmt.Printf("  [%s]", *t.Priority)
		}
		fmt.Println()
		if t.PriorityReasoning != "" {
			label.Printf("   priority: ")
			fmt.Println(t.PriorityReasoning)
		}
		if t.EstimatedDuration != nil {
			label.Printf("   estimate: ")
			fmt.Printf("%g hours\n", *t.EstimatedDuration)
		}
		if len(t.RequiredSkills) > 0 {
			label.Printf("   skills:   ")
			fmt.Println(strings.Join(t.RequiredSkills, ", "))
		}
		if t.Suggestions != nil {
			for _, s := range t.Suggestions.Suggestions {
				fmt.Printf("   • %s\n", s)
			}
			for _, r := range t.Suggestions.Resources {
				fmt.Printf("   ◦ %s\n", r)
			}
		}
		if t.Collaboration != nil {
			for _, tf := range t.Collaboration.TeamFormation {
				fmt.Printf("   ⇒ %s (%s)\n", tf.MemberName, tf.Role)
			}
			if t.Collaboration.CommunicationPlan != "" {
				label.Printf("   plan:     ")
				fmt.Println(t.Collaboration.CommunicationPlan)
			}
		}
	}

	if state.Report != nil {
		fmt.Println()
		title.Println("Project report")
		fmt.Println(state.Report.Summary)
		for name, value := range state.Report.KeyMetrics {
			fmt.Printf("  %s: %g\n", name, value)
		}
		for _, r := range state.Report.Risks {
			fmt.Printf("  risk: %s\n", r)
		}
		for _, r := range state.Report.Recommendations {
			fmt.Printf("  rec:  %s\n", r)
		}
	}
}
