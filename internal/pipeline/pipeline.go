// Package pipeline sequences the five stage agents over one shared
// WorkflowState according to a fixed directed graph with a single
// conditional branch at the report decision.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/agents"
	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// State is a node in the pipeline state machine.
type State string

const (
	StateCreated               State = "created"
	StateTaskCreation          State = "task_creation"
	StatePriorityAssignment    State = "priority_assignment"
	StateSuggestionGeneration  State = "suggestion_generation"
	StateCollaborationPlanning State = "collaboration_planning"
	StateReportDecision        State = "report_decision"
	StateReportGeneration      State = "report_generation"
	StateDone                  State = "done"
)

// Outcome is the terminal result of a pipeline run.
type Outcome string

const (
	// OutcomeCompleted indicates the run finished all stages including
	// report generation.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCompletedWithReportSkipped indicates the run finished with
	// the report stage skipped by the generate-report flag.
	OutcomeCompletedWithReportSkipped Outcome = "completed_report_skipped"
	// OutcomeSetupFailed indicates pipeline construction failed and the
	// run never started.
	OutcomeSetupFailed Outcome = "setup_failed"
	// OutcomeFailed indicates a stage raised an unhandled error; the
	// returned state holds results as of the last completed stage.
	OutcomeFailed Outcome = "failed"
)

// Config contains the collaborators a Pipeline is wired to.
type Config struct {
	// Retriever is the shared retrieval handle reused read-only by all
	// agents within a run.
	Retriever agents.Retriever
	// Invoker is the model-invocation boundary.
	Invoker api.Invoker
	// EventBuffer sizes the event channel. Zero uses a default of 64.
	EventBuffer int
}

// Pipeline holds the five wired stage agents and runs workflow states
// through them. Construction wires everything or nothing: a failed agent
// setup yields a nil pipeline, never a partially wired one.
type Pipeline struct {
	taskAgent       *agents.TaskCreationAgent
	priorityAgent   *agents.PriorityAssignmentAgent
	suggestionAgent *agents.SuggestionGenerationAgent
	collabAgent     *agents.CollaborationPlanningAgent
	reportAgent     *agents.ReportGenerationAgent

	events chan Event
}

// New wires the five stage agents to the shared retriever and invoker.
func New(cfg Config) (*Pipeline, error) {
	taskAgent, err := agents.NewTaskCreationAgent(cfg.Retriever, cfg.Invoker)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}
	priorityAgent, err := agents.NewPriorityAssignmentAgent(cfg.Retriever, cfg.Invoker)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}
	suggestionAgent, err := agents.NewSuggestionGenerationAgent(cfg.Retriever, cfg.Invoker)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}
	collabAgent, err := agents.NewCollaborationPlanningAgent(cfg.Retriever, cfg.Invoker)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}
	reportAgent, err := agents.NewReportGenerationAgent(cfg.Retriever, cfg.Invoker)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}

	buffer := cfg.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}

	return &Pipeline{
		taskAgent:       taskAgent,
		priorityAgent:   priorityAgent,
		suggestionAgent: suggestionAgent,
		collabAgent:     collabAgent,
		reportAgent:     reportAgent,
		events:          make(chan Event, buffer),
	}, nil
}

// Events returns the channel pipeline progress events are emitted on.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// NewState initializes a WorkflowState for one run.
func NewState(projectID int, inputDescription string, generateReport bool) *models.WorkflowState {
	return &models.WorkflowState{
		RunID:            uuid.New().String(),
		ProjectID:        projectID,
		InputDescription: inputDescription,
		GenerateReport:   generateReport,
	}
}

// Run executes the pipeline over the given state and returns the final
// state with its outcome. The state is returned in every case; when a
// stage fails unexpectedly it reflects all stages completed before the
// failure. Run never panics past the pipeline boundary.
func (p *Pipeline) Run(ctx context.Context, state *models.WorkflowState) (*models.WorkflowState, Outcome, error) {
	current := StateCreated

	for current != StateDone {
		select {
		case <-ctx.Done():
			p.emit(Event{Type: EventPipelineDone, State: current, Message: ctx.Err().Error()})
			return state, OutcomeFailed, fmt.Errorf("pipeline canceled in %s: %w", current, ctx.Err())
		default:
		}

		next, err := p.step(ctx, current, state)
		if err != nil {
			p.emit(Event{Type: EventPipelineDone, State: current, Message: err.Error()})
			return state, OutcomeFailed, fmt.Errorf("stage %s: %w", current, err)
		}
		current = next
	}

	outcome := OutcomeCompleted
	if !state.GenerateReport {
		outcome = OutcomeCompletedWithReportSkipped
	}
	p.emit(Event{Type: EventPipelineDone, State: StateDone, Message: string(outcome)})
	return state, outcome, nil
}

// step executes the stage for the current state and returns the next
// state. Panics inside a stage are recovered into errors so partial
// results are preserved, never silently discarded.
func (p *Pipeline) step(ctx context.Context, current State, state *models.WorkflowState) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()

	switch current {
	case StateCreated:
		return StateTaskCreation, nil

	case StateTaskCreation:
		p.emit(Event{Type: EventStageStarted, State: current})
		task := p.taskAgent.CreateTask(ctx, state.InputDescription, state.ProjectID)
		task.ID = len(state.Tasks) + 1
		state.AddTask(task)
		p.emit(Event{Type: EventStageCompleted, State: current, TaskTitle: task.Title})
		log.Printf("[pipeline] created task %q", task.Title)
		return StatePriorityAssignment, nil

	case StatePriorityAssignment:
		p.emit(Event{Type: EventStageStarted, State: current})
		for _, task := range state.NewTasks() {
			result := p.priorityAgent.AssignPriority(ctx, task)
			priority := result.Priority
			task.Priority = &priority
			task.PriorityReasoning = result.Reasoning
			p.emit(Event{Type: EventTaskEnriched, State: current, TaskTitle: task.Title, Message: string(priority)})
		}
		p.emit(Event{Type: EventStageCompleted, State: current})
		return StateSuggestionGeneration, nil

	case StateSuggestionGeneration:
		p.emit(Event{Type: EventStageStarted, State: current})
		for _, task := range state.NewTasks() {
			task.Suggestions = p.suggestionAgent.GenerateSuggestions(ctx, task, state.ProjectID)
			p.emit(Event{Type: EventTaskEnriched, State: current, TaskTitle: task.Title})
		}
		p.emit(Event{Type: EventStageCompleted, State: current})
		return StateCollaborationPlanning, nil

	case StateCollaborationPlanning:
		p.emit(Event{Type: EventStageStarted, State: current})
		for _, task := range state.NewTasks() {
			task.Collaboration = p.collabAgent.PlanCollaboration(ctx, task, state.ProjectID)
			p.emit(Event{Type: EventTaskEnriched, State: current, TaskTitle: task.Title})
		}
		p.emit(Event{Type: EventStageCompleted, State: current})
		return StateReportDecision, nil

	case StateReportDecision:
		if state.GenerateReport {
			return StateReportGeneration, nil
		}
		p.emit(Event{Type: EventReportSkipped, State: current})
		return StateDone, nil

	case StateReportGeneration:
		p.emit(Event{Type: EventStageStarted, State: current})
		state.Report = p.reportAgent.GenerateReport(ctx, state.Tasks)
		p.emit(Event{Type: EventStageCompleted, State: current})
		return StateDone, nil

	default:
		return StateDone, fmt.Errorf("unknown pipeline state %q", current)
	}
}
