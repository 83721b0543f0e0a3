package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/internal/retrieval"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// stubRetriever returns empty results, or a forced error, for every lookup.
type stubRetriever struct {
	err error
}

func (s *stubRetriever) SimilarTasks(string, int, int) ([]retrieval.SimilarTask, error) {
	return nil, s.err
}

func (s *stubRetriever) SimilarTaskPriorities(string, int, int) ([]retrieval.TaskPrecedent, error) {
	return nil, s.err
}

func (s *stubRetriever) SimilarCompletedTasks(string, int, int) ([]retrieval.SimilarTask, error) {
	return nil, s.err
}

func (s *stubRetriever) SimilarCollaborations(string, int, int) ([]retrieval.PastCollaboration, error) {
	return nil, s.err
}

func (s *stubRetriever) SimilarProjects(int, int) ([]retrieval.SimilarProject, error) {
	return nil, s.err
}

func (s *stubRetriever) ProjectContext(int) (models.ProjectContext, error) {
	if s.err != nil {
		return models.ProjectContext{}, s.err
	}
	return models.ProjectContext{Name: "Checkout", TeamMembers: []string{"Alice", "Bob"}}, nil
}

func (s *stubRetriever) TeamSkills(int) (map[string][]string, error) {
	return nil, s.err
}

func (s *stubRetriever) AvailableTeamMembers(int) ([]models.TeamMember, error) {
	return nil, s.err
}

// scriptInvoker returns queued responses in order, repeating the last one
// when the queue runs out.
type scriptInvoker struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptInvoker) Invoke(ctx context.Context, messages []api.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", fmt.Errorf("no scripted response for call %d", s.calls)
	}
	r := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return r, nil
}

const (
	taskResponse       = `{"title": "Implement OAuth login", "estimated_duration": 8, "required_skills": ["Go"], "priority": "High"}`
	priorityResponse   = `{"priority": "High", "reasoning": "Blocks the release."}`
	suggestionResponse = "1. **Start with the redirect flow**: prototype against a sandbox provider.\nRecommended resources:\n1. **OAuth 2.0 specification**: sections 3 and 4.\n"
	collabResponse     = `{"team_formation": [{"member_name": "Alice", "role": "Lead"}], "communication_plan": "Daily standup."}`
	reportResponse     = `{"summary": "One task in flight.", "key_metrics": {"total_tasks": 1}, "risks": [], "recommendations": []}`
)

// drainEvents collects buffered events up to and including the terminal
// pipeline_done event. It must only be called after Run has returned.
func drainEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
			if ev.Type == EventPipelineDone {
				return out
			}
		default:
			t.Fatal("event stream ended without pipeline_done")
			return out
		}
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Config{Retriever: nil, Invoker: &scriptInvoker{}}); err == nil {
		t.Error("New() error = nil, want error for nil retriever")
	}
	if _, err := New(Config{Retriever: &stubRetriever{}, Invoker: nil}); err == nil {
		t.Error("New() error = nil, want error for nil invoker")
	}
}

func TestNewState(t *testing.T) {
	state := NewState(7, "Add OAuth login", true)
	if state.ProjectID != 7 {
		t.Errorf("ProjectID = %d, want 7", state.ProjectID)
	}
	if state.InputDescription != "Add OAuth login" {
		t.Errorf("InputDescription = %q, want input", state.InputDescription)
	}
	if !state.GenerateReport {
		t.Error("GenerateReport = false, want true")
	}
	if state.RunID == "" {
		t.Error("RunID is empty, want generated id")
	}
	if other := NewState(7, "Add OAuth login", true); other.RunID == state.RunID {
		t.Error("two states share a RunID, want unique ids")
	}
}

func TestPipeline_Run_WithReport(t *testing.T) {
	invoker := &scriptInvoker{responses: []string{
		taskResponse, priorityResponse, suggestionResponse, collabResponse, reportResponse,
	}}
	pipe, err := New(Config{Retriever: &stubRetriever{}, Invoker: invoker})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	state := NewState(7, "Add OAuth login to the web app", true)
	final, outcome, err := pipe.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome != OutcomeCompleted {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeCompleted)
	}
	if final != state {
		t.Error("Run() returned a different state than it was given")
	}

	if len(final.Tasks) != 1 {
		t.Fatalf("Tasks = %d, want 1", len(final.Tasks))
	}
	task := final.Tasks[0]
	if task.ID != 1 {
		t.Errorf("task.ID = %d, want 1", task.ID)
	}
	if task.Title != "Implement OAuth login" {
		t.Errorf("task.Title = %q, want model title", task.Title)
	}
	if task.Priority == nil || *task.Priority != models.PriorityHigh {
		t.Errorf("task.Priority = %v, want High", task.Priority)
	}
	if task.Suggestions == nil || len(task.Suggestions.Suggestions) != 1 {
		t.Errorf("task.Suggestions = %+v, want one suggestion", task.Suggestions)
	}
	if task.Collaboration == nil || task.Collaboration.CommunicationPlan != "Daily standup." {
		t.Errorf("task.Collaboration = %+v, want planned collaboration", task.Collaboration)
	}

	if final.Report == nil || final.Report.Summary != "One task in flight." {
		t.Errorf("Report = %+v, want generated report", final.Report)
	}
	if invoker.calls != 5 {
		t.Errorf("invoker calls = %d, want 5", invoker.calls)
	}
}

func TestPipeline_Run_ReportSkipped(t *testing.T) {
	invoker := &scriptInvoker{responses: []string{
		taskResponse, priorityResponse, suggestionResponse, collabResponse,
	}}
	pipe, err := New(Config{Retriever: &stubRetriever{}, Invoker: invoker})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	state := NewState(7, "Add OAuth login to the web app", false)
	final, outcome, err := pipe.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if outcome != OutcomeCompletedWithReportSkipped {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeCompletedWithReportSkipped)
	}
	if final.Report != nil {
		t.Errorf("Report = %+v, want nil when skipped", final.Report)
	}
	if invoker.calls != 4 {
		t.Errorf("invoker calls = %d, want 4 with report skipped", invoker.calls)
	}

	events := drainEvents(t, pipe.Events())
	var started []State
	skipped := false
	for _, ev := range events {
		if ev.Type == EventStageStarted {
			started = append(started, ev.State)
		}
		if ev.Type == EventReportSkipped {
			skipped = true
		}
	}
	wantOrder := []State{StateTaskCreation, StatePriorityAssignment, StateSuggestionGeneration, StateCollaborationPlanning}
	if len(started) != len(wantOrder) {
		t.Fatalf("started stages = %v, want %v", started, wantOrder)
	}
	for i, s := range wantOrder {
		if started[i] != s {
			t.Errorf("stage %d = %q, want %q", i, started[i], s)
		}
	}
	if !skipped {
		t.Error("no report_skipped event emitted")
	}
}

func TestPipeline_Run_ModelFailureFallsBack(t *testing.T) {
	invoker := &scriptInvoker{err: errors.New("connection refused")}
	pipe, err := New(Config{Retriever: &stubRetriever{}, Invoker: invoker})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	state := NewState(7, "Add OAuth login to the web app", true)
	final, outcome, err := pipe.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil with per-stage fallbacks", err)
	}
	if outcome != OutcomeCompleted {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeCompleted)
	}

	task := final.Tasks[0]
	if !strings.HasPrefix(task.Title, "Task: ") {
		t.Errorf("task.Title = %q, want fallback title", task.Title)
	}
	if task.Priority == nil || *task.Priority != models.PriorityMedium {
		t.Errorf("task.Priority = %v, want Medium fallback", task.Priority)
	}
	if task.PriorityReasoning != "Default priority assigned due to error." {
		t.Errorf("task.PriorityReasoning = %q, want fallback reasoning", task.PriorityReasoning)
	}
	if task.Suggestions == nil || len(task.Suggestions.Suggestions) != 0 {
		t.Errorf("task.Suggestions = %+v, want empty lists", task.Suggestions)
	}
	if task.Collaboration == nil || task.Collaboration.CommunicationPlan != "Collaboration plan unavailable due to error." {
		t.Errorf("task.Collaboration = %+v, want fallback plan", task.Collaboration)
	}
	if final.Report == nil || final.Report.Summary != "An error occurred while generating the report." {
		t.Errorf("Report = %+v, want canonical error report", final.Report)
	}
}

func TestPipeline_Run_DeterministicWithScriptedModel(t *testing.T) {
	run := func() *models.WorkflowState {
		invoker := &scriptInvoker{responses: []string{
			taskResponse, priorityResponse, suggestionResponse, collabResponse, reportResponse,
		}}
		pipe, err := New(Config{Retriever: &stubRetriever{}, Invoker: invoker})
		if err != nil {
			t.Fatalf("New() error = %v, want nil", err)
		}
		state, _, err := pipe.Run(context.Background(), NewState(7, "Add OAuth login", true))
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
		return state
	}

	first := run()
	second := run()

	a, b := first.Tasks[0], second.Tasks[0]
	if a.Title != b.Title || *a.Priority != *b.Priority || a.PriorityReasoning != b.PriorityReasoning {
		t.Errorf("task content differs between identical runs: %+v vs %+v", a, b)
	}
	if !reflect.DeepEqual(a.Suggestions, b.Suggestions) {
		t.Errorf("suggestions differ between identical runs: %+v vs %+v", a.Suggestions, b.Suggestions)
	}
	if !reflect.DeepEqual(a.Collaboration, b.Collaboration) {
		t.Errorf("collaboration differs between identical runs: %+v vs %+v", a.Collaboration, b.Collaboration)
	}
	if !reflect.DeepEqual(first.Report, second.Report) {
		t.Errorf("report differs between identical runs: %+v vs %+v", first.Report, second.Report)
	}
}

func TestPipeline_Run_Canceled(t *testing.T) {
	pipe, err := New(Config{Retriever: &stubRetriever{}, Invoker: &scriptInvoker{}})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewState(7, "Add OAuth login", false)
	final, outcome, err := pipe.Run(ctx, state)
	if err == nil {
		t.Fatal("Run() error = nil, want cancellation error")
	}
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeFailed)
	}
	if final == nil {
		t.Error("Run() state = nil, want state returned on failure")
	}
}
