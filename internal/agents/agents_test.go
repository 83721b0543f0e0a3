package agents

import (
	"context"
	"testing"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/internal/retrieval"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// fakeRetriever implements Retriever with canned results and an optional
// forced error. Every lookup increments calls so tests can assert which
// stages touched the retrieval layer.
type fakeRetriever struct {
	similarTasks   []retrieval.SimilarTask
	precedents     []retrieval.TaskPrecedent
	completedTasks []retrieval.SimilarTask
	collaborations []retrieval.PastCollaboration
	projects       []retrieval.SimilarProject
	projectCtx     models.ProjectContext
	teamSkills     map[string][]string
	members        []models.TeamMember

	err   error
	calls int
}

func (f *fakeRetriever) SimilarTasks(description string, projectID, k int) ([]retrieval.SimilarTask, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.similarTasks, nil
}

func (f *fakeRetriever) SimilarTaskPriorities(description string, projectID, k int) ([]retrieval.TaskPrecedent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.precedents, nil
}

func (f *fakeRetriever) SimilarCompletedTasks(description string, projectID, k int) ([]retrieval.SimilarTask, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.completedTasks, nil
}

func (f *fakeRetriever) SimilarCollaborations(description string, projectID, k int) ([]retrieval.PastCollaboration, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.collaborations, nil
}

func (f *fakeRetriever) SimilarProjects(projectID, k int) ([]retrieval.SimilarProject, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeRetriever) ProjectContext(projectID int) (models.ProjectContext, error) {
	f.calls++
	if f.err != nil {
		return models.ProjectContext{}, f.err
	}
	return f.projectCtx, nil
}

func (f *fakeRetriever) TeamSkills(projectID int) (map[string][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.teamSkills, nil
}

func (f *fakeRetriever) AvailableTeamMembers(projectID int) ([]models.TeamMember, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

// fakeInvoker implements api.Invoker with a fixed response or error.
type fakeInvoker struct {
	response string
	err      error

	calls        int
	lastMessages []api.Message
}

func (f *fakeInvoker) Invoke(ctx context.Context, messages []api.Message) (string, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// newTestTask builds a minimal task in status New.
func newTestTask() *models.Task {
	duration := 8.0
	return &models.Task{
		ID:                1,
		ProjectID:         7,
		Title:             "Implement OAuth login",
		Description:       "Add OAuth login to the web app",
		Status:            models.TaskStatusNew,
		EstimatedDuration: &duration,
		RequiredSkills:    []string{"Go", "OAuth"},
	}
}

func TestFormatTaskLine(t *testing.T) {
	task := newTestTask()
	got := formatTaskLine(task)
	want := "Implement OAuth login (Duration: 8 hours) (Skills: Go, OAuth)"
	if got != want {
		t.Errorf("formatTaskLine() = %q, want %q", got, want)
	}
}

func TestFormatTaskLine_TitleOnly(t *testing.T) {
	task := &models.Task{Title: "Write docs"}
	if got := formatTaskLine(task); got != "Write docs" {
		t.Errorf("formatTaskLine() = %q, want %q", got, "Write docs")
	}
}

func TestToJSON_DegradesToEmptyObject(t *testing.T) {
	if got := toJSON(make(chan int)); got != "{}" {
		t.Errorf("toJSON(chan) = %q, want %q", got, "{}")
	}
	if got := toJSON(map[string]int{"a": 1}); got != `{"a":1}` {
		t.Errorf("toJSON(map) = %q, want %q", got, `{"a":1}`)
	}
}
