package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// taskFallbackPrefix labels the deterministically derived title used when
// the model cannot produce one.
const taskFallbackPrefix = "Task: "

// taskOutput is the structured shape the task-creation stage requests.
type taskOutput struct {
	Title             string   `json:"title"`
	EstimatedDuration float64  `json:"estimated_duration"`
	RequiredSkills    []string `json:"required_skills"`
	Priority          string   `json:"priority"`
}

// TaskCreationAgent turns a free-text description into a new Task.
// Its contract is non-throwing: creation always yields a Task with a
// non-empty title and status "New", falling back to a deterministic
// title when retrieval, the model, or parsing fails.
type TaskCreationAgent struct {
	retriever Retriever
	invoker   api.Invoker
	now       func() time.Time
}

// NewTaskCreationAgent creates a task-creation agent.
func NewTaskCreationAgent(retriever Retriever, invoker api.Invoker) (*TaskCreationAgent, error) {
	if retriever == nil {
		return nil, &SetupError{Component: "task creation agent", Err: fmt.Errorf("nil retriever")}
	}
	if invoker == nil {
		return nil, &SetupError{Component: "task creation agent", Err: fmt.Errorf("nil invoker")}
	}
	return &TaskCreationAgent{retriever: retriever, invoker: invoker, now: time.Now}, nil
}

// CreateTask creates a Task for the description within the project.
func (a *TaskCreationAgent) CreateTask(ctx context.Context, description string, projectID int) *models.Task {
	similarTasks, err := a.retriever.SimilarTasks(description, projectID, contextK)
	if err != nil {
		log.Printf("[task] retrieval failed, continuing with empty context: %v", err)
		similarTasks = nil
	}
	projectContext, err := a.retriever.ProjectContext(projectID)
	if err != nil {
		log.Printf("[task] project context failed, continuing empty: %v", err)
		projectContext = models.ProjectContext{}
	}
	teamSkills, err := a.retriever.TeamSkills(projectID)
	if err != nil {
		log.Printf("[task] team skills failed, continuing empty: %v", err)
		teamSkills = nil
	}

	messages := []api.Message{
		{Role: api.RoleSystem, Content: "You are a task creation assistant for a project management system."},
		{Role: api.RoleUser, Content: fmt.Sprintf(
			"Create a task based on the following description: %s. "+
				"Consider these similar tasks: %s. "+
				"Project context: %s. "+
				"Available team skills: %s. "+
				"Respond with a JSON object with keys \"title\" (string), "+
				"\"estimated_duration\" (hours, positive number), "+
				"\"required_skills\" (list of strings), and \"priority\" (High, Medium, or Low).",
			description, toJSON(similarTasks), toJSON(projectContext), toJSON(teamSkills))},
	}

	response, err := a.invoker.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[task] %v", &InvokeError{Stage: "task creation", Err: err})
		return a.fallbackTask(description, projectID)
	}

	var out taskOutput
	if perr := decodeResponse("task creation", response, &out); perr != nil {
		log.Printf("[task] %v", perr)
		return a.fallbackTask(description, projectID)
	}
	if out.Title == "" || out.EstimatedDuration <= 0 {
		log.Printf("[task] %v", &ParseError{Stage: "task creation", Reason: "missing title or non-positive duration", Raw: response})
		return a.fallbackTask(description, projectID)
	}

	skills := out.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	duration := out.EstimatedDuration
	return &models.Task{
		ProjectID:         projectID,
		Title:             out.Title,
		Description:       description,
		Status:            models.TaskStatusNew,
		EstimatedDuration: &duration,
		RequiredSkills:    skills,
		CreatedAt:         a.now(),
	}
}

// fallbackTask derives a Task deterministically from the description.
func (a *TaskCreationAgent) fallbackTask(description string, projectID int) *models.Task {
	title := description
	if len(title) > 50 {
		title = title[:50]
	}
	return &models.Task{
		ProjectID:      projectID,
		Title:          taskFallbackPrefix + title,
		Description:    description,
		Status:         models.TaskStatusNew,
		RequiredSkills: []string{},
		CreatedAt:      a.now(),
	}
}
