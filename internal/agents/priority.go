package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// priorityFallbackReasoning is the documented degrade-path reasoning.
const priorityFallbackReasoning = "Default priority assigned due to error."

// PriorityResult is the priority stage's output for one task.
type PriorityResult struct {
	Priority  models.Priority `json:"priority"`
	Reasoning string          `json:"reasoning"`
}

// priorityOutput is the structured shape the priority stage requests.
type priorityOutput struct {
	Priority  string `json:"priority"`
	Reasoning string `json:"reasoning"`
}

// PriorityAssignmentAgent assigns High/Medium/Low priorities to tasks.
// On any retrieval, model, or parse failure it returns the fixed fallback
// of Medium priority; it never returns an error to its caller.
type PriorityAssignmentAgent struct {
	retriever Retriever
	invoker   api.Invoker
}

// NewPriorityAssignmentAgent creates a priority-assignment agent.
func NewPriorityAssignmentAgent(retriever Retriever, invoker api.Invoker) (*PriorityAssignmentAgent, error) {
	if retriever == nil {
		return nil, &SetupError{Component: "priority agent", Err: fmt.Errorf("nil retriever")}
	}
	if invoker == nil {
		return nil, &SetupError{Component: "priority agent", Err: fmt.Errorf("nil invoker")}
	}
	return &PriorityAssignmentAgent{retriever: retriever, invoker: invoker}, nil
}

// AssignPriority determines a priority and reasoning for the task.
func (a *PriorityAssignmentAgent) AssignPriority(ctx context.Context, task *models.Task) PriorityResult {
	fallback := PriorityResult{Priority: models.PriorityMedium, Reasoning: priorityFallbackReasoning}

	projectContext, err := a.retriever.ProjectContext(task.ProjectID)
	if err != nil {
		log.Printf("[priority] %v", &RetrievalError{Op: "project context", Err: err})
		return fallback
	}
	precedents, err := a.retriever.SimilarTaskPriorities(task.Description, task.ProjectID, contextK)
	if err != nil {
		log.Printf("[priority] %v", &RetrievalError{Op: "similar task priorities", Err: err})
		return fallback
	}
	teamSkills, err := a.retriever.TeamSkills(task.ProjectID)
	if err != nil {
		log.Printf("[priority] %v", &RetrievalError{Op: "team skills", Err: err})
		return fallback
	}

	messages := []api.Message{
		{Role: api.RoleSystem, Content: "You are a task prioritization assistant for a project management system."},
		{Role: api.RoleUser, Content: fmt.Sprintf(
			"Assign a priority to the following task: %s\n"+
				"Consider the task's complexity, estimated duration, and required skills.\n"+
				"Project context: %s\n"+
				"Similar tasks priorities: %s\n"+
				"Team skills: %s\n"+
				"Respond with a JSON object with keys \"priority\" (High, Medium, or Low) "+
				"and \"reasoning\" (string).",
			formatTaskLine(task), toJSON(projectContext), toJSON(precedents), toJSON(teamSkills))},
	}

	response, err := a.invoker.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[priority] %v", &InvokeError{Stage: "priority assignment", Err: err})
		return fallback
	}

	var out priorityOutput
	if perr := decodeResponse("priority assignment", response, &out); perr != nil {
		log.Printf("[priority] %v", perr)
		return fallback
	}
	priority := models.Priority(out.Priority)
	if !priority.Valid() || out.Reasoning == "" {
		log.Printf("[priority] %v", &ParseError{Stage: "priority assignment", Reason: "invalid priority or empty reasoning", Raw: response})
		return fallback
	}

	return PriorityResult{Priority: priority, Reasoning: out.Reasoning}
}
