package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// Canonical reports returned without contacting any collaborator.
var (
	noTaskReport = models.Report{
		Summary:         "No tasks available for report generation.",
		KeyMetrics:      map[string]float64{},
		Risks:           []string{"No tasks to analyze risks."},
		Recommendations: []string{"Start by adding tasks to the project."},
	}

	errorReport = models.Report{
		Summary:         "An error occurred while generating the report.",
		KeyMetrics:      map[string]float64{},
		Risks:           []string{"Unable to analyze risks due to an error."},
		Recommendations: []string{"Please try again or contact support if the issue persists."},
	}
)

// reportOutput is the structured shape the report stage requests.
type reportOutput struct {
	Summary         string             `json:"summary"`
	KeyMetrics      map[string]float64 `json:"key_metrics"`
	Risks           []string           `json:"risks"`
	Recommendations []string           `json:"recommendations"`
}

// ReportGenerationAgent produces the project-level report from the run's
// accumulated tasks. Its contract is non-throwing: an empty task list
// yields the canonical no-task report without any collaborator calls,
// and any failure yields the canonical error report.
type ReportGenerationAgent struct {
	retriever Retriever
	invoker   api.Invoker
}

// NewReportGenerationAgent creates a report-generation agent.
func NewReportGenerationAgent(retriever Retriever, invoker api.Invoker) (*ReportGenerationAgent, error) {
	if retriever == nil {
		return nil, &SetupError{Component: "report agent", Err: fmt.Errorf("nil retriever")}
	}
	if invoker == nil {
		return nil, &SetupError{Component: "report agent", Err: fmt.Errorf("nil invoker")}
	}
	return &ReportGenerationAgent{retriever: retriever, invoker: invoker}, nil
}

// GenerateReport builds a report over the given tasks. Tasks are given a
// display assignee by indexing into the project team round-robin on task
// id; this is a display heuristic, not a real assignment system.
func (a *ReportGenerationAgent) GenerateReport(ctx context.Context, tasks []*models.Task) *models.Report {
	if len(tasks) == 0 {
		return cloneReport(noTaskReport)
	}

	projectID := tasks[0].ProjectID
	projectContext, err := a.retriever.ProjectContext(projectID)
	if err != nil {
		log.Printf("[report] %v", &RetrievalError{Op: "project context", Err: err})
		return cloneReport(errorReport)
	}
	similarProjects, err := a.retriever.SimilarProjects(projectID, contextK)
	if err != nil {
		log.Printf("[report] %v", &RetrievalError{Op: "similar projects", Err: err})
		return cloneReport(errorReport)
	}

	assignDisplayMembers(tasks, projectContext.TeamMembers)

	// Timestamps render as RFC3339 through the models' JSON encoding.
	tasksJSON, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		log.Printf("[report] encode tasks: %v", err)
		return cloneReport(errorReport)
	}

	messages := []api.Message{
		{Role: api.RoleSystem, Content: "You are an AI assistant tasked with generating project reports."},
		{Role: api.RoleUser, Content: fmt.Sprintf(
			"Generate a project report based on the following information:\n"+
				"Tasks: %s\n"+
				"Project context: %s\n"+
				"Similar past projects: %s\n"+
				"Please include in the summary section a list of tasks with their assigned "+
				"team members (if available).\n"+
				"Respond with a JSON object with keys \"summary\" (string), \"key_metrics\" "+
				"(object mapping metric names to numbers), \"risks\" (list of strings), and "+
				"\"recommendations\" (list of strings).",
			tasksJSON, toJSON(projectContext), toJSON(similarProjects))},
	}

	response, err := a.invoker.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[report] %v", &InvokeError{Stage: "report generation", Err: err})
		return cloneReport(errorReport)
	}

	var out reportOutput
	if perr := decodeResponse("report generation", response, &out); perr != nil {
		log.Printf("[report] %v", perr)
		return cloneReport(errorReport)
	}
	if out.Summary == "" {
		log.Printf("[report] %v", &ParseError{Stage: "report generation", Reason: "empty summary", Raw: response})
		return cloneReport(errorReport)
	}

	if out.KeyMetrics == nil {
		out.KeyMetrics = map[string]float64{}
	}
	if out.Risks == nil {
		out.Risks = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return &models.Report{
		Summary:         out.Summary,
		KeyMetrics:      out.KeyMetrics,
		Risks:           out.Risks,
		Recommendations: out.Recommendations,
	}
}

// cloneReport copies a canonical report so callers never alias the
// package-level templates.
func cloneReport(r models.Report) *models.Report {
	out := r
	out.KeyMetrics = make(map[string]float64, len(r.KeyMetrics))
	for k, v := range r.KeyMetrics {
		out.KeyMetrics[k] = v
	}
	out.Risks = append([]string(nil), r.Risks...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return &out
}

// assignDisplayMembers sets each task's display assignee by indexing into
// the team members on task id, or "Unassigned" when the team is empty.
func assignDisplayMembers(tasks []*models.Task, teamMembers []string) {
	for _, t := range tasks {
		if len(teamMembers) == 0 {
			t.AssignedTo = "Unassigned"
			continue
		}
		t.AssignedTo = teamMembers[t.ID%len(teamMembers)]
	}
}
