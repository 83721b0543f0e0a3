package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskpilot/taskpilot/internal/retrieval"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// Retriever is the retrieval surface the stage agents depend on. It is
// implemented by *retrieval.Retriever; tests substitute fakes.
type Retriever interface {
	SimilarTasks(description string, projectID, k int) ([]retrieval.SimilarTask, error)
	SimilarTaskPriorities(description string, projectID, k int) ([]retrieval.TaskPrecedent, error)
	SimilarCompletedTasks(description string, projectID, k int) ([]retrieval.SimilarTask, error)
	SimilarCollaborations(description string, projectID, k int) ([]retrieval.PastCollaboration, error)
	SimilarProjects(projectID, k int) ([]retrieval.SimilarProject, error)
	ProjectContext(projectID int) (models.ProjectContext, error)
	TeamSkills(projectID int) (map[string][]string, error)
	AvailableTeamMembers(projectID int) ([]models.TeamMember, error)
}

// contextK is how many similar records each stage gathers.
const contextK = 3

// toJSON renders a value as compact JSON for prompt embedding. Encoding
// failures degrade to an empty object rather than failing the stage.
func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// formatTaskLine renders a task as the one-line description used in
// priority, suggestion, and collaboration prompts.
func formatTaskLine(task *models.Task) string {
	var sb strings.Builder
	sb.WriteString(task.Title)
	if task.EstimatedDuration != nil {
		fmt.Fprintf(&sb, " (Duration: %g hours)", *task.EstimatedDuration)
	}
	if len(task.RequiredSkills) > 0 {
		fmt.Fprintf(&sb, " (Skills: %s)", strings.Join(task.RequiredSkills, ", "))
	}
	return sb.String()
}
