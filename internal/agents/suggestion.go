package agents

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// resourcesMarker is the literal section marker separating suggestions
// from resources in the model's free-text response. Its absence means
// the response carries no resources.
const resourcesMarker = "Recommended resources:"

// listItemPattern matches one numbered, bolded list item: `N. **item**:`.
// Together with resourcesMarker this is the stage's response mini-format.
var listItemPattern = regexp.MustCompile(`(?s)\d+\.\s*\*\*(.*?)\*\*:`)

// SuggestionGenerationAgent produces completion suggestions and resource
// recommendations for a task. This stage reads a free-text response
// rather than structured JSON; a malformed response degrades to empty
// lists rather than failing the stage.
type SuggestionGenerationAgent struct {
	retriever Retriever
	invoker   api.Invoker
}

// NewSuggestionGenerationAgent creates a suggestion-generation agent.
func NewSuggestionGenerationAgent(retriever Retriever, invoker api.Invoker) (*SuggestionGenerationAgent, error) {
	if retriever == nil {
		return nil, &SetupError{Component: "suggestion agent", Err: fmt.Errorf("nil retriever")}
	}
	if invoker == nil {
		return nil, &SetupError{Component: "suggestion agent", Err: fmt.Errorf("nil invoker")}
	}
	return &SuggestionGenerationAgent{retriever: retriever, invoker: invoker}, nil
}

// GenerateSuggestions produces suggestions and resources for the task.
func (a *SuggestionGenerationAgent) GenerateSuggestions(ctx context.Context, task *models.Task, projectID int) *models.Suggestions {
	empty := &models.Suggestions{Suggestions: []string{}, Resources: []string{}}

	projectContext, err := a.retriever.ProjectContext(projectID)
	if err != nil {
		log.Printf("[suggestion] %v", &RetrievalError{Op: "project context", Err: err})
		projectContext = models.ProjectContext{}
	}
	similarTasks, err := a.retriever.SimilarCompletedTasks(task.Description, projectID, contextK)
	if err != nil {
		log.Printf("[suggestion] %v", &RetrievalError{Op: "similar completed tasks", Err: err})
		similarTasks = nil
	}
	teamSkills, err := a.retriever.TeamSkills(projectID)
	if err != nil {
		log.Printf("[suggestion] %v", &RetrievalError{Op: "team skills", Err: err})
		teamSkills = nil
	}

	messages := []api.Message{
		{Role: api.RoleSystem, Content: "You are a project management AI assistant. Provide suggestions and resources for completing the given task."},
		{Role: api.RoleUser, Content: fmt.Sprintf(
			"Task: %s\n"+
				"Project context: %s\n"+
				"Similar completed tasks: %s\n"+
				"Team member skills: %s\n\n"+
				"Please provide suggestions for completing this task as a numbered list of "+
				"bold items (1. **Item**: detail). Then, under a literal \"%s\" heading, "+
				"recommend relevant resources in the same format.",
			formatTaskLine(task), toJSON(projectContext), toJSON(similarTasks), toJSON(teamSkills), resourcesMarker)},
	}

	response, err := a.invoker.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[suggestion] %v", &InvokeError{Stage: "suggestion generation", Err: err})
		return empty
	}

	return ParseSuggestionResponse(response)
}

// ParseSuggestionResponse extracts the suggestion and resource lists from
// a free-text response. The response is split at the first occurrence of
// resourcesMarker: numbered bold items before it are suggestions, items
// after it are resources. Without the marker the whole response is
// scanned for suggestions and resources is empty.
func ParseSuggestionResponse(content string) *models.Suggestions {
	suggestionPart := content
	resourcePart := ""
	if idx := strings.Index(content, resourcesMarker); idx >= 0 {
		suggestionPart = content[:idx]
		resourcePart = content[idx+len(resourcesMarker):]
	}

	return &models.Suggestions{
		Suggestions: extractListItems(suggestionPart),
		Resources:   extractListItems(resourcePart),
	}
}

// extractListItems returns the bold texts of all numbered list items.
func extractListItems(text string) []string {
	items := []string{}
	for _, m := range listItemPattern.FindAllStringSubmatch(text, -1) {
		items = append(items, strings.TrimSpace(m[1]))
	}
	return items
}
