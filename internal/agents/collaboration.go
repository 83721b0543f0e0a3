package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/pkg/models"
)

// collaborationFallbackPlan is the deterministic degrade-path plan. Every
// stage guarantees a non-throwing contract; collaboration planning is no
// exception.
const collaborationFallbackPlan = "Collaboration plan unavailable due to error."

// collaborationOutput is the structured shape the collaboration stage
// requests.
type collaborationOutput struct {
	TeamFormation []struct {
		MemberName string `json:"member_name"`
		Role       string `json:"role"`
	} `json:"team_formation"`
	CommunicationPlan string `json:"communication_plan"`
}

// CollaborationPlanningAgent suggests a team formation and communication
// plan for a task.
type CollaborationPlanningAgent struct {
	retriever Retriever
	invoker   api.Invoker
}

// NewCollaborationPlanningAgent creates a collaboration-planning agent.
func NewCollaborationPlanningAgent(retriever Retriever, invoker api.Invoker) (*CollaborationPlanningAgent, error) {
	if retriever == nil {
		return nil, &SetupError{Component: "collaboration agent", Err: fmt.Errorf("nil retriever")}
	}
	if invoker == nil {
		return nil, &SetupError{Component: "collaboration agent", Err: fmt.Errorf("nil invoker")}
	}
	return &CollaborationPlanningAgent{retriever: retriever, invoker: invoker}, nil
}

// PlanCollaboration suggests how the team should form around the task.
func (a *CollaborationPlanningAgent) PlanCollaboration(ctx context.Context, task *models.Task, projectID int) *models.Collaboration {
	fallback := &models.Collaboration{
		TeamFormation:     []models.TeamFormation{},
		CommunicationPlan: collaborationFallbackPlan,
	}

	teamMembers, err := a.retriever.AvailableTeamMembers(projectID)
	if err != nil {
		log.Printf("[collab] %v", &RetrievalError{Op: "available team members", Err: err})
		teamMembers = nil
	}
	projectContext, err := a.retriever.ProjectContext(projectID)
	if err != nil {
		log.Printf("[collab] %v", &RetrievalError{Op: "project context", Err: err})
		projectContext = models.ProjectContext{}
	}
	pastCollaborations, err := a.retriever.SimilarCollaborations(task.Description, projectID, contextK)
	if err != nil {
		log.Printf("[collab] %v", &RetrievalError{Op: "similar collaborations", Err: err})
		pastCollaborations = nil
	}

	messages := []api.Message{
		{Role: api.RoleSystem, Content: "You are a collaboration planning assistant for a project management system."},
		{Role: api.RoleUser, Content: fmt.Sprintf(
			"Suggest a team formation and communication plan for the following task:\n"+
				"Task: %s\n"+
				"Available team members: %s\n"+
				"Project context: %s\n"+
				"Similar past collaborations: %s\n"+
				"Respond with a JSON object with keys \"team_formation\" (list of objects "+
				"with \"member_name\" and \"role\") and \"communication_plan\" (string).",
			formatTaskLine(task), toJSON(teamMembers), toJSON(projectContext), toJSON(pastCollaborations))},
	}

	response, err := a.invoker.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[collab] %v", &InvokeError{Stage: "collaboration planning", Err: err})
		return fallback
	}

	var out collaborationOutput
	if perr := decodeResponse("collaboration planning", response, &out); perr != nil {
		log.Printf("[collab] %v", perr)
		return fallback
	}
	if out.CommunicationPlan == "" {
		log.Printf("[collab] %v", &ParseError{Stage: "collaboration planning", Reason: "empty communication plan", Raw: response})
		return fallback
	}

	formation := make([]models.TeamFormation, 0, len(out.TeamFormation))
	for _, tf := range out.TeamFormation {
		formation = append(formation, models.TeamFormation{MemberName: tf.MemberName, Role: tf.Role})
	}
	return &models.Collaboration{
		TeamFormation:     formation,
		CommunicationPlan: out.CommunicationPlan,
	}
}
