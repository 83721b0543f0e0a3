package models

// Report is the project-level artifact produced by the report stage.
// It is produced at most once per pipeline run and immutable thereafter.
type Report struct {
	// Summary describes overall project status, including tasks and
	// their assigned team members.
	Summary string `json:"summary"`
	// KeyMetrics maps metric names to numeric values.
	KeyMetrics map[string]float64 `json:"key_metrics"`
	// Risks lists identified project risks.
	Risks []string `json:"risks"`
	// Recommendations lists suggested improvements.
	Recommendations []string `json:"recommendations"`
}

// TeamMember describes a member of a project team as surfaced by the
// retrieval layer.
type TeamMember struct {
	// Name is the member's display name.
	Name string `json:"name"`
	// Role is the member's standing role on the project.
	Role string `json:"role,omitempty"`
	// Skills lists the member's skill tags.
	Skills []string `json:"skills"`
}

// ProjectContext is the project summary record returned by the retrieval
// layer. An empty Name means no project was found.
type ProjectContext struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Status      string   `json:"status,omitempty"`
	TeamMembers []string `json:"team_members,omitempty"`
}

// Empty returns true if the context carries no project data.
func (c ProjectContext) Empty() bool {
	return c.Name == "" && c.Description == "" && len(c.TeamMembers) == 0
}
