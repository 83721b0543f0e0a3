package retrieval

import (
	"fmt"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// defaultK is how many similar records each lookup returns at most.
const defaultK = 3

// SimilarTask is one similar prior task surfaced by the index.
type SimilarTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskPrecedent is one prior task with the priority it was given.
type TaskPrecedent struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// PastCollaboration is one prior collaboration record.
type PastCollaboration struct {
	Task          string `json:"task"`
	Collaboration string `json:"collaboration"`
}

// SimilarProject is one similar past project.
type SimilarProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Retriever combines the project store and the similarity index into the
// lookup surface the stage agents consume. One Retriever handle is shared
// read-only by all agents within a pipeline run.
type Retriever struct {
	store *Store
	index *Index
}

// NewRetriever creates a Retriever over an opened store and a built index.
func NewRetriever(store *Store, index *Index) *Retriever {
	return &Retriever{store: store, index: index}
}

// NewRetrieverFromStore builds the similarity index from the store's
// documents and returns a Retriever over both.
func NewRetrieverFromStore(store *Store) (*Retriever, error) {
	docs, err := store.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return NewRetriever(store, NewIndex(docs)), nil
}

// SimilarTasks returns up to k prior tasks similar to the description.
func (r *Retriever) SimilarTasks(description string, projectID, k int) ([]SimilarTask, error) {
	if k <= 0 {
		k = defaultK
	}
	query := fmt.Sprintf("Project ID: %d | Task: %s", projectID, description)
	docs := r.index.SearchKind(query, k, DocTask)

	out := make([]SimilarTask, 0, len(docs))
	for _, d := range docs {
		out = append(out, SimilarTask{Title: d.Title, Description: d.Content})
	}
	return out, nil
}

// SimilarTaskPriorities returns up to k priority precedents for tasks
// similar to the description.
func (r *Retriever) SimilarTaskPriorities(description string, projectID, k int) ([]TaskPrecedent, error) {
	if k <= 0 {
		k = defaultK
	}
	query := fmt.Sprintf("Project ID: %d | Task: %s", projectID, description)
	docs := r.index.SearchKind(query, k, DocTask)

	out := make([]TaskPrecedent, 0, len(docs))
	for _, d := range docs {
		priority := d.Priority
		if priority == "" {
			priority = "Unknown"
		}
		out = append(out, TaskPrecedent{Title: d.Title, Priority: priority})
	}
	return out, nil
}

// SimilarCompletedTasks returns up to k completed tasks similar to the
// description.
func (r *Retriever) SimilarCompletedTasks(description string, projectID, k int) ([]SimilarTask, error) {
	if k <= 0 {
		k = defaultK
	}
	query := fmt.Sprintf("Project ID: %d | Completed Task: %s", projectID, description)
	docs := r.index.SearchKind(query, k, DocCompletedTask)

	out := make([]SimilarTask, 0, len(docs))
	for _, d := range docs {
		out = append(out, SimilarTask{Title: d.Title, Description: d.Content})
	}
	return out, nil
}

// SimilarCollaborations returns up to k past collaboration records for
// tasks similar to the description.
func (r *Retriever) SimilarCollaborations(description string, projectID, k int) ([]PastCollaboration, error) {
	if k <= 0 {
		k = defaultK
	}
	query := fmt.Sprintf("Project ID: %d | Collaboration for: %s", projectID, description)
	docs := r.index.SearchKind(query, k, DocCollaboration)

	out := make([]PastCollaboration, 0, len(docs))
	for _, d := range docs {
		out = append(out, PastCollaboration{Task: d.Title, Collaboration: d.Content})
	}
	return out, nil
}

// SimilarProjects returns up to k past projects similar to the given one.
// A missing project yields an empty result.
func (r *Retriever) SimilarProjects(projectID, k int) ([]SimilarProject, error) {
	if k <= 0 {
		k = defaultK
	}
	ctx, err := r.store.GetProjectContext(projectID)
	if err != nil {
		return nil, err
	}
	if ctx.Empty() {
		return nil, nil
	}

	query := fmt.Sprintf("Project: %s | Description: %s", ctx.Name, ctx.Description)
	docs := r.index.SearchKind(query, k, DocProject)

	out := make([]SimilarProject, 0, len(docs))
	for _, d := range docs {
		name := d.Title
		if name == "" {
			name = "Unnamed Project"
		}
		out = append(out, SimilarProject{Name: name, Description: d.Content})
	}
	return out, nil
}

// ProjectContext returns the project summary record.
func (r *Retriever) ProjectContext(projectID int) (models.ProjectContext, error) {
	return r.store.GetProjectContext(projectID)
}

// TeamSkills returns the name -> skill tags mapping for the project team.
func (r *Retriever) TeamSkills(projectID int) (map[string][]string, error) {
	return r.store.GetTeamSkills(projectID)
}

// AvailableTeamMembers returns the project's team members.
func (r *Retriever) AvailableTeamMembers(projectID int) ([]models.TeamMember, error) {
	return r.store.GetAvailableTeamMembers(projectID)
}
