package retrieval

import (
	"testing"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// newTestRetriever builds a retriever over a seeded store and index.
func newTestRetriever(t *testing.T) (*Retriever, func()) {
	t.Helper()
	store, cleanup := newTestStore(t)

	if err := store.CreateProject(Project{ID: 7, Name: "Customer portal", Description: "A customer portal with authentication and billing"}); err != nil {
		cleanup()
		t.Fatalf("CreateProject() error = %v, want nil", err)
	}
	if err := store.AddTeamMember(7, models.TeamMember{Name: "Alice", Role: "Engineer", Skills: []string{"Go"}}); err != nil {
		cleanup()
		t.Fatalf("AddTeamMember() error = %v, want nil", err)
	}
	for _, d := range testDocuments() {
		if err := store.AddDocument(d); err != nil {
			cleanup()
			t.Fatalf("AddDocument() error = %v, want nil", err)
		}
	}

	retriever, err := NewRetrieverFromStore(store)
	if err != nil {
		cleanup()
		t.Fatalf("NewRetrieverFromStore() error = %v, want nil", err)
	}
	return retriever, cleanup
}

func TestNewRetrieverFromStore_EmptyStoreSeedsIndex(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	retriever, err := NewRetrieverFromStore(store)
	if err != nil {
		t.Fatalf("NewRetrieverFromStore() error = %v, want nil", err)
	}
	if retriever.index.Len() == 0 {
		t.Error("index is empty, want synthetic seed documents for an empty store")
	}
}

func TestRetriever_SimilarTasks(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarTasks("OAuth login with redirect", 7, 3)
	if err != nil {
		t.Fatalf("SimilarTasks() error = %v, want nil", err)
	}
	if len(got) == 0 {
		t.Fatal("SimilarTasks() returned nothing, want the OAuth task")
	}
	if got[0].Title != "Implement OAuth login" {
		t.Errorf("top result = %q, want the OAuth task", got[0].Title)
	}
	if got[0].Description == "" {
		t.Error("Description is empty, want document content")
	}
}

func TestRetriever_SimilarTaskPriorities(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarTaskPriorities("OAuth login", 7, 3)
	if err != nil {
		t.Fatalf("SimilarTaskPriorities() error = %v, want nil", err)
	}
	if len(got) == 0 {
		t.Fatal("SimilarTaskPriorities() returned nothing, want precedents")
	}
	if got[0].Priority != "High" {
		t.Errorf("Priority = %q, want stored priority", got[0].Priority)
	}
}

func TestRetriever_SimilarTaskPriorities_UnknownDefault(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if err := store.AddDocument(Document{Kind: DocTask, Title: "Unprioritized login task", Content: "login cleanup"}); err != nil {
		t.Fatalf("AddDocument() error = %v, want nil", err)
	}
	retriever, err := NewRetrieverFromStore(store)
	if err != nil {
		t.Fatalf("NewRetrieverFromStore() error = %v, want nil", err)
	}

	got, err := retriever.SimilarTaskPriorities("login cleanup", 7, 3)
	if err != nil {
		t.Fatalf("SimilarTaskPriorities() error = %v, want nil", err)
	}
	if len(got) == 0 {
		t.Fatal("SimilarTaskPriorities() returned nothing, want the unprioritized task")
	}
	if got[0].Priority != "Unknown" {
		t.Errorf("Priority = %q, want %q for a document without one", got[0].Priority, "Unknown")
	}
}

func TestRetriever_SimilarCompletedTasks(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarCompletedTasks("login flow tests", 7, 3)
	if err != nil {
		t.Fatalf("SimilarCompletedTasks() error = %v, want nil", err)
	}
	for _, s := range got {
		if s.Title == "Implement OAuth login" {
			t.Errorf("got open task %q, want only completed tasks", s.Title)
		}
	}
	if len(got) == 0 {
		t.Error("SimilarCompletedTasks() returned nothing, want the login tests doc")
	}
}

func TestRetriever_SimilarCollaborations(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarCollaborations("login implementation", 7, 3)
	if err != nil {
		t.Fatalf("SimilarCollaborations() error = %v, want nil", err)
	}
	if len(got) == 0 {
		t.Fatal("SimilarCollaborations() returned nothing, want the pairing record")
	}
	if got[0].Task != "Login pairing session" {
		t.Errorf("Task = %q, want the pairing session", got[0].Task)
	}
	if got[0].Collaboration == "" {
		t.Error("Collaboration is empty, want document content")
	}
}

func TestRetriever_SimilarProjects(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarProjects(7, 3)
	if err != nil {
		t.Fatalf("SimilarProjects() error = %v, want nil", err)
	}
	if len(got) == 0 {
		t.Fatal("SimilarProjects() returned nothing, want the portal project doc")
	}
	if got[0].Name != "Customer portal" {
		t.Errorf("Name = %q, want the portal project", got[0].Name)
	}
}

func TestRetriever_SimilarProjects_MissingProject(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	got, err := retriever.SimilarProjects(99, 3)
	if err != nil {
		t.Fatalf("SimilarProjects() error = %v, want nil for missing project", err)
	}
	if got != nil {
		t.Errorf("SimilarProjects() = %v, want nil for missing project", got)
	}
}

func TestRetriever_ProjectContext(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	ctx, err := retriever.ProjectContext(7)
	if err != nil {
		t.Fatalf("ProjectContext() error = %v, want nil", err)
	}
	if ctx.Name != "Customer portal" {
		t.Errorf("Name = %q, want stored project", ctx.Name)
	}
}

func TestRetriever_TeamLookups(t *testing.T) {
	retriever, cleanup := newTestRetriever(t)
	defer cleanup()

	skills, err := retriever.TeamSkills(7)
	if err != nil {
		t.Fatalf("TeamSkills() error = %v, want nil", err)
	}
	if len(skills["Alice"]) != 1 || skills["Alice"][0] != "Go" {
		t.Errorf("skills = %v, want Alice -> [Go]", skills)
	}

	members, err := retriever.AvailableTeamMembers(7)
	if err != nil {
		t.Fatalf("AvailableTeamMembers() error = %v, want nil", err)
	}
	if len(members) != 1 || members[0].Name != "Alice" {
		t.Errorf("members = %v, want [Alice]", members)
	}
}
