package retrieval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// SeedFile is the YAML fixture format for loading projects, teams, and
// historical documents into a fresh store.
type SeedFile struct {
	Projects  []SeedProject  `yaml:"projects"`
	Documents []SeedDocument `yaml:"documents"`
}

// SeedProject is one project with its team in a seed file.
type SeedProject struct {
	ID          int          `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	StartDate   string       `yaml:"start_date"`
	EndDate     string       `yaml:"end_date"`
	Status      string       `yaml:"status"`
	TeamMembers []SeedMember `yaml:"team_members"`
}

// SeedMember is one team member in a seed file.
type SeedMember struct {
	Name   string   `yaml:"name"`
	Role   string   `yaml:"role"`
	Skills []string `yaml:"skills"`
}

// SeedDocument is one historical document in a seed file.
type SeedDocument struct {
	Kind      string `yaml:"kind"`
	ProjectID int    `yaml:"project_id"`
	Title     string `yaml:"title"`
	Content   string `yaml:"content"`
	Priority  string `yaml:"priority"`
}

// LoadSeedFile parses a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// ApplySeed loads the seed file's contents into the store.
func (s *Store) ApplySeed(seed *SeedFile) error {
	for _, p := range seed.Projects {
		if err := s.CreateProject(Project{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			Status:      p.Status,
		}); err != nil {
			return fmt.Errorf("seed project %d: %w", p.ID, err)
		}
		for _, m := range p.TeamMembers {
			member := models.TeamMember{Name: m.Name, Role: m.Role, Skills: m.Skills}
			if err := s.AddTeamMember(p.ID, member); err != nil {
				return fmt.Errorf("seed member %q: %w", m.Name, err)
			}
		}
	}
	for _, d := range seed.Documents {
		kind := DocumentKind(d.Kind)
		switch kind {
		case DocTask, DocCompletedTask, DocCollaboration, DocProject:
		default:
			return fmt.Errorf("seed document %q: unknown kind %q", d.Title, d.Kind)
		}
		if err := s.AddDocument(Document{
			Kind:      kind,
			ProjectID: d.ProjectID,
			Title:     d.Title,
			Content:   d.Content,
			Priority:  d.Priority,
		}); err != nil {
			return fmt.Errorf("seed document %q: %w", d.Title, err)
		}
	}
	return nil
}
