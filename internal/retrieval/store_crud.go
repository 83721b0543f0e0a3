package retrieval

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskpilot/taskpilot/pkg/models"
)

// Project is a project row in the store.
type Project struct {
	ID          int
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string
}

// Document is one historical record the similarity index ranks: a past
// task, completed task, collaboration record, or project description.
type Document struct {
	ID        int64
	Kind      DocumentKind
	ProjectID int
	Title     string
	Content   string
	Priority  string
	CreatedAt time.Time
}

// DocumentKind distinguishes the historical record types.
type DocumentKind string

const (
	DocTask          DocumentKind = "task"
	DocCompletedTask DocumentKind = "completed_task"
	DocCollaboration DocumentKind = "collaboration"
	DocProject       DocumentKind = "project"
)

// CreateProject inserts or replaces a project row.
func (s *Store) CreateProject(p Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Status == "" {
		p.Status = "Active"
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO projects (id, name, description, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullString(p.Description), nullString(p.StartDate), nullString(p.EndDate), p.Status)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// AddTeamMember inserts a team member for a project.
func (s *Store) AddTeamMember(projectID int, m models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skills, err := json.Marshal(m.Skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO team_members (project_id, name, role, skills)
		VALUES (?, ?, ?, ?)`,
		projectID, m.Name, nullString(m.Role), string(skills))
	if err != nil {
		return fmt.Errorf("insert team member: %w", err)
	}
	return nil
}

// AddDocument inserts a historical document.
func (s *Store) AddDocument(d Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO documents (kind, project_id, title, content, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(d.Kind), d.ProjectID, d.Title, d.Content, nullString(d.Priority), formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetProjectContext returns the project summary record for the given id.
// A missing project yields an empty context and no error.
func (s *Store) GetProjectContext(projectID int) (models.ProjectContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ctx models.ProjectContext
	var desc, start, end sql.NullString
	row := s.db.QueryRow(`
		SELECT name, description, start_date, end_date, status
		FROM projects WHERE id = ?`, projectID)
	if err := row.Scan(&ctx.Name, &desc, &start, &end, &ctx.Status); err != nil {
		if err == sql.ErrNoRows {
			return models.ProjectContext{}, nil
		}
		return models.ProjectContext{}, fmt.Errorf("query project %d: %w", projectID, err)
	}
	ctx.Description = desc.String
	ctx.StartDate = start.String
	ctx.EndDate = end.String

	rows, err := s.db.Query(`SELECT name FROM team_members WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return models.ProjectContext{}, fmt.Errorf("query team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return models.ProjectContext{}, fmt.Errorf("scan team member: %w", err)
		}
		ctx.TeamMembers = append(ctx.TeamMembers, name)
	}
	return ctx, rows.Err()
}

// GetTeamSkills returns a name -> skill tags mapping for the project team.
func (s *Store) GetTeamSkills(projectID int) (map[string][]string, error) {
	members, err := s.GetAvailableTeamMembers(projectID)
	if err != nil {
		return nil, err
	}
	skills := make(map[string][]string, len(members))
	for _, m := range members {
		skills[m.Name] = m.Skills
	}
	return skills, nil
}

// GetAvailableTeamMembers returns the project's team members with their
// roles and skills.
func (s *Store) GetAvailableTeamMembers(projectID int) ([]models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name, role, skills FROM team_members
		WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		var role, skills sql.NullString
		if err := rows.Scan(&m.Name, &role, &skills); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		m.Role = role.String
		if skills.String != "" {
			if err := json.Unmarshal([]byte(skills.String), &m.Skills); err != nil {
				// Legacy rows may hold plain text; treat as one tag.
				m.Skills = []string{skills.String}
			}
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListDocuments returns all historical documents, oldest first. The
// similarity index is built from this listing.
func (s *Store) ListDocuments() ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, kind, project_id, title, content, priority, created_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var kind string
		var priority sql.NullString
		var created string
		if err := rows.Scan(&d.ID, &kind, &d.ProjectID, &d.Title, &d.Content, &priority, &created); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Kind = DocumentKind(kind)
		d.Priority = priority.String
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			d.CreatedAt = t
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
