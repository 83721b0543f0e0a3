// Package models defines the shared value types carried through the
// task-processing pipeline.
package models

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusNew indicates the task was just created and has not been
	// picked up by anyone. Pipeline stages only enrich tasks in this state.
	TaskStatusNew TaskStatus = "New"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "In Progress"
	// TaskStatusCompleted indicates the task is finished.
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Priority is a task priority level assigned by the priority stage.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid returns true if the priority is a known level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Task is a unit of project work, created by the task-creation stage and
// enriched in place by the later stages. A Task is owned exclusively by
// the WorkflowState that contains it.
type Task struct {
	// ID is the task's numeric identifier within its project.
	ID int `json:"id"`
	// ProjectID identifies the project the task belongs to.
	ProjectID int `json:"project_id"`
	// Title is the short task title.
	Title string `json:"title"`
	// Description is the free-text description the task was created from.
	Description string `json:"description"`
	// Status is the task lifecycle state. The pipeline reads it for
	// branching but never writes it.
	Status TaskStatus `json:"status"`
	// Priority is set by the priority stage; nil until assigned.
	Priority *Priority `json:"priority,omitempty"`
	// PriorityReasoning explains the assigned priority.
	PriorityReasoning string `json:"priority_reasoning,omitempty"`
	// EstimatedDuration is the estimated effort in hours; nil when the
	// model could not estimate it.
	EstimatedDuration *float64 `json:"estimated_duration,omitempty"`
	// ActualDuration is the recorded effort in hours, if any.
	ActualDuration *float64 `json:"actual_duration,omitempty"`
	// RequiredSkills lists skill tags needed for the task.
	RequiredSkills []string `json:"required_skills"`
	// AssignedTo is the display assignee chosen at report time.
	AssignedTo string `json:"assigned_to,omitempty"`
	// Suggestions is set by the suggestion stage; nil until generated.
	Suggestions *Suggestions `json:"suggestions,omitempty"`
	// Collaboration is set by the collaboration stage; nil until planned.
	Collaboration *Collaboration `json:"collaboration,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// Suggestions holds the suggestion stage's output for one task.
type Suggestions struct {
	// Suggestions are concrete steps toward completing the task.
	Suggestions []string `json:"suggestions"`
	// Resources are recommended references for the task.
	Resources []string `json:"resources"`
}

// TeamFormation is one (member, role) pairing in a collaboration plan.
type TeamFormation struct {
	// MemberName is the team member's display name.
	MemberName string `json:"member_name"`
	// Role is the role the member takes for this task.
	Role string `json:"role"`
}

// Collaboration holds the collaboration stage's output for one task.
type Collaboration struct {
	// TeamFormation is the suggested team for the task.
	TeamFormation []TeamFormation `json:"team_formation"`
	// CommunicationPlan describes how the team should coordinate.
	CommunicationPlan string `json:"communication_plan"`
}
