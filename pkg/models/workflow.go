package models

// WorkflowState is the single mutable record threaded through one
// pipeline run. Each run owns its state exclusively; no two runs may
// share an instance.
type WorkflowState struct {
	// RunID uniquely identifies the pipeline run that owns this state.
	RunID string `json:"run_id"`
	// ProjectID identifies the project; immutable after creation.
	ProjectID int `json:"project_id"`
	// InputDescription is the free-text seed for task creation;
	// immutable after creation.
	InputDescription string `json:"input_description"`
	// Tasks is the ordered task list. Append-only during task creation,
	// enriched in place by later stages.
	Tasks []*Task `json:"tasks"`
	// GenerateReport gates the report stage.
	GenerateReport bool `json:"generate_report"`
	// Report is set only by the report stage; nil otherwise.
	Report *Report `json:"report,omitempty"`
}

// NewTasks returns the tasks with status "New" in list order. These are
// the tasks each enrichment stage visits.
func (s *WorkflowState) NewTasks() []*Task {
	out := make([]*Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.Status == TaskStatusNew {
			out = append(out, t)
		}
	}
	return out
}

// AddTask appends a task to the state.
func (s *WorkflowState) AddTask(t *Task) {
	s.Tasks = append(s.Tasks, t)
}

// Summary reports aggregate counts for logging and display.
func (s *WorkflowState) Summary() map[string]int {
	counts := make(map[string]int)
	for _, t := range s.Tasks {
		counts[string(t.Status)]++
	}
	return counts
}
