package pipeline

import "time"

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventStageStarted indicates a stage has started execution.
	EventStageStarted EventType = "stage_started"
	// EventStageCompleted indicates a stage completed.
	EventStageCompleted EventType = "stage_completed"
	// EventTaskEnriched indicates one task was enriched by a stage.
	EventTaskEnriched EventType = "task_enriched"
	// EventReportSkipped indicates the report stage was skipped.
	EventReportSkipped EventType = "report_skipped"
	// EventPipelineDone indicates the run reached a terminal state.
	EventPipelineDone EventType = "pipeline_done"
)

// Event is emitted by the pipeline as it advances. Events feed the TUI
// and plain-output progress display.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// State is the pipeline state the event relates to.
	State State
	// TaskTitle is the title of the related task, if applicable.
	TaskTitle string
	// Message provides additional context about the event.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// emit sends an event without blocking; slow consumers lose events
// rather than stalling the run.
func (p *Pipeline) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case p.events <- ev:
	default:
	}
}
