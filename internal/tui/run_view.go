// Package tui provides the terminal user interface for TaskPilot runs.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/internal/pipeline"
)

// stageStatus is the display state of one pipeline stage.
type stageStatus int

const (
	stagePending stageStatus = iota
	stageRunning
	stageDone
	stageSkipped
)

// stageOrder lists the displayed stages in pipeline order.
var stageOrder = []pipeline.State{
	pipeline.StateTaskCreation,
	pipeline.StatePriorityAssignment,
	pipeline.StateSuggestionGeneration,
	pipeline.StateCollaborationPlanning,
	pipeline.StateReportGeneration,
}

// stageLabels maps pipeline states to display names.
var stageLabels = map[pipeline.State]string{
	pipeline.StateTaskCreation:          "Create task",
	pipeline.StatePriorityAssignment:    "Assign priority",
	pipeline.StateSuggestionGeneration:  "Generate suggestions",
	pipeline.StateCollaborationPlanning: "Plan collaboration",
	pipeline.StateReportGeneration:      "Generate report",
}

// EventMsg wraps a pipeline event for the bubbletea loop.
type EventMsg pipeline.Event

// eventsClosedMsg indicates the pipeline event channel was closed or the
// run finished.
type eventsClosedMsg struct{}

// RunModel renders pipeline progress as a stage checklist with a live
// spinner and a token/cost footer.
type RunModel struct {
	events  <-chan pipeline.Event
	tracker *api.TokenTracker

	spinner  spinner.Model
	statuses map[pipeline.State]stageStatus
	notes    []string
	outcome  string
	done     bool

	titleStyle lipgloss.Style
	doneStyle  lipgloss.Style
	runStyle   lipgloss.Style
	dimStyle   lipgloss.Style
}

// NewRunModel creates a run view over the pipeline's event channel. The
// tracker may be nil when token usage is unavailable.
func NewRunModel(events <-chan pipeline.Event, tracker *api.TokenTracker) RunModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	statuses := make(map[pipeline.State]stageStatus, len(stageOrder))
	for _, s := range stageOrder {
		statuses[s] = stagePending
	}

	return RunModel{
		events:   events,
		tracker:  tracker,
		spinner:  sp,
		statuses: statuses,

		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		doneStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		runStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dimStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Init starts the spinner and event pump.
func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent reads the next pipeline event as a command.
func (m RunModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg(ev)
	}
}

// Update handles messages for the run view.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(pipeline.Event(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one pipeline event into the display state.
func (m *RunModel) apply(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventStageStarted:
		m.statuses[ev.State] = stageRunning
	case pipeline.EventStageCompleted:
		m.statuses[ev.State] = stageDone
	case pipeline.EventTaskEnriched:
		note := ev.TaskTitle
		if ev.Message != "" {
			note = fmt.Sprintf("%s → %s", ev.TaskTitle, ev.Message)
		}
		m.notes = append(m.notes, note)
	case pipeline.EventReportSkipped:
		m.statuses[pipeline.StateReportGeneration] = stageSkipped
	case pipeline.EventPipelineDone:
		m.outcome = ev.Message
		m.done = true
	}
}

// View renders the stage checklist.
func (m RunModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.titleStyle.Render("TaskPilot pipeline"))
	sb.WriteString("\n\n")

	for _, s := range stageOrder {
		label := stageLabels[s]
		switch m.statuses[s] {
		case stageDone:
			sb.WriteString(m.doneStyle.Render("  ✓ " + label))
		case stageRunning:
			sb.WriteString(m.runStyle.Render("  " + m.spinner.View() + " " + label))
		case stageSkipped:
			sb.WriteString(m.dimStyle.Render("  - " + label + " (skipped)"))
		default:
			sb.WriteString(m.dimStyle.Render("  · " + label))
		}
		sb.WriteString("\n")
	}

	if len(m.notes) > 0 {
		sb.WriteString("\n")
		start := 0
		if len(m.notes) > 5 {
			start = len(m.notes) - 5
		}
		for _, note := range m.notes[start:] {
			sb.WriteString(m.dimStyle.Render("    " + note))
			sb.WriteString("\n")
		}
	}

	if m.tracker != nil {
		in, out := m.tracker.Total()
		sb.WriteString("\n")
		sb.WriteString(m.dimStyle.Render(fmt.Sprintf(
			"  tokens: %d in / %d out   cost: $%.4f   calls: %d",
			in, out, m.tracker.Cost(), m.tracker.Calls())))
		sb.WriteString("\n")
	}

	if m.done && m.outcome != "" {
		sb.WriteString("\n")
		sb.WriteString(m.titleStyle.Render("  outcome: " + m.outcome))
		sb.WriteString("\n")
	}

	return sb.String()
}
