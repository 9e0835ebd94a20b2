package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"rgsearch/internal/eventbus"
)

// Terminator cancels the running search
type Terminator interface {
	Terminate()
}

// ProgressModel is the live view shown while a search runs
type ProgressModel struct {
	styles      *Styles
	spinner     spinner.Model
	term        Terminator
	description string

	started time.Time
	now     time.Time

	searching  bool
	cancelling bool
	finished   bool
	finalState string

	files     int // files examined
	records   int
	matches   int
	problems  int
	current   string
	lastError string
}

// NewProgressModel creates the progress view for a search over description
func NewProgressModel(description string, term Terminator) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := NewStyles()
	s.Style = styles.Spinner

	now := time.Now()
	return &ProgressModel{
		styles:      styles,
		spinner:     s,
		term:        term,
		description: description,
		started:     now,
		now:         now,
	}
}

// Init returns an initial command
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update handles messages
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// The finished event quits once the session has wound down
			if !m.cancelling {
				m.cancelling = true
				m.term.Terminate()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.now = time.Time(msg)
		if m.finished {
			return m, nil
		}
		return m, tick()

	case EventMsg:
		return m, m.handleEvent(msg.Event)
	}
	return m, nil
}

func (m *ProgressModel) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.SearchStartedEvent:
		m.searching = true
	case eventbus.FileMatchingStartedEvent:
		m.files++
		m.current = e.Path
	case eventbus.MatchRecordAddedEvent:
		m.records++
		m.matches += e.Record.MatchCount()
	case eventbus.SearchErrorEvent:
		m.problems++
		m.lastError = e.Message
	case eventbus.SearchFinishedEvent:
		m.finished = true
		m.finalState = e.State
		return tea.Quit
	}
	return nil
}

// View renders the UI
func (m *ProgressModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	status := "Starting"
	switch {
	case m.cancelling:
		status = "Stopping"
	case m.searching:
		status = "Searching"
	}
	fmt.Fprintf(&b, "%s %s %s\n", m.spinner.View(), status, m.description)

	elapsed := m.now.Sub(m.started).Truncate(100 * time.Millisecond)
	counts := fmt.Sprintf("%d files, %d matches in %d files, %s", m.files, m.matches, m.records, elapsed)
	b.WriteString(m.styles.Status.Render(counts))
	b.WriteString("\n")

	if m.current != "" {
		b.WriteString(m.styles.Dim.Render(filepath.Base(m.current)))
		b.WriteString("\n")
	}
	if m.lastError != "" {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("%d problems, last: %s", m.problems, m.lastError)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Dim.Render("q to stop"))
	return b.String()
}

// FinalState returns the state carried by the finished event
func (m *ProgressModel) FinalState() string {
	return m.finalState
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var progressEvents = []eventbus.EventType{
	eventbus.EventSearchStarted,
	eventbus.EventFileMatchingStarted,
	eventbus.EventMatchRecordAdded,
	eventbus.EventSearchError,
	eventbus.EventSearchFinished,
}

// Progress runs a ProgressModel fed from the event bus
type Progress struct {
	program *tea.Program
	unsubs  []func()
}

// NewProgress subscribes to the bus right away so no event published after
// it returns is missed, even before Run starts.
func NewProgress(ctx context.Context, bus eventbus.EventBus, out io.Writer, description string, term Terminator) *Progress {
	model := NewProgressModel(description, term)
	p := &Progress{
		program: tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx)),
	}
	for _, t := range progressEvents {
		p.unsubs = append(p.unsubs, bus.Subscribe(t, func(e eventbus.DomainEvent) {
			p.program.Send(EventMsg{Event: e})
		}))
	}
	return p
}

// Run blocks until the search finishes or ctx is cancelled
func (p *Progress) Run() error {
	defer p.Close()
	_, err := p.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Close stops forwarding events
func (p *Progress) Close() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}
