// Package tui renders the live progress of a generation run: stage
// transitions, dialogue as it accumulates, round approval results, and
// pause state. It subscribes to the orchestrator's event bus and is purely
// an observer; pause and resume requests are forwarded to callbacks.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/specsmith/specsmith/internal/event"
	"github.com/specsmith/specsmith/internal/stage"
)

// maxFeedLines bounds the dialogue tail kept on screen.
const maxFeedLines = 14

// BusMsg wraps a bus event for delivery into the bubbletea update loop.
type BusMsg struct {
	Event event.Event
}

// Subscribe forwards every bus event into the program. Returns the
// subscription ID for later cleanup.
func Subscribe(bus *event.Bus, p *tea.Program) uint64 {
	return bus.SubscribeAll(func(e event.Event) {
		p.Send(BusMsg{Event: e})
	})
}

type feedLine struct {
	agent   string
	message string
	kind    string
}

// Model is the watch-mode bubbletea model.
type Model struct {
	styles  *Styles
	spinner spinner.Model

	onPause  func()
	onResume func()

	round    int
	stage    string
	done     map[string]bool
	feed     []feedLine
	approval float64
	voted    bool
	paused   bool
	complete bool
	specLen  int

	errTitle string
	errBody  string

	width  int
	height int
	quit   bool
}

// New creates a watch model. The pause and resume callbacks may be nil when
// the caller does not support interactive control.
func New(styles *Styles, onPause, onResume func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StageLive
	return Model{
		styles:   styles,
		spinner:  sp,
		onPause:  onPause,
		onResume: onResume,
		done:     map[string]bool{},
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key presses, spinner ticks, and bus events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "p":
			if m.onPause != nil && !m.complete {
				m.onPause()
				m.paused = true
			}
			return m, nil
		case "r":
			if m.onResume != nil && m.paused {
				m.onResume()
				m.paused = false
			}
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BusMsg:
		return m.applyEvent(msg.Event)
	}
	return m, nil
}

func (m Model) applyEvent(e event.Event) (tea.Model, tea.Cmd) {
	switch e := e.(type) {
	case event.StageStartedEvent:
		m.round = e.Round
		m.stage = e.Stage
		m.voted = false
	case event.StageCompletedEvent:
		m.done[e.Stage] = true
	case event.StageFailedEvent:
		m.errTitle = e.Title
		m.errBody = e.Message
		return m, tea.Quit
	case event.RoundCompletedEvent:
		m.approval = e.ApprovalRate
		m.voted = true
		if !e.Advancing {
			// Next round starts over.
			m.done = map[string]bool{}
		}
	case event.GenerationCompletedEvent:
		m.complete = true
		m.specLen = e.SpecLength
		return m, tea.Quit
	case event.GenerationPausedEvent:
		m.paused = true
	case event.GenerationResumedEvent:
		m.paused = false
		m.done = map[string]bool{}
	case event.DialogueAppendedEvent:
		m.feed = append(m.feed, feedLine{agent: e.Agent, message: e.Message, kind: e.EntryType})
		if len(m.feed) > maxFeedLines {
			m.feed = m.feed[len(m.feed)-maxFeedLines:]
		}
	}
	return m, nil
}

// View renders the progress header, stage strip, dialogue tail, and help.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("specsmith"))
	if m.round > 0 {
		b.WriteString(m.styles.Header.Render(fmt.Sprintf("  round %d", m.round)))
	}
	if m.paused {
		b.WriteString("  " + m.styles.Paused.Render("PAUSED"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderStages())
	b.WriteString("\n\n")

	for _, line := range m.feed {
		agent := m.styles.Agent.Render(line.agent)
		style := m.styles.Message
		if line.kind == "vote" {
			style = m.styles.Vote
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", agent, style.Render(truncate(line.message, m.contentWidth()))))
	}

	if m.voted {
		b.WriteString("\n" + m.styles.Header.Render(fmt.Sprintf("approval %.0f%%", m.approval*100)) + "\n")
	}
	if m.errTitle != "" {
		b.WriteString("\n" + m.styles.ErrorTitle.Render(m.errTitle) + "\n")
		b.WriteString(m.styles.ErrorBody.Render(m.errBody) + "\n")
	}
	if m.complete {
		b.WriteString("\n" + m.styles.StageDone.Render(fmt.Sprintf("Specification generated (%d characters).", m.specLen)) + "\n")
	}

	b.WriteString("\n" + m.styles.Help.Render("p pause · r resume · q quit") + "\n")
	return b.String()
}

func (m Model) renderStages() string {
	parts := make([]string, 0, len(stage.RoundStages)+1)
	for _, name := range append(append([]stage.Name{}, stage.RoundStages...), stage.StageSpec) {
		s := name.String()
		switch {
		case m.done[s]:
			parts = append(parts, m.styles.StageDone.Render("✓ "+s))
		case s == m.stage && !m.complete && m.errTitle == "":
			parts = append(parts, m.styles.StageLive.Render(m.spinner.View()+s))
		default:
			parts = append(parts, m.styles.StageTodo.Render("· "+s))
		}
	}
	return strings.Join(parts, m.styles.StageTodo.Render("  "))
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 16
}

func truncate(s string, max int) string {
	if max < 8 {
		max = 8
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
