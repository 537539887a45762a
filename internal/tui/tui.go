package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/coder.go/internal/ui"
	"github.com/sokinpui/coder.go/model"
)

// Executor is the work the TUI waits on.
type Executor interface {
	Execute(ctx context.Context) (model.Summary, error)
}

type summaryMsg struct{ summary model.Summary }

type errorMsg struct{ err error }

type progressMsg struct{ current, total int }

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// Model shows a spinner while the executor runs, then the summary.
type Model struct {
	ctx      context.Context
	exec     Executor
	spinner  spinner.Model
	state    state
	current  int
	total    int
	summary  model.Summary
	err      error
	quitting bool
}

func New(ctx context.Context, exec Executor) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &Model{
		ctx:     ctx,
		exec:    exec,
		spinner: s,
		state:   stateProcessing,
	}
}

// ProgressFunc returns a callback that forwards progress to p.
func ProgressFunc(p *tea.Program) func(current, total int) {
	return func(current, total int) {
		p.Send(progressMsg{current: current, total: total})
	}
}

// Result returns what the executor produced.
func (m *Model) Result() (model.Summary, error) {
	return m.summary, m.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Files may be half written; quit once the executor returns.
			if m.state == stateProcessing {
				m.quitting = true
				return m, nil
			}
			return m, tea.Quit
		}

	case progressMsg:
		m.current, m.total = msg.current, msg.total
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg.summary
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.quitting {
			return fmt.Sprintf("%s Finishing, quitting when done...\n", m.spinner.View())
		}
		if m.total > 0 {
			return fmt.Sprintf("%s Writing files... [%d/%d]\n", m.spinner.View(), m.current, m.total)
		}
		return fmt.Sprintf("%s Processing...\n", m.spinner.View())
	case stateError:
		return ui.ErrorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return ui.RenderSummary(m.summary)
	default:
		return ""
	}
}

func (m *Model) run() tea.Msg {
	summary, err := m.exec.Execute(m.ctx)
	if err != nil {
		return errorMsg{err}
	}
	return summaryMsg{summary}
}
