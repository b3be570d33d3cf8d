package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Task is a blocking step shown behind a spinner. It returns a one-line summary.
type Task func(ctx context.Context) (string, error)

// Progress shows a long-running step. On a terminal it animates a spinner;
// otherwise it prints plain start and end lines.
type Progress struct {
	out         io.Writer
	interactive bool
}

// NewProgress creates a Progress writing to out.
func NewProgress(out io.Writer, interactive bool) *Progress {
	return &Progress{out: out, interactive: interactive}
}

// Run executes task and reports its outcome.
func (p *Progress) Run(ctx context.Context, message string, task Task) (string, error) {
	if !p.interactive {
		fmt.Fprintf(p.out, "%s %s\n", SymbolArrowRight, message)
		result, err := task(ctx)
		if err != nil {
			fmt.Fprintf(p.out, "%s %v\n", SymbolCross, err)
			return "", err
		}
		fmt.Fprintf(p.out, "%s %s\n", SymbolCheck, result)
		return result, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newSpinnerModel(ctx, message, task, cancel)
	final, err := tea.NewProgram(m, tea.WithOutput(p.out)).Run()
	if err != nil {
		return "", fmt.Errorf("progress display failed: %w", err)
	}
	done := final.(spinnerModel)
	return done.result, done.err
}

// taskDoneMsg carries the outcome of the task into the program.
type taskDoneMsg struct {
	result string
	err    error
}

var cancelKey = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c", "cancel"))

type spinnerModel struct {
	spinner   spinner.Model
	ctx       context.Context
	task      Task
	cancel    context.CancelFunc
	message   string
	done      bool
	canceling bool
	result    string
	err       error
}

func newSpinnerModel(ctx context.Context, message string, task Task, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel{spinner: s, ctx: ctx, task: task, cancel: cancel, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	run := func() tea.Msg {
		result, err := m.task(m.ctx)
		return taskDoneMsg{result: result, err: err}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		// The task owns cleanup; keep waiting for it after cancelling.
		if key.Matches(msg, cancelKey) && !m.canceling {
			m.canceling = true
			m.cancel()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	switch {
	case m.done && m.err != nil:
		return ErrorStyle.Render(SymbolCross+" "+m.err.Error()) + "\n"
	case m.done:
		return SuccessStyle.Render(SymbolCheck+" "+m.result) + "\n"
	case m.canceling:
		return m.spinner.View() + " " + WarningStyle.Render("cancelling...")
	}
	return m.spinner.View() + " " + m.message + " " + MutedStyle.Render("("+cancelKey.Help().Key+" to "+cancelKey.Help().Desc+")")
}
