package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// taskDoneMsg is sent to the program when the waited-on task returns.
type taskDoneMsg struct {
	err error
}

// waitModel shows a spinner, elapsed time and, when the wait has a limit,
// a bar filling toward it.
type waitModel struct {
	label    string
	limit    time.Duration
	start    time.Time
	spinner  spinner.Model
	bar      progress.Model
	done     bool
	err      error
	canceled bool
}

func newWaitModel(label string, limit time.Duration) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	barWidth := GetTerminalWidth() - 30
	if barWidth > 40 {
		barWidth = 40
	}
	return waitModel{
		label:   label,
		limit:   limit,
		start:   time.Now(),
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

func (m waitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.canceled = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m waitModel) View() string {
	elapsed := time.Since(m.start).Round(time.Second)

	switch {
	case m.canceled:
		return WarningTitleStyle.Render(WarningMarker+" "+m.label) + MutedStyle.Render(" canceled") + "\n"
	case m.done && m.err != nil:
		return ErrorTitleStyle.Render(FailureMarker+" "+m.label) + MutedStyle.Render(fmt.Sprintf(" (%s)", elapsed)) + "\n"
	case m.done:
		return SuccessTitleStyle.Render(SuccessMarker+" "+m.label) + MutedStyle.Render(fmt.Sprintf(" (%s)", elapsed)) + "\n"
	}

	line := m.spinner.View() + " " + m.label
	if m.limit <= 0 {
		return line + MutedStyle.Render(fmt.Sprintf("  %s", elapsed)) + "\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		line,
		"  "+m.bar.ViewAs(m.fraction())+MutedStyle.Render(fmt.Sprintf("  %s / %s", elapsed, m.limit)),
	) + "\n"
}

func (m waitModel) fraction() float64 {
	if m.limit <= 0 {
		return 0
	}
	f := float64(time.Since(m.start)) / float64(m.limit)
	if f > 1 {
		return 1
	}
	return f
}

// Wait runs task and shows progress on out until it returns. limit is the
// expected upper bound used to fill the bar; zero shows only a spinner.
// When out is not a terminal, label is printed once and task runs
// without any animation. Pressing ctrl+c or q cancels the task's context.
func Wait(ctx context.Context, out io.Writer, label string, limit time.Duration, task func(context.Context) error) error {
	if !isTerminal(out) {
		fmt.Fprintf(out, "%s...\n", label)
		return task(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWaitModel(label, limit), tea.WithOutput(out))
	result := make(chan error, 1)
	go func() {
		err := task(ctx)
		result <- err
		p.Send(taskDoneMsg{err: err})
	}()

	_, runErr := p.Run()
	cancel()
	err := <-result
	if runErr != nil {
		return fmt.Errorf("progress display: %w", runErr)
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
