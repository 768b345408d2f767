package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/stayactive/internal/keepalive"
)

// Dashboard runs the bubbletea program and forwards scheduler events to it.
type Dashboard struct {
	program *tea.Program
}

// NewDashboard creates a dashboard bound to ctx. Output goes to out, input
// comes from in; nil uses the process terminal.
func NewDashboard(ctx context.Context, m Model, in io.Reader, out io.Writer) *Dashboard {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return &Dashboard{program: tea.NewProgram(m, opts...)}
}

// Notify is suitable as keepalive.Config.OnAction.
func (d *Dashboard) Notify(a keepalive.Action) {
	d.program.Send(ActionMsg(a))
}

// Stopped tells the dashboard to exit.
func (d *Dashboard) Stopped() {
	d.program.Send(StoppedMsg{})
}

// Run blocks until the user quits, Stopped is called or the context ends.
func (d *Dashboard) Run() error {
	_, err := d.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
