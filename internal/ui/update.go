package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/stayactive/internal/keepalive"
)

// tickMsg refreshes the countdown.
type tickMsg time.Time

// ActionMsg delivers a scheduler action to the dashboard.
type ActionMsg keepalive.Action

// StoppedMsg tells the dashboard the scheduler has exited.
type StoppedMsg struct{}

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case ActionMsg:
		m.actions = append(m.actions, keepalive.Action(msg))
		if n := len(m.actions); n > MaxActions {
			m.actions = append(m.actions[:0:0], m.actions[n-MaxActions:]...)
		}
		return m, nil

	case StoppedMsg:
		m.stopped = true
		return m, tea.Quit

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
