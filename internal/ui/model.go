package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/stayactive/internal/keepalive"
)

// MaxActions is how many recent actions the dashboard lists.
const MaxActions = 8

// Info is the static part of the dashboard.
type Info struct {
	Backend  string
	Mode     keepalive.Mode
	Interval time.Duration
	// Monitors describes the resolved topology, e.g. "2 via kscreen-doctor".
	Monitors string
}

// StatsFunc snapshots the scheduler counters.
type StatsFunc func() keepalive.Stats

// Model is the dashboard state.
type Model struct {
	info    Info
	stats   StatsFunc
	cancel  context.CancelFunc
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	actions  []keepalive.Action
	now      time.Time
	started  time.Time
	stopped  bool
	quitting bool
}

// NewModel builds the dashboard. cancel is called when the user quits.
func NewModel(info Info, stats StatsFunc, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Current.Active

	now := time.Now()
	return Model{
		info:    info,
		stats:   stats,
		cancel:  cancel,
		keys:    DefaultKeys(),
		help:    help.New(),
		spinner: s,
		now:     now,
		started: now,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return Update(msg, m)
}

// View implements tea.Model
func (m Model) View() string {
	return View(m)
}

// Actions returns the listed actions, oldest first.
func (m Model) Actions() []keepalive.Action {
	return m.actions
}

// NextCycleIn is the time left until the next cycle, zero when unknown or
// overdue.
func (m Model) NextCycleIn() time.Duration {
	if m.stats == nil {
		return 0
	}
	next := m.stats().NextCycle
	if next.IsZero() {
		return 0
	}
	return max(next.Sub(m.now), 0)
}
