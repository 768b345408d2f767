package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/stayactive/internal/keepalive"
	"github.com/stigoleg/stayactive/internal/platform"
)

func testModel(stats keepalive.Stats, cancel func()) Model {
	return NewModel(Info{
		Backend:  "uinput",
		Mode:     keepalive.ModeMouseOnly,
		Interval: time.Minute,
		Monitors: "2 via kscreen-doctor",
	}, func() keepalive.Stats { return stats }, cancel)
}

func TestQuitCancelsScheduler(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			cancelled := false
			m := testModel(keepalive.Stats{}, func() { cancelled = true })

			var msg tea.KeyMsg
			switch k {
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}

			m, cmd := Update(msg, m)
			assert.True(t, cancelled)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, View(m))
		})
	}
}

func TestToggleHelp(t *testing.T) {
	m := testModel(keepalive.Stats{}, nil)
	m, _ = Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}, m)
	assert.True(t, m.help.ShowAll)
	m, _ = Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")}, m)
	assert.False(t, m.help.ShowAll)
}

func TestActionsAreCapped(t *testing.T) {
	m := testModel(keepalive.Stats{}, nil)
	for i := 0; i < MaxActions+3; i++ {
		m, _ = Update(ActionMsg{Kind: keepalive.ActionKey, Key: platform.KeyShift, Time: time.Unix(int64(i), 0)}, m)
	}
	actions := m.Actions()
	require.Len(t, actions, MaxActions)
	assert.Equal(t, time.Unix(3, 0), actions[0].Time)
	assert.Equal(t, time.Unix(int64(MaxActions+2), 0), actions[MaxActions-1].Time)
}

func TestStoppedQuits(t *testing.T) {
	m := testModel(keepalive.Stats{}, nil)
	m, cmd := Update(StoppedMsg{}, m)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, View(m), "stopped")
}

func TestViewContents(t *testing.T) {
	now := time.Now()
	m := testModel(keepalive.Stats{
		MouseMoves:          4,
		KeyPresses:          0,
		Failures:            1,
		ConsecutiveFailures: 1,
		Health:              keepalive.SimulationHealthFailed,
		NextCycle:           now.Add(90 * time.Second),
	}, nil)
	m, _ = Update(tickMsg(now), m)
	m, _ = Update(ActionMsg{Kind: keepalive.ActionMouse, Time: now}, m)
	m, _ = Update(ActionMsg{Kind: keepalive.ActionKey, Key: platform.KeyAlt, Time: now, Err: errors.New("EAGAIN")}, m)

	view := View(m)
	for _, want := range []string{
		"uinput",
		"mouse only",
		"1m0s",
		"2 via kscreen-doctor",
		"4 moves, 0 keys, 1 failed",
		"failing (1 in a row)",
		"next cycle in 1:30",
		"Mouse moved",
		"Key pressed (Alt): EAGAIN",
		"quit",
	} {
		assert.Contains(t, view, want)
	}
	assert.Equal(t, 90*time.Second, m.NextCycleIn())
}

func TestNextCycleUnknown(t *testing.T) {
	m := testModel(keepalive.Stats{}, nil)
	assert.Zero(t, m.NextCycleIn())
	assert.Contains(t, View(m), "working")
	assert.Contains(t, View(m), "unknown")
}

func TestHealthRow(t *testing.T) {
	view := View(testModel(keepalive.Stats{KeyPresses: 2, Health: keepalive.SimulationHealthOK}, nil))
	assert.Contains(t, view, "Health")
	assert.Contains(t, view, "ok")
	assert.NotContains(t, view, "in a row")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{90 * time.Second, "1:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}

func TestProgressBarWidth(t *testing.T) {
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		assert.Equal(t, progressWidth, len([]rune(stripANSI(progressBar(p)))), fmt.Sprint(p))
	}
}

func TestFormatError(t *testing.T) {
	single := FormatError(errors.New("interval too short"))
	assert.Contains(t, single, "interval too short")

	multi := FormatError(errors.New("no input backend available.\n\nTo fix:\n• add yourself to the input group"))
	assert.Contains(t, multi, "no input backend available.")
	assert.Contains(t, multi, "input group")
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			inEsc = true
		case inEsc:
			if r == 'm' {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
