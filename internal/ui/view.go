package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stigoleg/stayactive/internal/keepalive"
)

const progressWidth = 24

var progressGradient = []string{
	"#7D56F4", "#6E5AF5", "#5F5FF7", "#5063F8", "#4168FA", "#326CFB",
	"#1E72FD", "#0A78FF", "#0083EB", "#008DD2", "#0097B9", "#00A1A0",
	"#00AB87", "#00B56E", "#00BF55", "#43BF6D",
}

// View renders the dashboard.
func View(m Model) string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(Current.Title.Render("stayactive"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(Current.Label.Render(label))
		b.WriteString(Current.Value.Render(value))
		b.WriteString("\n")
	}
	row("Backend", m.info.Backend)
	row("Mode", m.info.Mode.String())
	row("Interval", m.info.Interval.String())
	if m.info.Monitors != "" {
		row("Monitors", m.info.Monitors)
	}
	row("Uptime", formatDuration(m.now.Sub(m.started)))
	if m.stats != nil {
		s := m.stats()
		row("Actions", fmt.Sprintf("%d moves, %d keys, %d failed", s.MouseMoves, s.KeyPresses, s.Failures))
		b.WriteString(Current.Label.Render("Health"))
		if s.Health == keepalive.SimulationHealthFailed {
			b.WriteString(Current.Failed.Render(fmt.Sprintf("%s (%d in a row)", s.Health, s.ConsecutiveFailures)))
		} else {
			b.WriteString(Current.Value.Render(s.Health.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.stopped {
		b.WriteString(Current.Help.Render("stopped"))
	} else if next := m.NextCycleIn(); next > 0 {
		b.WriteString(Current.Countdown.Render("next cycle in " + formatDuration(next)))
		b.WriteString("\n ")
		b.WriteString(progressBar(1 - float64(next)/float64(m.info.Interval)))
	} else {
		b.WriteString(Current.Countdown.Render("working…"))
	}
	b.WriteString("\n\n")

	if len(m.actions) > 0 {
		b.WriteString(Current.Title.Render("Recent"))
		b.WriteString("\n")
		for i := len(m.actions) - 1; i >= 0; i-- {
			a := m.actions[i]
			line := fmt.Sprintf("[%s] %s", a.Time.Format("15:04:05"), a)
			if a.Err != nil {
				b.WriteString(Current.Failed.Render(line + ": " + a.Err.Error()))
			} else {
				b.WriteString(Current.Action.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(Current.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func progressBar(progress float64) string {
	progress = max(0, min(progress, 1))
	filled := int(progress * progressWidth)

	var bar strings.Builder
	for i := 0; i < progressWidth; i++ {
		if i < filled {
			idx := i * (len(progressGradient) - 1) / (progressWidth - 1)
			bar.WriteString(Current.ProgressBar.Background(lipgloss.Color(progressGradient[idx])).Render(" "))
		} else {
			bar.WriteString(Current.ProgressBar.Render(" "))
		}
	}
	return bar.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
