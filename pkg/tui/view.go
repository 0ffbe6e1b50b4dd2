package tui

import (
	"fmt"
	"strings"

	"github.com/entrhq/maestro/pkg/types"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("maestro"))
	b.WriteString("\n\n")

	if !m.connected {
		b.WriteString(m.spinner.View())
		b.WriteString(emptyStyle.Render(" connecting to maestrod..."))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.sessions) == 0 {
		b.WriteString(emptyStyle.Render("no media sessions yet - play something in the browser"))
		b.WriteString("\n")
	}

	for i, session := range m.sessions {
		b.WriteString(m.renderCard(session, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space play/pause - arrows seek - +/- volume - m mute - n/p track - y copy url - q quit"))
	return b.String()
}

// renderCard draws one session as a three-line bordered card. The line
// layout is load-bearing: mouse hit-testing in update.go assumes it.
func (m *Model) renderCard(session types.Session, selected bool) string {
	title := session.Title
	if title == "" {
		title = "(untitled)"
	}

	status := pausedStyle.Render("paused")
	if session.State.Playing() {
		status = playingStyle.Render("playing")
	}

	extras := fmt.Sprintf("vol %3.0f%%", session.State.Volume*100)
	if session.State.Muted {
		extras = "muted"
	}

	inner := m.width - 2*cardEdgePad
	if inner < 20 {
		inner = 20
	}

	line1 := fmt.Sprintf("%s  %s  %s", status, titleStyle.Render(truncate(title, inner-20)), siteStyle.Render(extras))
	line2 := siteStyle.Render(truncate(session.SiteURL, inner))
	line3 := m.renderBar(session)

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(m.width - 2).Render(line1 + "\n" + line2 + "\n" + line3)
}

// renderBar draws "current [====----] total". Column positions match the
// hit-test constants.
func (m *Model) renderBar(session types.Session) string {
	width := m.barWidth()
	cur := types.FormatClock(session.State.CurrentTime)
	dur := "--:--"
	filled := 0
	if session.State.Duration > 0 {
		dur = types.FormatClock(session.State.Duration)
		frac := session.State.CurrentTime / session.State.Duration
		if frac > 1 {
			frac = 1
		}
		filled = int(frac * float64(width))
	}

	bar := barFillStyle.Render(strings.Repeat("━", filled)) +
		barTrackStyle.Render(strings.Repeat("─", width-filled))
	return fmt.Sprintf("%s%s %-8s", clockStyle.Render(fmt.Sprintf("%8s ", cur)), bar, clockStyle.Render(dur))
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
