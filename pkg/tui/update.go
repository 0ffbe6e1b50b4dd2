package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atotto/clipboard"

	"github.com/entrhq/maestro/pkg/types"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case RefreshMsg:
		m.connected = true
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastClearMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session, hasSession := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if hasSession {
			m.mirror.Toggle(session.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keys.SeekBack):
		if hasSession {
			m.mirror.Seek(session.ID, -seekStepSecs)
		}

	case key.Matches(msg, m.keys.SeekFwd):
		if hasSession {
			m.mirror.Seek(session.ID, seekStepSecs)
		}

	case key.Matches(msg, m.keys.VolumeUp):
		if hasSession {
			m.mirror.SetVolume(session.ID, session.State.Volume+volumeStep)
			m.refresh()
		}

	case key.Matches(msg, m.keys.VolumeDown):
		if hasSession {
			m.mirror.SetVolume(session.ID, session.State.Volume-volumeStep)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Mute):
		if hasSession {
			m.mirror.ToggleMute(session.ID)
		}

	case key.Matches(msg, m.keys.Next):
		if hasSession {
			m.mirror.NextTrack(session.ID)
		}

	case key.Matches(msg, m.keys.Previous):
		if hasSession {
			m.mirror.PreviousTrack(session.ID)
		}

	case key.Matches(msg, m.keys.CopyURL):
		if hasSession {
			if err := clipboard.WriteAll(session.SiteURL); err != nil {
				m.log.Debugf("clipboard write failed: %v", err)
				return m, m.showToast("clipboard unavailable")
			}
			return m, m.showToast("copied " + session.SiteURL)
		}
	}
	return m, nil
}

// handleMouse implements click-to-select and progress-bar dragging. A drag
// opens the daemon's seek hold; releasing commits the final position as one
// absolute seek.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx, onBar := m.hitTest(msg.X, msg.Y)
		if idx < 0 {
			return m, nil
		}
		m.cursor = idx
		if !onBar {
			return m, nil
		}
		session := m.sessions[idx]
		if !session.State.CanSeek {
			return m, nil
		}
		m.dragging = true
		m.dragID = session.ID
		m.mirror.BeginDrag(session.ID)
		m.mirror.DragTo(session.ID, m.barSeconds(msg.X, session))
		m.refresh()

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		if session, ok := m.mirror.Get(m.dragID); ok {
			m.mirror.DragTo(m.dragID, m.barSeconds(msg.X, session))
			m.refresh()
		}

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		m.mirror.EndDrag(m.dragID)
		m.refresh()
	}
	return m, nil
}

// hitTest maps terminal coordinates to a card index and whether the point
// sits on that card's progress bar line.
func (m *Model) hitTest(x, y int) (int, bool) {
	row := y - headerLines
	if row < 0 {
		return -1, false
	}
	step := cardHeight + cardGap
	idx := row / step
	if idx >= len(m.sessions) {
		return -1, false
	}
	inCard := row % step
	if inCard >= cardHeight {
		return -1, false
	}
	// Content row 3 of the card is the progress line (row 0 is the top
	// border).
	onBar := inCard == 3 && x >= cardEdgePad+barClockPad && x < cardEdgePad+barClockPad+m.barWidth()
	return idx, onBar
}

// barSeconds converts a terminal column on the progress bar into a playback
// position.
func (m *Model) barSeconds(x int, session types.Session) float64 {
	width := m.barWidth()
	if width <= 0 || session.State.Duration <= 0 {
		return 0
	}
	offset := x - cardEdgePad - barClockPad
	if offset < 0 {
		offset = 0
	}
	if offset > width {
		offset = width
	}
	return float64(offset) / float64(width) * session.State.Duration
}

// barWidth is the drawable width of the progress bar.
func (m *Model) barWidth() int {
	w := m.width - 2*cardEdgePad - 2*barClockPad
	if w < 10 {
		w = 10
	}
	return w
}
