// Package tui renders the control surface: a session list with transport
// controls, driven by the surface mirror and the daemon's feed.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/surface"
	"github.com/entrhq/maestro/pkg/types"
)

const (
	// Card geometry, shared between View and the mouse hit-testing in
	// Update. A card is three content lines inside a one-line border.
	headerLines  = 2
	cardHeight   = 5
	cardGap      = 1
	barClockPad  = 9 // "12:34:56 " column before and after the bar
	cardEdgePad  = 2 // border plus padding on one side
	seekStepSecs = 10
	volumeStep   = 0.05
)

// RefreshMsg tells the model the mirror changed and the view is stale. The
// feed client's handler injects it through Program.Send.
type RefreshMsg struct{}

// keyMap defines the session-list keybindings.
type keyMap struct {
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	Next       key.Binding
	Previous   key.Binding
	CopyURL    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous session")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next session")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		SeekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("left", "seek back")),
		SeekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("right", "seek forward")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		Previous:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous track")),
		CopyURL:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
	}
}

// toastClearMsg expires the transient status line.
type toastClearMsg struct{ id int }

// Model is the Bubble Tea model for the session list.
type Model struct {
	mirror  *surface.Mirror
	log     *logging.Logger
	keys    keyMap
	spinner spinner.Model

	sessions []types.Session
	cursor   int

	width     int
	height    int
	ready     bool
	connected bool

	dragging bool
	dragID   types.SessionID

	toast   string
	toastID int
}

// New creates the TUI model over an existing mirror.
func New(mirror *surface.Mirror, log *logging.Logger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentPink)

	return &Model{
		mirror:  mirror,
		log:     log,
		keys:    defaultKeyMap(),
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return m.spinner.Tick
}

// refresh re-reads the mirror and clamps the cursor to the new list.
func (m *Model) refresh() {
	m.sessions = m.mirror.Sessions()
	if m.cursor >= len(m.sessions) {
		m.cursor = len(m.sessions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the session under the cursor.
func (m *Model) selected() (types.Session, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return types.Session{}, false
	}
	return m.sessions[m.cursor], true
}

// showToast displays a transient status line for a few seconds.
func (m *Model) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastID++
	id := m.toastID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{id: id}
	})
}
