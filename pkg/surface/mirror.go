// Package surface implements the control-surface side of the feed: a local
// mirror of the session registry that applies user intent optimistically,
// and the WebSocket client that keeps the mirror synchronized with the
// daemon.
package surface

import (
	"sort"
	"sync"
	"time"

	"github.com/entrhq/maestro/pkg/types"
)

// overrideTTL bounds how long an optimistic play/pause flip shadows the
// daemon's reports. If no confirming update arrives within it, the mirror
// snaps back to whatever the daemon says.
const overrideTTL = time.Second

// Sender delivers a command to the daemon. Fire-and-forget.
type Sender func(types.Command)

type override struct {
	paused  bool
	expires time.Time
}

// Mirror is the surface's local copy of the registry. Feed messages flow in
// through Handle; user interactions go out as commands and take effect
// locally before the daemon confirms them.
type Mirror struct {
	send Sender
	now  func() time.Time

	mu        sync.Mutex
	sessions  map[string]types.Session
	overrides map[string]override
	drags     map[string]float64
}

// NewMirror creates an empty mirror sending commands through send.
func NewMirror(send Sender) *Mirror {
	return &Mirror{
		send:      send,
		now:       time.Now,
		sessions:  make(map[string]types.Session),
		overrides: make(map[string]override),
		drags:     make(map[string]float64),
	}
}

// Handle applies one feed message. A sessions_init frame replaces the whole
// mirror, which is how a reconnect resynchronizes after missed frames.
func (m *Mirror) Handle(msg types.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg.Type {
	case types.MessageSessionsInit:
		m.sessions = make(map[string]types.Session, len(msg.Sessions))
		for _, s := range msg.Sessions {
			m.applyLocked(s)
		}
	case types.MessageSessionUpdated:
		if msg.Session != nil {
			m.applyLocked(*msg.Session)
		}
	case types.MessageSessionRemoved:
		if msg.SessionID != nil {
			key := msg.SessionID.String()
			delete(m.sessions, key)
			delete(m.overrides, key)
			delete(m.drags, key)
		}
	}
}

// applyLocked merges one reported session into the mirror. An unexpired
// optimistic override outranks the report's play state until the daemon
// confirms the flip; a drag in progress pins the playback position.
func (m *Mirror) applyLocked(s types.Session) {
	key := s.ID.String()

	if ov, ok := m.overrides[key]; ok {
		switch {
		case s.State.Paused == ov.paused:
			// Confirmed; the override has served its purpose.
			delete(m.overrides, key)
		case m.now().Before(ov.expires):
			s.State.Paused = ov.paused
		default:
			delete(m.overrides, key)
		}
	}

	if pos, dragging := m.drags[key]; dragging {
		s.State.CurrentTime = pos
	}

	m.sessions[key] = s
}

// Sessions returns the mirror ordered for presentation: playing first, then
// most recently active.
func (m *Mirror) Sessions() []types.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].State.Playing(), out[j].State.Playing()
		if pi != pj {
			return pi
		}
		return out[i].LastActiveAt.After(out[j].LastActiveAt)
	})
	return out
}

// Get returns one session by ID.
func (m *Mirror) Get(id types.SessionID) (types.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id.String()]
	return s, ok
}

// Toggle flips play/pause optimistically and tells the daemon. The flipped
// state shows immediately and holds until confirmed or expired.
func (m *Mirror) Toggle(id types.SessionID) {
	m.mu.Lock()
	key := id.String()
	s, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	assumed := !s.State.Paused
	m.overrides[key] = override{paused: assumed, expires: m.now().Add(overrideTTL)}
	s.State.Paused = assumed
	m.sessions[key] = s
	m.mu.Unlock()

	m.send(types.Command{SessionID: id, Verb: types.VerbToggle})
}

// Seek moves the position by delta seconds.
func (m *Mirror) Seek(id types.SessionID, delta float64) {
	m.send(types.Command{SessionID: id, Verb: types.VerbSeek, Args: types.CommandArgs{Delta: delta}})
}

// SetVolume sets the normalized volume, applied locally right away.
func (m *Mirror) SetVolume(id types.SessionID, volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	m.mu.Lock()
	key := id.String()
	if s, ok := m.sessions[key]; ok {
		s.State.Volume = volume
		m.sessions[key] = s
	}
	m.mu.Unlock()

	m.send(types.Command{SessionID: id, Verb: types.VerbSetVolume, Args: types.CommandArgs{Volume: volume}})
}

// ToggleMute asks the daemon to flip the mute state.
func (m *Mirror) ToggleMute(id types.SessionID) {
	m.send(types.Command{SessionID: id, Verb: types.VerbMute})
}

// NextTrack skips forward.
func (m *Mirror) NextTrack(id types.SessionID) {
	m.send(types.Command{SessionID: id, Verb: types.VerbNextTrack})
}

// PreviousTrack skips backward.
func (m *Mirror) PreviousTrack(id types.SessionID) {
	m.send(types.Command{SessionID: id, Verb: types.VerbPreviousTrack})
}

// BeginDrag opens a drag on the session's progress bar. The daemon stops
// reporting progress and the mirror pins the position to the drag.
func (m *Mirror) BeginDrag(id types.SessionID) {
	m.mu.Lock()
	key := id.String()
	s, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.drags[key] = s.State.CurrentTime
	m.mu.Unlock()

	m.send(types.Command{SessionID: id, Verb: types.VerbBeginSeek})
}

// DragTo moves the dragged position locally. Nothing is sent until the
// drag ends.
func (m *Mirror) DragTo(id types.SessionID, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.String()
	if _, dragging := m.drags[key]; !dragging {
		return
	}
	s, ok := m.sessions[key]
	if !ok {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if s.State.Duration > 0 && seconds > s.State.Duration {
		seconds = s.State.Duration
	}
	m.drags[key] = seconds
	s.State.CurrentTime = seconds
	m.sessions[key] = s
}

// EndDrag closes the drag: the final position goes out as one absolute
// seek, then emission resumes.
func (m *Mirror) EndDrag(id types.SessionID) {
	m.mu.Lock()
	key := id.String()
	pos, dragging := m.drags[key]
	delete(m.drags, key)
	m.mu.Unlock()

	if !dragging {
		return
	}
	m.send(types.Command{SessionID: id, Verb: types.VerbSetTime, Args: types.CommandArgs{Time: pos}})
	m.send(types.Command{SessionID: id, Verb: types.VerbEndSeek})
}
