package surface

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/maestro/pkg/types"
)

type commandLog struct {
	mu   sync.Mutex
	cmds []types.Command
}

func (l *commandLog) send(cmd types.Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cmds = append(l.cmds, cmd)
}

func (l *commandLog) commands() []types.Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Command, len(l.cmds))
	copy(out, l.cmds)
	return out
}

func sid(group, ctx string) types.SessionID {
	return types.SessionID{ContextGroupID: group, ContextID: ctx}
}

func session(id types.SessionID, paused bool, current float64) types.Session {
	return types.Session{
		ID:           id,
		Title:        "track",
		SiteURL:      "https://example.com",
		State:        types.PlaybackState{Paused: paused, Volume: 1, CurrentTime: current, Duration: 300, CanSeek: true},
		LastActiveAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func newTestMirror() (*Mirror, *commandLog) {
	log := &commandLog{}
	m := NewMirror(log.send)
	return m, log
}

func TestHandleInitReplacesMirror(t *testing.T) {
	m, _ := newTestMirror()
	a, b := sid("g1", "c1"), sid("g2", "c1")

	m.Handle(types.NewSessionsInitMessage([]types.Session{session(a, true, 0)}))
	require.Len(t, m.Sessions(), 1)

	m.Handle(types.NewSessionsInitMessage([]types.Session{session(b, false, 10)}))
	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, b, sessions[0].ID)
}

func TestHandleRemovedDropsSession(t *testing.T) {
	m, _ := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 5)))
	m.Handle(types.NewSessionRemovedMessage(id))
	assert.Empty(t, m.Sessions())
}

func TestToggleAppliesOptimistically(t *testing.T) {
	m, log := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 5)))

	m.Toggle(id)

	s, ok := m.Get(id)
	require.True(t, ok)
	assert.True(t, s.State.Paused, "pause shows before the daemon confirms")

	cmds := log.commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, types.VerbToggle, cmds[0].Verb)
}

func TestOverrideShadowsStaleReports(t *testing.T) {
	m, _ := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 5)))
	m.Toggle(id) // assume paused

	// A stale still-playing report inside the window keeps the assumed state.
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 6)))
	s, _ := m.Get(id)
	assert.True(t, s.State.Paused)

	// A confirming report clears the override.
	m.Handle(types.NewSessionUpdatedMessage(session(id, true, 6)))
	s, _ = m.Get(id)
	assert.True(t, s.State.Paused)

	// With the override gone, reports apply verbatim again.
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 7)))
	s, _ = m.Get(id)
	assert.False(t, s.State.Paused)
}

func TestOverrideExpires(t *testing.T) {
	m, _ := newTestMirror()
	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 5)))
	m.Toggle(id)

	// Past the TTL a contradicting report wins; the command evidently
	// never landed.
	clock = clock.Add(overrideTTL + time.Millisecond)
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 8)))
	s, _ := m.Get(id)
	assert.False(t, s.State.Paused)
}

func TestDragPinsProgressButNotOtherFields(t *testing.T) {
	m, log := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 50)))

	m.BeginDrag(id)
	m.DragTo(id, 120)

	// Incoming progress cannot move the dragged position, but the rest of
	// the report applies.
	update := session(id, false, 55)
	update.Title = "renamed"
	m.Handle(types.NewSessionUpdatedMessage(update))

	s, _ := m.Get(id)
	assert.Equal(t, float64(120), s.State.CurrentTime)
	assert.Equal(t, "renamed", s.Title)

	m.EndDrag(id)

	cmds := log.commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, types.VerbBeginSeek, cmds[0].Verb)
	assert.Equal(t, types.VerbSetTime, cmds[1].Verb)
	assert.Equal(t, float64(120), cmds[1].Args.Time)
	assert.Equal(t, types.VerbEndSeek, cmds[2].Verb)
}

func TestDragToClampsToDuration(t *testing.T) {
	m, _ := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 50)))

	m.BeginDrag(id)
	m.DragTo(id, 5000)
	s, _ := m.Get(id)
	assert.Equal(t, float64(300), s.State.CurrentTime)

	m.DragTo(id, -20)
	s, _ = m.Get(id)
	assert.Equal(t, float64(0), s.State.CurrentTime)
}

func TestEndDragWithoutBeginIsNoop(t *testing.T) {
	m, log := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 50)))

	m.EndDrag(id)
	m.DragTo(id, 100)

	assert.Empty(t, log.commands())
	s, _ := m.Get(id)
	assert.Equal(t, float64(50), s.State.CurrentTime)
}

func TestSessionsOrdering(t *testing.T) {
	m, _ := newTestMirror()

	playing := session(sid("g1", "c1"), false, 0)
	playing.LastActiveAt = time.Date(2026, 8, 23, 11, 0, 0, 0, time.UTC)
	oldPaused := session(sid("g2", "c1"), true, 0)
	oldPaused.LastActiveAt = time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	newPaused := session(sid("g3", "c1"), true, 0)
	newPaused.LastActiveAt = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	m.Handle(types.NewSessionsInitMessage([]types.Session{oldPaused, newPaused, playing}))

	sessions := m.Sessions()
	require.Len(t, sessions, 3)
	assert.Equal(t, playing.ID, sessions[0].ID)
	assert.Equal(t, newPaused.ID, sessions[1].ID)
	assert.Equal(t, oldPaused.ID, sessions[2].ID)
}

func TestSetVolumeClampsAndApplies(t *testing.T) {
	m, log := newTestMirror()
	id := sid("g1", "c1")
	m.Handle(types.NewSessionUpdatedMessage(session(id, false, 0)))

	m.SetVolume(id, 1.7)
	s, _ := m.Get(id)
	assert.Equal(t, float64(1), s.State.Volume)

	cmds := log.commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, float64(1), cmds[0].Args.Volume)
}
