package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

type recordingSub struct {
	mu   sync.Mutex
	msgs []types.Message
}

func (s *recordingSub) Send(msg types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSub) messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

type recordingTarget struct {
	mu   sync.Mutex
	cmds []types.Command
	err  error
}

func (t *recordingTarget) Apply(_ context.Context, cmd types.Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cmds = append(t.cmds, cmd)
	return t.err
}

func (t *recordingTarget) commands() []types.Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.Command, len(t.cmds))
	copy(out, t.cmds)
	return out
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	log, _ := logging.New("coordinator-test")
	return New(log, 300*time.Millisecond)
}

func sid(group, ctx string) types.SessionID {
	return types.SessionID{ContextGroupID: group, ContextID: ctx}
}

func playingSnap(title string) types.Snapshot {
	return types.Snapshot{
		Title:   title,
		SiteURL: "https://example.com",
		State:   types.PlaybackState{Paused: false, Volume: 1, CurrentTime: 5, Duration: 100},
	}
}

func pausedSnap(title string) types.Snapshot {
	s := playingSnap(title)
	s.State.Paused = true
	return s
}

func TestApplySnapshotFirstSightBroadcasts(t *testing.T) {
	c := newTestCoordinator(t)
	sub := &recordingSub{}
	c.Subscribe(sub)

	c.ApplySnapshot(sid("g1", "c1"), pausedSnap("one"))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.MessageSessionsInit, msgs[0].Type)
	assert.Equal(t, types.MessageSessionUpdated, msgs[1].Type)
	assert.Equal(t, "one", msgs[1].Session.Title)
	assert.False(t, msgs[1].Session.LastActiveAt.IsZero())
}

func TestApplySnapshotThrottlesProgressButNotTransitions(t *testing.T) {
	c := newTestCoordinator(t)
	sub := &recordingSub{}
	c.Subscribe(sub)

	id := sid("g1", "c1")
	c.ApplySnapshot(id, playingSnap("one")) // first sight, broadcasts

	// Rapid progress-only updates inside the throttle window are withheld.
	for i := 0; i < 5; i++ {
		snap := playingSnap("one")
		snap.State.CurrentTime = float64(10 + i)
		c.ApplySnapshot(id, snap)
	}
	withheld := len(sub.messages())

	// A pause transition goes out regardless of the throttle.
	c.ApplySnapshot(id, pausedSnap("one"))
	msgs := sub.messages()
	require.Len(t, msgs, withheld+1)
	last := msgs[len(msgs)-1]
	assert.Equal(t, types.MessageSessionUpdated, last.Type)
	assert.True(t, last.Session.State.Paused)
}

func TestApplySnapshotBroadcastsProgressAgainAfterInterval(t *testing.T) {
	log, _ := logging.New("coordinator-test")
	c := New(log, 20*time.Millisecond)
	sub := &recordingSub{}
	c.Subscribe(sub)

	id := sid("g1", "c1")
	c.ApplySnapshot(id, pausedSnap("one")) // first sight, token intact

	progress := func(seconds float64) types.Snapshot {
		snap := pausedSnap("one")
		snap.State.CurrentTime = seconds
		return snap
	}

	c.ApplySnapshot(id, progress(10)) // consumes the token
	c.ApplySnapshot(id, progress(11)) // inside the window, withheld
	require.Len(t, sub.messages(), 3, "init, first sight, one progress")

	// Once the window has passed, a progress-only snapshot goes out again.
	time.Sleep(40 * time.Millisecond)
	c.ApplySnapshot(id, progress(12))

	msgs := sub.messages()
	require.Len(t, msgs, 4)
	last := msgs[len(msgs)-1]
	assert.Equal(t, types.MessageSessionUpdated, last.Type)
	assert.Equal(t, 12.0, last.Session.State.CurrentTime)
}

func TestLastActiveAtBumpsOnlyOnPlayTransition(t *testing.T) {
	c := newTestCoordinator(t)
	id := sid("g1", "c1")

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	clock := base
	c.now = func() time.Time { return clock }

	c.ApplySnapshot(id, pausedSnap("one"))
	first := c.Sessions()[0].LastActiveAt
	assert.Equal(t, base, first)

	// Still paused later: LastActiveAt holds.
	clock = base.Add(time.Minute)
	c.ApplySnapshot(id, pausedSnap("one"))
	assert.Equal(t, first, c.Sessions()[0].LastActiveAt)

	// Starts playing: LastActiveAt bumps.
	clock = base.Add(2 * time.Minute)
	c.ApplySnapshot(id, playingSnap("one"))
	assert.Equal(t, clock, c.Sessions()[0].LastActiveAt)

	// Keeps playing: no further bump.
	clock = base.Add(3 * time.Minute)
	c.ApplySnapshot(id, playingSnap("one"))
	assert.Equal(t, base.Add(2*time.Minute), c.Sessions()[0].LastActiveAt)
}

func TestActiveFollowsPlayTransitions(t *testing.T) {
	c := newTestCoordinator(t)
	a, b := sid("g1", "c1"), sid("g2", "c1")

	c.ApplySnapshot(a, playingSnap("a"))
	active, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, a, active.ID)

	c.ApplySnapshot(b, playingSnap("b"))
	active, _ = c.Active()
	assert.Equal(t, b, active.ID)

	// Pausing the active session does not move the pointer.
	c.ApplySnapshot(b, pausedSnap("b"))
	active, _ = c.Active()
	assert.Equal(t, b, active.ID)
}

func TestRemoveRecomputesActive(t *testing.T) {
	c := newTestCoordinator(t)
	a, b := sid("g1", "c1"), sid("g2", "c1")

	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.ApplySnapshot(a, playingSnap("a"))
	clock = clock.Add(time.Minute)
	c.ApplySnapshot(b, playingSnap("b"))

	sub := &recordingSub{}
	c.Subscribe(sub)
	c.Remove(b)

	active, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, a, active.ID)

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.MessageSessionRemoved, msgs[1].Type)
	assert.Equal(t, b, *msgs[1].SessionID)

	c.Remove(a)
	_, ok = c.Active()
	assert.False(t, ok)
}

func TestRemoveGroupRemovesAllContexts(t *testing.T) {
	c := newTestCoordinator(t)
	c.ApplySnapshot(sid("g1", "c1"), playingSnap("a"))
	c.ApplySnapshot(sid("g1", "c2"), pausedSnap("b"))
	c.ApplySnapshot(sid("g2", "c1"), pausedSnap("c"))

	c.RemoveGroup("g1")

	sessions := c.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "g2", sessions[0].ID.ContextGroupID)
}

func TestSessionsOrdering(t *testing.T) {
	c := newTestCoordinator(t)
	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.ApplySnapshot(sid("g1", "c1"), pausedSnap("old-paused"))
	clock = clock.Add(time.Minute)
	c.ApplySnapshot(sid("g2", "c1"), playingSnap("playing"))
	clock = clock.Add(time.Minute)
	c.ApplySnapshot(sid("g3", "c1"), pausedSnap("new-paused"))

	sessions := c.Sessions()
	require.Len(t, sessions, 3)
	assert.Equal(t, "playing", sessions[0].Title)
	assert.Equal(t, "new-paused", sessions[1].Title)
	assert.Equal(t, "old-paused", sessions[2].Title)
}

func TestForwardCommandRoutesToTarget(t *testing.T) {
	c := newTestCoordinator(t)
	id := sid("g1", "c1")
	target := &recordingTarget{}
	c.Register(id, target)
	c.ApplySnapshot(id, playingSnap("a"))

	cmd := types.Command{SessionID: id, Verb: types.VerbToggle}
	require.NoError(t, c.ForwardCommand(context.Background(), cmd))
	require.Len(t, target.commands(), 1)
	assert.Equal(t, types.VerbToggle, target.commands()[0].Verb)

	err := c.ForwardCommand(context.Background(), types.Command{SessionID: sid("nope", "x"), Verb: types.VerbToggle})
	assert.Error(t, err)
}

func TestShortcutActsOnActiveSession(t *testing.T) {
	c := newTestCoordinator(t)

	// No active session: silently ignored.
	require.NoError(t, c.Shortcut(context.Background(), types.ShortcutTogglePlay))

	id := sid("g1", "c1")
	target := &recordingTarget{}
	c.Register(id, target)
	c.ApplySnapshot(id, playingSnap("a"))

	require.NoError(t, c.Shortcut(context.Background(), types.ShortcutSeekForward))
	require.NoError(t, c.Shortcut(context.Background(), types.ShortcutSeekBackward))
	require.NoError(t, c.Shortcut(context.Background(), types.ShortcutTogglePlay))

	cmds := target.commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, types.VerbSeek, cmds[0].Verb)
	assert.Equal(t, float64(10), cmds[0].Args.Delta)
	assert.Equal(t, float64(-10), cmds[1].Args.Delta)
	assert.Equal(t, types.VerbToggle, cmds[2].Verb)

	assert.Error(t, c.Shortcut(context.Background(), types.ShortcutName("bogus")))
}

func TestSubscribeInitPrecedesConcurrentUpdates(t *testing.T) {
	c := newTestCoordinator(t)
	id := sid("g1", "c1")
	c.ApplySnapshot(id, playingSnap("one"))

	// Hammer the feed with transitions so every apply broadcasts, while
	// subscribers join concurrently. Each consumer's first frame must be
	// its registry init, never an update that slipped in ahead of it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				c.ApplySnapshot(id, pausedSnap("one"))
			} else {
				c.ApplySnapshot(id, playingSnap("one"))
			}
		}
	}()

	subs := make([]*recordingSub, 0, 20)
	for i := 0; i < 20; i++ {
		sub := &recordingSub{}
		c.Subscribe(sub)
		subs = append(subs, sub)
	}
	<-done

	for _, sub := range subs {
		msgs := sub.messages()
		require.NotEmpty(t, msgs)
		assert.Equal(t, types.MessageSessionsInit, msgs[0].Type)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c := newTestCoordinator(t)
	sub := &recordingSub{}
	c.Subscribe(sub)
	c.Unsubscribe(sub)

	c.ApplySnapshot(sid("g1", "c1"), playingSnap("a"))
	require.Len(t, sub.messages(), 1, "only the init frame before unsubscribe")
}
