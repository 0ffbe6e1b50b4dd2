// Package coordinator keeps the authoritative session registry. Adapters
// push snapshots in, control surfaces subscribe to the resulting update
// feed, and commands route back through the coordinator to the adapter
// owning the session.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

// shortcutSeekDelta is how far the global seek shortcuts move, in seconds.
const shortcutSeekDelta = 10

// ErrNoSession is returned when a command names a session the registry does
// not hold, or one whose adapter never registered a target.
var ErrNoSession = errors.New("no such session")

// Target delivers commands to the adapter owning one session.
type Target interface {
	Apply(ctx context.Context, cmd types.Command) error
}

// Subscriber receives the session update feed. Send must not block; slow
// consumers drop frames on their own side.
type Subscriber interface {
	Send(msg types.Message)
}

type entry struct {
	session types.Session
	target  Target
	limiter *rate.Limiter

	// seen flips on the first snapshot; a Register call alone creates an
	// entry with no state worth broadcasting.
	seen bool
}

// Coordinator is the session registry and fan-out hub. All state is guarded
// by one mutex; every operation is a short critical section, and command
// delivery happens outside it.
type Coordinator struct {
	log         *logging.Logger
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	active   string
	subs     map[Subscriber]struct{}
}

// New creates an empty coordinator. minInterval throttles per-session
// progress broadcasts; state transitions always go out.
func New(log *logging.Logger, minInterval time.Duration) *Coordinator {
	return &Coordinator{
		log:         log,
		minInterval: minInterval,
		now:         time.Now,
		sessions:    make(map[string]*entry),
		subs:        make(map[Subscriber]struct{}),
	}
}

// Register binds a command target to a session identity. Snapshots for an
// unregistered identity are still accepted; registration only enables
// command routing.
func (c *Coordinator) Register(id types.SessionID, target Target) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := id.String()
	e, ok := c.sessions[key]
	if !ok {
		e = c.newEntryLocked(id)
		c.sessions[key] = e
	}
	e.target = target
}

func (c *Coordinator) newEntryLocked(id types.SessionID) *entry {
	return &entry{
		session: types.Session{ID: id},
		limiter: rate.NewLimiter(rate.Every(c.minInterval), 1),
	}
}

// ApplySnapshot merges one adapter report into the registry. The snapshot
// replaces the stored session wholesale; LastActiveAt is the only field
// carried over, bumped when the session starts playing. Broadcast is
// throttled per session except on play/pause transitions and first sight,
// which always go out.
func (c *Coordinator) ApplySnapshot(id types.SessionID, snap types.Snapshot) {
	c.mu.Lock()

	key := id.String()
	e, known := c.sessions[key]
	if !known {
		e = c.newEntryLocked(id)
		c.sessions[key] = e
		metricSessions.Set(float64(len(c.sessions)))
	}

	first := !e.seen
	e.seen = true
	wasPlaying := !first && e.session.State.Playing()
	nowPlaying := snap.State.Playing()

	session := types.Session{
		ID:           id,
		Title:        snap.Title,
		ArtworkURL:   snap.ArtworkURL,
		SiteURL:      snap.SiteURL,
		SiteIcon:     snap.SiteIcon,
		State:        snap.State,
		LastActiveAt: e.session.LastActiveAt,
	}
	if session.LastActiveAt.IsZero() {
		session.LastActiveAt = c.now()
	}
	if !wasPlaying && nowPlaying {
		session.LastActiveAt = c.now()
		c.active = key
	}
	e.session = session

	transition := first || wasPlaying != nowPlaying
	send := transition || e.limiter.Allow()
	if !send {
		metricThrottled.Inc()
		c.mu.Unlock()
		return
	}

	msg := types.NewSessionUpdatedMessage(session)
	subs := c.subscribersLocked()
	c.mu.Unlock()

	metricBroadcasts.WithLabelValues(string(types.MessageSessionUpdated)).Inc()
	for _, sub := range subs {
		sub.Send(msg)
	}
}

// Remove deletes one session and announces the removal. When the active
// session goes, the pointer falls back to the most recently active survivor.
func (c *Coordinator) Remove(id types.SessionID) {
	c.mu.Lock()
	key := id.String()
	if _, ok := c.sessions[key]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, key)
	metricSessions.Set(float64(len(c.sessions)))
	if c.active == key {
		c.recomputeActiveLocked()
	}

	msg := types.NewSessionRemovedMessage(id)
	subs := c.subscribersLocked()
	c.mu.Unlock()

	c.log.Infof("session removed: %s", id)
	metricBroadcasts.WithLabelValues(string(types.MessageSessionRemoved)).Inc()
	for _, sub := range subs {
		sub.Send(msg)
	}
}

// RemoveGroup removes every session belonging to one context group. Used
// when a tab or browser context closes.
func (c *Coordinator) RemoveGroup(groupID string) {
	c.mu.Lock()
	var ids []types.SessionID
	for _, e := range c.sessions {
		if e.session.ID.ContextGroupID == groupID {
			ids = append(ids, e.session.ID)
		}
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Remove(id)
	}
}

func (c *Coordinator) recomputeActiveLocked() {
	c.active = ""
	var best time.Time
	for key, e := range c.sessions {
		if e.session.LastActiveAt.After(best) {
			best = e.session.LastActiveAt
			c.active = key
		}
	}
}

// Sessions returns the registry ordered for presentation: playing sessions
// first, then by most recent activity.
func (c *Coordinator) Sessions() []types.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionsLocked()
}

func (c *Coordinator) sessionsLocked() []types.Session {
	out := make([]types.Session, 0, len(c.sessions))
	for _, e := range c.sessions {
		out = append(out, e.session)
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

// Active returns the session global shortcuts act on.
func (c *Coordinator) Active() (types.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.sessions[c.active]
	if !ok {
		return types.Session{}, false
	}
	return e.session, true
}

// ForwardCommand routes a command to the adapter owning the target session.
// An unknown session is an error; delivery failures are the adapter's to
// classify and report back through Remove.
func (c *Coordinator) ForwardCommand(ctx context.Context, cmd types.Command) error {
	c.mu.Lock()
	e, ok := c.sessions[cmd.SessionID.String()]
	var target Target
	if ok {
		target = e.target
	}
	c.mu.Unlock()

	if !ok || target == nil {
		return fmt.Errorf("%w: %s", ErrNoSession, cmd.SessionID)
	}
	metricCommands.WithLabelValues(string(cmd.Verb)).Inc()
	return target.Apply(ctx, cmd)
}

// Shortcut resolves a global shortcut against the active session. With no
// active session the shortcut is a no-op, not an error.
func (c *Coordinator) Shortcut(ctx context.Context, name types.ShortcutName) error {
	session, ok := c.Active()
	if !ok {
		return nil
	}

	cmd := types.Command{SessionID: session.ID}
	switch name {
	case types.ShortcutTogglePlay:
		cmd.Verb = types.VerbToggle
	case types.ShortcutSeekForward:
		cmd.Verb = types.VerbSeek
		cmd.Args.Delta = shortcutSeekDelta
	case types.ShortcutSeekBackward:
		cmd.Verb = types.VerbSeek
		cmd.Args.Delta = -shortcutSeekDelta
	default:
		return fmt.Errorf("unknown shortcut: %s", name)
	}
	return c.ForwardCommand(ctx, cmd)
}

// Subscribe adds a feed consumer and immediately sends it the full registry
// so it starts from a consistent base. Registration and the init frame share
// one critical section; a concurrent snapshot broadcast captures its
// subscriber list under the same lock, so no update frame can reach the
// consumer before its init. Send not blocking makes the in-lock call safe.
func (c *Coordinator) Subscribe(sub Subscriber) {
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	sub.Send(types.NewSessionsInitMessage(c.sessionsLocked()))
	c.mu.Unlock()

	metricBroadcasts.WithLabelValues(string(types.MessageSessionsInit)).Inc()
}

// Unsubscribe removes a feed consumer.
func (c *Coordinator) Unsubscribe(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, sub)
}

func (c *Coordinator) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	return subs
}
