// Package media defines the capability contract shared by native and virtual
// media sources. The coordinator and control surfaces only ever see this
// interface; which variant backs a session is the adapter layer's business.
package media

import (
	"context"
	"errors"

	"github.com/entrhq/maestro/pkg/types"
)

// ErrDetached is returned by operations on a handle that has been released.
var ErrDetached = errors.New("media: handle detached")

// Handle is the uniform control surface over one media source. Exactly one
// handle is active per execution context at a time; attaching a new one must
// detach the previous one first.
type Handle interface {
	// Play resumes playback.
	Play(ctx context.Context) error

	// Pause halts playback.
	Pause(ctx context.Context) error

	// SeekTo moves the position to an absolute number of seconds. The
	// implementation clamps into the known duration.
	SeekTo(ctx context.Context, seconds float64) error

	// SetVolume sets the normalized volume in [0, 1].
	SetVolume(ctx context.Context, volume float64) error

	// SetMuted sets the mute state.
	SetMuted(ctx context.Context, muted bool) error

	// NextTrack skips forward in the site's queue, when the site has one.
	NextTrack(ctx context.Context) error

	// PreviousTrack skips backward in the site's queue.
	PreviousTrack(ctx context.Context) error

	// State returns the latest observed playback state.
	State(ctx context.Context) (types.PlaybackState, error)

	// BeginSeekHold suppresses outgoing snapshots while a control surface
	// drags a progress bar.
	BeginSeekHold()

	// EndSeekHold resumes snapshot emission and forces one immediate report.
	EndSeekHold(ctx context.Context)

	// Detach releases every subscription and pending timer owned by the
	// handle. It must complete before another handle attaches to the same
	// context, so no stale callback can mutate an unrelated handle.
	Detach()
}

// EmitFunc receives state snapshots from a handle. Implementations are
// invoked from the handle's own goroutine and should return promptly; a
// slow sink delays later snapshots but never the handle's control surface.
type EmitFunc func(types.Snapshot)
