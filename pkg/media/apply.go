package media

import (
	"context"
	"fmt"

	"github.com/entrhq/maestro/pkg/types"
)

// Apply executes one command verb against a handle. It is the single place
// where the command vocabulary meets the handle contract, so the coordinator
// can route commands without knowing which variant it is talking to.
func Apply(ctx context.Context, h Handle, cmd types.Command) error {
	switch cmd.Verb {
	case types.VerbToggle:
		state, err := h.State(ctx)
		if err != nil {
			return fmt.Errorf("read state for toggle: %w", err)
		}
		if state.Paused || state.Ended {
			return h.Play(ctx)
		}
		return h.Pause(ctx)

	case types.VerbSeek:
		state, err := h.State(ctx)
		if err != nil {
			return fmt.Errorf("read state for seek: %w", err)
		}
		return h.SeekTo(ctx, state.CurrentTime+cmd.Args.Delta)

	case types.VerbSetTime:
		return h.SeekTo(ctx, cmd.Args.Time)

	case types.VerbSetVolume:
		return h.SetVolume(ctx, cmd.Args.Volume)

	case types.VerbMute:
		if cmd.Args.Muted != nil {
			return h.SetMuted(ctx, *cmd.Args.Muted)
		}
		state, err := h.State(ctx)
		if err != nil {
			return fmt.Errorf("read state for mute toggle: %w", err)
		}
		return h.SetMuted(ctx, !state.Muted)

	case types.VerbPreviousTrack:
		return h.PreviousTrack(ctx)

	case types.VerbNextTrack:
		return h.NextTrack(ctx)

	case types.VerbBeginSeek:
		h.BeginSeekHold()
		return nil

	case types.VerbEndSeek:
		h.EndSeekHold(ctx)
		return nil

	default:
		return fmt.Errorf("unknown verb %q", cmd.Verb)
	}
}
