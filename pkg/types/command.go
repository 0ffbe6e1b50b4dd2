package types

// Verb names a control operation against a session.
type Verb string

const (
	// VerbToggle flips between playing and paused.
	VerbToggle Verb = "toggle"

	// VerbSeek moves the position by a relative number of seconds.
	VerbSeek Verb = "seek"

	// VerbSetTime moves the position to an absolute number of seconds.
	VerbSetTime Verb = "setTime"

	// VerbSetVolume sets the normalized volume.
	VerbSetVolume Verb = "setVolume"

	// VerbMute sets or toggles the mute state.
	VerbMute Verb = "mute"

	// VerbPreviousTrack skips to the previous track.
	VerbPreviousTrack Verb = "previousTrack"

	// VerbNextTrack skips to the next track.
	VerbNextTrack Verb = "nextTrack"

	// VerbBeginSeek suppresses outgoing snapshots while a control surface
	// drags a progress bar.
	VerbBeginSeek Verb = "beginSeek"

	// VerbEndSeek resumes snapshot emission and forces one immediate report.
	VerbEndSeek Verb = "endSeek"
)

// CommandArgs carries the verb-specific parameters of a command. Unused
// fields are zero.
type CommandArgs struct {
	// Delta is the relative seek offset in seconds (VerbSeek).
	Delta float64 `json:"delta,omitempty"`

	// Time is the absolute position in seconds (VerbSetTime).
	Time float64 `json:"time,omitempty"`

	// Volume is the normalized volume (VerbSetVolume).
	Volume float64 `json:"volume,omitempty"`

	// Muted is the requested mute state (VerbMute). Nil means toggle.
	Muted *bool `json:"muted,omitempty"`
}

// Command is a control request routed from a control surface through the
// coordinator to the adapter owning the session. Commands are fire-and-forget
// for the surface; the coordinator treats delivery failure as proof the
// owning context is gone.
type Command struct {
	SessionID SessionID   `json:"sessionId"`
	Verb      Verb        `json:"verb"`
	Args      CommandArgs `json:"args"`
}

// ShortcutName names a global shortcut delivered to the coordinator's
// active-session handler.
type ShortcutName string

const (
	ShortcutTogglePlay   ShortcutName = "toggle-play"
	ShortcutSeekForward  ShortcutName = "seek-forward"
	ShortcutSeekBackward ShortcutName = "seek-backward"
)
