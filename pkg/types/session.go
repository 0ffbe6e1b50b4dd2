// Package types defines the session model, command vocabulary, and wire
// messages shared by the adapters, the coordinator, and control surfaces.
package types

import (
	"fmt"
	"time"
)

// SessionID identifies one controllable media source. It is the composite of
// the context group (a tab or browser context) and the execution context
// within it (a page or frame). IDs are stable for the context's lifetime and
// never reused after removal.
type SessionID struct {
	// ContextGroupID identifies the containing context group.
	ContextGroupID string `json:"contextGroupId"`

	// ContextID identifies the execution context within the group.
	ContextID string `json:"contextId"`
}

// String returns the canonical "group/context" form used as a map key.
func (id SessionID) String() string {
	return fmt.Sprintf("%s/%s", id.ContextGroupID, id.ContextID)
}

// IsZero reports whether the ID is unset.
func (id SessionID) IsZero() bool {
	return id.ContextGroupID == "" && id.ContextID == ""
}

// PlaybackState is the normalized state shape shared by native and virtual
// sources. Duration of 0 means unknown.
type PlaybackState struct {
	// Paused indicates playback is not progressing.
	Paused bool `json:"paused"`

	// Muted indicates audio output is muted.
	Muted bool `json:"muted"`

	// Volume is the normalized volume in [0, 1].
	Volume float64 `json:"volume"`

	// CurrentTime is the playback position in seconds.
	CurrentTime float64 `json:"currentTime"`

	// Duration is the total length in seconds, 0 when unknown.
	Duration float64 `json:"duration"`

	// CanSeek indicates the source accepts absolute position changes.
	CanSeek bool `json:"canSeek"`

	// Ended indicates playback has reached the end of the media.
	Ended bool `json:"ended"`
}

// Normalize clamps the state into its documented ranges: volume into [0, 1]
// and, when the duration is known, the current time into [0, duration].
func (s PlaybackState) Normalize() PlaybackState {
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > 1 {
		s.Volume = 1
	}
	if s.CurrentTime < 0 {
		s.CurrentTime = 0
	}
	if s.Duration < 0 {
		s.Duration = 0
	}
	if s.Duration > 0 && s.CurrentTime > s.Duration {
		s.CurrentTime = s.Duration
	}
	return s
}

// Playing reports whether the source is actively playing.
func (s PlaybackState) Playing() bool {
	return !s.Paused && !s.Ended
}

// Session is the control-facing representation of one discovered media
// source. The coordinator owns the authoritative copy; adapters and control
// surfaces only ever hold snapshots of it.
type Session struct {
	// ID is the composite context identity.
	ID SessionID `json:"id"`

	// Title is the human-readable description of what is playing.
	Title string `json:"title"`

	// ArtworkURL points at cover art or a poster image, if any.
	ArtworkURL string `json:"artworkUrl,omitempty"`

	// SiteURL is the URL of the page hosting the source.
	SiteURL string `json:"siteUrl"`

	// SiteIcon is the page's favicon URL, if resolved.
	SiteIcon string `json:"siteIcon,omitempty"`

	// State is the latest normalized playback state.
	State PlaybackState `json:"state"`

	// LastActiveAt is set at creation and bumped only on a paused-to-playing
	// transition. It ranks sessions and selects the globally active one.
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Snapshot is a single state report emitted by an adapter. The sender's
// identity travels on the channel, not in the payload.
type Snapshot struct {
	Title      string        `json:"title"`
	ArtworkURL string        `json:"artworkUrl,omitempty"`
	SiteURL    string        `json:"siteUrl"`
	SiteIcon   string        `json:"siteIcon,omitempty"`
	State      PlaybackState `json:"state"`
}
