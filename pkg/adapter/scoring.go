package adapter

import (
	"github.com/entrhq/maestro/pkg/config"
)

// Candidate describes one media element found during discovery, reduced to
// the features the scoring algorithm cares about.
type Candidate struct {
	// Index is the element's position in the context's discovery order,
	// used to address it again when attaching.
	Index int

	// RemotePlaybackDisabled marks elements that opted out of external
	// control. They are excluded outright.
	RemotePlaybackDisabled bool

	// NotReady indicates the element has no decodable data yet.
	NotReady bool

	// Paused mirrors the element's paused flag.
	Paused bool

	// CurrentTime is the playback position in seconds.
	CurrentTime float64

	// Duration is the known length in seconds, 0 when unknown.
	Duration float64

	// Visible indicates the element has a rendered layout box.
	Visible bool

	// Video indicates a video element rather than audio.
	Video bool

	// Muted mirrors the element's muted flag.
	Muted bool

	// HasSource indicates the element has a source URL or source children.
	HasSource bool
}

// excludedScore is the score of a candidate that must never be attached,
// regardless of how the rest of the field scores.
const excludedScore = -1

// Score rates how likely the candidate is the source the user cares about.
// Higher is better. Elements with remote playback disabled always score
// exactly -1 and are never selected.
func (c Candidate) Score(w config.ScoringWeights) float64 {
	if c.RemotePlaybackDisabled {
		return excludedScore
	}

	score := 0.0
	if c.NotReady {
		score += w.NotReady
	}
	if !c.Paused {
		score += w.Playing
	}
	if c.CurrentTime > 0 {
		score += w.HasProgress
	}
	if c.Duration > 0 {
		minutes := c.Duration / 60 * w.DurationPerMinute
		if minutes > w.DurationCap {
			minutes = w.DurationCap
		}
		score += minutes
	}
	if c.Visible {
		score += w.Visible
	}
	if c.Video {
		score += w.Video
	}
	if !c.Muted {
		score += w.Unmuted
	}
	if c.HasSource {
		score += w.HasSource
	}
	return score
}

// Select returns the best-scoring candidate. The boolean is false when no
// candidate reaches a non-negative score, in which case the caller retries
// discovery later; a context without a playable source is not an error.
// Ties keep the earliest candidate in discovery order.
func Select(candidates []Candidate, w config.ScoringWeights) (Candidate, bool) {
	best := Candidate{}
	bestScore := 0.0
	found := false

	for _, c := range candidates {
		score := c.Score(w)
		if score < 0 {
			continue
		}
		if !found || score > bestScore {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, found
}
