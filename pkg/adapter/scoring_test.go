package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/maestro/pkg/config"
)

func TestScoreRemotePlaybackDisabledAlwaysExcluded(t *testing.T) {
	w := config.DefaultWeights()

	// Even a maximally attractive candidate scores -1 once excluded.
	c := Candidate{
		RemotePlaybackDisabled: true,
		Paused:                 false,
		CurrentTime:            120,
		Duration:               3600,
		Visible:                true,
		Video:                  true,
		HasSource:              true,
	}
	assert.Equal(t, -1.0, c.Score(w))
}

func TestScorePlayingOutweighsByExactly100(t *testing.T) {
	w := config.DefaultWeights()

	paused := Candidate{Paused: true, CurrentTime: 10, Duration: 300, Visible: true, HasSource: true}
	playing := paused
	playing.Paused = false

	assert.Equal(t, 100.0, playing.Score(w)-paused.Score(w))
}

func TestScoreComponents(t *testing.T) {
	w := config.DefaultWeights()

	tests := []struct {
		name string
		c    Candidate
		want float64
	}{
		{
			name: "bare paused muted audio",
			c:    Candidate{Paused: true, Muted: true},
			want: 0,
		},
		{
			name: "not ready penalized",
			c:    Candidate{Paused: true, Muted: true, NotReady: true},
			want: -10,
		},
		{
			name: "progress counts",
			c:    Candidate{Paused: true, Muted: true, CurrentTime: 5},
			want: 50,
		},
		{
			name: "duration contributes per minute",
			c:    Candidate{Paused: true, Muted: true, Duration: 600},
			want: 10,
		},
		{
			name: "duration capped at 30",
			c:    Candidate{Paused: true, Muted: true, Duration: 7200},
			want: 30,
		},
		{
			name: "visible video with source, unmuted",
			c:    Candidate{Paused: true, Visible: true, Video: true, HasSource: true},
			want: 20 + 10 + 10 + 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Score(w))
		})
	}
}

func TestSelectPicksMaxNonNegative(t *testing.T) {
	w := config.DefaultWeights()

	playing := Candidate{Index: 1, Paused: false, Muted: true}   // 100
	progressed := Candidate{Index: 2, Paused: true, Muted: true} // 0
	progressed.CurrentTime = 30                                  // 50

	best, ok := Select([]Candidate{progressed, playing}, w)
	assert.True(t, ok)
	assert.Equal(t, 1, best.Index)
}

func TestSelectNothingWhenAllNegative(t *testing.T) {
	w := config.DefaultWeights()

	notReady := Candidate{Index: 0, Paused: true, Muted: true, NotReady: true} // -10
	excluded := Candidate{Index: 1, RemotePlaybackDisabled: true}              // -1

	// The excluded candidate outranks -10 numerically but must still never
	// be selected.
	_, ok := Select([]Candidate{notReady, excluded}, w)
	assert.False(t, ok)
}

func TestSelectTieKeepsDiscoveryOrder(t *testing.T) {
	w := config.DefaultWeights()

	a := Candidate{Index: 0, Paused: true, Muted: true, Visible: true}
	b := Candidate{Index: 1, Paused: true, Muted: true, Visible: true}

	best, ok := Select([]Candidate{a, b}, w)
	assert.True(t, ok)
	assert.Equal(t, 0, best.Index)
}

func TestSelectEmpty(t *testing.T) {
	_, ok := Select(nil, config.DefaultWeights())
	assert.False(t, ok)
}
