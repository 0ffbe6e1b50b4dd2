package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFromJS(t *testing.T) {
	payload := map[string]interface{}{
		"reason":     "timeupdate",
		"title":      "Track A",
		"artworkUrl": "https://img.example/a.jpg",
		"siteUrl":    "https://music.example/a",
		"siteIcon":   "https://music.example/favicon.ico",
		"state": map[string]interface{}{
			"paused":      false,
			"muted":       false,
			"volume":      0.8,
			"currentTime": 12.5,
			"duration":    200.0,
			"canSeek":     true,
			"ended":       false,
		},
	}

	snap, reason, ok := snapshotFromJS(payload)
	require.True(t, ok)
	assert.Equal(t, "timeupdate", reason)
	assert.Equal(t, "Track A", snap.Title)
	assert.Equal(t, 12.5, snap.State.CurrentTime)
	assert.True(t, snap.State.CanSeek)
}

func TestSnapshotFromJSClampsState(t *testing.T) {
	payload := map[string]interface{}{
		"reason": "seeked",
		"state": map[string]interface{}{
			"paused":      true,
			"volume":      1.5,
			"currentTime": 500.0,
			"duration":    300.0,
		},
	}

	snap, _, ok := snapshotFromJS(payload)
	require.True(t, ok)
	assert.Equal(t, 1.0, snap.State.Volume)
	assert.Equal(t, 300.0, snap.State.CurrentTime)
}

func TestSnapshotFromJSMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
	}{
		{name: "not a map", payload: "nope"},
		{name: "missing state", payload: map[string]interface{}{"reason": "play"}},
		{name: "state not a map", payload: map[string]interface{}{"state": 7}},
		{name: "state missing paused", payload: map[string]interface{}{
			"state": map[string]interface{}{"volume": 0.5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := snapshotFromJS(tt.payload)
			assert.False(t, ok)
		})
	}
}

func TestCandidateFromJS(t *testing.T) {
	m := map[string]interface{}{
		"index":          1.0,
		"remoteDisabled": false,
		"notReady":       false,
		"paused":         false,
		"currentTime":    3.0,
		"duration":       180.0,
		"visible":        true,
		"video":          true,
		"muted":          false,
		"hasSource":      true,
	}

	c, ok := candidateFromJS(m)
	require.True(t, ok)
	assert.Equal(t, 1, c.Index)
	assert.True(t, c.Video)
	assert.Equal(t, 180.0, c.Duration)

	_, ok = candidateFromJS(map[string]interface{}{"paused": true})
	assert.False(t, ok)
}
