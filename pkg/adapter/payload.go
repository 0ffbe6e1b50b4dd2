package adapter

import (
	"github.com/entrhq/maestro/pkg/types"
)

// Deserialization of values crossing the page boundary. Playwright hands
// bindings and evaluate results over as loosely typed maps; anything missing
// a required field is treated as malformed and dropped, keeping the previous
// state intact.

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asBool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func asString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// asFloat tolerates the integer/float ambiguity of JSON numbers.
func asFloat(m map[string]interface{}, key string) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func stateFromJS(v interface{}) (types.PlaybackState, bool) {
	m, ok := asMap(v)
	if !ok {
		return types.PlaybackState{}, false
	}
	if _, ok := m["paused"]; !ok {
		return types.PlaybackState{}, false
	}
	state := types.PlaybackState{
		Paused:      asBool(m, "paused"),
		Muted:       asBool(m, "muted"),
		Volume:      asFloat(m, "volume"),
		CurrentTime: asFloat(m, "currentTime"),
		Duration:    asFloat(m, "duration"),
		CanSeek:     asBool(m, "canSeek"),
		Ended:       asBool(m, "ended"),
	}
	return state.Normalize(), true
}

func candidateFromJS(v interface{}) (Candidate, bool) {
	m, ok := asMap(v)
	if !ok {
		return Candidate{}, false
	}
	if _, ok := m["index"]; !ok {
		return Candidate{}, false
	}
	return Candidate{
		Index:                  int(asFloat(m, "index")),
		RemotePlaybackDisabled: asBool(m, "remoteDisabled"),
		NotReady:               asBool(m, "notReady"),
		Paused:                 asBool(m, "paused"),
		CurrentTime:            asFloat(m, "currentTime"),
		Duration:               asFloat(m, "duration"),
		Visible:                asBool(m, "visible"),
		Video:                  asBool(m, "video"),
		Muted:                  asBool(m, "muted"),
		HasSource:              asBool(m, "hasSource"),
	}, true
}

// snapshotFromJS parses a __maestroEmit payload. The second return is the
// event reason driving the coalescing decision.
func snapshotFromJS(v interface{}) (types.Snapshot, string, bool) {
	m, ok := asMap(v)
	if !ok {
		return types.Snapshot{}, "", false
	}
	state, ok := stateFromJS(m["state"])
	if !ok {
		return types.Snapshot{}, "", false
	}
	snap := types.Snapshot{
		Title:      asString(m, "title"),
		ArtworkURL: asString(m, "artworkUrl"),
		SiteURL:    asString(m, "siteUrl"),
		SiteIcon:   asString(m, "siteIcon"),
		State:      state,
	}
	return snap, asString(m, "reason"), true
}
