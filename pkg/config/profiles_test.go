package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfilesDefaults(t *testing.T) {
	set, err := LoadProfiles("")
	require.NoError(t, err)
	require.NotEmpty(t, set.Profiles)

	assert.Equal(t, DefaultWeights(), set.Weights)

	p := set.Match("https://soundcloud.com/some-artist/some-track")
	require.NotNil(t, p)
	assert.Equal(t, "soundcloud", p.Name)
	assert.NotEmpty(t, p.Selectors.Play)
	assert.NotEmpty(t, p.Selectors.CurrentClock)
}

func TestMatchSubdomainPattern(t *testing.T) {
	set, err := LoadProfiles("")
	require.NoError(t, err)

	p := set.Match("https://on.soundcloud.com/xyz")
	require.NotNil(t, p)
	assert.Equal(t, "soundcloud", p.Name)
}

func TestMatchSkipsFallbackProfiles(t *testing.T) {
	set, err := LoadProfiles("")
	require.NoError(t, err)

	// An unrecognized site must not be treated as automation-only.
	assert.Nil(t, set.Match("https://example.org/video"))

	// But selector lookup still finds the generic fallback.
	p := set.MatchAny("https://example.org/video")
	require.NotNil(t, p)
	assert.True(t, p.Fallback)
}

func TestLoadProfilesUserOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	user := `
weights:
  playing: 120
profiles:
  - name: soundcloud
    patterns: ["music.example.com"]
    selectors:
      play: ["#play"]
  - name: custom-radio
    patterns: ["radio.example.net"]
    selectors:
      play: [".go"]
`
	require.NoError(t, os.WriteFile(path, []byte(user), 0o600))

	set, err := LoadProfiles(path)
	require.NoError(t, err)

	// Same-name profile replaced: old patterns no longer match.
	assert.Nil(t, set.Match("https://soundcloud.com/x"))
	p := set.Match("https://music.example.com/x")
	require.NotNil(t, p)
	assert.Equal(t, "soundcloud", p.Name)
	assert.Equal(t, []string{"#play"}, p.Selectors.Play)

	// New profile appended.
	require.NotNil(t, set.Match("https://radio.example.net/live"))

	// Partial weight override keeps the remaining defaults.
	assert.Equal(t, 120.0, set.Weights.Playing)
	assert.Equal(t, DefaultWeights().Visible, set.Weights.Visible)
}

func TestLoadProfilesBadPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: broken\n    patterns: [\"[\"]\n"), 0o600))

	_, err := LoadProfiles(path)
	assert.Error(t, err)
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
