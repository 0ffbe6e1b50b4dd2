package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Selectors are the per-site CSS selector sets the automation adapter tries,
// in order, when a site exposes no native media element. First match wins.
type Selectors struct {
	Play          []string `yaml:"play"`
	Pause         []string `yaml:"pause"`
	Previous      []string `yaml:"previous"`
	Next          []string `yaml:"next"`
	Progress      []string `yaml:"progress"`
	Volume        []string `yaml:"volume"`
	Mute          []string `yaml:"mute"`
	Title         []string `yaml:"title"`
	Artwork       []string `yaml:"artwork"`
	CurrentClock  []string `yaml:"currentClock"`
	DurationClock []string `yaml:"durationClock"`

	// Metadata names the regions the adapter observes for track changes
	// between poll ticks.
	Metadata []string `yaml:"metadata"`
}

// SiteProfile describes one site the automation adapter knows how to drive.
type SiteProfile struct {
	// Name is a unique label; a user profile with the same name replaces
	// the built-in one.
	Name string `yaml:"name"`

	// Patterns are glob patterns matched against the page host and URL,
	// e.g. "*.soundcloud.com" or "https://open.spotify.com/*".
	Patterns []string `yaml:"patterns"`

	// Selectors are the control selector sets for this site.
	Selectors Selectors `yaml:"selectors"`

	// Fallback marks a profile that only supplies selectors to contexts
	// already attached elsewhere (such as track skipping on a native
	// source). Fallback profiles never put a context into automation mode.
	Fallback bool `yaml:"fallback"`

	compiled []glob.Glob
}

func (p *SiteProfile) compile() error {
	p.compiled = p.compiled[:0]
	for _, pattern := range p.Patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("profile %q: compile pattern %q: %w", p.Name, pattern, err)
		}
		p.compiled = append(p.compiled, g)
	}
	return nil
}

// Matches reports whether the profile applies to the given page URL. Patterns
// are tried against the host first, then the full URL.
func (p *SiteProfile) Matches(rawURL string) bool {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	for _, g := range p.compiled {
		if (host != "" && g.Match(host)) || g.Match(rawURL) {
			return true
		}
	}
	return false
}

// ScoringWeights parameterize the candidate scoring algorithm. The structure
// of the algorithm is fixed; the numbers are tuning data.
type ScoringWeights struct {
	NotReady          float64 `yaml:"notReady"`
	Playing           float64 `yaml:"playing"`
	HasProgress       float64 `yaml:"hasProgress"`
	DurationPerMinute float64 `yaml:"durationPerMinute"`
	DurationCap       float64 `yaml:"durationCap"`
	Visible           float64 `yaml:"visible"`
	Video             float64 `yaml:"video"`
	Unmuted           float64 `yaml:"unmuted"`
	HasSource         float64 `yaml:"hasSource"`
}

// DefaultWeights returns the tuned scoring weights.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		NotReady:          -10,
		Playing:           100,
		HasProgress:       50,
		DurationPerMinute: 1,
		DurationCap:       30,
		Visible:           20,
		Video:             10,
		Unmuted:           10,
		HasSource:         5,
	}
}

// ProfileSet is the loaded collection of site profiles plus the scoring
// weights shared by every adapter.
type ProfileSet struct {
	Weights  ScoringWeights `yaml:"weights"`
	Profiles []SiteProfile  `yaml:"profiles"`
}

// Match returns the first non-fallback profile applying to the URL, or nil.
// A match means the site is recognized as automation-only.
func (s *ProfileSet) Match(rawURL string) *SiteProfile {
	for i := range s.Profiles {
		if !s.Profiles[i].Fallback && s.Profiles[i].Matches(rawURL) {
			return &s.Profiles[i]
		}
	}
	return nil
}

// MatchAny returns the first profile applying to the URL including fallback
// profiles, for selector lookups that do not switch the context's mode.
func (s *ProfileSet) MatchAny(rawURL string) *SiteProfile {
	for i := range s.Profiles {
		if s.Profiles[i].Matches(rawURL) {
			return &s.Profiles[i]
		}
	}
	return nil
}

// LoadProfiles returns the built-in profiles, overlaid with the user file at
// path when one is given. User profiles replace built-ins of the same name
// and otherwise append.
func LoadProfiles(path string) (*ProfileSet, error) {
	set, err := parseProfiles([]byte(defaultProfilesYAML))
	if err != nil {
		// Built-in data failing to parse is a programming error.
		return nil, fmt.Errorf("built-in profiles: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile file: %w", err)
		}
		user, err := parseProfiles(raw)
		if err != nil {
			return nil, fmt.Errorf("profile file %s: %w", path, err)
		}
		set.merge(user)
	}
	return set, nil
}

func parseProfiles(raw []byte) (*ProfileSet, error) {
	set := &ProfileSet{Weights: DefaultWeights()}
	if err := yaml.Unmarshal(raw, set); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for i := range set.Profiles {
		if err := set.Profiles[i].compile(); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *ProfileSet) merge(user *ProfileSet) {
	s.Weights = user.Weights
	byName := make(map[string]int, len(s.Profiles))
	for i := range s.Profiles {
		byName[s.Profiles[i].Name] = i
	}
	for _, p := range user.Profiles {
		if i, ok := byName[p.Name]; ok {
			s.Profiles[i] = p
			continue
		}
		s.Profiles = append(s.Profiles, p)
	}
}
