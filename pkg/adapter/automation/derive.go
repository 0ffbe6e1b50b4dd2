package automation

import (
	"strconv"
	"strings"
)

// Pure derivation helpers. The poll loop reduces what it scraped from the
// page to normalized state through these.

// interpretMuteLabel infers the current mute state from a mute affordance's
// accessible label. The label describes the action the control will perform,
// so "Unmute" implies currently muted. The boolean ok is false when the
// label says nothing about muting.
func interpretMuteLabel(label string) (muted, ok bool) {
	l := strings.ToLower(label)
	if strings.Contains(l, "unmute") {
		return true, true
	}
	if strings.Contains(l, "mute") {
		return false, true
	}
	return false, false
}

// normalizeSliderValue converts a slider's raw value into [0, 1] using its
// max attribute. Sliders commonly run 0-100 or 0-1; an absent or unparseable
// max assumes 0-100 when the value exceeds 1.
func normalizeSliderValue(raw, maxAttr string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}

	scale := 0.0
	if m, err := strconv.ParseFloat(strings.TrimSpace(maxAttr), 64); err == nil && m > 0 {
		scale = m
	} else if value > 1 {
		scale = 100
	} else {
		scale = 1
	}

	normalized := value / scale
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	return normalized, true
}

// seekFraction maps an absolute seek target onto the progress control as a
// fraction of its width, clamped into [0, 1]. Unknown duration pins to 0.
func seekFraction(seconds, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	f := seconds / duration
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
