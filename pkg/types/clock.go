package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts human-readable time text ("MM:SS" or "HH:MM:SS") into
// seconds. Sites render these clocks in their UI; the automation adapter has
// nothing better to read. Unparseable input yields 0, never an error, because
// a missing or garbled clock is an expected condition.
func ParseClock(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return float64(total)
}

// FormatClock renders seconds as "M:SS" or "H:MM:SS" for display.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
