package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "minutes and seconds", text: "1:23", want: 83},
		{name: "sub-minute", text: "0:45", want: 45},
		{name: "hours", text: "1:02:03", want: 3723},
		{name: "leading whitespace", text: "  2:10 ", want: 130},
		{name: "spaced segments", text: "1: 30", want: 90},
		{name: "empty", text: "", want: 0},
		{name: "no separator", text: "123", want: 0},
		{name: "too many segments", text: "1:2:3:4", want: 0},
		{name: "garbage", text: "live", want: 0},
		{name: "negative segment", text: "-1:30", want: 0},
		{name: "non-numeric segment", text: "1:ab", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClock(tt.text))
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "sub-minute", seconds: 45, want: "0:45"},
		{name: "minutes", seconds: 83, want: "1:23"},
		{name: "hours", seconds: 3723, want: "1:02:03"},
		{name: "negative clamps", seconds: -5, want: "0:00"},
		{name: "fraction truncates", seconds: 61.9, want: "1:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatClock(tt.seconds))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 59, 60, 3599, 3600, 3723} {
		assert.Equal(t, seconds, ParseClock(FormatClock(seconds)))
	}
}
