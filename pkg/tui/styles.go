package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// Single source of truth for all TUI colors.
var (
	accentPink  = lipgloss.Color("#FFB3BA") // soft salmon - primary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // mint - playing indicator
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
	dimGray     = lipgloss.Color("#374151") // progress track
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(accentPink).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	siteStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	playingStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	clockStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	barFillStyle = lipgloss.NewStyle().
			Foreground(accentPink)

	barTrackStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accentPink).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimGray).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)
)
