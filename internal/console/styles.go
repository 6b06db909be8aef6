package console

import "github.com/charmbracelet/lipgloss"

// Цвета консоли.
var (
	colorRed    = lipgloss.Color("#FF0000")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorOrange = lipgloss.Color("#FFA500")
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGray   = lipgloss.Color("#666666")
	colorDim    = lipgloss.Color("#444444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	idleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	startingStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Bold(true)

	translatingStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	originalStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	searchStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)
)
