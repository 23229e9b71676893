package console

import "github.com/charmbracelet/lipgloss"

// Colors mirror the Tokyo Night palette used across the project's
// terminal tooling.
var (
	ColorBg      = lipgloss.Color("#1a1b26")
	ColorBorder  = lipgloss.Color("#7aa2f7")
	ColorText    = lipgloss.Color("#c0caf5")
	ColorActive  = lipgloss.Color("#7aa2f7")
	ColorProfit  = lipgloss.Color("#9ece6a")
	ColorLoss    = lipgloss.Color("#f7768e")
	ColorWarning = lipgloss.Color("#ff9e64")

	StylePage = lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	StyleTableHeader = lipgloss.NewStyle().
				Foreground(ColorActive).
				Bold(true)

	StyleProfit = lipgloss.NewStyle().Foreground(ColorProfit)
	StyleLoss   = lipgloss.NewStyle().Foreground(ColorLoss)
	StyleWarn   = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleFooter = lipgloss.NewStyle().Foreground(ColorText).Faint(true)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
