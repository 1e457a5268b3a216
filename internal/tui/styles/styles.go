// Package styles holds the lipgloss styles shared by the debate TUI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on dark surfaces
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	SideAColor   = lipgloss.Color("#60A5FA") // Blue
	SideBColor   = lipgloss.Color("#FB923C") // Orange
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor = lipgloss.Color("#1F2937") // Dark surface
	TextColor    = lipgloss.Color("#F9FAFB") // Light text
	BorderColor  = lipgloss.Color("#6B7280") // Gray

	// Convenience styles for colors
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)
	Text    = lipgloss.NewStyle().Foreground(TextColor)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Transcript area
	Transcript = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Speech headings
	SpeechHeading = lipgloss.NewStyle().Bold(true)
	SpeechSource  = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	SpeechBody    = lipgloss.NewStyle().Foreground(TextColor).MarginBottom(1)

	// Input box
	InputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor)

	InputBoxIdle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(SurfaceColor).
		Padding(0, 1)
)

// SideColor returns the accent color for a side ("side_a" or "side_b").
func SideColor(side string) lipgloss.Color {
	if side == "side_b" {
		return SideBColor
	}
	return SideAColor
}

// SideStyle returns a bold foreground style in the side's color.
func SideStyle(side string) lipgloss.Style {
	return SpeechHeading.Foreground(SideColor(side))
}

// SideBadge renders text on a background in the side's color.
func SideBadge(side, text string) string {
	return Badge.Background(SideColor(side)).Render(text)
}
