package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary     = lipgloss.Color("#2E7D32")
	colorAccent      = lipgloss.Color("#4DB6AC")
	colorMuted       = lipgloss.Color("#8A94A6")
	colorBorder      = lipgloss.Color("#3A4A5E")
	colorSuccess     = lipgloss.Color("#8BC34A")
	colorWarning     = lipgloss.Color("#FFC107")
	colorDestructive = lipgloss.Color("#E53935")
	colorInfo        = lipgloss.Color("#2196F3")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(22)

	valueStyle = lipgloss.NewStyle().Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(colorMuted)

	historyBarStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	forecastBarStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	infoAlertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorInfo).
			Foreground(colorInfo).
			Padding(0, 1)

	errorAlertStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorDestructive).
			Foreground(colorDestructive).
			Padding(0, 1)
)
