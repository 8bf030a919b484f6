package view

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#2563EB")
	secondary = lipgloss.Color("#10B981")
	muted     = lipgloss.Color("#6B7280")
	danger    = lipgloss.Color("#EF4444")
	white     = lipgloss.Color("#FFFFFF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(14)

	valueStyle = lipgloss.NewStyle()

	changedStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	roleTagStyle = lipgloss.NewStyle().
			Background(primary).
			Foreground(white).
			Padding(0, 1)

	adminTagStyle = lipgloss.NewStyle().
			Background(danger).
			Foreground(white).
			Padding(0, 1)

	disabledStyle = lipgloss.NewStyle().
			Foreground(muted).
			Faint(true)

	successStyle = lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	saveBarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(muted)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)
