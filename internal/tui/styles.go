package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/entityloom/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true).MarginBottom(1)
	boxStyle      = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))

	levelStyles = map[session.Level]lipgloss.Style{
		session.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		session.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		session.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		session.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func renderStatus(st session.Status) string {
	if st.Message == "" {
		return ""
	}
	return levelStyles[st.Level].Render(st.String())
}
