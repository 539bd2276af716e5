// Package tui implementa los asistentes interactivos de terminal (login,
// registro, recuperación) sobre bubbletea. Toda la lógica de pasos vive en
// los paquetes de flujo; acá solo se renderiza estado y se reenvía entrada.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).MarginBottom(1)

	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	captchaBox  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).Foreground(lipgloss.Color("228"))
	qrBoxStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2)
	formStyle   = lipgloss.NewStyle().Margin(1, 0)
	checkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	unchecked   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorGlyph = "> "
)

// checklistLine pinta una regla del checklist de contraseña.
func checklistLine(met bool, label string) string {
	if met {
		return checkStyle.Render("✓ " + label)
	}
	return unchecked.Render("· " + label)
}
