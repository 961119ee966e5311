package cli

import "github.com/charmbracelet/lipgloss"

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)
)

// OK renders a green check line for diagnostics and confirmations.
func OK(msg string) string {
	return okStyle.Render("✓ " + msg)
}

// Fail renders a red failure line.
func Fail(msg string) string {
	return failStyle.Render("❌ " + msg)
}

// Warn renders an amber warning line.
func Warn(msg string) string {
	return warnStyle.Render("⚠ " + msg)
}

// Skip renders a muted skipped line.
func Skip(msg string) string {
	return MutedStyle.Render("⊘ " + msg)
}
