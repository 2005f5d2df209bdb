package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the wizard. Colors are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
	Success    lipgloss.Color
	Border     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Accent:     lipgloss.Color("75"),
	Error:      lipgloss.Color("196"),
	Warning:    lipgloss.Color("220"),
	Success:    lipgloss.Color("114"),
	Border:     lipgloss.Color("240"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
}

type styles struct {
	title    lipgloss.Style
	progress lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	value    lipgloss.Style
	faint    lipgloss.Style
	selected lipgloss.Style
	errMsg   lipgloss.Style
	warnMsg  lipgloss.Style
	okMsg    lipgloss.Style
	box      lipgloss.Style
	help     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		progress: lipgloss.NewStyle().Foreground(t.FaintText),
		label:    lipgloss.NewStyle().Foreground(t.FaintText).Width(26),
		focused:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Width(26),
		value:    lipgloss.NewStyle().Foreground(t.NormalText),
		faint:    lipgloss.NewStyle().Foreground(t.FaintText),
		selected: lipgloss.NewStyle().Background(t.SelectedBackground).Foreground(t.SelectedForeground),
		errMsg:   lipgloss.NewStyle().Foreground(t.Error),
		warnMsg:  lipgloss.NewStyle().Foreground(t.Warning),
		okMsg:    lipgloss.NewStyle().Foreground(t.Success),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		help:     lipgloss.NewStyle().Foreground(t.FaintText),
	}
}
