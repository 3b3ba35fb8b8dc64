// Package themes holds the color schemes of the interactive view.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	RoundedBox    lipgloss.Style
	FocusedBox    lipgloss.Style
	AlertBanner   lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

// palette lists the colors a theme is built from.
type palette struct {
	primary, secondary, success, warning, errorColor string
	foreground, background, border, muted, subtle    string
}

func build(p palette) Theme {
	return Theme{
		Primary:   lipgloss.Color(p.primary),
		Secondary: lipgloss.Color(p.secondary),
		Muted:     lipgloss.Color(p.muted),
		Border:    lipgloss.Color(p.border),
		Error:     lipgloss.Color(p.errorColor),
		Success:   lipgloss.Color(p.success),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.foreground)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.foreground)),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.primary)).
			Foreground(lipgloss.Color(p.background)).
			Bold(true),

		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		FocusedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.primary)).
			Padding(0, 1),
		AlertBanner: lipgloss.NewStyle().
			Background(lipgloss.Color(p.errorColor)).
			Foreground(lipgloss.Color(p.background)).
			Bold(true).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.success)).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errorColor)).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    "#2ec4b6",
	secondary:  "#a78bfa",
	success:    "#10b981",
	warning:    "#f59e0b",
	errorColor: "#ef4444",
	foreground: "#fafafa",
	background: "#1a1a1a",
	border:     "#404040",
	muted:      "#737373",
	subtle:     "#a3a3a3",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:    "#cba6f7",
	secondary:  "#f5c2e7",
	success:    "#a6e3a1",
	warning:    "#f9e2af",
	errorColor: "#f38ba8",
	foreground: "#cdd6f4",
	background: "#1e1e2e",
	border:     "#45475a",
	muted:      "#6c7086",
	subtle:     "#a6adc8",
})

// Names lists the selectable theme names.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
