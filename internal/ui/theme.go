package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles the styles every renderer pulls from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Toast                               lipgloss.Style
	Border                                        lipgloss.Border
	BorderColor                                   lipgloss.TerminalColor

	SymOK, SymFail, Bullet string
}

var current = build("dark")

// SetTheme switches the palette: "dark" (default), "light" or "mono".
func SetTheme(name string) Theme {
	current = build(name)
	return current
}

// Expose what renderers need
func Current() Theme { return current }

func build(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return Theme{
			Name:        "light",
			Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
			Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
			Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
			Toast:       lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("238")).Padding(0, 1),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("250"),
			SymOK:       "✔", SymFail: "✖", Bullet: "•",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Name:  "mono",
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain.Bold(true), Pending: plain,
			Selected: plain.Reverse(true),
			Toast:    plain.Reverse(true).Padding(0, 1),
			Border:   lipgloss.NormalBorder(),
			// no color
			BorderColor: lipgloss.NoColor{},
			SymOK:       "ok", SymFail: "x", Bullet: "-",
		}
	default:
		return Theme{
			Name:        "dark",
			Title:       lipgloss.NewStyle().Bold(true),
			Muted:       lipgloss.NewStyle().Faint(true),
			Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
			Toast:       lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236")).Padding(0, 1),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
			SymOK:       "✔", SymFail: "✖", Bullet: "•",
		}
	}
}
