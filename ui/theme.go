package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colours of the reply list.
type Theme struct {
	Name string

	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color

	Border       lipgloss.Color
	ActiveBorder lipgloss.Color
}

var DarkTheme = Theme{
	Name:         "dark",
	Accent:       lipgloss.Color("#f97316"),
	Success:      lipgloss.Color("#22c55e"),
	Warning:      lipgloss.Color("#eab308"),
	Error:        lipgloss.Color("#ef4444"),
	Primary:      lipgloss.Color("#e0e0e8"),
	Secondary:    lipgloss.Color("#888888"),
	Dim:          lipgloss.Color("#5a5a70"),
	Border:       lipgloss.Color("#2a2a3a"),
	ActiveBorder: lipgloss.Color("#f97316"),
}

var LightTheme = Theme{
	Name:         "light",
	Accent:       lipgloss.Color("#c2410c"),
	Success:      lipgloss.Color("#15803d"),
	Warning:      lipgloss.Color("#a16207"),
	Error:        lipgloss.Color("#b91c1c"),
	Primary:      lipgloss.Color("#0f172a"),
	Secondary:    lipgloss.Color("#374151"),
	Dim:          lipgloss.Color("#4b5563"),
	Border:       lipgloss.Color("#d1d5db"),
	ActiveBorder: lipgloss.Color("#c2410c"),
}

// DetectTheme picks a theme from the flag value, then QUICK_ACTIONS_THEME,
// then the COLORFGBG hint. Dark is the default.
func DetectTheme(flagVal string) Theme {
	if t, ok := themeByName(flagVal); ok {
		return t
	}
	if t, ok := themeByName(os.Getenv("QUICK_ACTIONS_THEME")); ok {
		return t
	}
	// COLORFGBG is "fg;bg"; 7 and 15 are light backgrounds
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if bg := parts[len(parts)-1]; bg == "7" || bg == "15" {
			return LightTheme
		}
	}
	return DarkTheme
}

func themeByName(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return DarkTheme, true
	case "light":
		return LightTheme, true
	}
	return Theme{}, false
}

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	selected  lipgloss.Style
	item      lipgloss.Style
	cursor    lipgloss.Style
	accessory lipgloss.Style
	pending   lipgloss.Style
	done      lipgloss.Style
	failed    lipgloss.Style
	status    lipgloss.Style
	kbdKey    lipgloss.Style
	kbdDesc   lipgloss.Style
	list      lipgloss.Style
	detail    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:     lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		subtitle:  lipgloss.NewStyle().Foreground(t.Secondary),
		selected:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		item:      lipgloss.NewStyle().Foreground(t.Secondary),
		cursor:    lipgloss.NewStyle().Foreground(t.Accent),
		accessory: lipgloss.NewStyle().Foreground(t.Dim),
		pending:   lipgloss.NewStyle().Foreground(t.Warning),
		done:      lipgloss.NewStyle().Foreground(t.Success),
		failed:    lipgloss.NewStyle().Foreground(t.Error),
		status:    lipgloss.NewStyle().Foreground(t.Secondary).Italic(true),
		kbdKey:    lipgloss.NewStyle().Foreground(t.Primary).Background(t.Dim).Padding(0, 1),
		kbdDesc:   lipgloss.NewStyle().Foreground(t.Dim),
		list: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.ActiveBorder).
			Padding(0, 1),
		detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
	}
}
