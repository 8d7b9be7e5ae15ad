// Package theme holds the colour palettes used by the menu and the validate
// report.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme provides.
type Palette struct {
	Accent    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
}

// Theme names.
const (
	DraculaName        = "dracula"
	DraculaLightName   = "dracula-light"
	NordName           = "nord"
	GruvboxDarkName    = "gruvbox-dark"
	SolarizedLightName = "solarized-light"
	PlainName          = "plain"
)

var palettes = map[string]Palette{
	DraculaName: {
		Accent:    lipgloss.Color("#BD93F9"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		Cyan:      lipgloss.Color("#8BE9FD"),
	},
	DraculaLightName: {
		Accent:    lipgloss.Color("#7C3AED"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
		Cyan:      lipgloss.Color("#0891B2"),
	},
	NordName: {
		Accent:    lipgloss.Color("#88C0D0"),
		MutedFg:   lipgloss.Color("#81A1C1"),
		TextFg:    lipgloss.Color("#E5E9F0"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		Cyan:      lipgloss.Color("#8FBCBB"),
	},
	GruvboxDarkName: {
		Accent:    lipgloss.Color("#FABD2F"),
		MutedFg:   lipgloss.Color("#928374"),
		TextFg:    lipgloss.Color("#EBDBB2"),
		SuccessFg: lipgloss.Color("#B8BB26"),
		WarnFg:    lipgloss.Color("#FE8019"),
		ErrorFg:   lipgloss.Color("#FB4934"),
		Cyan:      lipgloss.Color("#8EC07C"),
	},
	SolarizedLightName: {
		Accent:    lipgloss.Color("#268BD2"),
		MutedFg:   lipgloss.Color("#93A1A1"),
		TextFg:    lipgloss.Color("#586E75"),
		SuccessFg: lipgloss.Color("#859900"),
		WarnFg:    lipgloss.Color("#CB4B16"),
		ErrorFg:   lipgloss.Color("#DC322F"),
		Cyan:      lipgloss.Color("#2AA198"),
	},
	// plain leaves every colour unset so nothing but text is emitted.
	PlainName: {},
}

// Get returns the palette for name, or Dracula if name is unknown.
func Get(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[DraculaName]
}

// DefaultDark returns the default dark theme name.
func DefaultDark() string {
	return DraculaName
}

// AvailableThemes returns the known theme names, sorted.
func AvailableThemes() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Title   lipgloss.Style
	Option  lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles builds the styles for the named theme.
func NewStyles(name string) Styles {
	p := Get(name)
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Option:  lipgloss.NewStyle().Foreground(p.TextFg),
		Key:     lipgloss.NewStyle().Bold(true).Foreground(p.Cyan),
		Muted:   lipgloss.NewStyle().Foreground(p.MutedFg),
		Success: lipgloss.NewStyle().Foreground(p.SuccessFg),
		Warn:    lipgloss.NewStyle().Foreground(p.WarnFg),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.ErrorFg),
		Info:    lipgloss.NewStyle().Foreground(p.Cyan),
	}
}
