package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskflow/internal/todo"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
	accent  lipgloss.Color
	overdue lipgloss.Color
	errText lipgloss.Color
	titleBg lipgloss.Color
}

var palettes = map[string]palette{
	ThemeDark: {
		text:    lipgloss.Color("#ffffff"),
		muted:   lipgloss.Color("#bdc3c7"),
		border:  lipgloss.Color("#444c56"),
		accent:  lipgloss.Color("#3b8ed0"),
		overdue: lipgloss.Color("#ff7675"),
		errText: lipgloss.Color("#ff4d4d"),
		titleBg: lipgloss.Color("#1f538d"),
	},
	ThemeLight: {
		text:    lipgloss.Color("#1e1e1e"),
		muted:   lipgloss.Color("#57606a"),
		border:  lipgloss.Color("#d0d7de"),
		accent:  lipgloss.Color("#1f6feb"),
		overdue: lipgloss.Color("#d63031"),
		errText: lipgloss.Color("#c0392b"),
		titleBg: lipgloss.Color("#3b8ed0"),
	},
}

// priorityColors are the card badge colors: red, yellow and green.
var priorityColors = map[todo.Priority]lipgloss.Color{
	todo.PriorityHigh:   lipgloss.Color("#ff4d4d"),
	todo.PriorityMedium: lipgloss.Color("#f1c40f"),
	todo.PriorityLow:    lipgloss.Color("#2ecc71"),
}

const unknownPriorityColor = lipgloss.Color("#95a5a6")

type styles struct {
	theme string

	title        lipgloss.Style
	column       lipgloss.Style
	columnActive lipgloss.Style
	header       lipgloss.Style
	card         lipgloss.Style
	cardSelected lipgloss.Style
	cardTitle    lipgloss.Style
	overdue      lipgloss.Style
	meta         lipgloss.Style
	note         lipgloss.Style
	empty        lipgloss.Style
	status       lipgloss.Style
	errText      lipgloss.Style
	label        lipgloss.Style
	labelFocused lipgloss.Style
	dialog       lipgloss.Style
}

func newStyles(theme string) styles {
	p, ok := palettes[theme]
	if !ok {
		theme = ThemeDark
		p = palettes[ThemeDark]
	}

	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	return styles{
		theme: theme,
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(p.titleBg).
			Padding(0, 1).
			Bold(true),
		column:       column,
		columnActive: column.BorderForeground(p.accent),
		header: lipgloss.NewStyle().
			Foreground(p.text).
			Bold(true).
			MarginBottom(1),
		card:         card,
		cardSelected: card.BorderForeground(p.accent),
		cardTitle: lipgloss.NewStyle().
			Foreground(p.text).
			Bold(true),
		overdue: lipgloss.NewStyle().
			Foreground(p.overdue).
			Bold(true),
		meta:  lipgloss.NewStyle().Foreground(p.muted),
		note:  lipgloss.NewStyle().Foreground(p.text),
		empty: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		status: lipgloss.NewStyle().
			Foreground(p.muted),
		errText: lipgloss.NewStyle().
			Foreground(p.errText).
			Bold(true),
		label:        lipgloss.NewStyle().Foreground(p.muted),
		labelFocused: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
	}
}

// badge renders the colored priority header of a card.
func (s styles) badge(p todo.Priority) lipgloss.Style {
	color, ok := priorityColors[p]
	if !ok {
		color = unknownPriorityColor
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1e1e1e")).
		Background(color).
		Padding(0, 1)
}

func toggleTheme(theme string) string {
	if theme == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
