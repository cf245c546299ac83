package style

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Buy / success
	Red     = lipgloss.Color("#FF5555") // Sell / errors
	Blue    = lipgloss.Color("#3B82F6") // Info

	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Buy  lipgloss.Color
	Sell lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Buy:  Green,
		Sell: Red,
	}
}

// Styles объединяет стили таблиц и подсказок.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Border    lipgloss.Style
	Highlight lipgloss.Style
	Prompt    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
}

func NewStyles(p Palette) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Foreground(p.Primary).Bold(true).MarginTop(1),
		Header:    lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Padding(0, 1),
		Cell:      lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1),
		Border:    lipgloss.NewStyle().Foreground(p.TextMuted),
		Highlight: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Prompt:    lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(p.TextMuted),
		Error:     lipgloss.NewStyle().Foreground(p.Error),
	}
}
