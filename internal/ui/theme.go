package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Brand colours. The light variants are used on light terminal backgrounds.
const (
	ColorPrimary   = "#7C9EF8"
	ColorSecondary = "#A78BFA"
	ColorSuccess   = "#34D399"
	ColorWarning   = "#FBBF24"
	ColorError     = "#F87171"
	ColorText      = "#E5E7EB"
	ColorMuted     = "#6B7280"
)

// Palette holds the hex colours of a theme.
type Palette struct {
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Text      string
	Muted     string
}

// Theme carries colours and styles shared by all ui components.
type Theme struct {
	Colors  Palette
	Mode    string
	NoColor bool
}

// NewTheme creates a Theme for cfg.
func NewTheme(cfg ThemeConfig) *Theme {
	colors := Palette{
		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Success:   ColorSuccess,
		Warning:   ColorWarning,
		Error:     ColorError,
		Text:      ColorText,
		Muted:     ColorMuted,
	}
	if cfg.Mode == "light" {
		colors = Palette{
			Primary:   "#2563EB",
			Secondary: "#5B21B6",
			Success:   "#059669",
			Warning:   "#B45309",
			Error:     "#DC2626",
			Text:      "#111827",
			Muted:     "#6B7280",
		}
	}
	return &Theme{Colors: colors, Mode: cfg.Mode, NoColor: cfg.NoColor}
}

func (t *Theme) style(color string) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Title styles headings.
func (t *Theme) Title() lipgloss.Style { return t.style(t.Colors.Primary).Bold(true) }

// Success styles positive outcomes.
func (t *Theme) Success() lipgloss.Style { return t.style(t.Colors.Success) }

// Warning styles skipped or degraded outcomes.
func (t *Theme) Warning() lipgloss.Style { return t.style(t.Colors.Warning) }

// Error styles failures.
func (t *Theme) Error() lipgloss.Style { return t.style(t.Colors.Error).Bold(!t.NoColor) }

// Muted styles secondary information.
func (t *Theme) Muted() lipgloss.Style { return t.style(t.Colors.Muted) }

// Card returns a bordered box for grouped key/value output.
func (t *Theme) Card() lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if t.NoColor {
		return s.Border(lipgloss.NormalBorder())
	}
	return s.BorderForeground(lipgloss.Color(t.Colors.Muted))
}

// huhTheme maps the palette onto a huh form theme.
func (t *Theme) huhTheme() *huh.Theme {
	if t.NoColor {
		return huh.ThemeBase()
	}

	h := huh.ThemeBase()
	primary := lipgloss.Color(t.Colors.Primary)
	secondary := lipgloss.Color(t.Colors.Secondary)
	green := lipgloss.Color(t.Colors.Success)
	red := lipgloss.Color(t.Colors.Error)
	text := lipgloss.Color(t.Colors.Text)
	muted := lipgloss.Color(t.Colors.Muted)

	h.Focused.Base = h.Focused.Base.BorderForeground(muted)
	h.Focused.Card = h.Focused.Base
	h.Focused.Title = h.Focused.Title.Foreground(primary).Bold(true)
	h.Focused.Description = h.Focused.Description.Foreground(muted)
	h.Focused.ErrorIndicator = h.Focused.ErrorIndicator.Foreground(red)
	h.Focused.ErrorMessage = h.Focused.ErrorMessage.Foreground(red)
	h.Focused.SelectSelector = h.Focused.SelectSelector.Foreground(primary).SetString("▸ ")
	h.Focused.MultiSelectSelector = h.Focused.MultiSelectSelector.Foreground(primary)
	h.Focused.Option = h.Focused.Option.Foreground(text)
	h.Focused.SelectedOption = h.Focused.SelectedOption.Foreground(green)
	h.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(green).SetString("◆ ")
	h.Focused.UnselectedOption = h.Focused.UnselectedOption.Foreground(text)
	h.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(muted).SetString("◇ ")
	h.Focused.TextInput.Cursor = h.Focused.TextInput.Cursor.Foreground(primary)
	h.Focused.TextInput.Placeholder = h.Focused.TextInput.Placeholder.Foreground(muted)
	h.Focused.TextInput.Prompt = h.Focused.TextInput.Prompt.Foreground(secondary)

	h.Blurred = h.Focused
	h.Blurred.Base = h.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	h.Blurred.Card = h.Blurred.Base

	h.Group.Title = h.Focused.Title
	h.Group.Description = h.Focused.Description
	return h
}
