package ui

import (
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/storage"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	Mode string // storage.ThemeLight or storage.ThemeDark

	// Colors
	ColorPrimary   lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	TaskDoneStyle       lipgloss.Style
	TaskPendingStyle    lipgloss.Style
	TaskSelectedStyle   lipgloss.Style
	TaskCheckboxDone    string
	TaskCheckboxPending string
	ProjectTagStyle     lipgloss.Style

	// Priority badge styles
	PriorityHighStyle   lipgloss.Style
	PriorityMediumStyle lipgloss.Style
	PriorityLowStyle    lipgloss.Style

	// Due date indicator styles
	DueDateOverdueStyle lipgloss.Style
	DueDateTodayStyle   lipgloss.Style
	DueDateFutureStyle  lipgloss.Style

	// Filter bar
	FilterActiveStyle   lipgloss.Style
	FilterInactiveStyle lipgloss.Style

	// Project sidebar
	ProjectStyle         lipgloss.Style
	ProjectSelectedStyle lipgloss.Style
	ProjectCurrentStyle  lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style
	InputTextStyle   lipgloss.Style

	// Metrics header
	StatLabelStyle    lipgloss.Style
	StatValueStyle    lipgloss.Style
	StatOverdueStyle  lipgloss.Style
	ProgressFullStyle lipgloss.Style
	ProgressRestStyle lipgloss.Style
}

// palette is the per-mode set of fallback colors.
type palette struct {
	primary, accent, muted, bg, bgLight, text, textMuted string
}

var (
	darkPalette = palette{
		primary:   "#7C3AED",
		accent:    "#3B82F6",
		muted:     "#6B7280",
		bg:        "#1F2937",
		bgLight:   "#374151",
		text:      "#F9FAFB",
		textMuted: "#9CA3AF",
	}
	lightPalette = palette{
		primary:   "#6D28D9",
		accent:    "#2563EB",
		muted:     "#9CA3AF",
		bg:        "#F9FAFB",
		bgLight:   "#E5E7EB",
		text:      "#111827",
		textMuted: "#6B7280",
	}
)

// NewStyles creates a new Styles instance from the given config and mode.
func NewStyles(cfg *config.Config, mode string) *Styles {
	return NewStylesFromTheme(&cfg.Theme, mode)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, the default of the given mode is used. Any
// mode other than storage.ThemeDark renders light.
func NewStylesFromTheme(theme *config.ThemeConfig, mode string) *Styles {
	if theme == nil {
		theme = &config.ThemeConfig{}
	}
	p := lightPalette
	if strings.EqualFold(mode, storage.ThemeDark) {
		mode, p = storage.ThemeDark, darkPalette
	} else {
		mode = storage.ThemeLight
	}

	s := &Styles{Mode: mode}

	s.ColorPrimary = colorOrDefault(theme.Primary, p.primary)
	s.ColorAccent = colorOrDefault(theme.Accent, p.accent)
	s.ColorMuted = colorOrDefault(theme.Muted, p.muted)

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")

	s.ColorBg = colorOrDefault(theme.Background, p.bg)
	s.ColorBgLight = lipgloss.Color(p.bgLight)
	s.ColorText = colorOrDefault(theme.Text, p.text)
	s.ColorTextMuted = lipgloss.Color(p.textMuted)

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

// initComponentStyles initializes all component styles based on the color palette.
func (s *Styles) initComponentStyles() {
	// Title bar
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	// Pane styles
	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	// Task styles
	s.TaskDoneStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Strikethrough(true)

	s.TaskPendingStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.TaskSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.TaskCheckboxDone = lipgloss.NewStyle().Foreground(s.ColorSuccess).Render("[✓]")
	s.TaskCheckboxPending = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("[ ]")

	s.ProjectTagStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent)

	// Priority badge styles
	s.PriorityHighStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.PriorityMediumStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.PriorityLowStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	// Due date indicator styles
	s.DueDateOverdueStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.DueDateTodayStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.DueDateFutureStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	// Filter bar
	s.FilterActiveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(s.ColorAccent).
		Bold(true).
		Padding(0, 1)

	s.FilterInactiveStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Padding(0, 1)

	// Project sidebar
	s.ProjectStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.ProjectSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.ProjectCurrentStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	// Help bar
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	// Status messages
	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	// Input
	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.InputTextStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	// Metrics header
	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)

	s.StatOverdueStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.ProgressFullStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess)

	s.ProgressRestStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)
}

// PriorityStyle returns the badge style for p.
func (s *Styles) PriorityStyle(p storage.Priority) lipgloss.Style {
	switch p {
	case storage.PriorityHigh:
		return s.PriorityHighStyle
	case storage.PriorityLow:
		return s.PriorityLowStyle
	default:
		return s.PriorityMediumStyle
	}
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.HelpKeyStyle.Render("[" + keys[i] + "]"))
		b.WriteString(" ")
		b.WriteString(s.HelpStyle.Render(keys[i+1]))
	}
	return b.String()
}
