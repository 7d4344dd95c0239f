package ui

import (
	"strings"

	"taskboard/internal/config"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSection is a titled group of bindings.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// HelpOverlay renders a help screen
type HelpOverlay struct {
	width    int
	height   int
	styles   *Styles
	sections []helpSection
}

// NewHelpOverlay creates a new help overlay listing the configured keys.
func NewHelpOverlay(styles *Styles, keyCfg *config.KeysConfig) *HelpOverlay {
	global := NewGlobalKeyMap(keyCfg)
	tasks := NewTaskKeyMap(keyCfg)
	projects := NewProjectKeyMap(keyCfg)
	input := NewInputKeyMap(keyCfg)

	return &HelpOverlay{
		styles: styles,
		sections: []helpSection{
			{"Global", []key.Binding{global.NextPane, global.ToggleTheme, global.Help, global.Quit}},
			{"Filters", global.Filters()},
			{"Tasks", []key.Binding{tasks.Add, tasks.Toggle, tasks.Delete, tasks.Up, tasks.Down, tasks.Top, tasks.Bottom}},
			{"Projects", []key.Binding{projects.Add, projects.Select}},
			{"Input Mode", []key.Binding{input.Confirm, input.NextField, input.Cancel}},
		},
	}
}

// SetStyles swaps the styles after a theme change.
func (h *HelpOverlay) SetStyles(styles *Styles) {
	h.styles = styles
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// bindingKeys lists the keys a binding answers to, as typed.
func bindingKeys(b key.Binding) string {
	keys := make([]string, 0, len(b.Keys()))
	for _, k := range b.Keys() {
		if k == " " {
			k = "space"
		}
		keys = append(keys, k)
	}
	return strings.Join(keys, " / ")
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(18)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder

	b.WriteString(titleStyle.Render("📖 taskboard - Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, section := range h.sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			b.WriteString(keyStyle.Render(bindingKeys(binding)) + descStyle.Render(binding.Help().Desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Tags: #project !high !medium !low"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(b.String()),
	)
}
