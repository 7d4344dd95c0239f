package ui

import (
	"strconv"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// projectHeaderRows counts the border, title and separator above the list.
const projectHeaderRows = 3

// ProjectPane is the project sidebar.
type ProjectPane struct {
	projects []storage.Project
	current  string
	counts   map[string]int

	cursor  int
	focused bool
	width   int
	height  int

	adding    bool
	input     textinput.Model
	board     *Board
	styles    *Styles
	keys      ProjectKeyMap
	inputKeys InputKeyMap
}

// NewProjectPane creates a project sidebar with custom key bindings.
func NewProjectPane(board *Board, styles *Styles, keyCfg *config.KeysConfig) *ProjectPane {
	ti := textinput.New()
	ti.Placeholder = "project name"
	ti.CharLimit = 15
	ti.Width = 15

	return &ProjectPane{
		current:   storage.AllProjects,
		input:     ti,
		board:     board,
		styles:    styles,
		keys:      NewProjectKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetSnapshot updates the project list. The cursor follows the selected
// project when the list is first filled.
func (p *ProjectPane) SetSnapshot(snap Snapshot) {
	first := len(p.projects) == 0
	p.projects = snap.Projects
	p.current = snap.Selection.Project
	p.counts = snap.ActiveCounts

	if first {
		p.cursor = p.indexOf(p.current)
	}
	if p.cursor >= len(p.projects) {
		p.cursor = max(0, len(p.projects)-1)
	}
}

func (p *ProjectPane) indexOf(name string) int {
	for i, proj := range p.projects {
		if proj.Name == name {
			return i
		}
	}
	return 0
}

// SetStyles swaps the styles after a theme change.
func (p *ProjectPane) SetStyles(styles *Styles) {
	p.styles = styles
}

// SetSize sets the pane dimensions.
func (p *ProjectPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(8, width-6)
}

// SetFocused sets whether this pane is focused.
func (p *ProjectPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsAdding returns whether the new-project input is open.
func (p *ProjectPane) IsAdding() bool {
	return p.adding
}

// Update handles messages for the project pane.
func (p *ProjectPane) Update(msg tea.Msg) tea.Cmd {
	if p.adding {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				name := strings.TrimSpace(p.input.Value())
				p.stopAdding()
				if name == "" {
					return nil
				}
				return createProjectCmd(p.board, name)
			case key.Matches(msg, p.inputKeys.Cancel):
				p.stopAdding()
				return nil
			}
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.projects) > 0 {
				p.cursor = min(p.cursor+1, len(p.projects)-1)
			}
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Top):
			p.cursor = 0
		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.projects)-1)
		case key.Matches(msg, p.keys.Add):
			p.adding = true
			return p.input.Focus()
		case key.Matches(msg, p.keys.Select):
			return p.selectCursor()
		}
	}
	return nil
}

func (p *ProjectPane) stopAdding() {
	p.adding = false
	p.input.Reset()
	p.input.Blur()
}

// selectCursor opens the project under the cursor.
func (p *ProjectPane) selectCursor() tea.Cmd {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return nil
	}
	name := p.projects[p.cursor].Name
	if name == p.current {
		return nil
	}
	return selectCmd(p.board, name, "")
}

func (p *ProjectPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)
	case tea.MouseButtonWheelDown:
		if len(p.projects) > 0 {
			p.cursor = min(p.cursor+1, len(p.projects)-1)
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		idx := msg.Y - projectHeaderRows
		if idx < 0 || idx >= len(p.projects) {
			return nil
		}
		p.cursor = idx
		return p.selectCursor()
	}
	return nil
}

// View renders the sidebar.
func (p *ProjectPane) View() string {
	var b strings.Builder
	inner := max(10, p.width-4)

	b.WriteString(p.styles.PaneTitleStyle.Render("📁 PROJECTS"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	for i, proj := range p.projects {
		marker := "  "
		if proj.Name == p.current {
			marker = "● "
		}
		count := ""
		if n := p.counts[proj.Name]; n > 0 {
			count = " " + strconv.Itoa(n)
		}
		name := runewidth.Truncate(view.DisplayName(proj.Name), max(4, inner-runewidth.StringWidth(marker)-len(count)), "..")
		line := marker + name
		pad := strings.Repeat(" ", max(1, inner-runewidth.StringWidth(line)-len(count)))

		switch {
		case i == p.cursor && p.focused && !p.adding:
			b.WriteString(p.styles.ProjectSelectedStyle.Render(line + pad + count))
		case proj.Name == p.current:
			b.WriteString(p.styles.ProjectCurrentStyle.Render(line) + pad + p.styles.StatLabelStyle.Render(count))
		default:
			b.WriteString(p.styles.ProjectStyle.Render(line) + pad + p.styles.StatLabelStyle.Render(count))
		}
		b.WriteString("\n")
	}

	if p.adding {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("+ ") + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}
