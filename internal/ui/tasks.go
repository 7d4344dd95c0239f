package ui

import (
	"fmt"
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

const (
	// taskHeaderRows is the number of rows above the first task, counting
	// the pane border: title, filter bar, metrics, progress bar, separator.
	taskHeaderRows = 6
	// checkboxColumns is the clickable width at the start of a task row.
	checkboxColumns = 7
	progressBarWidth = 20
)

// TaskPane shows the filtered task list of the selected project together
// with the filter bar and the project metrics.
type TaskPane struct {
	items     []view.Item
	metrics   view.Metrics
	selection view.Selection
	title     string
	today     string

	cursor  int
	focused bool
	width   int
	height  int

	adding    bool
	dueField  bool // editing the due date instead of the text
	input     textinput.Model
	dueInput  textinput.Model
	board     *Board
	styles    *Styles
	keys      TaskKeyMap
	inputKeys InputKeyMap
}

// NewTaskPane creates a new task pane with default key bindings.
func NewTaskPane(board *Board, styles *Styles) *TaskPane {
	return NewTaskPaneWithKeys(board, styles, &config.KeysConfig{})
}

// NewTaskPaneWithKeys creates a new task pane with custom key bindings.
func NewTaskPaneWithKeys(board *Board, styles *Styles, keyCfg *config.KeysConfig) *TaskPane {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done? #project !priority"
	ti.CharLimit = 200
	ti.Width = 40

	di := textinput.New()
	di.Placeholder = "YYYY-MM-DD (optional)"
	di.CharLimit = len(storage.DateLayout)
	di.Width = 12

	return &TaskPane{
		selection: view.Selection{Project: storage.AllProjects, Filter: view.FilterAll},
		title:     view.DisplayName(storage.AllProjects),
		focused:   true,
		input:     ti,
		dueInput:  di,
		board:     board,
		styles:    styles,
		keys:      NewTaskKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetSnapshot replaces what the pane shows and keeps the cursor in range.
func (p *TaskPane) SetSnapshot(snap Snapshot) {
	p.items = snap.Items
	p.metrics = snap.Metrics
	p.selection = snap.Selection
	p.title = snap.Title
	p.today = snap.Today
	if p.cursor >= len(p.items) {
		p.cursor = max(0, len(p.items)-1)
	}
}

// SetStyles swaps the styles after a theme change.
func (p *TaskPane) SetStyles(styles *Styles) {
	p.styles = styles
}

// SetSize sets the pane dimensions.
func (p *TaskPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-6)
}

// SetFocused sets whether this pane is focused.
func (p *TaskPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsFocused returns whether this pane is focused.
func (p *TaskPane) IsFocused() bool {
	return p.focused
}

// IsAdding returns whether we're in add mode.
func (p *TaskPane) IsAdding() bool {
	return p.adding
}

// Selected returns the item under the cursor.
func (p *TaskPane) Selected() (view.Item, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return view.Item{}, false
	}
	return p.items[p.cursor], true
}

// Metrics returns the metrics of the selected project.
func (p *TaskPane) Metrics() view.Metrics {
	return p.metrics
}

func (p *TaskPane) startAdding() tea.Cmd {
	p.adding = true
	p.dueField = false
	p.dueInput.Blur()
	return p.input.Focus()
}

func (p *TaskPane) stopAdding() {
	p.adding = false
	p.dueField = false
	p.input.Reset()
	p.input.Blur()
	p.dueInput.Reset()
	p.dueInput.Blur()
}

// Update handles messages for the task pane.
func (p *TaskPane) Update(msg tea.Msg) tea.Cmd {
	if p.adding {
		return p.updateInput(msg)
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
			if len(p.items) > 0 {
				p.cursor = min(p.cursor+1, len(p.items)-1)
			}

		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.items)-1)

		case key.Matches(msg, p.keys.Add):
			return p.startAdding()

		case key.Matches(msg, p.keys.Toggle):
			if item, ok := p.Selected(); ok {
				return toggleTaskCmd(p.board, item.Task.ID)
			}

		case key.Matches(msg, p.keys.Delete):
			if item, ok := p.Selected(); ok {
				return deleteTaskCmd(p.board, item.Task.ID)
			}
		}
	}

	return nil
}

// updateInput handles the two-field add form.
func (p *TaskPane) updateInput(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.inputKeys.Confirm):
			text := strings.TrimSpace(p.input.Value())
			due := strings.TrimSpace(p.dueInput.Value())
			p.stopAdding()
			if text == "" {
				return nil
			}
			return createTaskCmd(p.board, text, due)

		case key.Matches(msg, p.inputKeys.Cancel):
			p.stopAdding()
			return nil

		case key.Matches(msg, p.inputKeys.NextField):
			p.dueField = !p.dueField
			if p.dueField {
				p.input.Blur()
				return p.dueInput.Focus()
			}
			p.dueInput.Blur()
			return p.input.Focus()
		}
	}

	var cmd tea.Cmd
	if p.dueField {
		p.dueInput, cmd = p.dueInput.Update(msg)
	} else {
		p.input, cmd = p.input.Update(msg)
	}
	return cmd
}

// visibleRows is how many task rows fit below the header.
func (p *TaskPane) visibleRows() int {
	rows := p.height - taskHeaderRows - 3 // bottom border, blank, input
	if rows < 3 {
		rows = 5
	}
	return rows
}

// window returns the index of the first visible task.
func (p *TaskPane) window() int {
	if rows := p.visibleRows(); p.cursor >= rows {
		return p.cursor - rows + 1
	}
	return 0
}

// handleMouse processes mouse events for the task pane. Coordinates are
// relative to the pane's top-left corner.
func (p *TaskPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.items) == 0 {
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)

	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.items)-1)

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - taskHeaderRows
		if row < 0 || row >= p.visibleRows() {
			return nil
		}
		idx := p.window() + row
		if idx >= len(p.items) {
			return nil
		}
		p.cursor = idx
		if msg.X < checkboxColumns {
			return toggleTaskCmd(p.board, p.items[idx].Task.ID)
		}
	}

	return nil
}

// View renders the task pane.
func (p *TaskPane) View() string {
	var b strings.Builder
	inner := max(20, p.width-4)

	b.WriteString(p.styles.PaneTitleStyle.Render("📋 " + p.title))
	b.WriteString("\n")
	b.WriteString(p.renderFilterBar())
	b.WriteString("\n")
	b.WriteString(p.renderMetrics())
	b.WriteString("\n")
	b.WriteString(p.renderProgress())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	if len(p.items) == 0 {
		empty := runewidth.Truncate(view.EmptyMessage(p.title), inner, "..")
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render(empty))
		b.WriteString("\n")
	} else {
		start := p.window()
		end := min(len(p.items), start+p.visibleRows())
		for i := start; i < end; i++ {
			b.WriteString(p.renderItem(p.items[i], i == p.cursor && p.focused && !p.adding, inner))
			b.WriteString("\n")
		}
	}

	if p.adding {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("+ ") + p.input.View())
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("  due ") + p.dueInput.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// renderFilterBar highlights the active filter.
func (p *TaskPane) renderFilterBar() string {
	parts := make([]string, 0, len(view.Filters))
	for i, f := range view.Filters {
		label := fmt.Sprintf("%d %s", i+1, view.DisplayName(f))
		if f == p.selection.Filter {
			parts = append(parts, p.styles.FilterActiveStyle.Render(label))
		} else {
			parts = append(parts, p.styles.FilterInactiveStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

// renderMetrics shows the completed, active and overdue counts.
func (p *TaskPane) renderMetrics() string {
	m := p.metrics
	overdue := p.styles.StatValueStyle
	if m.Overdue > 0 {
		overdue = p.styles.StatOverdueStyle
	}
	return strings.Join([]string{
		p.styles.StatValueStyle.Render(fmt.Sprint(m.Completed)) + p.styles.StatLabelStyle.Render(" done"),
		p.styles.StatValueStyle.Render(fmt.Sprint(m.Active)) + p.styles.StatLabelStyle.Render(" active"),
		overdue.Render(fmt.Sprint(m.Overdue)) + p.styles.StatLabelStyle.Render(" overdue"),
	}, p.styles.StatLabelStyle.Render(" · "))
}

// renderProgress draws the completion rate as a text bar.
func (p *TaskPane) renderProgress() string {
	filled := p.metrics.CompletionRate * progressBarWidth / 100
	filled = min(max(filled, 0), progressBarWidth)
	bar := p.styles.ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		p.styles.ProgressRestStyle.Render(strings.Repeat("░", progressBarWidth-filled))
	return bar + p.styles.StatLabelStyle.Render(fmt.Sprintf(" %d%%", p.metrics.CompletionRate))
}

// renderItem lays out one row:
// [space][priority][checkbox][space][text][space][#project][pad][due]
func (p *TaskPane) renderItem(item view.Item, selected bool, inner int) string {
	task := item.Task

	badge := p.formatPriorityBadge(task.Priority)
	checkbox := p.styles.TaskCheckboxPending
	if task.Completed {
		checkbox = p.styles.TaskCheckboxDone
	}
	project := "#" + task.Project
	due := p.formatDueLabel(item)

	fixed := 6 + 1 + runewidth.StringWidth(project) + 1 + lipgloss.Width(due)
	textWidth := max(5, inner-fixed)
	text := runewidth.Truncate(item.DisplayText, textWidth, "..")
	pad := strings.Repeat(" ", max(1, textWidth-runewidth.StringWidth(text)+1))

	if selected {
		return p.styles.TaskSelectedStyle.Render(
			" " + badge + checkbox + " " + text + " " + project + pad + due)
	}

	styledText := p.styles.TaskPendingStyle.Render(text)
	if task.Completed {
		styledText = p.styles.TaskDoneStyle.Render(text)
	}
	return " " + badge + checkbox + " " + styledText + " " +
		p.styles.ProjectTagStyle.Render(project) + pad + due
}

// formatPriorityBadge returns a styled one-column priority indicator:
// "!" for high, "~" for medium, "·" for low.
func (p *TaskPane) formatPriorityBadge(priority storage.Priority) string {
	style := p.styles.PriorityStyle(priority)
	switch priority {
	case storage.PriorityHigh:
		return style.Render("!")
	case storage.PriorityLow:
		return style.Render("·")
	default:
		return style.Render("~")
	}
}

// formatDueLabel styles the due label by how close the date is. Dates
// compare as strings because they share the YYYY-MM-DD layout.
func (p *TaskPane) formatDueLabel(item view.Item) string {
	due := item.Task.DueDate
	switch {
	case due == "" || item.Task.Completed:
		return p.styles.DueDateFutureStyle.Render(item.DueLabel)
	case due < p.today:
		return p.styles.DueDateOverdueStyle.Render(item.DueLabel)
	case due == p.today:
		return p.styles.DueDateTodayStyle.Render(item.DueLabel)
	default:
		return p.styles.DueDateFutureStyle.Render(item.DueLabel)
	}
}
