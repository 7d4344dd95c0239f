// Package ui provides terminal user interface components for taskboard.
// This file contains the main App model which coordinates the panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/view"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneProjects PaneID = iota
	PaneTasks
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows the sidebar and the task list side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	Theme                 *config.ThemeConfig
	ConfirmDeletions      bool
	SeedSamples           bool
	NarrowLayoutThreshold int
}

// NewAppConfig extracts the app settings from a loaded config.
func NewAppConfig(cfg *config.Config) *AppConfig {
	return &AppConfig{
		Keys:                  &cfg.Keys,
		Theme:                 &cfg.Theme,
		ConfirmDeletions:      cfg.UX.ConfirmDeletions,
		SeedSamples:           cfg.UX.SeedSampleTasks,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
	}
}

// App is the main application model that coordinates all panes.
type App struct {
	board       *Board
	styles      *Styles
	config      *AppConfig
	projectPane *ProjectPane
	taskPane    *TaskPane
	helpOverlay *HelpOverlay
	confirmDel  *confirmDeleteState
	activePane  PaneID
	layoutMode  LayoutMode
	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool
	now         func() time.Time

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection
	tasksPaneStart int
	contentTop     int // Y coordinate where panes start
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(board *Board, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			ConfirmDeletions:      true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if cfg.Theme == nil {
		cfg.Theme = &config.ThemeConfig{}
	}
	if styles == nil {
		styles = NewStylesFromTheme(cfg.Theme, storage.ThemeLight)
	}

	app := &App{
		board:       board,
		styles:      styles,
		config:      cfg,
		projectPane: NewProjectPane(board, styles, cfg.Keys),
		taskPane:    NewTaskPaneWithKeys(board, styles, cfg.Keys),
		helpOverlay: NewHelpOverlay(styles, cfg.Keys),
		now:         time.Now,
		keys:        NewGlobalKeyMap(cfg.Keys),
		helpKeys:    DefaultHelpKeyMap(),
	}
	app.setActivePane(PaneTasks)

	return app
}

// tickMsg is sent periodically for time updates.
type tickMsg time.Time

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init seeds the sample tasks if configured and loads the board.
func (a *App) Init() tea.Cmd {
	load := loadBoardCmd(a.board)
	if a.config.SeedSamples {
		load = seedSamplesCmd(a.board)
	}
	return tea.Batch(tickCmd(), load)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Board operation results are handled here regardless of which pane is
	// active. Every mutation is followed by a reload.
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.err != nil {
			a.SetStatus("Load: "+msg.err.Error(), true)
		}
		a.applySnapshot(msg.snap)
		return a, nil

	case samplesSeededMsg:
		if msg.err != nil {
			a.SetStatus("Samples: "+msg.err.Error(), true)
		} else if msg.seeded {
			a.SetStatus("Added a few sample tasks to get you started", false)
		}
		return a, loadBoardCmd(a.board)

	case taskCreatedMsg:
		if msg.err != nil {
			a.SetStatus("Add task: "+msg.err.Error(), true)
			if !storage.IsPersistence(msg.err) {
				return a, nil
			}
		} else {
			a.SetStatus("Added to #"+msg.task.Project, false)
		}
		return a, loadBoardCmd(a.board)

	case taskToggledMsg:
		if msg.err != nil {
			a.SetStatus("Toggle task: "+msg.err.Error(), true)
		}
		return a, loadBoardCmd(a.board)

	case taskDeletedMsg:
		if msg.err != nil {
			a.SetStatus("Delete task: "+msg.err.Error(), true)
		}
		return a, loadBoardCmd(a.board)

	case projectCreatedMsg:
		if msg.err != nil {
			a.SetStatus("Add project: "+msg.err.Error(), true)
			if !storage.IsPersistence(msg.err) {
				return a, nil
			}
		} else {
			a.SetStatus("Project added: "+view.DisplayName(msg.project.Name), false)
		}
		return a, loadBoardCmd(a.board)

	case themeToggledMsg:
		if msg.err != nil {
			a.SetStatus("Theme: "+msg.err.Error(), true)
		}
		if msg.theme != "" {
			a.applyTheme(msg.theme)
		}
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Time(msg).After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()
	}

	// Forward to active pane (only if help is not shown)
	if a.showHelp {
		return a, nil
	}
	return a, a.activePaneUpdate(msg)
}

// handleKey processes overlays and global keys. It reports whether the key
// was consumed.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirmDel.cmd
			a.confirmDel = nil
			return cmd, true
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil, true
	}

	// Help overlay takes priority
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil, true
	}

	// Input fields get every key
	if a.taskPane.IsAdding() || a.projectPane.IsAdding() {
		return nil, false
	}

	if a.config.ConfirmDeletions && a.activePane == PaneTasks && key.Matches(msg, a.taskPane.keys.Delete) {
		item, ok := a.taskPane.Selected()
		if !ok {
			a.SetStatus("No task selected", true)
			return nil, true
		}
		a.confirmDel = &confirmDeleteState{
			title: "Delete task?",
			body:  runewidth.Truncate(item.DisplayText, 60, ".."),
			cmd:   deleteTaskCmd(a.board, item.Task.ID),
		}
		return nil, true
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit, true

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return nil, true

	case key.Matches(msg, a.keys.NextPane):
		a.switchPane()
		return nil, true

	case key.Matches(msg, a.keys.ToggleTheme):
		return toggleThemeCmd(a.board), true
	}

	for i, binding := range a.keys.Filters() {
		if key.Matches(msg, binding) {
			return selectCmd(a.board, "", view.Filters[i]), true
		}
	}

	return nil, false
}

// handleMouse routes clicks and wheel events to the pane under the pointer.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirmDel != nil || a.showHelp {
		if msg.Action == tea.MouseActionPress {
			if a.confirmDel != nil {
				a.SetStatus("Canceled", false)
			}
			a.confirmDel = nil
			a.showHelp = false
		}
		return nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		// In narrow mode the row above the panes is the tab bar
		if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
			if msg.X < a.width/2 {
				a.setActivePane(PaneProjects)
			} else {
				a.setActivePane(PaneTasks)
			}
			return nil
		}
		if pane := a.paneAtPosition(msg.X); pane != a.activePane {
			a.setActivePane(pane)
		}
	}

	if msg.Y < a.contentTop {
		return nil
	}
	local := msg
	local.Y = msg.Y - a.contentTop
	if a.layoutMode == LayoutWide && a.activePane == PaneTasks {
		local.X = msg.X - a.tasksPaneStart
	}
	return a.activePaneUpdate(local)
}

func (a *App) activePaneUpdate(msg tea.Msg) tea.Cmd {
	if a.activePane == PaneProjects {
		return a.projectPane.Update(msg)
	}
	return a.taskPane.Update(msg)
}

// applySnapshot pushes a fresh board read into the panes.
func (a *App) applySnapshot(snap Snapshot) {
	if snap.Theme != "" && snap.Theme != a.styles.Mode {
		a.applyTheme(snap.Theme)
	}
	a.projectPane.SetSnapshot(snap)
	a.taskPane.SetSnapshot(snap)
}

// applyTheme rebuilds the styles for mode.
func (a *App) applyTheme(mode string) {
	a.styles = NewStylesFromTheme(a.config.Theme, mode)
	a.projectPane.SetStyles(a.styles)
	a.taskPane.SetStyles(a.styles)
	a.helpOverlay.SetStyles(a.styles)
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	if a.activePane == PaneTasks {
		a.setActivePane(PaneProjects)
	} else {
		a.setActivePane(PaneTasks)
	}
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane
	a.projectPane.SetFocused(pane == PaneProjects)
	a.taskPane.SetFocused(pane == PaneTasks)
}

// paneAtPosition returns which pane is at the given X coordinate.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}
	if x < a.tasksPaneStart {
		return PaneProjects
	}
	return PaneTasks
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Leave room for title bar and help bar
	contentHeight := max(a.height-4, 10)
	a.contentTop = 1

	a.helpOverlay.SetSize(a.width, a.height)

	totalWidth := a.width - 4

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		// Narrow mode: single focused pane with tab bar
		a.layoutMode = LayoutNarrow
		paneHeight := max(contentHeight-1, 8)
		paneWidth := max(totalWidth, 20)
		a.projectPane.SetSize(paneWidth, paneHeight)
		a.taskPane.SetSize(paneWidth, paneHeight)
		a.tasksPaneStart = 0
		a.contentTop = 2
		return
	}

	a.layoutMode = LayoutWide
	sidebar := min(max(totalWidth*25/100, 18), 28)
	a.projectPane.SetSize(sidebar, contentHeight)
	a.taskPane.SetSize(totalWidth-sidebar-2, contentHeight)
	// Rendered width includes the two border columns
	a.tasksPaneStart = sidebar + 2 + 1
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		if a.activePane == PaneProjects {
			b.WriteString(a.projectPane.View())
		} else {
			b.WriteString(a.taskPane.View())
		}
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.projectPane.View(), " ", a.taskPane.View()))
	}
	b.WriteString("\n")

	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderConfirmDelete() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirmDel.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirmDel.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] delete    [n/esc] cancel"))

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// renderPaneTabs renders the narrow-mode tab bar.
func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneProjects, "Projects"},
		{PaneTasks, "Tasks"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

// renderGoodbye shows an exit message with the board summary.
func (a *App) renderGoodbye() string {
	m := a.taskPane.Metrics()

	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")
	if total := m.Completed + m.Active; total > 0 {
		b.WriteString(fmt.Sprintf("  %s: %d/%d done (%d%%)", a.taskPane.title, m.Completed, total, m.CompletionRate))
		if m.Overdue > 0 {
			b.WriteString(fmt.Sprintf(", %d overdue", m.Overdue))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderTitleBar creates the top title bar with the summary and the date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" taskboard ")

	m := a.taskPane.Metrics()
	var stats string
	if total := m.Completed + m.Active; total > 0 {
		stats = a.styles.StatLabelStyle.Render(fmt.Sprintf("  %s: %d/%d done", a.taskPane.title, m.Completed, total))
	}

	date := a.styles.DateStyle.Render(a.now().Format("Mon Jan 2 · 15:04"))

	spacer := max(a.width-lipgloss.Width(title)-lipgloss.Width(stats)-lipgloss.Width(date)-2, 2)
	return title + stats + strings.Repeat(" ", spacer) + date
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	switch {
	case a.taskPane.IsAdding():
		return a.styles.RenderHelp(
			"enter", "save",
			"tab", "text/due",
			"esc", "cancel",
		)
	case a.projectPane.IsAdding():
		return a.styles.RenderHelp(
			"enter", "save",
			"esc", "cancel",
		)
	case a.activePane == PaneProjects:
		return a.styles.RenderHelp(
			"enter", "open",
			"p", "new project",
			"j/k", "nav",
			"tab", "pane",
			"?", "help",
		)
	default:
		return a.styles.RenderHelp(
			"a", "add",
			"d", "done",
			"x", "del",
			"1-4", "filter",
			"tab", "pane",
			"?", "help",
		)
	}
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = a.now().Add(ttl)
}

// Run starts the Bubble Tea program over board.
func Run(board *Board, styles *Styles, cfg *AppConfig) error {
	app := NewApp(board, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
