// Package ui provides terminal user interface components for taskboard.
// This file contains tests for the main App model, including layout behavior
// and the board operations driven from the keyboard.
package ui

import (
	"strings"
	"testing"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

// TestApp_LayoutModeTransitions verifies layout mode changes based on width.
func TestApp_LayoutModeTransitions(t *testing.T) {
	app := createTestApp(t, 100, 30)

	tests := []struct {
		name         string
		width        int
		expectedMode LayoutMode
	}{
		{"Very narrow (40)", 40, LayoutNarrow},
		{"Narrow (60)", 60, LayoutNarrow},
		{"Below threshold (79)", 79, LayoutNarrow},
		{"At threshold (80)", 80, LayoutWide},
		{"Wide (100)", 100, LayoutWide},
		{"Very wide (200)", 200, LayoutWide},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app.Update(tea.WindowSizeMsg{Width: tc.width, Height: 30})

			if app.layoutMode != tc.expectedMode {
				t.Errorf("Width %d: expected layout mode %v, got %v",
					tc.width, tc.expectedMode, app.layoutMode)
			}
		})
	}
}

// TestApp_NarrowLayoutShowsOnlyActivePane verifies only the focused pane is
// shown in narrow mode.
func TestApp_NarrowLayoutShowsOnlyActivePane(t *testing.T) {
	app := createTestApp(t, 60, 30)

	out := app.View()
	if !strings.Contains(out, "[Tasks]") {
		t.Error("Expected [Tasks] tab highlighted in narrow mode")
	}
	if !strings.Contains(out, " Projects ") {
		t.Error("Expected inactive Projects tab in narrow mode")
	}
	if strings.Contains(out, "PROJECTS") {
		t.Error("Sidebar should be hidden while Tasks is active")
	}

	press(t, app, "tab")
	out = app.View()
	if !strings.Contains(out, "[Projects]") || !strings.Contains(out, "PROJECTS") {
		t.Error("Expected the sidebar after switching panes")
	}
}

// TestApp_WideLayoutShowsBothPanes verifies the sidebar and list render
// side by side with the empty-list message.
func TestApp_WideLayoutShowsBothPanes(t *testing.T) {
	app := createTestApp(t, 120, 30)

	out := app.View()
	for _, want := range []string{
		"taskboard",
		"PROJECTS",
		"Work",
		"Personal",
		"Health",
		"Study",
		"1 All",
		"4 Completed",
		"0 done",
		"0%",
		view.EmptyMessage("All"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestApp_AddTask(t *testing.T) {
	app := createTestApp(t, 120, 30)

	send(app, "a")
	if !app.taskPane.IsAdding() {
		t.Fatal("expected add mode after 'a'")
	}
	typeText(app, "Call mom #personal !high")
	send(app, "tab")
	typeText(app, "2026-03-12")
	press(t, app, "enter")

	if app.taskPane.IsAdding() {
		t.Error("add mode should close after enter")
	}
	tasks := app.board.store.ListTasks()
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Project != "personal" || got.Priority != storage.PriorityHigh || got.DueDate != "2026-03-12" {
		t.Errorf("task = %+v", got)
	}
	if app.status != "Added to #personal" || app.statusErr {
		t.Errorf("status = %q (err=%v)", app.status, app.statusErr)
	}

	out := app.View()
	for _, want := range []string{"Call mom", "#personal", "Mar 12", "1 active"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(out, "!high") {
		t.Error("tags should be cleaned from the displayed text")
	}
}

func TestApp_AddTaskDefaultsDueToday(t *testing.T) {
	app := createTestApp(t, 120, 30)

	send(app, "a")
	typeText(app, "Stretch")
	press(t, app, "enter")

	if !strings.Contains(app.View(), "Due Today") {
		t.Error("expected a Due Today label")
	}
}

func TestApp_AddTaskRejectsBadDate(t *testing.T) {
	app := createTestApp(t, 120, 30)

	send(app, "a")
	typeText(app, "Stretch")
	send(app, "tab")
	typeText(app, "soon")
	press(t, app, "enter")

	if got := len(app.board.store.ListTasks()); got != 0 {
		t.Errorf("len(tasks) = %d, want 0", got)
	}
	if !app.statusErr || !strings.Contains(app.status, "due date") {
		t.Errorf("status = %q (err=%v), want due date error", app.status, app.statusErr)
	}
}

func TestApp_AddTaskEmptyCancels(t *testing.T) {
	app := createTestApp(t, 120, 30)

	send(app, "a")
	press(t, app, "enter")
	if app.taskPane.IsAdding() {
		t.Error("add mode should close")
	}

	send(app, "a")
	typeText(app, "Never mind")
	press(t, app, "esc")
	if got := len(app.board.store.ListTasks()); got != 0 {
		t.Errorf("len(tasks) = %d, want 0", got)
	}
}

func TestApp_Toggle(t *testing.T) {
	app := createTestApp(t, 120, 30)
	task, err := app.board.OnCreateTask("Write report #work", "")
	if err != nil {
		t.Fatalf("OnCreateTask() error = %v", err)
	}
	reload(t, app)

	completed := func() bool {
		got, _ := app.board.store.Task(task.ID)
		return got.Completed
	}

	press(t, app, "d")
	if !completed() {
		t.Fatal("task should be completed after 'd'")
	}
	if !strings.Contains(app.View(), "100%") {
		t.Error("progress should show 100%")
	}

	press(t, app, "d")
	if completed() {
		t.Error("task should be active after a second 'd'")
	}
	if strings.Contains(app.View(), "100%") {
		t.Error("progress should no longer show 100%")
	}
}

func TestApp_DeleteConfirm(t *testing.T) {
	app := createTestApp(t, 120, 30)
	for _, text := range []string{"one", "two", "three"} {
		if _, err := app.board.OnCreateTask(text, ""); err != nil {
			t.Fatalf("OnCreateTask(%q) error = %v", text, err)
		}
	}
	reload(t, app)
	press(t, app, "j")

	press(t, app, "x")
	if app.confirmDel == nil {
		t.Fatal("expected a confirmation")
	}
	if out := app.View(); !strings.Contains(out, "Delete task?") || !strings.Contains(out, "two") {
		t.Errorf("confirmation view = %q", out)
	}

	press(t, app, "n")
	if app.confirmDel != nil || len(app.board.store.ListTasks()) != 3 {
		t.Fatal("cancel should keep the task")
	}

	press(t, app, "x", "y")
	tasks := app.board.store.ListTasks()
	if len(tasks) != 2 || tasks[0].Text != "one" || tasks[1].Text != "three" {
		t.Fatalf("tasks after delete = %+v, want one and three", tasks)
	}
}

func TestApp_DeleteConfirmTruncatesLongText(t *testing.T) {
	app := createTestApp(t, 120, 30)
	long := strings.Repeat("Renew the insurance paperwork ", 4) + "#work"
	if _, err := app.board.OnCreateTask(long, ""); err != nil {
		t.Fatalf("OnCreateTask() error = %v", err)
	}
	reload(t, app)

	press(t, app, "x")
	if app.confirmDel == nil {
		t.Fatal("expected a confirmation")
	}
	body := app.confirmDel.body
	if runewidth.StringWidth(body) != 60 || !strings.HasSuffix(body, "..") {
		t.Errorf("confirmation body = %q, want 60 columns ending in ..", body)
	}
	if !strings.HasPrefix(body, "Renew the insurance paperwork") {
		t.Errorf("confirmation body = %q", body)
	}
}

func TestApp_DeleteWithoutConfirmation(t *testing.T) {
	app := createTestApp(t, 120, 30)
	app.config.ConfirmDeletions = false
	if _, err := app.board.OnCreateTask("gone", ""); err != nil {
		t.Fatalf("OnCreateTask() error = %v", err)
	}
	reload(t, app)

	press(t, app, "x")
	if got := len(app.board.store.ListTasks()); got != 0 {
		t.Errorf("len(tasks) = %d, want 0", got)
	}
}

func TestApp_DeleteEmptyList(t *testing.T) {
	app := createTestApp(t, 120, 30)

	press(t, app, "x")
	if app.confirmDel != nil {
		t.Error("no confirmation expected on an empty list")
	}
	if app.status != "No task selected" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_FilterKeys(t *testing.T) {
	app := createTestApp(t, 120, 30)
	done, _ := app.board.OnCreateTask("finished", "")
	app.board.OnCreateTask("pending", "")
	app.board.OnCreateTask("later", "2026-04-01")
	app.board.OnToggle(done.ID)
	reload(t, app)

	tests := []struct {
		key  string
		want []string
	}{
		{"4", []string{"finished"}},
		{"2", []string{"pending", "later"}},
		{"3", []string{"pending"}},
		{"1", []string{"finished", "pending", "later"}},
	}
	for _, tc := range tests {
		press(t, app, tc.key)
		var got []string
		for _, item := range app.taskPane.items {
			got = append(got, item.DisplayText)
		}
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Errorf("key %s: items = %v, want %v", tc.key, got, tc.want)
		}
	}

	// Metrics describe the whole project whatever the filter.
	press(t, app, "4")
	if m := app.taskPane.Metrics(); m.Completed != 1 || m.Active != 2 || m.CompletionRate != 33 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestApp_SelectProjectResetsFilter(t *testing.T) {
	app := createTestApp(t, 120, 30)
	app.board.OnCreateTask("Ship release #work", "")
	app.board.OnCreateTask("Buy milk #personal", "")
	reload(t, app)

	press(t, app, "4")
	press(t, app, "tab")
	if app.activePane != PaneProjects {
		t.Fatal("expected the projects pane")
	}

	// Projects: all, work, personal, health, study
	press(t, app, "j", "enter")

	sel := app.board.Selection()
	if sel.Project != "work" || sel.Filter != view.FilterAll {
		t.Errorf("selection = %+v, want work/all", sel)
	}
	if app.taskPane.title != "Work" {
		t.Errorf("title = %q, want Work", app.taskPane.title)
	}
	if len(app.taskPane.items) != 1 || app.taskPane.items[0].DisplayText != "Ship release" {
		t.Errorf("items = %+v", app.taskPane.items)
	}

	// An empty project names itself in the message.
	press(t, app, "j", "j", "enter")
	if !strings.Contains(app.View(), view.EmptyMessage("Health")) {
		t.Error("expected the empty message for Health")
	}
}

func TestApp_AddProject(t *testing.T) {
	app := createTestApp(t, 120, 30)
	press(t, app, "tab")

	send(app, "p")
	if !app.projectPane.IsAdding() {
		t.Fatal("expected project input after 'p'")
	}
	typeText(app, "Garden")
	press(t, app, "enter")

	if app.status != "Project added: Garden" {
		t.Errorf("status = %q", app.status)
	}
	if !strings.Contains(app.View(), "Garden") {
		t.Error("sidebar should list Garden")
	}

	send(app, "p")
	typeText(app, "work")
	press(t, app, "enter")
	if !app.statusErr || !strings.Contains(app.status, "already exists") {
		t.Errorf("status = %q (err=%v), want duplicate error", app.status, app.statusErr)
	}
}

func TestApp_ThemeToggle(t *testing.T) {
	app := createTestApp(t, 120, 30)
	if app.styles.Mode != storage.ThemeLight {
		t.Fatalf("initial mode = %q, want light", app.styles.Mode)
	}

	press(t, app, "T")
	if app.styles.Mode != storage.ThemeDark {
		t.Errorf("mode = %q, want dark", app.styles.Mode)
	}
	if theme, _ := app.board.store.Theme(); theme != storage.ThemeDark {
		t.Errorf("stored theme = %q, want dark", theme)
	}
	if app.taskPane.styles != app.styles || app.projectPane.styles != app.styles {
		t.Error("panes should share the new styles")
	}

	// A reload keeps the stored theme.
	reload(t, app)
	if app.styles.Mode != storage.ThemeDark {
		t.Errorf("mode after reload = %q, want dark", app.styles.Mode)
	}
}

func TestApp_SeedSamples(t *testing.T) {
	app := createTestApp(t, 120, 30)

	drain(t, app, seedSamplesCmd(app.board))

	if len(app.board.store.ListTasks()) == 0 {
		t.Fatal("expected sample tasks")
	}
	if !strings.Contains(app.status, "sample") {
		t.Errorf("status = %q", app.status)
	}
	if len(app.taskPane.items) == 0 {
		t.Error("samples should be loaded into the list")
	}
}

func TestApp_PersistenceFailureKeepsChange(t *testing.T) {
	setupTest(t)
	store, err := storage.New(failingKV{storage.NewMemKV()}, storage.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	board := NewBoard(store, view.NewEngine(view.WithClock(func() time.Time { return testNow })), zerolog.Nop())
	app := NewApp(board, createTestStyles(), nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	send(app, "a")
	typeText(app, "Unsaved")
	press(t, app, "enter")

	if !app.statusErr || !strings.Contains(app.status, "disk full") {
		t.Errorf("status = %q (err=%v), want persistence error", app.status, app.statusErr)
	}
	if len(app.taskPane.items) != 1 {
		t.Errorf("items = %d, want the unsaved task kept", len(app.taskPane.items))
	}
}

func TestApp_StatusExpires(t *testing.T) {
	app := createTestApp(t, 120, 30)

	app.SetStatus("hello", false)
	app.Update(tickMsg(testNow.Add(time.Second)))
	if app.status != "hello" {
		t.Fatal("status cleared too early")
	}
	app.Update(tickMsg(testNow.Add(6 * time.Second)))
	if app.status != "" {
		t.Errorf("status = %q, want cleared", app.status)
	}
}

func TestApp_QuitShowsSummary(t *testing.T) {
	app := createTestApp(t, 120, 30)
	task, _ := app.board.OnCreateTask("one", "")
	app.board.OnCreateTask("two", "")
	app.board.OnToggle(task.ID)
	reload(t, app)

	_, cmd := app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if out := app.View(); !strings.Contains(out, "See you later") || !strings.Contains(out, "1/2 done (50%)") {
		t.Errorf("goodbye view = %q", out)
	}
}

func TestApp_InputSwallowsGlobalKeys(t *testing.T) {
	app := createTestApp(t, 120, 30)

	send(app, "a")
	typeText(app, "q?T4")
	if app.quitting || app.showHelp || app.styles.Mode != storage.ThemeLight {
		t.Error("global keys must not fire while typing")
	}
	if got := app.taskPane.input.Value(); got != "q?T4" {
		t.Errorf("input = %q, want q?T4", got)
	}
}

func TestNewAppConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UX.ConfirmDeletions = false
	cfg.UX.NarrowLayoutThreshold = 100
	cfg.Keys.AddTask = "n"

	got := NewAppConfig(cfg)
	if got.ConfirmDeletions || got.NarrowLayoutThreshold != 100 || !got.SeedSamples {
		t.Errorf("NewAppConfig() = %+v", got)
	}
	if got.Keys.AddTask != "n" {
		t.Errorf("Keys.AddTask = %q, want n", got.Keys.AddTask)
	}
}
