package ui

import (
	"strings"
	"testing"

	"taskboard/internal/config"
	"taskboard/internal/view"
)

// loadedProjectPane returns a focused sidebar showing the board's projects.
func loadedProjectPane(t *testing.T, board *Board) *ProjectPane {
	t.Helper()
	pane := NewProjectPane(board, createTestStyles(), &config.KeysConfig{})
	pane.SetSize(24, 20)
	pane.SetFocused(true)
	snap, err := board.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	pane.SetSnapshot(snap)
	return pane
}

func TestProjectPaneView(t *testing.T) {
	setupTest(t)
	board := createTestBoard(t)
	board.OnCreateTask("a #work", "")
	board.OnCreateTask("b #work", "")
	done, _ := board.OnCreateTask("c #health", "")
	board.OnToggle(done.ID)

	out := loadedProjectPane(t, board).View()

	for _, want := range []string{"PROJECTS", "● All", "Work", "Personal", "Health", "Study"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q\n%s", want, out)
		}
	}

	// Active counts: all=2, work=2, health has none left
	lines := strings.Split(out, "\n")
	for _, line := range lines {
		if strings.Contains(line, "Work") && !strings.Contains(line, "2") {
			t.Errorf("Work line should show 2 active: %q", line)
		}
		if strings.Contains(line, "Health") && strings.ContainsAny(line, "0123456789") {
			t.Errorf("Health line should have no count: %q", line)
		}
	}
}

func TestProjectPane_SelectIgnoresCurrent(t *testing.T) {
	setupTest(t)
	pane := loadedProjectPane(t, createTestBoard(t))

	if cmd := pane.Update(keyMsg("enter")); cmd != nil {
		t.Error("opening the current project should do nothing")
	}

	pane.Update(keyMsg("j"))
	cmd := pane.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	msg := cmd().(boardLoadedMsg)
	if msg.snap.Selection != (view.Selection{Project: "work", Filter: view.FilterAll}) {
		t.Errorf("selection = %+v", msg.snap.Selection)
	}
	pane.SetSnapshot(msg.snap)
	if pane.current != "work" {
		t.Errorf("current = %q, want work", pane.current)
	}
}

func TestProjectPane_CursorFollowsSelectionOnFirstLoad(t *testing.T) {
	setupTest(t)
	board := createTestBoard(t)
	board.OnSelectionChange("health", "")

	pane := loadedProjectPane(t, board)
	if pane.cursor != 3 {
		t.Errorf("cursor = %d, want 3 (health)", pane.cursor)
	}
}

func TestProjectPane_AddProject(t *testing.T) {
	setupTest(t)
	board := createTestBoard(t)
	pane := loadedProjectPane(t, board)

	pane.Update(keyMsg("p"))
	if !pane.IsAdding() {
		t.Fatal("expected add mode")
	}
	for _, r := range "Reading" {
		pane.Update(keyMsg(string(r)))
	}
	msg, ok := pane.Update(keyMsg("enter"))().(projectCreatedMsg)
	if !ok || msg.err != nil || msg.project.Name != "reading" {
		t.Errorf("msg = %+v", msg)
	}
	if pane.IsAdding() {
		t.Error("add mode should close")
	}

	// Esc cancels without a command
	pane.Update(keyMsg("p"))
	pane.Update(keyMsg("x"))
	if cmd := pane.Update(keyMsg("esc")); cmd != nil {
		t.Error("cancel should not create a project")
	}
}

func TestProjectPane_Navigation(t *testing.T) {
	setupTest(t)
	pane := loadedProjectPane(t, createTestBoard(t))

	pane.Update(keyMsg("G"))
	if pane.cursor != 4 {
		t.Errorf("cursor = %d after G, want 4", pane.cursor)
	}
	pane.Update(keyMsg("j"))
	if pane.cursor != 4 {
		t.Errorf("cursor = %d past bottom, want 4", pane.cursor)
	}
	pane.Update(keyMsg("g"))
	if pane.cursor != 0 {
		t.Errorf("cursor = %d after g, want 0", pane.cursor)
	}
}
