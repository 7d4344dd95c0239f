package ui

import (
	"errors"
	"testing"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors so substring assertions see plain text.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates a Store over an in-memory KV with a fixed clock.
func createTestStorage(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(storage.NewMemKV(), storage.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	return store
}

// createTestBoard wraps a fresh store in a Board sharing the same clock.
func createTestBoard(t *testing.T) *Board {
	t.Helper()
	engine := view.NewEngine(view.WithClock(func() time.Time { return testNow }))
	return NewBoard(createTestStorage(t), engine, zerolog.Nop())
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{}, storage.ThemeLight)
}

// createTestApp builds an App over a fresh board, sizes it, and applies
// one snapshot so panes are populated without running the event loop.
func createTestApp(t *testing.T, width, height int) *App {
	t.Helper()
	setupTest(t)
	app := NewApp(createTestBoard(t), createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		ConfirmDeletions:      true,
		NarrowLayoutThreshold: 80,
	})
	app.now = func() time.Time { return testNow }
	app.Update(tea.WindowSizeMsg{Width: width, Height: height})
	reload(t, app)
	return app
}

// reload applies a fresh snapshot of the app's board.
func reload(t *testing.T, app *App) {
	t.Helper()
	snap, err := app.board.Snapshot()
	app.Update(boardLoadedMsg{snap: snap, err: err})
}

// drain runs cmd and feeds its message back into the app, following the
// reload chain a board operation triggers. Only board commands are run;
// timers and cursor blinks would block.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		switch msg.(type) {
		case boardLoadedMsg, samplesSeededMsg, taskCreatedMsg, taskToggledMsg,
			taskDeletedMsg, projectCreatedMsg, themeToggledMsg:
		default:
			return
		}
		_, cmd = app.Update(msg)
	}
}

// press sends a key to the app and drains the resulting command.
func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(keyMsg(k))
		drain(t, app, cmd)
	}
}

// keyMsg builds the KeyMsg bubbletea would deliver for k.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// typeText sends each rune of s as a key press.
func typeText(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// send delivers a key without running the returned command. Use it for
// keys that focus an input, whose cursor blink command would block.
func send(app *App, k string) {
	app.Update(keyMsg(k))
}

// failingKV accepts reads and rejects every write.
type failingKV struct {
	*storage.MemKV
}

func (failingKV) Set(string, string) error {
	return errFailingKV
}

var errFailingKV = errors.New("disk full")
