package ui

import (
	"sync"

	"taskboard/internal/storage"
	"taskboard/internal/view"

	"github.com/rs/zerolog"
)

// Commands is what a presentation layer may ask of the core. The TUI and the
// CLI both drive the board through it.
type Commands interface {
	OnCreateTask(text, dueDate string) (storage.Task, error)
	OnToggle(id string) error
	OnDelete(id string) error
	OnProjectCreate(name string) (storage.Project, error)
	// OnSelectionChange switches project and/or filter. An empty argument
	// leaves that half of the selection alone; switching project resets the
	// filter before filter is applied.
	OnSelectionChange(project, filter string) view.Selection
	Snapshot() (Snapshot, error)
}

// Snapshot is a consistent read of everything a frame needs.
type Snapshot struct {
	Projects []storage.Project
	Title    string // display name of the selected project
	Theme    string
	Today    string // YYYY-MM-DD, for due date styling

	// ActiveCounts maps each project, and storage.AllProjects, to its
	// number of uncompleted tasks.
	ActiveCounts map[string]int
	view.Result
}

// Board implements Commands over a Store and a view Engine.
type Board struct {
	mu     sync.Mutex // guards engine
	store  *storage.Store
	engine *view.Engine
	log    zerolog.Logger
}

var _ Commands = (*Board)(nil)

// NewBoard wires a store and an engine together.
func NewBoard(store *storage.Store, engine *view.Engine, log zerolog.Logger) *Board {
	if engine == nil {
		engine = view.NewEngine()
	}
	return &Board{store: store, engine: engine, log: log}
}

func (b *Board) OnCreateTask(text, dueDate string) (storage.Task, error) {
	task, err := b.store.CreateTask(text, dueDate)
	if err != nil {
		b.log.Debug().Err(err).Msg("create task")
	}
	return task, err
}

func (b *Board) OnToggle(id string) error {
	return b.store.ToggleTask(id)
}

func (b *Board) OnDelete(id string) error {
	return b.store.DeleteTask(id)
}

func (b *Board) OnProjectCreate(name string) (storage.Project, error) {
	project, err := b.store.CreateProject(name)
	if err != nil {
		b.log.Debug().Err(err).Msg("create project")
	}
	return project, err
}

func (b *Board) OnSelectionChange(project, filter string) view.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()

	if project != "" {
		b.engine.SelectProject(project)
	}
	if filter != "" {
		b.engine.SelectFilter(filter)
	}
	return b.engine.Selection()
}

// Selection returns the current selection.
func (b *Board) Selection() view.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Selection()
}

// Snapshot reads projects, tasks and theme and derives the view. A
// persistence error from seeding the default projects is returned along
// with a usable snapshot.
func (b *Board) Snapshot() (Snapshot, error) {
	projects, err := b.store.ListProjects()
	tasks := b.store.ListTasks()
	theme, themeErr := b.store.Theme()
	if err == nil {
		err = themeErr
	}

	b.mu.Lock()
	result := b.engine.View(tasks)
	b.mu.Unlock()

	counts := make(map[string]int, len(projects))
	for _, t := range tasks {
		if !t.Completed {
			counts[t.Project]++
			counts[storage.AllProjects]++
		}
	}

	return Snapshot{
		Projects:     projects,
		Title:        view.DisplayName(result.Selection.Project),
		Theme:        theme,
		Today:        b.store.Today(),
		ActiveCounts: counts,
		Result:       result,
	}, err
}

// OverduePolicy reports how the engine decides a task is overdue.
func (b *Board) OverduePolicy() view.OverduePolicy {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Policy()
}

// Task looks a task up by id.
func (b *Board) Task(id string) (storage.Task, int, bool) {
	for i, t := range b.store.ListTasks() {
		if t.ID == id {
			return t, i, true
		}
	}
	return storage.Task{}, -1, false
}

// ToggleTheme flips between light and dark and stores the result.
func (b *Board) ToggleTheme() (string, error) {
	current, _ := b.store.Theme()
	next := storage.ThemeDark
	if current == storage.ThemeDark {
		next = storage.ThemeLight
	}
	return next, b.store.SetTheme(next)
}

// SeedSamples fills an empty board with example tasks.
func (b *Board) SeedSamples() (bool, error) {
	return b.store.SeedSampleTasks()
}
