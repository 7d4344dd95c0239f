// Package storage owns the canonical task and project collections. A Store
// keeps them in memory and rewrites the whole collection to its KV on every
// mutation.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"taskboard/internal/tags"

	"github.com/rs/zerolog"
)

// Theme values stored under KeyTheme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const maxIDAttempts = 4

// Store is the task and project store.
//
// When a KV write fails, the mutation stays applied in memory and the
// method returns a *PersistenceError. Validation failures return a
// *ValidationError before anything is changed.
type Store struct {
	mu       sync.Mutex
	kv       KV
	tasks    []Task
	projects []Project

	now   func() time.Time
	newID func() (string, error)
	log   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for default due dates and samples.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithIDFunc overrides the id generator.
func WithIDFunc(fn func() (string, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New loads tasks and projects from kv. Absent keys load as empty
// collections.
func New(kv KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: newID,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(KeyTasks, &s.tasks); err != nil {
		return nil, err
	}
	if err := s.load(KeyProjects, &s.projects); err != nil {
		return nil, err
	}
	if s.tasks == nil {
		s.tasks = []Task{}
	}
	if s.projects == nil {
		s.projects = []Project{}
	}
	s.log.Debug().Int("tasks", len(s.tasks)).Int("projects", len(s.projects)).Msg("store loaded")
	return s, nil
}

func (s *Store) load(key string, v any) error {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}
	return s.put(key, string(data))
}

func (s *Store) put(key, value string) error {
	if err := s.kv.Set(key, value); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("persist failed")
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}

// Today returns the current local date as YYYY-MM-DD.
func (s *Store) Today() string {
	return s.now().Format(DateLayout)
}

// Now returns the current time according to the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// ============================================================================
// Tasks
// ============================================================================

// CreateTask parses rawText for #project and !priority tags and appends a
// new, uncompleted task. An empty dueDate means today.
//
// On a *PersistenceError the returned task is valid and already part of the
// in-memory collection.
func (s *Store) CreateTask(rawText, dueDate string) (Task, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Task{}, invalid("task text", "must not be empty")
	}
	due := strings.TrimSpace(dueDate)
	if due != "" {
		if _, err := time.Parse(DateLayout, due); err != nil {
			return Task{}, invalid("due date", fmt.Sprintf("%q is not a YYYY-MM-DD date", due))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seedErr := s.ensureProjects()

	id, err := s.uniqueID()
	if err != nil {
		return Task{}, err
	}
	if due == "" {
		due = s.now().Format(DateLayout)
	}

	task := Task{
		ID:        id,
		Text:      text,
		Completed: false,
		Project:   tags.ExtractProject(text, s.projectNames()),
		Priority:  Priority(tags.ExtractPriority(text)),
		DueDate:   due,
	}
	s.tasks = append(s.tasks, task)
	s.log.Debug().Str("id", task.ID).Str("project", task.Project).Str("priority", string(task.Priority)).Msg("task created")

	if err := s.save(KeyTasks, s.tasks); err != nil {
		return task, err
	}
	return task, seedErr
}

// uniqueID draws ids until one is unused. A generator that keeps repeating
// itself gets a numeric suffix.
func (s *Store) uniqueID() (string, error) {
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		next, err := s.newID()
		if err != nil {
			return "", err
		}
		id = next
		if s.indexOf(id) < 0 {
			return id, nil
		}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if s.indexOf(candidate) < 0 {
			return candidate, nil
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleTask flips the completed flag of the task with the given id. An
// unknown id is a no-op and writes nothing.
func (s *Store) ToggleTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.log.Debug().Str("id", id).Bool("completed", s.tasks[i].Completed).Msg("task toggled")
	return s.save(KeyTasks, s.tasks)
}

// DeleteTask removes the task with the given id. An unknown id is a no-op
// and writes nothing.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.log.Debug().Str("id", id).Msg("task deleted")
	return s.save(KeyTasks, s.tasks)
}

// ListTasks returns a copy of all tasks in insertion order.
func (s *Store) ListTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// SeedSampleTasks fills an empty task list with a few example tasks and
// reports whether it did. It never touches a non-empty list.
func (s *Store) SeedSampleTasks() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) > 0 {
		return false, nil
	}
	seedErr := s.ensureProjects()
	s.tasks = sampleTasks(s.now())
	s.log.Info().Int("tasks", len(s.tasks)).Msg("sample tasks seeded")
	if err := s.save(KeyTasks, s.tasks); err != nil {
		return true, err
	}
	return true, seedErr
}

// ============================================================================
// Projects
// ============================================================================

// ensureProjects seeds the default projects into an empty list.
func (s *Store) ensureProjects() error {
	if len(s.projects) > 0 {
		return nil
	}
	s.projects = DefaultProjects()
	s.log.Debug().Msg("default projects seeded")
	return s.save(KeyProjects, s.projects)
}

func (s *Store) projectNames() []string {
	names := make([]string, len(s.projects))
	for i, p := range s.projects {
		names[i] = p.Name
	}
	return names
}

// CreateProject adds a project named after rawName, trimmed and
// lower-cased. The name must be non-empty, at most 15 characters, unused,
// and not "all".
func (s *Store) CreateProject(rawName string) (Project, error) {
	name := strings.ToLower(strings.TrimSpace(rawName))
	switch {
	case name == "":
		return Project{}, invalid("project name", "must not be empty")
	case name == AllProjects:
		return Project{}, invalid("project name", fmt.Sprintf("%q is reserved", AllProjects))
	case utf8.RuneCountInString(name) > maxProjectNameLen:
		return Project{}, invalid("project name", fmt.Sprintf("too long (max %d characters)", maxProjectNameLen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seedErr := s.ensureProjects()
	for _, p := range s.projects {
		if p.Name == name {
			return Project{}, invalid("project name", fmt.Sprintf("%q already exists", name))
		}
	}

	project := Project{Name: name, Icon: DefaultProjectIcon}
	s.projects = append(s.projects, project)
	s.log.Debug().Str("project", name).Msg("project created")

	if err := s.save(KeyProjects, s.projects); err != nil {
		return project, err
	}
	return project, seedErr
}

// ListProjects returns the projects in insertion order, seeding the
// defaults the first time the list is found empty.
func (s *Store) ListProjects() ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ensureProjects()
	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out, err
}

// ProjectNames returns the names of all projects in insertion order.
func (s *Store) ProjectNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectNames()
}

// ============================================================================
// Theme
// ============================================================================

// Theme returns the stored theme, ThemeLight when none is set.
func (s *Store) Theme() (string, error) {
	raw, ok, err := s.kv.Get(KeyTheme)
	if err != nil {
		return ThemeLight, fmt.Errorf("load %s: %w", KeyTheme, err)
	}
	if !ok {
		return ThemeLight, nil
	}
	// The value is stored bare; JSON-quoted values come from older stores.
	theme := strings.TrimSpace(raw)
	var quoted string
	if err := json.Unmarshal([]byte(theme), &quoted); err == nil {
		theme = quoted
	}
	if theme != ThemeDark {
		return ThemeLight, nil
	}
	return ThemeDark, nil
}

// SetTheme stores the theme; only ThemeLight and ThemeDark are accepted.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return invalid("theme", fmt.Sprintf("%q is not light or dark", theme))
	}
	return s.put(KeyTheme, theme)
}

// EnsureTheme stores theme if no theme has been stored yet. An empty or
// unknown theme is ignored.
func (s *Store) EnsureTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return nil
	}
	_, ok, err := s.kv.Get(KeyTheme)
	if err != nil {
		return fmt.Errorf("load %s: %w", KeyTheme, err)
	}
	if ok {
		return nil
	}
	return s.put(KeyTheme, theme)
}
