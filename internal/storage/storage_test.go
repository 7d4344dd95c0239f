package storage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

// createTestStore creates a Store over an empty MemKV with a fixed clock.
func createTestStore(t *testing.T) (*Store, *MemKV) {
	t.Helper()
	kv := NewMemKV()
	store, err := New(kv, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store, kv
}

// =============================================================================
// Task Tests
// =============================================================================

func TestCreateTask_EndToEnd(t *testing.T) {
	store, kv := createTestStore(t)

	if _, err := store.CreateTask("Buy milk #personal !low", ""); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	tasks := store.ListTasks()
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Project != "personal" {
		t.Errorf("Project = %q, want personal", got.Project)
	}
	if got.Priority != PriorityLow {
		t.Errorf("Priority = %q, want low", got.Priority)
	}
	if got.DueDate != "2026-03-10" {
		t.Errorf("DueDate = %q, want 2026-03-10", got.DueDate)
	}
	if got.Completed {
		t.Error("Completed = true, want false")
	}
	if got.Text != "Buy milk #personal !low" {
		t.Errorf("Text = %q, want raw text with tags", got.Text)
	}

	// Verify task was persisted
	raw, ok, _ := kv.Get(KeyTasks)
	if !ok {
		t.Fatal("tasks key not written")
	}
	var persisted []Task
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted tasks are not JSON: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != got.ID {
		t.Errorf("persisted = %+v, want the created task", persisted)
	}
}

func TestCreateTask_ProjectAndPriority(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantProject  string
		wantPriority Priority
	}{
		{"work tag", "Send report #work !high", "work", PriorityHigh},
		{"unknown project", "Bake bread #cooking", "personal", PriorityMedium},
		{"no tags", "Call mom", "personal", PriorityMedium},
		{"unknown priority", "Stretch #health !urgent", "health", PriorityMedium},
		{"mixed case", "Read #STUDY !Low", "study", PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := createTestStore(t)
			task, err := store.CreateTask(tt.text, "")
			if err != nil {
				t.Fatalf("CreateTask() error = %v", err)
			}
			if task.Project != tt.wantProject {
				t.Errorf("Project = %q, want %q", task.Project, tt.wantProject)
			}
			if task.Priority != tt.wantPriority {
				t.Errorf("Priority = %q, want %q", task.Priority, tt.wantPriority)
			}
		})
	}
}

func TestCreateTask_CustomProjectTag(t *testing.T) {
	store, _ := createTestStore(t)
	if _, err := store.CreateProject("Cooking"); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	task, err := store.CreateTask("Bake bread #cooking", "")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Project != "cooking" {
		t.Errorf("Project = %q, want cooking", task.Project)
	}
}

func TestCreateTask_DueDate(t *testing.T) {
	store, _ := createTestStore(t)

	task, err := store.CreateTask("File taxes", " 2026-04-15 ")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.DueDate != "2026-04-15" {
		t.Errorf("DueDate = %q, want 2026-04-15", task.DueDate)
	}

	_, err = store.CreateTask("File taxes", "15/04/2026")
	if !IsValidation(err) {
		t.Fatalf("CreateTask() error = %v, want ValidationError", err)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	store, kv := createTestStore(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := store.CreateTask(text, "")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("CreateTask(%q) error = %v, want *ValidationError", text, err)
		}
	}
	if n := len(store.ListTasks()); n != 0 {
		t.Errorf("len(tasks) = %d, want 0", n)
	}
	if kv.Writes() != 0 {
		t.Errorf("kv writes = %d, want 0 after rejected input", kv.Writes())
	}
}

func TestCreateTask_TrimsText(t *testing.T) {
	store, _ := createTestStore(t)
	task, _ := store.CreateTask("  Water plants  ", "")
	if task.Text != "Water plants" {
		t.Errorf("Text = %q, want trimmed text", task.Text)
	}
}

func TestCreateTask_RapidIDsAreDistinct(t *testing.T) {
	store, _ := createTestStore(t)

	const n = 500
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		task, err := store.CreateTask("Task", "")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %q after %d creations", task.ID, i)
		}
		seen[task.ID] = true
	}
}

func TestCreateTask_RepeatingIDSource(t *testing.T) {
	kv := NewMemKV()
	store, err := New(kv, WithIDFunc(func() (string, error) { return "1700000000000", nil }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		task, err := store.CreateTask("Same instant", "")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		ids = append(ids, task.ID)
	}
	want := []string{"1700000000000", "1700000000000-1", "1700000000000-2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestCreateTask_IDCarriesCreationTime(t *testing.T) {
	store, _ := createTestStore(t)
	before := time.Now().Add(-time.Second)
	task, _ := store.CreateTask("Timestamped", "")

	created, ok := CreatedAt(task.ID)
	if !ok {
		t.Fatalf("CreatedAt(%q) reported no timestamp", task.ID)
	}
	if created.Before(before) || created.After(time.Now().Add(time.Second)) {
		t.Errorf("CreatedAt = %v, want close to now", created)
	}
}

func TestToggleTask(t *testing.T) {
	store, _ := createTestStore(t)
	task, _ := store.CreateTask("Test task #work !high", "2026-05-01")

	if err := store.ToggleTask(task.ID); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	got, _ := store.Task(task.ID)
	if !got.Completed {
		t.Fatal("Completed = false after one toggle")
	}

	if err := store.ToggleTask(task.ID); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	got, _ = store.Task(task.ID)
	if got != task {
		t.Errorf("after two toggles task = %+v, want %+v", got, task)
	}
}

func TestToggleTask_NotFound(t *testing.T) {
	store, kv := createTestStore(t)
	store.CreateTask("Keep me", "")
	before := store.ListTasks()
	writes := kv.Writes()

	if err := store.ToggleTask("nonexistent"); err != nil {
		t.Fatalf("ToggleTask() error = %v, want nil", err)
	}
	after := store.ListTasks()
	if len(after) != 1 || after[0] != before[0] {
		t.Errorf("tasks changed: %+v", after)
	}
	if kv.Writes() != writes {
		t.Error("no-op toggle wrote to the KV")
	}
}

func TestDeleteTask(t *testing.T) {
	store, _ := createTestStore(t)

	task1, _ := store.CreateTask("Task 1", "")
	task2, _ := store.CreateTask("Task 2", "")
	task3, _ := store.CreateTask("Task 3", "")

	if err := store.DeleteTask(task2.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}

	tasks := store.ListTasks()
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if tasks[0].ID != task1.ID || tasks[1].ID != task3.ID {
		t.Errorf("remaining ids = %q, %q; want %q, %q", tasks[0].ID, tasks[1].ID, task1.ID, task3.ID)
	}
	for _, task := range tasks {
		if task.ID == task2.ID {
			t.Error("deleted task still listed")
		}
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	store, _ := createTestStore(t)
	store.CreateTask("Task 1", "")

	if err := store.DeleteTask("nonexistent"); err != nil {
		t.Fatalf("DeleteTask() error = %v, want nil", err)
	}
	if n := len(store.ListTasks()); n != 1 {
		t.Errorf("len(tasks) = %d, want 1", n)
	}
}

func TestListTasks_ReturnsCopy(t *testing.T) {
	store, _ := createTestStore(t)
	store.CreateTask("Original", "")

	tasks := store.ListTasks()
	tasks[0].Text = "Changed"

	if got := store.ListTasks()[0].Text; got != "Original" {
		t.Errorf("store text = %q, want Original", got)
	}
}

// =============================================================================
// Project Tests
// =============================================================================

func TestListProjects_SeedsDefaults(t *testing.T) {
	store, kv := createTestStore(t)

	projects, err := store.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	want := []string{"all", "work", "personal", "health", "study"}
	if len(projects) != len(want) {
		t.Fatalf("len(projects) = %d, want %d", len(projects), len(want))
	}
	for i, name := range want {
		if projects[i].Name != name {
			t.Errorf("projects[%d] = %q, want %q", i, projects[i].Name, name)
		}
		if projects[i].Icon == "" {
			t.Errorf("projects[%d] has no icon", i)
		}
	}
	if _, ok, _ := kv.Get(KeyProjects); !ok {
		t.Error("seeded projects were not persisted")
	}

	// A second call does not re-seed.
	writes := kv.Writes()
	store.ListProjects()
	if kv.Writes() != writes {
		t.Error("second ListProjects() wrote to the KV")
	}
}

func TestListProjects_KeepsExisting(t *testing.T) {
	kv := NewMemKV()
	kv.Set(KeyProjects, `[{"name":"garden","icon":"x"}]`)
	store, err := New(kv)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	projects, _ := store.ListProjects()
	if len(projects) != 1 || projects[0].Name != "garden" {
		t.Errorf("projects = %+v, want only garden", projects)
	}
}

func TestCreateProject(t *testing.T) {
	store, _ := createTestStore(t)

	project, err := store.CreateProject("  Cooking ")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Name != "cooking" {
		t.Errorf("Name = %q, want cooking", project.Name)
	}
	if project.Icon != DefaultProjectIcon {
		t.Errorf("Icon = %q, want %q", project.Icon, DefaultProjectIcon)
	}

	projects, _ := store.ListProjects()
	if last := projects[len(projects)-1]; last != project {
		t.Errorf("last project = %+v, want %+v", last, project)
	}
}

func TestCreateProject_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"reserved", "all"},
		{"reserved upper case", " ALL "},
		{"duplicate default", "work"},
		{"duplicate mixed case", "Health"},
		{"too long", strings.Repeat("x", 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := createTestStore(t)
			before, _ := store.ListProjects()

			_, err := store.CreateProject(tt.input)
			if !IsValidation(err) {
				t.Fatalf("CreateProject(%q) error = %v, want ValidationError", tt.input, err)
			}

			after, _ := store.ListProjects()
			if len(after) != len(before) {
				t.Errorf("len(projects) = %d, want %d", len(after), len(before))
			}
		})
	}
}

func TestCreateProject_MaxLength(t *testing.T) {
	store, _ := createTestStore(t)
	if _, err := store.CreateProject(strings.Repeat("x", 15)); err != nil {
		t.Fatalf("CreateProject(15 chars) error = %v", err)
	}
	if _, err := store.CreateProject(strings.Repeat("é", 15)); err != nil {
		t.Fatalf("CreateProject(15 runes) error = %v", err)
	}
}

// =============================================================================
// Persistence
// =============================================================================

func TestStore_ReloadsFromKV(t *testing.T) {
	kv := NewMemKV()
	store, _ := New(kv)
	task, _ := store.CreateTask("Persist me #work", "2026-01-02")
	store.ToggleTask(task.ID)
	store.CreateProject("garden")

	reloaded, err := New(kv)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tasks := reloaded.ListTasks()
	if len(tasks) != 1 || tasks[0] != (Task{ID: task.ID, Text: task.Text, Completed: true, Project: "work", Priority: PriorityMedium, DueDate: "2026-01-02"}) {
		t.Errorf("reloaded tasks = %+v", tasks)
	}
	names := reloaded.ProjectNames()
	if names[len(names)-1] != "garden" {
		t.Errorf("reloaded projects = %v, want garden last", names)
	}
}

func TestStore_LegacyPayload(t *testing.T) {
	kv := NewMemKV()
	kv.Set(KeyTasks, `[{"id":"1700000000000","text":"Old task","completed":false,"extra":1},
		{"id":"1700000000001","text":"Older","completed":true,"project":"work","priority":"urgent","dueDate":"2023-11-14"}]`)

	store, err := New(kv)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tasks := store.ListTasks()
	if tasks[0].Project != DefaultProject || tasks[0].Priority != PriorityMedium {
		t.Errorf("defaults not applied: %+v", tasks[0])
	}
	if tasks[1].Priority != PriorityMedium || tasks[1].Project != "work" {
		t.Errorf("task 1 = %+v", tasks[1])
	}
}

func TestStore_NumericLegacyIDs(t *testing.T) {
	kv := NewMemKV()
	kv.Set(KeyTasks, `[{"id":1700000000000,"text":"From the old app","completed":false,"project":"work","priority":"high","dueDate":"2023-11-14"}]`)

	store, err := New(kv)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	task, ok := store.Task("1700000000000")
	if !ok {
		t.Fatalf("numeric id not loaded: %+v", store.ListTasks())
	}
	if created, ok := CreatedAt(task.ID); !ok || created.UnixMilli() != 1700000000000 {
		t.Errorf("CreatedAt(%q) = %v, %v", task.ID, created, ok)
	}

	// Toggling rewrites the list with string ids.
	if err := store.ToggleTask(task.ID); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	raw, _, _ := kv.Get(KeyTasks)
	if !strings.Contains(raw, `"id":"1700000000000"`) {
		t.Errorf("stored tasks = %s", raw)
	}

	kv.Set(KeyTasks, `[{"id":true,"text":"bad"}]`)
	if _, err := New(kv); err == nil {
		t.Error("New() accepted a boolean id")
	}
}

func TestStore_NullAndEmptyValues(t *testing.T) {
	kv := NewMemKV()
	kv.Set(KeyTasks, "null")
	kv.Set(KeyProjects, "")
	store, err := New(kv)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tasks := store.ListTasks(); tasks == nil || len(tasks) != 0 {
		t.Errorf("ListTasks() = %#v, want empty non-nil", tasks)
	}
}

func TestStore_CorruptPayload(t *testing.T) {
	kv := NewMemKV()
	kv.Set(KeyTasks, "{not json")
	if _, err := New(kv); err == nil {
		t.Fatal("New() expected error for corrupt tasks value")
	}
}

func TestStore_PersistenceFailureKeepsMutation(t *testing.T) {
	store, kv := createTestStore(t)
	task, _ := store.CreateTask("Before failure", "")

	kv.FailWrites = errors.New("quota exceeded")

	created, err := store.CreateTask("During failure", "")
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("CreateTask() error = %v, want *PersistenceError", err)
	}
	if pe.Key != KeyTasks {
		t.Errorf("PersistenceError.Key = %q, want %q", pe.Key, KeyTasks)
	}
	if !errors.Is(err, kv.FailWrites) {
		t.Error("PersistenceError does not wrap the KV error")
	}
	if created.ID == "" {
		t.Error("created task not returned alongside PersistenceError")
	}

	if err := store.ToggleTask(task.ID); !IsPersistence(err) {
		t.Fatalf("ToggleTask() error = %v, want PersistenceError", err)
	}
	if err := store.DeleteTask(created.ID); !IsPersistence(err) {
		t.Fatalf("DeleteTask() error = %v, want PersistenceError", err)
	}
	if _, err := store.CreateProject("garden"); !IsPersistence(err) {
		t.Fatalf("CreateProject() error = %v, want PersistenceError", err)
	}

	tasks := store.ListTasks()
	if len(tasks) != 1 || !tasks[0].Completed {
		t.Errorf("in-memory state = %+v, want toggle kept and new task deleted", tasks)
	}
	if names := store.ProjectNames(); names[len(names)-1] != "garden" {
		t.Errorf("project list = %v, want garden kept in memory", names)
	}

	// The durable copy still has the state from before the failure.
	raw, _, _ := kv.Get(KeyTasks)
	var persisted []Task
	json.Unmarshal([]byte(raw), &persisted)
	if len(persisted) != 1 || persisted[0].Completed {
		t.Errorf("persisted = %+v, want the pre-failure snapshot", persisted)
	}
}

func TestStore_ValidationDoesNotPersist(t *testing.T) {
	store, kv := createTestStore(t)
	store.ListProjects()
	writes := kv.Writes()

	store.CreateProject("all")
	store.CreateTask(" ", "")

	if kv.Writes() != writes {
		t.Errorf("writes = %d, want %d", kv.Writes(), writes)
	}
}

// =============================================================================
// Samples and Theme
// =============================================================================

func TestSeedSampleTasks(t *testing.T) {
	store, _ := createTestStore(t)

	seeded, err := store.SeedSampleTasks()
	if err != nil || !seeded {
		t.Fatalf("SeedSampleTasks() = %v, %v; want true, nil", seeded, err)
	}
	tasks := store.ListTasks()
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}

	names := map[string]bool{}
	for _, n := range store.ProjectNames() {
		names[n] = true
	}
	ids := map[string]bool{}
	for _, task := range tasks {
		if !names[task.Project] {
			t.Errorf("sample task %q uses unknown project %q", task.Text, task.Project)
		}
		if ids[task.ID] {
			t.Errorf("duplicate sample id %q", task.ID)
		}
		ids[task.ID] = true
	}

	seeded, _ = store.SeedSampleTasks()
	if seeded {
		t.Error("SeedSampleTasks() seeded a non-empty store")
	}
}

func TestTheme(t *testing.T) {
	store, kv := createTestStore(t)

	if theme, _ := store.Theme(); theme != ThemeLight {
		t.Errorf("default Theme() = %q, want light", theme)
	}
	if err := store.SetTheme(ThemeDark); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if theme, _ := store.Theme(); theme != ThemeDark {
		t.Errorf("Theme() = %q, want dark", theme)
	}
	if raw, _, _ := kv.Get(KeyTheme); raw != "dark" {
		t.Errorf("stored theme = %q, want the bare string dark", raw)
	}
	if err := store.SetTheme("sepia"); !IsValidation(err) {
		t.Errorf("SetTheme(sepia) error = %v, want ValidationError", err)
	}

	for _, raw := range []string{`"dark"`, " dark\n"} {
		kv.Set(KeyTheme, raw)
		if theme, _ := store.Theme(); theme != ThemeDark {
			t.Errorf("Theme() with stored %q = %q, want dark", raw, theme)
		}
	}
	kv.Set(KeyTheme, "purple")
	if theme, _ := store.Theme(); theme != ThemeLight {
		t.Errorf("Theme() with unknown value = %q, want light", theme)
	}
}

func TestEnsureTheme(t *testing.T) {
	store, _ := createTestStore(t)

	if err := store.EnsureTheme("bogus"); err != nil {
		t.Fatalf("EnsureTheme(bogus) error = %v", err)
	}
	if err := store.EnsureTheme(ThemeDark); err != nil {
		t.Fatalf("EnsureTheme(dark) error = %v", err)
	}
	if theme, _ := store.Theme(); theme != ThemeDark {
		t.Errorf("Theme() = %q, want dark", theme)
	}

	// A stored theme wins over the configured one.
	if err := store.EnsureTheme(ThemeLight); err != nil {
		t.Fatalf("EnsureTheme(light) error = %v", err)
	}
	if theme, _ := store.Theme(); theme != ThemeDark {
		t.Errorf("Theme() after second EnsureTheme = %q, want dark", theme)
	}
}
