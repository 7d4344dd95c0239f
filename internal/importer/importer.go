// Package importer migrates tasks from other tools (Todoist CSV and
// Taskwarrior JSON exports) into the taskboard store.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/storage"
)

// maxProjectName mirrors the store's limit on project names.
const maxProjectName = 15

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Imported        int      // Number of successfully imported tasks
	Skipped         int      // Tasks already on the board
	ProjectsCreated []string // Projects added for imported tasks
	Errors          []string // Error messages for failed imports
}

// PreviewTask represents a task preview before import.
type PreviewTask struct {
	Text     string
	Project  string           // as named by the source tool
	Priority storage.Priority // empty when the source has none
	DueDate  string           // YYYY-MM-DD, empty when the source has none
	Done     bool
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads tasks from the reader and adds them to the store.
	Import(reader io.Reader, store *storage.Store) (*ImportResult, error)

	// Preview reads tasks from the reader without importing.
	Preview(reader io.Reader) ([]PreviewTask, error)

	// Name returns the importer name (e.g., "todoist", "taskwarrior").
	Name() string
}

// GetImporter returns the appropriate importer for the given format.
func GetImporter(format string) Importer {
	switch format {
	case "todoist":
		return &TodoistImporter{}
	case "taskwarrior":
		return &TaskwarriorImporter{}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"todoist", "taskwarrior"}
}

// importTasks adds parsed tasks to the store. Project and priority travel as
// #project and !priority tags appended to the text, so imported tasks look
// exactly like typed ones. A tag already present in the source text wins.
// Tasks whose text is already on the board are skipped.
func importTasks(tasks []PreviewTask, store *storage.Store) *ImportResult {
	result := &ImportResult{}

	existing := make(map[string]bool)
	for _, t := range store.ListTasks() {
		existing[t.Text] = true
	}
	projects := make(map[string]bool)
	list, err := store.ListProjects()
	if err != nil && !isPersistence(err) {
		result.Errors = append(result.Errors, fmt.Sprintf("projects: %v", err))
	}
	for _, p := range list {
		projects[p.Name] = true
	}

	for _, task := range tasks {
		text := task.Text
		if project := ProjectName(task.Project); project != "" {
			if !projects[project] {
				if err := createProject(store, project); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("project %s: %v", project, err))
				} else {
					result.ProjectsCreated = append(result.ProjectsCreated, project)
				}
				projects[project] = true
			}
			text += " #" + project
		}
		if task.Priority != "" {
			text += " !" + string(task.Priority)
		}

		if existing[text] {
			result.Skipped++
			continue
		}

		added, err := store.CreateTask(text, task.DueDate)
		if err != nil && !isPersistence(err) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", task.Text, err))
			continue
		}
		existing[text] = true

		// Mark as complete if it was completed in the source tool
		if task.Done {
			if err := store.ToggleTask(added.ID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to mark %s as complete: %v", task.Text, err))
			}
		}

		result.Imported++
	}

	return result
}

func createProject(store *storage.Store, name string) error {
	_, err := store.CreateProject(name)
	if isPersistence(err) {
		return nil
	}
	return err
}

func isPersistence(err error) bool {
	var perr *storage.PersistenceError
	return errors.As(err, &perr)
}

// ProjectName turns a project name from another tool into a taskboard
// project: lower-case letters, digits and underscores, at most 15
// characters. Separators become underscores; anything else is dropped, so
// the result is always ASCII.
func ProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.', r == '/':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > maxProjectName {
		out = out[:maxProjectName]
	}
	out = strings.TrimRight(out, "_")
	if out == storage.AllProjects {
		return ""
	}
	return out
}
