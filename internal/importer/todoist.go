package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"taskboard/internal/storage"
)

// TodoistImporter reads Todoist's per-project CSV export. Rows are tasks,
// notes or sections; a section names the project for the tasks below it
// unless the file has a PROJECT column.
type TodoistImporter struct{}

// Name returns the importer name.
func (t *TodoistImporter) Name() string {
	return "todoist"
}

// Import adds the exported tasks to the store.
func (t *TodoistImporter) Import(reader io.Reader, store *storage.Store) (*ImportResult, error) {
	tasks, err := t.Preview(reader)
	if err != nil {
		return nil, err
	}
	return importTasks(tasks, store), nil
}

// todoistRow looks up header columns by name in one record.
type todoistRow struct {
	cols   map[string]int
	record []string
}

func (r todoistRow) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// Preview parses the CSV without touching the store.
func (t *TodoistImporter) Preview(reader io.Reader) ([]PreviewTask, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff") // UTF-8 BOM
		}
		cols[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"TYPE", "CONTENT"} {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	_, hasProject := cols["PROJECT"]

	var (
		tasks   []PreviewTask
		section string
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		row := todoistRow{cols: cols, record: record}

		switch strings.ToLower(row.get("TYPE")) {
		case "section":
			section = row.get("CONTENT")
			continue
		case "task":
		default:
			continue
		}

		task := PreviewTask{
			Text:     row.get("CONTENT"),
			Priority: mapTodoistPriority(row.get("PRIORITY")),
			Project:  section,
		}
		if task.Text == "" {
			continue
		}
		if hasProject {
			task.Project = row.get("PROJECT")
		}
		if due, ok := parseTodoistDate(row.get("DATE")); ok {
			task.DueDate = due.Format(storage.DateLayout)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// mapTodoistPriority maps Todoist's 1 (urgent) to 4 (normal). Urgent and
// high both become high.
func mapTodoistPriority(priority string) storage.Priority {
	switch strings.TrimSpace(priority) {
	case "1", "2":
		return storage.PriorityHigh
	case "3":
		return storage.PriorityMedium
	case "4":
		return storage.PriorityLow
	default:
		return ""
	}
}

var todoistLayouts = []string{
	"2006-01-02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"01/02/2006",
}

// parseTodoistDate accepts the absolute date formats Todoist writes.
// Recurring phrases such as "every monday" are not dates and are dropped.
func parseTodoistDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range todoistLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
