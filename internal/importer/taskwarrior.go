package importer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"taskboard/internal/storage"
)

// TaskwarriorImporter reads the output of "task export": a JSON array, or
// one JSON object per line from older versions.
type TaskwarriorImporter struct{}

type taskwarriorTask struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Project     string `json:"project"`
	Priority    string `json:"priority"`
	Due         string `json:"due"`
	UUID        string `json:"uuid"`
}

// Name returns the importer name.
func (t *TaskwarriorImporter) Name() string {
	return "taskwarrior"
}

// Import adds the exported tasks to the store.
func (t *TaskwarriorImporter) Import(reader io.Reader, store *storage.Store) (*ImportResult, error) {
	tasks, err := t.Preview(reader)
	if err != nil {
		return nil, err
	}
	return importTasks(tasks, store), nil
}

// Preview parses the export without touching the store. Deleted tasks and
// recurrence templates are left out.
func (t *TaskwarriorImporter) Preview(reader io.Reader) ([]PreviewTask, error) {
	raw, err := decodeTaskwarrior(reader)
	if err != nil {
		return nil, err
	}
	var tasks []PreviewTask
	for _, tw := range raw {
		if task, ok := tw.preview(); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func decodeTaskwarrior(reader io.Reader) ([]taskwarriorTask, error) {
	br := bufio.NewReader(reader)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var all []taskwarriorTask
		if err := dec.Decode(&all); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		return all, nil
	}

	// A decoder reads consecutive values whatever whitespace separates them.
	var all []taskwarriorTask
	for n := 1; ; n++ {
		var tw taskwarriorTask
		err := dec.Decode(&tw)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid JSON in task %d: %w", n, err)
		}
		all = append(all, tw)
	}
}

// peekNonSpace skips leading whitespace and returns the next byte without
// consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b, br.UnreadByte()
	}
}

func (tw taskwarriorTask) preview() (PreviewTask, bool) {
	text := strings.TrimSpace(tw.Description)
	if text == "" || tw.Status == "deleted" || tw.Status == "recurring" {
		return PreviewTask{}, false
	}

	task := PreviewTask{
		Text:     text,
		Project:  tw.Project,
		Priority: mapTaskwarriorPriority(tw.Priority),
		Done:     tw.Status == "completed",
	}
	if due, ok := parseTaskwarriorDate(tw.Due); ok {
		task.DueDate = due.Format(storage.DateLayout)
	}
	return task, true
}

// mapTaskwarriorPriority maps H, M and L; anything else has no priority.
func mapTaskwarriorPriority(priority string) storage.Priority {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case "H":
		return storage.PriorityHigh
	case "M":
		return storage.PriorityMedium
	case "L":
		return storage.PriorityLow
	default:
		return ""
	}
}

// taskwarriorLayouts lists the date formats seen in exports, ISO 8601 basic
// (20140928T211124Z) first.
var taskwarriorLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTaskwarriorDate returns the date in local time. UTC stamps are
// converted, so a task due at midnight UTC may land on the previous day.
func parseTaskwarriorDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range taskwarriorLayouts {
		if strings.HasSuffix(layout, "Z") {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Local(), true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
