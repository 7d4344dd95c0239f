package storage

import (
	"encoding/json"
	"fmt"
)

// Priority represents task priority levels
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the format of Task.DueDate.
const DateLayout = "2006-01-02"

// Task represents a single todo item. The JSON shape matches the values
// stored under the "tasks" key.
type Task struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"` // raw input, tags included
	Completed bool     `json:"completed"`
	Project   string   `json:"project"`
	Priority  Priority `json:"priority"`
	DueDate   string   `json:"dueDate"` // YYYY-MM-DD
}

// UnmarshalJSON fills defaults for fields missing from older payloads and
// accepts the numeric ids (Unix milliseconds) older clients wrote.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var p struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	id, err := decodeID(p.ID)
	if err != nil {
		return err
	}
	p.plain.ID = id
	if p.Project == "" {
		p.Project = DefaultProject
	}
	if !p.Priority.Valid() {
		p.Priority = PriorityMedium
	}
	*t = Task(p.plain)
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("task id: %w", err)
	}
	return n.String(), nil
}

// Project groups tasks. Icon is a display hint only.
type Project struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Reserved and default project names.
const (
	AllProjects    = "all"
	DefaultProject = "personal"

	DefaultProjectIcon = "fas fa-folder-open"
	maxProjectNameLen  = 15
)

// DefaultProjects returns the set seeded into an empty project list.
func DefaultProjects() []Project {
	return []Project{
		{Name: AllProjects, Icon: "fas fa-list-check"},
		{Name: "work", Icon: "fas fa-briefcase"},
		{Name: DefaultProject, Icon: "fas fa-user-tag"},
		{Name: "health", Icon: "fas fa-heartbeat"},
		{Name: "study", Icon: "fas fa-book-open"},
	}
}
