// Package reports summarises the board per project for export. Reports are
// derived from the store with the same metrics the board shows.
package reports

import (
	"time"

	"taskboard/internal/view"
)

// Report is a snapshot of every project on the board.
type Report struct {
	Date          string           `json:"date"` // YYYY-MM-DD the report was taken on
	OverduePolicy string           `json:"overdue_policy"`
	Overall       view.Metrics     `json:"overall"`
	Projects      []ProjectSummary `json:"projects"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// ProjectSummary contains task statistics for one project.
type ProjectSummary struct {
	Project    string          `json:"project"`
	Name       string          `json:"name"` // display name
	Total      int             `json:"total"`
	Metrics    view.Metrics    `json:"metrics"`
	ByPriority []PriorityCount `json:"by_priority"`
	Open       []OpenTask      `json:"open"`
}

// PriorityCount represents open tasks grouped by priority.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// OpenTask is an uncompleted task as listed in a report.
type OpenTask struct {
	ID       string `json:"id"`
	Text     string `json:"text"` // tags removed
	Priority string `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
	DueLabel string `json:"due_label"`
	Overdue  bool   `json:"overdue"`
}
