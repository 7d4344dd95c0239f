// Package view derives what the board shows from the task collection: the
// project scope, the status-filtered list and the dashboard metrics.
//
// Metrics are computed over the project scope before status filtering, so the
// numbers describe the whole project while the list follows the filter.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"taskboard/internal/storage"
	"taskboard/internal/tags"
)

// Status filters. Anything outside FilterAll, FilterCompleted and FilterToday
// behaves like FilterActive.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
	FilterToday     = "today"
)

// Filters lists the filters in display order.
var Filters = []string{FilterAll, FilterActive, FilterToday, FilterCompleted}

// overdueAge is how old an uncompleted task must be to count as overdue
// under OverdueByAge.
const overdueAge = 7 * 24 * time.Hour

// OverduePolicy decides which uncompleted tasks count as overdue.
type OverduePolicy int

const (
	// OverdueByAge counts tasks created more than seven days ago, reading the
	// creation time from the task id.
	OverdueByAge OverduePolicy = iota
	// OverdueByDueDate counts tasks whose due date is before today.
	OverdueByDueDate
)

// DefaultOverduePolicy is used when no policy is configured.
const DefaultOverduePolicy = OverdueByAge

func (p OverduePolicy) String() string {
	switch p {
	case OverdueByAge:
		return "age"
	case OverdueByDueDate:
		return "due_date"
	}
	return fmt.Sprintf("OverduePolicy(%d)", int(p))
}

// ParseOverduePolicy maps the config names "age" and "due_date" to a policy.
// An empty name gives DefaultOverduePolicy.
func ParseOverduePolicy(name string) (OverduePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultOverduePolicy, nil
	case "age":
		return OverdueByAge, nil
	case "due_date", "due-date", "duedate":
		return OverdueByDueDate, nil
	}
	return DefaultOverduePolicy, fmt.Errorf("unknown overdue policy %q (want age or due_date)", name)
}

// Metrics are the dashboard counters for a project scope.
type Metrics struct {
	Completed      int `json:"completed"`
	Active         int `json:"active"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"` // percent, 0-100
}

// SelectProjectScope returns the tasks of project, or all tasks when project
// is storage.AllProjects.
func SelectProjectScope(tasks []storage.Task, project string) []storage.Task {
	out := make([]storage.Task, 0, len(tasks))
	for _, t := range tasks {
		if project == storage.AllProjects || t.Project == project {
			out = append(out, t)
		}
	}
	return out
}

// ApplyStatusFilter keeps the tasks matching filter. today is the local date
// as YYYY-MM-DD.
func ApplyStatusFilter(tasks []storage.Task, filter, today string) []storage.Task {
	out := make([]storage.Task, 0, len(tasks))
	for _, t := range tasks {
		var keep bool
		switch filter {
		case FilterCompleted:
			keep = t.Completed
		case FilterToday:
			keep = !t.Completed && t.DueDate == today
		case FilterAll:
			keep = true
		default:
			keep = !t.Completed
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}

// ComputeMetrics counts the scoped tasks. The completion rate is rounded to
// the nearest percent and is 0 for an empty scope.
func ComputeMetrics(scoped []storage.Task, now time.Time, policy OverduePolicy) Metrics {
	var m Metrics
	today := now.Format(storage.DateLayout)
	for _, t := range scoped {
		if t.Completed {
			m.Completed++
			continue
		}
		m.Active++
		if isOverdue(t, now, today, policy) {
			m.Overdue++
		}
	}
	if total := len(scoped); total > 0 {
		m.CompletionRate = int(math.Round(float64(m.Completed) * 100 / float64(total)))
	}
	return m
}

// IsOverdue reports whether t is uncompleted and overdue under policy.
func IsOverdue(t storage.Task, now time.Time, policy OverduePolicy) bool {
	return !t.Completed && isOverdue(t, now, now.Format(storage.DateLayout), policy)
}

// isOverdue expects an uncompleted task.
func isOverdue(t storage.Task, now time.Time, today string, policy OverduePolicy) bool {
	if policy == OverdueByDueDate {
		// YYYY-MM-DD compares correctly as a string.
		return t.DueDate != "" && t.DueDate < today
	}
	created, ok := storage.CreatedAt(t.ID)
	if !ok {
		return false
	}
	return now.Sub(created) > overdueAge
}

// Selection is the (project, filter) pair the board is showing.
type Selection struct {
	Project string `json:"project"`
	Filter  string `json:"filter"`
}

// Result is everything needed to draw one frame of the board.
type Result struct {
	Selection Selection
	Metrics   Metrics
	Tasks     []storage.Task // scoped and filtered
	Items     []Item         // Tasks, prepared for display
}

// Engine holds the current selection. Its zero value is not ready; use
// NewEngine.
type Engine struct {
	sel    Selection
	policy OverduePolicy
	now    func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithOverduePolicy sets the overdue policy.
func WithOverduePolicy(p OverduePolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithClock overrides the clock used for today and overdue checks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine returns an engine selecting (all, all).
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		sel:    Selection{Project: storage.AllProjects, Filter: FilterAll},
		policy: DefaultOverduePolicy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SelectProject switches to project and resets the filter to FilterAll.
// Selecting the current project does nothing.
func (e *Engine) SelectProject(project string) {
	if project == "" || project == e.sel.Project {
		return
	}
	e.sel = Selection{Project: project, Filter: FilterAll}
}

// SelectFilter sets the status filter.
func (e *Engine) SelectFilter(filter string) {
	if filter == "" {
		return
	}
	e.sel.Filter = filter
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	return e.sel
}

// Policy returns the overdue policy in use.
func (e *Engine) Policy() OverduePolicy {
	return e.policy
}

// View derives the board for the current selection from tasks.
func (e *Engine) View(tasks []storage.Task) Result {
	now := e.now()
	today := now.Format(storage.DateLayout)

	scoped := SelectProjectScope(tasks, e.sel.Project)
	listed := ApplyStatusFilter(scoped, e.sel.Filter, today)

	return Result{
		Selection: e.sel,
		Metrics:   ComputeMetrics(scoped, now, e.policy),
		Tasks:     listed,
		Items:     Items(listed, now),
	}
}

// Item is a task prepared for display.
type Item struct {
	Task        storage.Task
	DisplayText string // text without tags
	DueLabel    string
}

// Items converts tasks to display items.
func Items(tasks []storage.Task, now time.Time) []Item {
	items := make([]Item, len(tasks))
	for i, t := range tasks {
		items[i] = Item{
			Task:        t,
			DisplayText: tags.Clean(t.Text),
			DueLabel:    DueLabel(t.DueDate, now),
		}
	}
	return items
}

// DueLabel renders a due date as "Due Today", "No Date" or a short date such
// as "Jan 2". Unparseable dates are shown as stored.
func DueLabel(dueDate string, now time.Time) string {
	if dueDate == "" {
		return "No Date"
	}
	if dueDate == now.Format(storage.DateLayout) {
		return "Due Today"
	}
	d, err := time.Parse(storage.DateLayout, dueDate)
	if err != nil {
		return dueDate
	}
	return d.Format("Jan 2")
}

// DisplayName capitalises a project name for headings: "work" -> "Work".
func DisplayName(project string) string {
	if project == "" {
		return ""
	}
	r := []rune(project)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// EmptyMessage is shown in place of an empty list.
func EmptyMessage(projectTitle string) string {
	return fmt.Sprintf("No tasks found for %s in the current filter.", projectTitle)
}
