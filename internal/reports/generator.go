package reports

import (
	"errors"
	"sort"
	"time"

	"taskboard/internal/storage"
	"taskboard/internal/view"
)

// priorityOrder lists priorities from most to least urgent.
var priorityOrder = []storage.Priority{storage.PriorityHigh, storage.PriorityMedium, storage.PriorityLow}

// Generator creates reports from storage data.
type Generator struct {
	store  *storage.Store
	policy view.OverduePolicy
}

// NewGenerator creates a new report generator.
func NewGenerator(store *storage.Store, policy view.OverduePolicy) *Generator {
	return &Generator{store: store, policy: policy}
}

// Generate builds a report for every project, in board order. Tasks filed
// under a project the store no longer lists get a section of their own
// after the known projects.
//
// A failure to persist the seeded default projects does not stop the
// report.
func (g *Generator) Generate() (*Report, error) {
	projects, err := g.store.ListProjects()
	var perr *storage.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return nil, err
	}
	tasks := g.store.ListTasks()
	now := g.store.Now()

	names := make([]string, 0, len(projects))
	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		if p.Name == storage.AllProjects {
			continue
		}
		names = append(names, p.Name)
		known[p.Name] = true
	}
	var orphans []string
	for _, t := range tasks {
		if !known[t.Project] {
			known[t.Project] = true
			orphans = append(orphans, t.Project)
		}
	}
	sort.Strings(orphans)
	names = append(names, orphans...)

	summaries := make([]ProjectSummary, 0, len(names))
	for _, name := range names {
		scoped := view.SelectProjectScope(tasks, name)
		summaries = append(summaries, g.summarize(name, scoped, now))
	}

	return &Report{
		Date:          now.Format(storage.DateLayout),
		OverduePolicy: g.policy.String(),
		Overall:       view.ComputeMetrics(tasks, now, g.policy),
		Projects:      summaries,
		GeneratedAt:   now,
	}, nil
}

// summarize returns the statistics for one project's tasks.
func (g *Generator) summarize(project string, scoped []storage.Task, now time.Time) ProjectSummary {
	counts := make(map[storage.Priority]int)
	open := make([]OpenTask, 0)

	for _, item := range view.Items(scoped, now) {
		t := item.Task
		if t.Completed {
			continue
		}
		counts[t.Priority]++
		open = append(open, OpenTask{
			ID:       t.ID,
			Text:     item.DisplayText,
			Priority: string(t.Priority),
			DueDate:  t.DueDate,
			DueLabel: item.DueLabel,
			Overdue:  view.IsOverdue(t, now, g.policy),
		})
	}

	// Most urgent first, then earliest due date. Undated tasks sort last.
	rank := func(p string) int {
		for i, q := range priorityOrder {
			if string(q) == p {
				return i
			}
		}
		return len(priorityOrder)
	}
	sort.SliceStable(open, func(i, j int) bool {
		if ri, rj := rank(open[i].Priority), rank(open[j].Priority); ri != rj {
			return ri < rj
		}
		di, dj := open[i].DueDate, open[j].DueDate
		if (di == "") != (dj == "") {
			return dj == ""
		}
		return di < dj
	})

	byPriority := make([]PriorityCount, 0, len(priorityOrder))
	for _, p := range priorityOrder {
		if n := counts[p]; n > 0 {
			byPriority = append(byPriority, PriorityCount{Priority: string(p), Count: n})
		}
	}

	return ProjectSummary{
		Project:    project,
		Name:       view.DisplayName(project),
		Total:      len(scoped),
		Metrics:    view.ComputeMetrics(scoped, now, g.policy),
		ByPriority: byPriority,
		Open:       open,
	}
}
