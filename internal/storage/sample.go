package storage

import (
	"strconv"
	"time"
)

// sampleTasks returns the first-run examples. Their ids are millisecond
// timestamps; the health task is a week old so the overdue counter has
// something to show.
func sampleTasks(now time.Time) []Task {
	ms := now.UnixMilli()
	today := now.Format(DateLayout)
	weekAgo := ms - int64(7*24*time.Hour/time.Millisecond)

	return []Task{
		{
			ID:        strconv.FormatInt(ms+1, 10),
			Text:      "Send final project report to client #work !high",
			Completed: true,
			Project:   "work",
			Priority:  PriorityHigh,
			DueDate:   today,
		},
		{
			ID:       strconv.FormatInt(weekAgo, 10),
			Text:     "Book annual health checkup #health !high",
			Project:  "health",
			Priority: PriorityHigh,
			DueDate:  now.AddDate(0, 0, 14).Format(DateLayout),
		},
		{
			ID:       strconv.FormatInt(ms+2, 10),
			Text:     "Review Go documentation #study !medium",
			Project:  "study",
			Priority: PriorityMedium,
			DueDate:  today,
		},
		{
			ID:       strconv.FormatInt(ms+3, 10),
			Text:     "Grocery shopping for the week #personal !low",
			Project:  DefaultProject,
			Priority: PriorityLow,
			DueDate:  now.AddDate(0, 0, 28).Format(DateLayout),
		},
	}
}
