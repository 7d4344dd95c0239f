package reports

import (
	"fmt"
	"strings"
)

// FormatMarkdown formats a report as Markdown.
func FormatMarkdown(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Taskboard Report: %s\n\n", report.Date)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Completed:** %d\n", report.Overall.Completed)
	fmt.Fprintf(&b, "- **Active:** %d\n", report.Overall.Active)
	fmt.Fprintf(&b, "- **Overdue:** %d (by %s)\n", report.Overall.Overdue, report.OverduePolicy)
	fmt.Fprintf(&b, "- **Completion:** %d%%\n\n", report.Overall.CompletionRate)

	b.WriteString("## Projects\n\n")
	b.WriteString("| Project | Done | Active | Overdue | Completion |\n")
	b.WriteString("|---------|------|--------|---------|------------|\n")
	for _, p := range report.Projects {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d%% |\n",
			p.Name, p.Metrics.Completed, p.Metrics.Active, p.Metrics.Overdue, p.Metrics.CompletionRate)
	}

	wroteHeading := false
	for _, p := range report.Projects {
		if len(p.Open) == 0 {
			continue
		}
		if !wroteHeading {
			b.WriteString("\n## Open Tasks\n")
			wroteHeading = true
		}
		fmt.Fprintf(&b, "\n### %s\n\n", p.Name)
		for _, t := range p.Open {
			marker := ""
			if t.Overdue {
				marker = " **overdue**"
			}
			fmt.Fprintf(&b, "- [ ] %s (!%s, %s)%s\n", t.Text, t.Priority, t.DueLabel, marker)
		}
	}
	if !wroteHeading {
		b.WriteString("\nNo open tasks.\n")
	}

	fmt.Fprintf(&b, "\n---\n*Generated %s*\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	return b.String()
}
