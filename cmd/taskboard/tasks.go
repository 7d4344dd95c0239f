package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"taskboard/internal/storage"
	"taskboard/internal/ui"
	"taskboard/internal/view"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// withBoard wraps a command body that needs an open store. Changes the
// body records with c.changed are committed once the store is closed.
func (c *cli) withBoard(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.open(false, cmd.ErrOrStderr()); err != nil {
			return err
		}
		err := run(cmd, args)
		c.close()
		if err != nil {
			return err
		}
		c.autoCommit(cmd.Context(), cmd.ErrOrStderr())
		return nil
	}
}

func (c *cli) addCmd() *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task; #project and !high|!medium|!low tags are parsed from the text",
		Example: `  taskboard add Fix login bug #work !high
  taskboard add --due 2026-03-12 "Call mom #personal"`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			task, err := c.board.OnCreateTask(strings.Join(args, " "), due)
			if err != nil {
				return err
			}
			c.changed("Add task: " + task.Text)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to #%s (!%s, due %s)\n", task.ID, task.Project, task.Priority, task.DueDate)
			return nil
		}),
	}
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var project, filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with the board's metrics",
		Args:  cobra.NoArgs,
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			project = strings.ToLower(strings.TrimSpace(project))
			if err := c.seedProjects(); err != nil {
				return err
			}
			if !slices.Contains(c.store.ProjectNames(), project) {
				return fmt.Errorf("unknown project %q", project)
			}
			if !slices.Contains(view.Filters, filter) {
				return fmt.Errorf("unknown filter %q (want %s)", filter, strings.Join(view.Filters, ", "))
			}

			c.board.OnSelectionChange(project, filter)
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			writeList(cmd.OutOrStdout(), snap)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&project, "project", "p", storage.AllProjects, "project to show")
	cmd.Flags().StringVarP(&filter, "filter", "f", view.FilterAll, "filter: "+strings.Join(view.Filters, ", "))
	return cmd
}

// writeList prints a snapshot as a table followed by its metrics.
func writeList(w io.Writer, snap ui.Snapshot) {
	fmt.Fprintf(w, "%s (%s)\n", snap.Title, snap.Selection.Filter)

	if len(snap.Items) == 0 {
		fmt.Fprintln(w, view.EmptyMessage(snap.Title))
	} else {
		rows := make([][]string, 0, len(snap.Items))
		for _, item := range snap.Items {
			check := "[ ]"
			if item.Task.Completed {
				check = "[x]"
			}
			rows = append(rows, []string{
				check,
				item.Task.ID,
				string(item.Task.Priority),
				item.DisplayText,
				"#" + item.Task.Project,
				item.DueLabel,
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("", "ID", "PRIORITY", "TASK", "PROJECT", "DUE").
			Rows(rows...)
		fmt.Fprintln(w, t.String())
	}

	m := snap.Metrics
	fmt.Fprintf(w, "%d done · %d active · %d overdue · %d%% complete\n", m.Completed, m.Active, m.Overdue, m.CompletionRate)
}

// seedProjects makes sure the default projects exist. Failing to write them
// back is logged, not fatal.
func (c *cli) seedProjects() error {
	_, err := c.store.ListProjects()
	return c.tolerate(err, "seed projects")
}

// snapshot reads the board, tolerating persistence errors.
func (c *cli) snapshot() (ui.Snapshot, error) {
	snap, err := c.board.Snapshot()
	return snap, c.tolerate(err, "snapshot")
}

// tolerate logs and drops a *storage.PersistenceError; any other error is
// returned.
func (c *cli) tolerate(err error, what string) error {
	var perr *storage.PersistenceError
	if errors.As(err, &perr) {
		c.log.Warn().Err(err).Msg(what)
		return nil
	}
	return err
}

// lookup finds a task by id, failing for unknown ids.
func (c *cli) lookup(id string) (storage.Task, error) {
	task, _, ok := c.board.Task(id)
	if !ok {
		return storage.Task{}, fmt.Errorf("no task with id %q", id)
	}
	return task, nil
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task done, or not done again",
		Args:  cobra.ExactArgs(1),
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			task, err := c.lookup(args[0])
			if err != nil {
				return err
			}
			if err := c.board.OnToggle(task.ID); err != nil {
				return err
			}
			verb := "Completed"
			if task.Completed {
				verb = "Reopened"
			}
			c.changed(verb + " task: " + task.Text)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, task.Text)
			return nil
		}),
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			task, err := c.lookup(args[0])
			if err != nil {
				return err
			}
			if err := c.board.OnDelete(task.ID); err != nil {
				return err
			}
			c.changed("Delete task: " + task.Text)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", task.Text)
			return nil
		}),
	}
}

func (c *cli) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a project (lower-cased, at most 15 characters)",
		Args:  cobra.ExactArgs(1),
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			project, err := c.board.OnProjectCreate(args[0])
			if err != nil {
				return err
			}
			c.changed("Add project: " + project.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Project added: %s\n", view.DisplayName(project.Name))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects with their open task counts",
		Args:  cobra.NoArgs,
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range snap.Projects {
				fmt.Fprintf(w, "%-16s %d\n", p.Name, snap.ActiveCounts[p.Name])
			}
			return nil
		}),
	})
	return cmd
}
