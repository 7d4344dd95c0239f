package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"taskboard/internal/importer"

	"github.com/spf13/cobra"
)

const previewLimit = 20

func (c *cli) importCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import FORMAT FILE",
		Short: "Import tasks from Todoist CSV or Taskwarrior JSON",
		Long: `Imports tasks from other productivity tools.

Todoist: export a backup via Settings > Backups. CONTENT becomes the task
text, PRIORITY 1,2 -> high, 3 -> medium, 4 -> low, DATE the due date and
PROJECT the project. Notes are skipped.

Taskwarrior: export with 'task export > tasks.json'; JSON arrays and
newline-delimited JSON both work. Completed tasks are imported as done and
deleted tasks are skipped.

Unknown projects are created. Tasks already on the board are skipped.`,
		Example: `  taskboard import todoist ~/Downloads/Todoist_backup.csv
  taskboard import --dry-run taskwarrior tasks.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			imp := importer.GetImporter(format)
			if imp == nil {
				return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(importer.SupportedFormats(), ", "))
			}

			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			if dryRun {
				return previewImport(cmd.OutOrStdout(), imp, file)
			}
			return c.withBoard(func(cmd *cobra.Command, args []string) error {
				result, err := imp.Import(file, c.store)
				if err != nil {
					return fmt.Errorf("parsing file: %w", err)
				}
				if result.Imported > 0 {
					c.changed(fmt.Sprintf("Import %d task(s) from %s", result.Imported, imp.Name()))
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "✓ Imported %d task(s)\n", result.Imported)
				if result.Skipped > 0 {
					fmt.Fprintf(w, "  Skipped %d already on the board\n", result.Skipped)
				}
				if len(result.ProjectsCreated) > 0 {
					fmt.Fprintf(w, "  New projects: %s\n", strings.Join(result.ProjectsCreated, ", "))
				}
				for _, e := range result.Errors {
					c.log.Warn().Str("format", imp.Name()).Msg(e)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d task(s) could not be imported", len(result.Errors))
				}
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview import without making changes")
	return cmd
}

// previewImport lists what an import would add.
func previewImport(w io.Writer, imp importer.Importer, r io.Reader) error {
	tasks, err := imp.Preview(r)
	if err != nil {
		return fmt.Errorf("parsing file: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found to import.")
		return nil
	}

	fmt.Fprintf(w, "Preview: %d tasks to import\n", len(tasks))
	fmt.Fprintln(w, "────────────────────────────")
	for _, task := range tasks[:min(len(tasks), previewLimit)] {
		var details []string
		if p := importer.ProjectName(task.Project); p != "" {
			details = append(details, "#"+p)
		}
		if task.Priority != "" {
			details = append(details, "!"+string(task.Priority))
		}
		if task.DueDate != "" {
			details = append(details, task.DueDate)
		}
		if task.Done {
			details = append(details, "done")
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "  %s (%s)\n", task.Text, strings.Join(details, ", "))
		} else {
			fmt.Fprintf(w, "  %s\n", task.Text)
		}
	}
	if len(tasks) > previewLimit {
		fmt.Fprintf(w, "  ... and %d more\n", len(tasks)-previewLimit)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run without --dry-run to import.")
	return nil
}
