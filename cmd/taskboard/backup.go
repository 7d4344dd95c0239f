package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"taskboard/internal/backup"

	"github.com/spf13/cobra"
)

func (c *cli) backupManager() *backup.Manager {
	return backup.NewManager(c.kv, c.cfg.GetDataDir(), version)
}

func (c *cli) backupCmd() *cobra.Command {
	var list bool
	var keep int
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and manage backups of tasks, projects and theme",
		Long: `Creates a timestamped snapshot of the store in <data_dir>/backups/.
Backups work for every storage backend and can be restored later.`,
		Example: `  taskboard backup
  taskboard backup --list
  taskboard backup --prune 10`,
		Args: cobra.NoArgs,
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			manager := c.backupManager()
			w := cmd.OutOrStdout()

			switch {
			case list:
				return listBackups(w, manager, time.Now())
			case cmd.Flags().Changed("prune"):
				deleted, err := manager.Prune(keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "✓ Removed %d old backup(s)\n", deleted)
				return nil
			}

			name, err := manager.Create()
			if err != nil {
				return fmt.Errorf("creating backup: %w", err)
			}
			info, err := manager.GetBackup(name)
			if err != nil {
				return fmt.Errorf("reading backup info: %w", err)
			}
			fmt.Fprintf(w, "✓ Backup created: %s\n", name)
			fmt.Fprintf(w, "  Tasks: %d, Projects: %d\n", info.Stats["tasks"], info.Stats["projects"])
			fmt.Fprintf(w, "  Location: %s\n", info.Path)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().IntVar(&keep, "prune", 0, "delete all but the N most recent backups")
	return cmd
}

func listBackups(w io.Writer, manager *backup.Manager, now time.Time) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintln(w, "Run 'taskboard backup' to create one.")
		return nil
	}

	fmt.Fprintf(w, "Available backups in %s:\n", manager.Dir())
	for _, b := range backups {
		fmt.Fprintf(w, "  %s  (%s)   Tasks: %d, Projects: %d\n",
			b.Name, formatAge(now.Sub(b.CreatedAt)), b.Stats["tasks"], b.Stats["projects"])
	}
	return nil
}

// formatAge returns a human-readable age string.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	var latest, force bool
	cmd := &cobra.Command{
		Use:   "restore [BACKUP_NAME]",
		Short: "Restore tasks, projects and theme from a backup",
		Long: `Restores the store from a backup. A safety backup of the current data
is taken first. Use 'taskboard backup --list' to see available backups.`,
		Example: `  taskboard restore 2026-03-10_093000_000
  taskboard restore --latest --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			manager := c.backupManager()
			w := cmd.OutOrStdout()

			var name string
			switch {
			case latest:
				backups, err := manager.List()
				if err != nil {
					return fmt.Errorf("listing backups: %w", err)
				}
				if len(backups) == 0 {
					return fmt.Errorf("no backups available")
				}
				name = backups[0].Name
			case len(args) == 1:
				name = args[0]
			default:
				return fmt.Errorf("no backup specified: use 'taskboard restore BACKUP_NAME' or --latest")
			}

			info, err := manager.GetBackup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Restoring from backup: %s\n", info.Name)
			fmt.Fprintf(w, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "  Tasks: %d, Projects: %d\n\n", info.Stats["tasks"], info.Stats["projects"])

			if !force {
				fmt.Fprintln(w, "⚠ This will overwrite your current data.")
				fmt.Fprint(w, "Continue? [y/N] ")
				response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("reading input: %w", err)
				}
				response = strings.TrimSpace(strings.ToLower(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(w, "Restore cancelled.")
					return nil
				}
			}

			safety, err := manager.Restore(name)
			if err != nil {
				return fmt.Errorf("restoring backup: %w", err)
			}
			c.changed("Restore backup " + name)
			fmt.Fprintf(w, "✓ Safety backup: %s\n", safety)
			fmt.Fprintf(w, "✓ Restored successfully from %s\n", name)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore from the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
