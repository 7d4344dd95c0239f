package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/sync"

	"github.com/spf13/cobra"
)

// changed records that the command modified the board. Only the first
// message is kept.
func (c *cli) changed(message string) {
	if !c.dirty {
		c.message = message
	}
	c.dirty = true
}

// autoCommit commits the data directory after a change when sync.auto_commit
// is on and the directory is a repository. Failures are only logged: the
// change itself already succeeded.
func (c *cli) autoCommit(ctx context.Context, stderr io.Writer) {
	if !c.dirty || c.cfg == nil || !c.cfg.Sync.AutoCommit {
		return
	}
	gs := sync.New(c.cfg.GetDataDir(), c.log)
	if !gs.IsRepo() {
		c.log.Debug().Msg("auto commit skipped: data directory is not a repository")
		return
	}
	committed, err := gs.CommitAll(ctx, c.message)
	if err != nil {
		c.log.Warn().Err(err).Msg("auto commit")
		return
	}
	if committed && c.cfg.Sync.AutoPush {
		if err := gs.Push(ctx); err != nil {
			fmt.Fprintf(stderr, "⚠ Committed locally, but push failed: %v\n", err)
		}
	}
}

func (c *cli) syncCmd() *cobra.Command {
	var (
		initRepo bool
		status   bool
		remote   string
		message  string
		noPush   bool
		auto     string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Commit the data directory to git and sync it with a remote",
		Long: `sync keeps the data directory in a git repository. Without flags it
commits any changes, then pulls and pushes when a remote is configured.

With --auto commit every change is committed as it happens; --auto push
also pushes it. The choice is saved in the config file.`,
		Example: `  taskboard sync --init
  taskboard sync --remote git@github.com:me/tasks.git
  taskboard sync --auto push
  taskboard sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			c.log = consoleLogger(cmd.ErrOrStderr(), c.verbose)
			if auto != "" {
				return c.saveAutoSync(cmd.OutOrStdout(), auto)
			}

			dataDir := c.cfg.GetDataDir()
			if err := os.MkdirAll(dataDir, 0700); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			if !sync.IsGitInstalled() {
				return errors.New("git is not installed")
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			gs := sync.New(dataDir, c.log)

			switch {
			case initRepo:
				if err := gs.Init(ctx); err != nil {
					return err
				}
				fmt.Fprintf(w, "✓ Initialized sync repository in %s\n", dataDir)
				return nil
			case status:
				st, err := gs.Status(ctx)
				if err != nil {
					return err
				}
				writeSyncStatus(w, st, time.Now())
				return nil
			case remote != "":
				if err := gs.AddRemote(ctx, "origin", remote); err != nil {
					return err
				}
				fmt.Fprintf(w, "✓ Remote origin set to %s\n", remote)
				return nil
			}

			committed, err := gs.CommitAll(ctx, message)
			if err != nil {
				return err
			}
			if committed {
				fmt.Fprintln(w, "✓ Committed local changes")
			} else {
				fmt.Fprintln(w, "No local changes to commit.")
			}
			if noPush {
				return nil
			}

			if err := gs.Pull(ctx); err != nil {
				if errors.Is(err, sync.ErrNoRemote) {
					fmt.Fprintln(w, "No remote configured; skipping pull and push.")
					return nil
				}
				return err
			}
			if err := gs.Push(ctx); err != nil {
				return err
			}
			fmt.Fprintln(w, "✓ Synced with remote")
			return nil
		},
	}
	cmd.Flags().BoolVar(&initRepo, "init", false, "turn the data directory into a git repository")
	cmd.Flags().BoolVarP(&status, "status", "s", false, "show the repository status")
	cmd.Flags().StringVar(&remote, "remote", "", "set the origin remote URL")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "commit only, without pull and push")
	cmd.Flags().StringVar(&auto, "auto", "", "commit after every change: off, commit or push")
	cmd.MarkFlagsMutuallyExclusive("init", "status", "remote", "auto")
	return cmd
}

// saveAutoSync stores the auto commit mode in the config file. The file is
// reloaded so flag overrides such as --data-dir are not written back.
func (c *cli) saveAutoSync(w io.Writer, mode string) error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	if path == "" {
		return errors.New("no config path: pass --config")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	switch mode {
	case "off":
		cfg.Sync = config.SyncConfig{}
	case "commit":
		cfg.Sync = config.SyncConfig{AutoCommit: true}
	case "push":
		cfg.Sync = config.SyncConfig{AutoCommit: true, AutoPush: true}
	default:
		return fmt.Errorf("unknown auto mode %q (want off, commit or push)", mode)
	}

	if err := cfg.SaveFile(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(w, "✓ Auto sync set to %s in %s\n", mode, path)
	return nil
}

func writeSyncStatus(w io.Writer, st *sync.Status, now time.Time) {
	if !st.IsRepo {
		fmt.Fprintln(w, "Sync is not set up.")
		fmt.Fprintln(w, "Run 'taskboard sync --init' to start.")
		return
	}
	fmt.Fprintf(w, "Branch:  %s\n", st.Branch)
	if st.HasRemote {
		fmt.Fprintf(w, "Remote:  %s (%s)\n", st.RemoteName, st.RemoteURL)
		fmt.Fprintf(w, "Ahead:   %d, Behind: %d\n", st.Ahead, st.Behind)
	} else {
		fmt.Fprintln(w, "Remote:  none")
	}
	changes := "clean"
	if st.HasChanges {
		changes = "uncommitted changes"
	}
	fmt.Fprintf(w, "Changes: %s\n", changes)
	if st.LastCommitAt != nil {
		fmt.Fprintf(w, "Last commit: %s\n", formatAge(now.Sub(*st.LastCommitAt)))
	}
}
