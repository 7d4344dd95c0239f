// Package main is the entry point for taskboard. With no arguments it
// starts the TUI; subcommands work on the same data from the shell.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/ui"
	"taskboard/internal/view"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const logFileName = "taskboard.log"

// cli holds the global flags and the resources a command opens.
type cli struct {
	configPath string
	dataDir    string
	backend    string
	verbose    bool

	cfg   *config.Config
	kv    storage.Backend
	store *storage.Store
	board *ui.Board
	log   zerolog.Logger

	logFile io.Closer

	// dirty is set by commands that changed the board; message describes
	// the change for the sync commit.
	dirty   bool
	message string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "A keyboard-driven task board for your terminal",
		Long: `taskboard keeps tasks grouped by project, with #project and !priority
tags parsed from the task text. Run it without arguments for the
interactive board, or use the subcommands below from scripts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(true, cmd.ErrOrStderr()); err != nil {
				return err
			}
			err := c.runTUI()
			c.closeStore()
			if err == nil {
				c.changed("")
				c.autoCommit(cmd.Context(), cmd.ErrOrStderr())
			}
			c.close()
			return err
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("taskboard version %s\n  commit: %s\n  built:  %s\n", version, commit, date))

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	flags.StringVar(&c.dataDir, "data-dir", "", "data directory (overrides config)")
	flags.StringVar(&c.backend, "backend", "", "storage backend: file, bolt or sqlite (overrides config)")
	flags.BoolVarP(&c.verbose, "verbose", "V", false, "log debug output")

	root.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.toggleCmd(),
		c.rmCmd(),
		c.projectCmd(),
		c.reportCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		c.importCmd(),
		c.syncCmd(),
	)
	return root
}

// loadConfig reads the config file and applies the global flags.
func (c *cli) loadConfig() error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		c.cfg.DataDir = c.dataDir
	}
	if c.backend != "" {
		c.cfg.Storage.Backend = c.backend
	}
	return c.cfg.Validate()
}

// open loads the config and opens the store. The TUI logs to a file in the
// data directory since it owns the terminal; other commands log to stderr.
func (c *cli) open(tui bool, stderr io.Writer) error {
	if err := c.loadConfig(); err != nil {
		return err
	}

	dataDir := c.cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	var err error
	if tui {
		f, err := os.OpenFile(filepath.Join(dataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logFile = f
		c.log = newLogger(f, c.cfg.Log.Level, c.verbose, zerolog.InfoLevel)
	} else {
		c.log = consoleLogger(stderr, c.verbose)
	}

	c.kv, err = storage.OpenKV(c.cfg.Storage.Backend, dataDir, c.log)
	if err != nil {
		c.close()
		return err
	}

	c.store, err = storage.New(c.kv, storage.WithLogger(c.log))
	if err != nil {
		c.close()
		return fmt.Errorf("load tasks: %w", err)
	}
	if err := c.store.EnsureTheme(c.cfg.Theme.Mode); err != nil {
		c.log.Warn().Err(err).Msg("store initial theme")
	}

	policy, err := view.ParseOverduePolicy(c.cfg.View.Overdue)
	if err != nil {
		c.close()
		return err
	}
	engine := view.NewEngine(view.WithOverduePolicy(policy))
	c.board = ui.NewBoard(c.store, engine, c.log)

	c.log.Debug().
		Str("data_dir", dataDir).
		Str("backend", c.cfg.Storage.Backend).
		Str("overdue", policy.String()).
		Msg("taskboard opened")
	return nil
}

// closeStore releases the backend so its files are complete on disk.
func (c *cli) closeStore() {
	if c.kv != nil {
		if err := c.kv.Close(); err != nil {
			c.log.Error().Err(err).Msg("close storage")
		}
		c.kv = nil
	}
}

func (c *cli) close() {
	c.closeStore()
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
}

func consoleLogger(stderr io.Writer, verbose bool) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	return newLogger(console, "", verbose, zerolog.WarnLevel)
}

// newLogger builds a logger at the configured level. fallback applies when
// the level is empty or unknown; verbose always wins.
func newLogger(w io.Writer, level string, verbose bool, fallback zerolog.Level) zerolog.Logger {
	lvl := fallback
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func (c *cli) runTUI() error {
	theme, err := c.store.Theme()
	if err != nil {
		c.log.Warn().Err(err).Msg("read theme")
	}
	styles := ui.NewStyles(c.cfg, theme)

	c.log.Info().Str("version", version).Msg("starting TUI")
	if err := ui.Run(c.board, styles, ui.NewAppConfig(c.cfg)); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
