// Package config handles configuration loading and defaults for taskboard.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/taskboard/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskboard/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.taskboard)
	DataDir string `yaml:"data_dir,omitempty"`

	// Storage selects the persistence backend
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// View tunes the dashboard
	View ViewConfig `yaml:"view,omitempty"`

	// Log configures the log file
	Log LogConfig `yaml:"log,omitempty"`

	// Sync commits the data directory to git after changes
	Sync SyncConfig `yaml:"sync,omitempty"`
}

// StorageConfig selects where tasks and projects are kept.
type StorageConfig struct {
	// Backend is one of "file", "bolt" or "sqlite"
	Backend string `yaml:"backend,omitempty"` // default: "file"
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Mode is the initial theme ("light" or "dark") used until one is
	// stored by toggling in the app
	Mode string `yaml:"mode,omitempty"`

	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Background color (hex)
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit        string `yaml:"quit,omitempty"`         // default: "q,ctrl+c"
	Help        string `yaml:"help,omitempty"`         // default: "?"
	NextPane    string `yaml:"next_pane,omitempty"`    // default: "tab"
	ToggleTheme string `yaml:"toggle_theme,omitempty"` // default: "T"

	// Navigation keys
	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g"
	Bottom string `yaml:"bottom,omitempty"` // default: "G"

	// Task keys
	AddTask    string `yaml:"add_task,omitempty"`    // default: "a"
	ToggleTask string `yaml:"toggle_task,omitempty"` // default: "d,enter,space"
	DeleteTask string `yaml:"delete_task,omitempty"` // default: "x"

	// Project keys
	AddProject string `yaml:"add_project,omitempty"` // default: "p"

	// Filter keys
	FilterAll       string `yaml:"filter_all,omitempty"`       // default: "1"
	FilterActive    string `yaml:"filter_active,omitempty"`    // default: "2"
	FilterToday     string `yaml:"filter_today,omitempty"`     // default: "3"
	FilterCompleted string `yaml:"filter_completed,omitempty"` // default: "4"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions shows confirmation dialogs before deleting items
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty"` // default: true

	// SeedSampleTasks fills an empty board with example tasks on first run
	SeedSampleTasks bool `yaml:"seed_sample_tasks,omitempty"` // default: true

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80
}

// ViewConfig tunes how the dashboard is computed.
type ViewConfig struct {
	// Overdue is "age" (created more than a week ago) or "due_date"
	Overdue string `yaml:"overdue,omitempty"` // default: "age"
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name ("debug", "info", "warn", ...)
	Level string `yaml:"level,omitempty"` // default: "info"
}

// SyncConfig controls git sync of the data directory. It only applies once
// the directory has been turned into a repository with "taskboard sync --init".
type SyncConfig struct {
	// AutoCommit commits after every command that changes the board
	AutoCommit bool `yaml:"auto_commit,omitempty"` // default: false

	// AutoPush pushes after each automatic commit
	AutoPush bool `yaml:"auto_push,omitempty"` // default: false
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{
			Backend: "file",
		},
		Theme: ThemeConfig{
			Mode:       "light",
			Primary:    "#7C3AED", // Violet
			Accent:     "#10B981", // Emerald
			Muted:      "#6B7280", // Gray
			Background: "",        // Terminal default
			Text:       "",        // Terminal default
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			SeedSampleTasks:       true,
			NarrowLayoutThreshold: 80,
		},
		View: ViewConfig{
			Overdue: "age",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard"
	}
	return filepath.Join(home, ".taskboard")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskboard")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskboard")
}

// Path returns the default config file location, or "" when no home
// directory can be found.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from the default path, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path, merging with defaults. A missing
// file (or an empty path) gives the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	// Merge user config with defaults (presence-aware for booleans)
	cfg.mergeFromYAML(&userCfg, &doc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the app cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "file", "bolt", "sqlite":
	default:
		return fmt.Errorf("storage.backend %q: want file, bolt or sqlite", c.Storage.Backend)
	}
	switch c.Theme.Mode {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme.mode %q: want light or dark", c.Theme.Mode)
	}
	switch c.View.Overdue {
	case "", "age", "due_date":
	default:
		return fmt.Errorf("view.overdue %q: want age or due_date", c.View.Overdue)
	}
	return nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	mergeString(&c.DataDir, other.DataDir)
	mergeString(&c.Storage.Backend, other.Storage.Backend)

	mergeString(&c.Theme.Mode, other.Theme.Mode)
	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Accent, other.Theme.Accent)
	mergeString(&c.Theme.Muted, other.Theme.Muted)
	mergeString(&c.Theme.Background, other.Theme.Background)
	mergeString(&c.Theme.Text, other.Theme.Text)

	k, o := &c.Keys, &other.Keys
	for dst, src := range map[*string]string{
		&k.Quit: o.Quit, &k.Help: o.Help, &k.NextPane: o.NextPane, &k.ToggleTheme: o.ToggleTheme,
		&k.Up: o.Up, &k.Down: o.Down, &k.Top: o.Top, &k.Bottom: o.Bottom,
		&k.AddTask: o.AddTask, &k.ToggleTask: o.ToggleTask, &k.DeleteTask: o.DeleteTask,
		&k.AddProject: o.AddProject,
		&k.FilterAll: o.FilterAll, &k.FilterActive: o.FilterActive,
		&k.FilterToday: o.FilterToday, &k.FilterCompleted: o.FilterCompleted,
		&k.Confirm: o.Confirm, &k.Cancel: o.Cancel,
	} {
		mergeString(dst, src)
	}

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}

	mergeString(&c.View.Overdue, other.View.Overdue)
	mergeString(&c.Log.Level, other.Log.Level)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a document we cannot tell an explicit false from a missing
	// key, so booleans keep their defaults.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "ux", "seed_sample_tasks") {
		c.UX.SeedSampleTasks = other.UX.SeedSampleTasks
	}
	if yamlHasPath(doc, "sync", "auto_commit") {
		c.Sync.AutoCommit = other.Sync.AutoCommit
	}
	if yamlHasPath(doc, "sync", "auto_push") {
		c.Sync.AutoPush = other.Sync.AutoPush
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the configuration to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.DataDir[2:])
		}
	}
	return c.DataDir
}
