// Package sync keeps the taskboard data directory in a git repository so it
// can be shared between machines.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"taskboard/internal/fsutil"

	"github.com/rs/zerolog"
)

// ErrNotRepo is returned by operations that need an initialized repository.
var ErrNotRepo = errors.New("not a git repository - run 'taskboard sync --init' first")

// ErrNoRemote is returned by pull and push when no remote is configured.
var ErrNoRemote = errors.New("no remote configured - add one with 'taskboard sync --remote <url>'")

const defaultCommitMessage = "Update taskboard data"

const gitignoreContent = `# taskboard - git sync ignore file
backups/
reports/
*.bak
*.corrupt.*
*.log
`

// Status represents the current git status.
type Status struct {
	IsRepo       bool
	HasRemote    bool
	RemoteName   string
	RemoteURL    string
	Branch       string
	Ahead        int
	Behind       int
	HasChanges   bool
	LastCommitAt *time.Time
}

// GitSync runs git in the data directory.
type GitSync struct {
	dataDir string
	log     zerolog.Logger

	// Serializes git operations to avoid index/lock conflicts.
	opMu gosync.Mutex
}

// New creates a GitSync for dataDir.
func New(dataDir string, log zerolog.Logger) *GitSync {
	return &GitSync{dataDir: dataDir, log: log}
}

// IsGitInstalled checks if git is available on the system.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo checks if the data directory is a git repository.
func (g *GitSync) IsRepo() bool {
	info, err := os.Stat(filepath.Join(g.dataDir, ".git"))
	return err == nil && info.IsDir()
}

const (
	defaultGitTimeout  = 10 * time.Second
	pullPushGitTimeout = 60 * time.Second
	commitGitTimeout   = 15 * time.Second
)

// Init initializes a git repository in the data directory and commits a
// .gitignore that keeps backups, reports and logs out of it.
func (g *GitSync) Init(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !IsGitInstalled() {
		return fmt.Errorf("git is not installed")
	}

	if _, err := g.runGit(ctx, commitGitTimeout, "init"); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}

	gitignorePath := filepath.Join(g.dataDir, ".gitignore")
	if err := fsutil.WriteFileAtomic(gitignorePath, []byte(gitignoreContent), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := g.runGit(ctx, defaultGitTimeout, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	if _, err := g.runGit(ctx, commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Initialize taskboard data repository"); err != nil {
		if !isGitNothingToCommit(err) {
			return fmt.Errorf("failed to create initial commit: %w", err)
		}
	}
	g.log.Info().Str("dir", g.dataDir).Msg("sync repository initialized")
	return nil
}

// Status returns the current git status. A directory that is not a
// repository gives a Status with IsRepo false.
func (g *GitSync) Status(ctx context.Context) (*Status, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	status := &Status{IsRepo: g.IsRepo()}
	if !status.IsRepo {
		return status, nil
	}

	if branch, err := g.runGit(ctx, defaultGitTimeout, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		status.Branch = trimOutput(branch)
	}

	// First line looks like "origin\tgit@host:repo.git (fetch)".
	if remotes, err := g.runGit(ctx, defaultGitTimeout, "remote", "-v"); err == nil && trimOutput(remotes) != "" {
		status.HasRemote = true
		first, _, _ := strings.Cut(trimOutput(remotes), "\n")
		if parts := strings.Fields(first); len(parts) >= 2 {
			status.RemoteName = parts[0]
			status.RemoteURL = parts[1]
		}
	}

	if out, err := g.runGit(ctx, defaultGitTimeout, "status", "--porcelain"); err == nil {
		status.HasChanges = trimOutput(out) != ""
	}

	if status.HasRemote && status.Branch != "" {
		remote := status.RemoteName + "/" + status.Branch
		if revList, err := g.runGit(ctx, defaultGitTimeout, "rev-list", "--left-right", "--count", status.Branch+"..."+remote); err == nil {
			fmt.Sscanf(trimOutput(revList), "%d\t%d", &status.Ahead, &status.Behind)
		}
	}

	if lastCommit, err := g.runGit(ctx, defaultGitTimeout, "log", "-1", "--format=%ci"); err == nil && trimOutput(lastCommit) != "" {
		if t, err := time.Parse("2006-01-02 15:04:05 -0700", trimOutput(lastCommit)); err == nil {
			status.LastCommitAt = &t
		}
	}

	return status, nil
}

// CommitAll stages every change in the data directory and commits it. It
// reports whether a commit was made; a clean tree is not an error.
func (g *GitSync) CommitAll(ctx context.Context, message string) (bool, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return false, ErrNotRepo
	}
	if strings.TrimSpace(message) == "" {
		message = defaultCommitMessage
	}

	if _, err := g.runGit(ctx, defaultGitTimeout, "add", "-A"); err != nil {
		return false, fmt.Errorf("failed to stage files: %w", err)
	}

	staged, err := g.runGit(ctx, defaultGitTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	if trimOutput(staged) == "" {
		return false, nil
	}

	if _, err := g.runGit(ctx, commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", message); err != nil {
		if isGitNothingToCommit(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	g.log.Debug().Str("message", message).Msg("sync commit")
	return true, nil
}

// Pull fetches and rebases onto the remote. A branch that has never been
// pushed has no upstream yet and is left alone.
func (g *GitSync) Pull(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireRemote(ctx); err != nil {
		return err
	}
	if _, err := g.runGit(ctx, defaultGitTimeout, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}"); err != nil {
		g.log.Debug().Err(err).Msg("pull skipped: no upstream branch")
		return nil
	}
	if _, err := g.runGit(ctx, pullPushGitTimeout, "pull", "--rebase"); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// Push pushes local commits to the remote, setting the upstream on the
// first push.
func (g *GitSync) Push(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireRemote(ctx); err != nil {
		return err
	}
	if _, err := g.runGit(ctx, pullPushGitTimeout, "push", "-u", "origin", "HEAD"); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return nil
}

func (g *GitSync) requireRemote(ctx context.Context) error {
	if !g.IsRepo() {
		return ErrNotRepo
	}
	remotes, err := g.runGit(ctx, defaultGitTimeout, "remote")
	if err != nil || trimOutput(remotes) == "" {
		return ErrNoRemote
	}
	return nil
}

// AddRemote adds a git remote with the given name and URL.
// If the remote already exists, it will be updated.
func (g *GitSync) AddRemote(ctx context.Context, name, url string) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return ErrNotRepo
	}
	if name == "" {
		return fmt.Errorf("remote name is required")
	}
	if url == "" {
		return fmt.Errorf("remote URL is required")
	}

	remotes, _ := g.runGit(ctx, defaultGitTimeout, "remote")
	verb := "add"
	for _, line := range strings.Split(trimOutput(remotes), "\n") {
		if strings.TrimSpace(line) == name {
			verb = "set-url"
			break
		}
	}
	if _, err := g.runGit(ctx, defaultGitTimeout, "remote", verb, name, url); err != nil {
		return fmt.Errorf("failed to %s remote: %w", verb, err)
	}
	return nil
}

// runGit executes git in the data directory with prompts disabled.
func (g *GitSync) runGit(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dataDir
	cmd.Env = envWithOverrides(os.Environ(), map[string]string{
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_ASKPASS":         "",
		"SSH_ASKPASS":         "",
	})
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}

		errMsg := stderr.String()
		if strings.TrimSpace(errMsg) == "" {
			// git commit reports "nothing to commit" on stdout.
			errMsg = stdout.String()
		}
		if strings.TrimSpace(errMsg) == "" {
			errMsg = err.Error()
		}
		return "", errors.New(trimOutput(errMsg))
	}
	return stdout.String(), nil
}

func envWithOverrides(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		if v, ok := overrides[k]; ok {
			out = append(out, k+"="+v)
			seen[k] = true
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func isGitNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}

func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
