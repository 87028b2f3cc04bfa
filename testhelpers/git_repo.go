package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRepo is a throwaway Git repository driven through the git binary.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in dir with the given initial branch.
func NewGitRepo(dir, branch string) (*GitRepo, error) {
	cmd := exec.Command("git", "-c", "core.autocrlf=false", "init", "--quiet", "-b", branch, dir)
	cmd.Env = gitEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %s: %w", out, err)
	}
	return OpenGitRepo(dir)
}

// CloneGitRepo clones source into dir.
func CloneGitRepo(source, dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "clone", "--quiet", source, dir)
	cmd.Env = gitEnv()
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to clone repo: %s: %w", out, err)
	}
	return OpenGitRepo(dir)
}

// OpenGitRepo wraps an existing repository and configures a commit identity for it.
func OpenGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}
	if err := repo.RunGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.RunGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	return repo, nil
}

// gitEnv keeps the developer's global config out of test repositories.
func gitEnv() []string {
	return append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
}

// RunGitCommand executes a git command in the repository directory.
func (r *GitRepo) RunGitCommand(args ...string) error {
	_, err := r.RunGitCommandAndGetOutput(args...)
	return err
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed stdout.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// WriteFile writes content to a path relative to the repository root.
func (r *GitRepo) WriteFile(path, content string) error {
	full := filepath.Join(r.Dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

// Commit stages everything and records a commit with the given message.
func (r *GitRepo) Commit(message string) error {
	if err := r.RunGitCommand("add", "--all"); err != nil {
		return err
	}
	return r.RunGitCommand("commit", "--quiet", "--allow-empty", "-m", message)
}

// CommitChange writes each change and commits them together.
func (r *GitRepo) CommitChange(message string, changes ...Change) error {
	for _, c := range changes {
		if c.Delete {
			if err := r.RunGitCommand("rm", "--quiet", "--", c.Path); err != nil {
				return err
			}
			continue
		}
		if err := r.WriteFile(c.Path, c.Content); err != nil {
			return err
		}
		if c.Executable {
			//nolint:gosec // scripts committed by tests must be executable
			if err := os.Chmod(filepath.Join(r.Dir, c.Path), 0755); err != nil {
				return err
			}
		}
	}
	return r.Commit(message)
}

// Head returns the full hash of HEAD.
func (r *GitRepo) Head() (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", "HEAD")
}

// ListCommits returns the subjects of commits in base..HEAD, oldest first.
func (r *GitRepo) ListCommits(base string) ([]string, error) {
	out, err := r.RunGitCommandAndGetOutput("log", "--reverse", "--format=%s", base+"..HEAD")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Change is a single file edit applied by CommitChange.
type Change struct {
	Path       string
	Content    string
	Executable bool
	Delete     bool
}
