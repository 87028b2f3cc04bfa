package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

// Mirror is a handle on the local upstream mirror. Phases receive a Mirror
// from InitMirror or OpenMirror instead of probing the filesystem themselves.
type Mirror struct {
	dir    string
	runner *CommandRunner
}

// InitMirror opens the mirror at dir, creating and initializing an empty
// repository there first if the directory does not exist. created reports
// whether a new repository was initialized.
func InitMirror(ctx context.Context, dir string) (m *Mirror, created bool, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve mirror path: %w", err)
	}

	if _, err := os.Stat(absDir); os.IsNotExist(err) {
		if err := os.Mkdir(absDir, 0750); err != nil {
			return nil, false, fmt.Errorf("could not create mirror directory: %w", err)
		}
		if _, err := NewCommandRunner(absDir).Run(ctx, "init", "init", "--quiet"); err != nil {
			return nil, false, err
		}
		created = true
	}

	m, err = OpenMirror(absDir)
	if err != nil {
		return nil, false, err
	}
	return m, created, nil
}

// OpenMirror returns a handle on an existing mirror. It never creates
// anything; a missing or non-repository directory yields a precondition
// error wrapping ErrMirrorNotFound.
func OpenMirror(dir string) (*Mirror, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mirror path: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil || !info.IsDir() {
		return nil, pserrors.NewPreconditionError(pserrors.ErrMirrorNotFound, absDir)
	}
	if _, err := gogit.PlainOpen(absDir); err != nil {
		return nil, pserrors.NewPreconditionError(pserrors.ErrMirrorNotFound, absDir)
	}

	return &Mirror{dir: absDir, runner: NewCommandRunner(absDir)}, nil
}

// Dir returns the absolute path of the mirror's working tree
func (m *Mirror) Dir() string {
	return m.dir
}

// open re-reads the repository from disk so refs and packs written by
// external git commands are visible.
func (m *Mirror) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	return repo, nil
}

// Fetch fetches branch from url with full history
func (m *Mirror) Fetch(ctx context.Context, url, branch string) error {
	_, err := m.runner.Run(ctx, "fetch", "fetch", url, branch)
	return err
}

// ResolveCommit resolves rev to a full commit hash using the mirror's object store
func (m *Mirror) ResolveCommit(rev string) (string, error) {
	repo, err := m.open()
	if err != nil {
		return "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", pserrors.NewPreconditionError(pserrors.ErrPinUnresolved, rev)
	}
	if _, err := repo.CommitObject(*hash); err != nil {
		return "", pserrors.NewPreconditionError(pserrors.ErrPinUnresolved, rev)
	}
	return hash.String(), nil
}

// Head returns the commit hash HEAD points at
func (m *Mirror) Head() (string, error) {
	repo, err := m.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// HardReset resets the working tree and index to revision
func (m *Mirror) HardReset(ctx context.Context, revision string) error {
	_, err := m.runner.Run(ctx, "reset", "reset", "--quiet", "--hard", revision)
	return err
}

// IsApplyInProgress reports whether a git am session was left behind
func (m *Mirror) IsApplyInProgress() bool {
	_, err := os.Stat(filepath.Join(m.dir, ".git", "rebase-apply"))
	return err == nil
}

// DiscardApply drops a leftover git am session and stale reject files so the
// next reset starts from a clean state.
func (m *Mirror) DiscardApply(ctx context.Context) error {
	if m.IsApplyInProgress() {
		if _, err := m.runner.Run(ctx, "reset", "am", "--quit"); err != nil {
			return err
		}
	}
	_, err := m.runner.Run(ctx, "reset", "clean", "--force", "-x", "--quiet", "--", "*.rej")
	return err
}

// RejectFiles lists untracked reject files in the working tree, sorted
func (m *Mirror) RejectFiles(ctx context.Context) ([]string, error) {
	lines, err := m.runner.RunLines(ctx, "apply", "ls-files", "--others", "--", "*.rej")
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	sort.Strings(files)
	return files, nil
}

// FormatPatch writes one patch per commit in base..HEAD into outDir and
// returns the written paths in application order. Output is independent of
// the commit hashes created in this mirror.
func (m *Mirror) FormatPatch(ctx context.Context, base, outDir string) ([]string, error) {
	lines, err := m.runner.RunLines(ctx, "format-patch",
		"format-patch",
		"--base="+base,
		"--output-directory", outDir,
		"--no-stat",
		"--no-numbered",
		"--no-signature",
		"--zero-commit",
		base,
	)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(m.dir, line)
		}
		written = append(written, line)
	}
	return written, nil
}

// CountCommits counts the non-merge commits reachable from HEAD by first
// parent until base. It fails if base is not on that path.
func (m *Mirror) CountCommits(base string) (int, error) {
	repo, err := m.open()
	if err != nil {
		return 0, err
	}

	baseHash, err := repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return 0, pserrors.NewPreconditionError(pserrors.ErrPinUnresolved, base)
	}

	head, err := repo.Head()
	if err != nil {
		return 0, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return 0, fmt.Errorf("failed to get commit: %w", err)
	}

	count := 0
	for commit.Hash != *baseHash {
		if commit.NumParents() <= 1 {
			count++
		}
		if commit.NumParents() == 0 {
			return 0, fmt.Errorf("%s is not an ancestor of HEAD", base)
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return 0, fmt.Errorf("failed to get parent commit: %w", err)
		}
	}
	return count, nil
}
