// Package series manages the patch series directory: the ordered set of
// patch files that represent local modifications on top of the pin.
//
// Application order is filename order. The directory is only ever replaced
// as a whole; the previous series is set aside until a new one has been
// written successfully.
package series

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

// List returns the absolute paths of the regular files in dir, sorted by
// filename. Subdirectories are ignored.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pserrors.NewPreconditionError(pserrors.ErrPatchesNotFound, dir)
		}
		return nil, fmt.Errorf("could not open patches directory: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patches directory: %w", err)
	}

	patches := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		patches = append(patches, filepath.Join(absDir, entry.Name()))
	}
	sort.Strings(patches)
	return patches, nil
}

// EnsureNoBackup fails if a backup from an earlier extraction is still present
func EnsureNoBackup(backup string) error {
	if _, err := os.Lstat(backup); err == nil {
		return pserrors.NewPreconditionError(pserrors.ErrBackupExists, backup)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not inspect %s: %w", backup, err)
	}
	return nil
}

// SetAside renames dir to backup if dir exists. It reports whether a rename
// happened. An existing backup is never overwritten.
func SetAside(dir, backup string) (bool, error) {
	if err := EnsureNoBackup(backup); err != nil {
		return false, err
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not inspect %s: %w", dir, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}

	if err := os.Rename(dir, backup); err != nil {
		return false, fmt.Errorf("could not rename former patches directory: %w", err)
	}
	return true, nil
}

// DropBackup removes the set-aside series once a new one is in place
func DropBackup(backup string) error {
	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("could not remove %s: %w", backup, err)
	}
	return nil
}
