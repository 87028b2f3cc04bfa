// Package formatpatch regenerates the patch series from the patched tree.
package formatpatch

import (
	"fmt"
	"os"
	"path/filepath"

	pserrors "patchstack.dev/patchstack/internal/errors"
	"patchstack.dev/patchstack/internal/git"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/pin"
	"patchstack.dev/patchstack/internal/runtime"
	"patchstack.dev/patchstack/internal/series"
)

// Result describes a completed extraction
type Result struct {
	Patches []string
	// BackedUp reports whether a previous series was set aside
	BackedUp bool
}

// Action writes one patch per commit between the pin and the mirror's HEAD
// into the patch series directory, replacing the previous series.
//
// The previous series is renamed aside first. It is removed only after the
// new series has been written and holds one patch per commit; on any
// failure it stays next to the new directory for manual recovery.
func Action(ctx *runtime.Context) (Result, error) {
	cfg := ctx.Config
	splog := ctx.Splog
	gctx := ctx.Context

	mirror, err := git.OpenMirror(cfg.MirrorPath())
	if err != nil {
		return Result{}, err
	}
	commit, err := pin.Read(cfg.PinPath())
	if err != nil {
		return Result{}, err
	}
	if err := series.EnsureNoBackup(cfg.BackupPath()); err != nil {
		return Result{}, err
	}

	splog.Step("Formatting patches…")
	backedUp, err := series.SetAside(cfg.PatchesPath(), cfg.BackupPath())
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(cfg.PatchesPath(), 0750); err != nil {
		return Result{BackedUp: backedUp}, fmt.Errorf("could not create patches directory: %w", err)
	}

	patches, err := mirror.FormatPatch(gctx, commit.String(), cfg.PatchesPath())
	if err != nil {
		return Result{BackedUp: backedUp}, err
	}

	commits, err := mirror.CountCommits(commit.String())
	if err != nil {
		return Result{Patches: patches, BackedUp: backedUp}, err
	}
	if commits != len(patches) {
		return Result{Patches: patches, BackedUp: backedUp}, &pserrors.IncompleteSeriesError{Commits: commits, Patches: len(patches)}
	}

	if backedUp {
		if err := series.DropBackup(cfg.BackupPath()); err != nil {
			return Result{Patches: patches, BackedUp: backedUp}, err
		}
	}

	for _, p := range patches {
		splog.Debug("%s", output.ColorDim(filepath.Base(p)))
	}
	splog.Info("Wrote %d patch(es) to %s.", len(patches), cfg.PatchesDir)
	return Result{Patches: patches, BackedUp: backedUp}, nil
}
