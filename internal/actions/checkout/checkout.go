// Package checkout materializes the patched tree: the upstream mirror reset
// to the pinned commit with the patch series applied on top.
package checkout

import (
	"errors"
	"os"

	pserrors "patchstack.dev/patchstack/internal/errors"
	"patchstack.dev/patchstack/internal/git"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/pin"
	"patchstack.dev/patchstack/internal/runtime"
	"patchstack.dev/patchstack/internal/series"
)

// Action performs the checkout operation. Every run starts again from the
// pin; a half-applied series from an earlier run is discarded.
func Action(ctx *runtime.Context) (git.ApplyResult, error) {
	cfg := ctx.Config
	splog := ctx.Splog
	gctx := ctx.Context

	commit, err := pin.Read(cfg.PinPath())
	if err != nil {
		return git.ApplyResult{}, err
	}
	patches, err := series.List(cfg.PatchesPath())
	if err != nil {
		return git.ApplyResult{}, err
	}

	if _, err := os.Stat(cfg.MirrorPath()); errors.Is(err, os.ErrNotExist) {
		splog.Step("Creating Git repository…")
	}
	mirror, _, err := git.InitMirror(gctx, cfg.MirrorPath())
	if err != nil {
		return git.ApplyResult{}, err
	}

	splog.Step("Fetching %s…", cfg.MirrorDir)
	if err := mirror.Fetch(gctx, cfg.UpstreamURL, cfg.UpstreamBranch); err != nil {
		return git.ApplyResult{}, err
	}

	revision, err := mirror.ResolveCommit(commit.String())
	if err != nil {
		return git.ApplyResult{}, err
	}

	splog.Step("Checking out %s…", commit)
	if err := mirror.DiscardApply(gctx); err != nil {
		return git.ApplyResult{}, err
	}
	if err := mirror.HardReset(gctx, revision); err != nil {
		return git.ApplyResult{}, err
	}

	splog.Step("Applying patches…")
	result, err := mirror.ApplyPatches(gctx, patches)
	switch result.Outcome {
	case git.ApplyConflicts:
		printConflictStatus(result, splog)
		return result, pserrors.NewConflictError(result.Rejected)
	case git.ApplyFailed:
		return result, err
	}

	splog.Info("Applied %d patch(es) on top of %s.", result.Applied, commit.Short())
	return result, nil
}

// printConflictStatus lists the rejected hunks and how to finish by hand
func printConflictStatus(result git.ApplyResult, splog *output.Splog) {
	splog.Info("%s", output.ColorRed("Hit conflicts applying patches"))
	splog.Newline()

	splog.Info("%s", output.ColorYellow("Reject files:"))
	for _, file := range result.Rejected {
		splog.Info("%s", output.ColorRed(file))
	}
	splog.Newline()

	splog.Info("%s", output.ColorYellow("To finish applying the patch series:"))
	splog.Info("(1) apply the hunks in each reject file by hand")
	splog.Info("(2) stage the result and run %s inside the mirror", output.ColorCyan("git am --continue"))
	splog.Info("(3) run %s to record the resolved series", output.ColorCyan("patchstack format-patch"))
	splog.Newline()
	splog.Tip("Running %s again starts over from the pinned commit.", output.ColorCyan("patchstack checkout"))
}
