package git

import (
	"context"
	"errors"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

// ApplyOutcome represents the result of applying a patch series
type ApplyOutcome int

const (
	// ApplyClean indicates every patch applied without rejected hunks
	ApplyClean ApplyOutcome = iota
	// ApplyConflicts indicates some hunks were written to .rej files
	ApplyConflicts
	// ApplyFailed indicates git am failed without producing reject files
	ApplyFailed
)

func (o ApplyOutcome) String() string {
	switch o {
	case ApplyClean:
		return "clean"
	case ApplyConflicts:
		return "applied with conflicts"
	case ApplyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ApplyResult describes what happened when a series was applied
type ApplyResult struct {
	Outcome ApplyOutcome
	// Applied is the number of patch files handed to git am
	Applied int
	// Rejected lists reject files relative to the mirror root
	Rejected []string
}

// ApplyPatches applies patches in the given order as one mail-style
// sequence, using three-way merge and falling back to reject files.
// A conflicted apply is not an error: the caller decides from Outcome.
func (m *Mirror) ApplyPatches(ctx context.Context, patches []string) (ApplyResult, error) {
	result := ApplyResult{Applied: len(patches)}
	if len(patches) == 0 {
		return result, nil
	}

	args := append([]string{"am", "--3way", "--reject"}, patches...)
	_, amErr := m.runner.Run(ctx, "apply", args...)

	var cmdErr *pserrors.CommandError
	if amErr != nil && !errors.As(amErr, &cmdErr) {
		result.Outcome = ApplyFailed
		return result, amErr
	}

	rejected, err := m.RejectFiles(ctx)
	if err != nil {
		result.Outcome = ApplyFailed
		return result, err
	}
	if len(rejected) > 0 {
		result.Outcome = ApplyConflicts
		result.Rejected = rejected
		return result, nil
	}

	if amErr != nil {
		result.Outcome = ApplyFailed
		return result, amErr
	}
	return result, nil
}
