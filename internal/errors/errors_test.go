package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

func TestPreconditionError(t *testing.T) {
	err := fmt.Errorf("checkout: %w", pserrors.NewPreconditionError(pserrors.ErrPinNotFound, "/host/GECKO_DEV_COMMIT"))

	require.ErrorIs(t, err, pserrors.ErrPinNotFound)
	require.EqualError(t, err, "checkout: could not retrieve pinned commit: /host/GECKO_DEV_COMMIT")
}

func TestCommandError(t *testing.T) {
	t.Run("exit status and stderr", func(t *testing.T) {
		err := pserrors.NewCommandError("fetch", "git", []string{"fetch", "url", "release"}, 128, "", "fatal: repository not found\n", errors.New("exit status 128"))
		require.Equal(t, "fetch failed: git fetch url release (exit status 128)\nstderr: fatal: repository not found", err.Error())
	})

	t.Run("no exit status includes the cause", func(t *testing.T) {
		cause := errors.New("executable file not found")
		err := pserrors.NewCommandError("sync", "rsync", nil, -1, "", "", cause)
		require.Equal(t, "sync failed: rsync\nexecutable file not found", err.Error())
		require.ErrorIs(t, err, cause)
	})
}

func TestConflictError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", pserrors.NewConflictError([]string{"a.rej", "b.rej"}))

	require.ErrorIs(t, err, pserrors.ErrPatchConflict)
	var conflict *pserrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []string{"a.rej", "b.rej"}, conflict.Rejected)
}

func TestIncompleteSeriesError(t *testing.T) {
	err := &pserrors.IncompleteSeriesError{Commits: 3, Patches: 2}

	require.ErrorIs(t, err, pserrors.ErrIncompleteSeries)
	require.EqualError(t, err, "format-patch wrote 2 patch(es) for 3 commit(s)")
}

func TestStructuralError(t *testing.T) {
	err := pserrors.NewStructuralError("package", "could not find source directory")
	require.EqualError(t, err, "package: could not find source directory")
}
