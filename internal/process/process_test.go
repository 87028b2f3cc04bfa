package process_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	pserrors "patchstack.dev/patchstack/internal/errors"
	"patchstack.dev/patchstack/internal/process"
	"patchstack.dev/patchstack/testhelpers"
)

func TestRun(t *testing.T) {
	testhelpers.RequireTools(t, "sh")
	ctx := context.Background()

	t.Run("captures output and environment", func(t *testing.T) {
		res, err := process.Run(ctx, process.Command{
			Step: "package",
			Name: "sh",
			Args: []string{"-c", `echo "$STAGING"; echo warn >&2`},
			Dir:  t.TempDir(),
			Env:  []string{"STAGING=/tmp/staging"},
		})
		require.NoError(t, err)
		require.Equal(t, "/tmp/staging\n", res.Stdout)
		require.Equal(t, "warn\n", res.Stderr)
	})

	t.Run("non-zero exit is a command error", func(t *testing.T) {
		_, err := process.Run(ctx, process.Command{
			Step: "sync",
			Name: "sh",
			Args: []string{"-c", "echo failed >&2; exit 23"},
		})
		var cmdErr *pserrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "sync", cmdErr.Step)
		require.Equal(t, 23, cmdErr.ExitCode)
		require.Equal(t, "failed\n", cmdErr.Stderr)
		require.Contains(t, err.Error(), "sync failed: sh -c")
		require.Contains(t, err.Error(), "(exit status 23)")
	})

	t.Run("missing executable has no exit status", func(t *testing.T) {
		_, err := process.Run(ctx, process.Command{
			Step: "sync",
			Name: "patchstack-no-such-tool",
		})
		var cmdErr *pserrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, -1, cmdErr.ExitCode)
	})

	t.Run("cancellation stops the process", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := process.Run(cctx, process.Command{
			Step: "fetch",
			Name: "sh",
			Args: []string{"-c", "sleep 5"},
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}
