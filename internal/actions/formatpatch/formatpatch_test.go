package formatpatch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/actions/checkout"
	"patchstack.dev/patchstack/internal/actions/formatpatch"
	pserrors "patchstack.dev/patchstack/internal/errors"
	"patchstack.dev/patchstack/testhelpers"
)

func twoPatchSeries() []testhelpers.Patch {
	return []testhelpers.Patch{
		{Message: "Export init", Changes: []testhelpers.Change{
			{Path: "js/src/jsapi.h", Content: "extern int JS_Init();\n"},
		}},
		{Message: "Remove legacy header", Changes: []testhelpers.Change{
			{Path: "js/src/old/legacy.h", Delete: true},
		}},
	}
}

func TestFormatPatchAction(t *testing.T) {
	t.Run("checkout then format-patch reproduces the series", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		names := scene.WritePatchSeries(t, twoPatchSeries()...)
		cfg := scene.Config(t)
		before := testhelpers.Snapshot(t, cfg.PatchesPath())

		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)

		result, err := formatpatch.Action(scene.Context(t))
		require.NoError(t, err)
		require.True(t, result.BackedUp)
		require.Len(t, result.Patches, len(names))

		require.Equal(t, before, testhelpers.Snapshot(t, cfg.PatchesPath()))
		testhelpers.RequireNoPath(t, cfg.BackupPath())
	})

	t.Run("running twice is byte-identical", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		scene.WritePatchSeries(t, twoPatchSeries()...)
		cfg := scene.Config(t)
		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)

		_, err = formatpatch.Action(scene.Context(t))
		require.NoError(t, err)
		first := testhelpers.Snapshot(t, cfg.PatchesPath())

		_, err = formatpatch.Action(scene.Context(t))
		require.NoError(t, err)
		require.Equal(t, first, testhelpers.Snapshot(t, cfg.PatchesPath()))
	})

	t.Run("new local commits become new patches", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		scene.WritePatchSeries(t, twoPatchSeries()...)
		cfg := scene.Config(t)
		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)

		mirror, err := testhelpers.OpenGitRepo(cfg.MirrorPath())
		require.NoError(t, err)
		require.NoError(t, mirror.CommitChange("Return one",
			testhelpers.Change{Path: "js/src/jsapi.cpp", Content: "int JS_Init() { return 1; }\n"}))

		result, err := formatpatch.Action(scene.Context(t))
		require.NoError(t, err)
		require.Len(t, result.Patches, 3)
		require.Equal(t,
			[]string{"0001-Export-init.patch", "0002-Remove-legacy-header.patch", "0003-Return-one.patch"},
			testhelpers.SortedKeys(testhelpers.Snapshot(t, cfg.PatchesPath())))
	})

	t.Run("stale patches are dropped", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		cfg := scene.Config(t)
		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(cfg.PatchesPath(), "0001-Old.patch"), []byte("old\n"), 0644))

		result, err := formatpatch.Action(scene.Context(t))
		require.NoError(t, err)
		require.Empty(t, result.Patches)
		testhelpers.RequireEmptyDir(t, cfg.PatchesPath())
		testhelpers.RequireNoPath(t, cfg.BackupPath())
	})

	t.Run("merge history keeps the backup", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		scene.WritePatchSeries(t, twoPatchSeries()...)
		cfg := scene.Config(t)
		before := testhelpers.Snapshot(t, cfg.PatchesPath())
		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)

		mirror, err := testhelpers.OpenGitRepo(cfg.MirrorPath())
		require.NoError(t, err)
		require.NoError(t, mirror.RunGitCommand("checkout", "--quiet", "-b", "side", scene.Pin))
		require.NoError(t, mirror.CommitChange("Side change",
			testhelpers.Change{Path: "js/src/side.h", Content: "// side\n"}))
		require.NoError(t, mirror.RunGitCommand("checkout", "--quiet", "-"))
		require.NoError(t, mirror.RunGitCommand("merge", "--quiet", "--no-ff", "--no-edit", "side"))

		_, err = formatpatch.Action(scene.Context(t))
		require.ErrorIs(t, err, pserrors.ErrIncompleteSeries)

		var incomplete *pserrors.IncompleteSeriesError
		require.ErrorAs(t, err, &incomplete)
		require.Equal(t, 2, incomplete.Commits)
		require.Equal(t, 3, incomplete.Patches)
		require.Equal(t, before, testhelpers.Snapshot(t, cfg.BackupPath()))
	})
}

func TestFormatPatchActionCommandFailure(t *testing.T) {
	scene := testhelpers.NewScene(t)
	scene.WritePatchSeries(t, twoPatchSeries()...)
	cfg := scene.Config(t)
	before := testhelpers.Snapshot(t, cfg.PatchesPath())
	_, err := checkout.Action(scene.Context(t))
	require.NoError(t, err)

	scene.SetPin(t, "0123456789abcdef0123456789abcdef01234567")

	result, err := formatpatch.Action(scene.Context(t))
	var cmdErr *pserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "format-patch", cmdErr.Step)
	require.NotZero(t, cmdErr.ExitCode)
	require.True(t, result.BackedUp)

	require.DirExists(t, cfg.BackupPath())
	require.Equal(t, before, testhelpers.Snapshot(t, cfg.BackupPath()))
}

func TestFormatPatchSampleScenario(t *testing.T) {
	scene := testhelpers.NewScene(t)
	names := scene.WritePatchSeries(t, testhelpers.Patch{Message: "fix", Changes: []testhelpers.Change{
		{Path: "js/src/jsapi.cpp", Content: "int JS_Init() { return 1; }\n"},
	}})
	require.Equal(t, []string{"0001-fix.patch"}, names)
	cfg := scene.Config(t)

	// Stand in for a patch written by hand or without --zero-commit.
	path := filepath.Join(cfg.PatchesPath(), "0001-fix.patch")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	header, body, ok := strings.Cut(string(data), "\n")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(header, "From "+strings.Repeat("0", 40)))
	header = strings.Replace(header, strings.Repeat("0", 40), "abc1230000000000000000000000000000000000", 1)
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"+body), 0644))

	_, err = checkout.Action(scene.Context(t))
	require.NoError(t, err)
	result, err := formatpatch.Action(scene.Context(t))
	require.NoError(t, err)
	require.Equal(t, []string{path}, result.Patches)

	regenerated, err := os.ReadFile(path)
	require.NoError(t, err)
	_, regeneratedBody, ok := strings.Cut(string(regenerated), "\n")
	require.True(t, ok)
	require.Equal(t, body, regeneratedBody)
}

func TestFormatPatchActionPreconditions(t *testing.T) {
	t.Run("missing mirror leaves the series alone", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		scene.WritePatchSeries(t, twoPatchSeries()...)
		cfg := scene.Config(t)
		before := testhelpers.Snapshot(t, cfg.PatchesPath())

		_, err := formatpatch.Action(scene.Context(t))
		require.ErrorIs(t, err, pserrors.ErrMirrorNotFound)
		require.Equal(t, before, testhelpers.Snapshot(t, cfg.PatchesPath()))
		testhelpers.RequireNoPath(t, cfg.BackupPath())
		testhelpers.RequireNoPath(t, cfg.MirrorPath())
	})

	t.Run("existing backup is never overwritten", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		cfg := scene.Config(t)
		_, err := checkout.Action(scene.Context(t))
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(cfg.BackupPath(), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.BackupPath(), "0001-Keep.patch"), []byte("keep\n"), 0644))

		_, err = formatpatch.Action(scene.Context(t))
		require.ErrorIs(t, err, pserrors.ErrBackupExists)
		testhelpers.RequireFileContent(t, filepath.Join(cfg.BackupPath(), "0001-Keep.patch"), "keep\n")
		require.DirExists(t, cfg.PatchesPath())
	})
}
