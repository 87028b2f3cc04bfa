package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/config"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/runtime"
)

// PackageScript stands in for the upstream source packager. It copies the js
// tree and README into $STAGING/mozjs-1.0.0 and refuses to archive.
const PackageScript = `#!/bin/sh
set -e
: "${STAGING:?STAGING must be set}"
if [ "$TAR" != ":" ]; then
	echo "archiving must be disabled" >&2
	exit 1
fi
src=$(cd "$(dirname "$0")/../.." && pwd)
dest="$STAGING/mozjs-1.0.0"
mkdir -p "$dest"
cp -R "$src/js" "$dest/js"
cp "$src/README" "$dest/README"
`

// DefaultFilters keeps sources and headers and drops build output and the packager.
const DefaultFilters = `- *.o
- make-source-package.sh
+ */
+ *.cpp
+ *.h
+ README
- *
`

// UpstreamBranch is the branch the scene's upstream publishes.
const UpstreamBranch = "release"

// Patch is one commit of a generated patch series.
type Patch struct {
	Message string
	Changes []Change
}

// Scene is a host project directory wired to a local upstream repository.
type Scene struct {
	Root     string
	Upstream *GitRepo
	Pin      string
}

// NewScene creates a host project whose .patchstack.yaml points at a fresh
// upstream repository. The pin names the upstream's initial commit and the
// patch series is empty.
func NewScene(t *testing.T) *Scene {
	t.Helper()
	RequireTools(t, "git")
	IsolateGit(t)

	base := t.TempDir()
	upstream, err := NewGitRepo(filepath.Join(base, "upstream"), UpstreamBranch)
	require.NoError(t, err)
	require.NoError(t, upstream.CommitChange("Initial import",
		Change{Path: "README", Content: "SpiderMonkey\n"},
		Change{Path: "js/src/jsapi.cpp", Content: "int JS_Init() { return 0; }\n"},
		Change{Path: "js/src/jsapi.h", Content: "int JS_Init();\n"},
		Change{Path: "js/src/old/legacy.h", Content: "#define LEGACY 1\n"},
		Change{Path: "js/src/build/jsapi.o", Content: "object code\n"},
		Change{Path: config.DefaultPackageScript, Content: PackageScript, Executable: true},
	))

	s := &Scene{
		Root:     filepath.Join(base, "host"),
		Upstream: upstream,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root, config.DefaultPatchesDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root, config.DefaultFilterFile), []byte(DefaultFilters), 0644))
	s.Configure(t, nil)
	s.SetPin(t, Must(upstream.Head()))
	return s
}

// IsolateGit keeps the developer's Git configuration out of the test and
// provides the committer identity that patch application needs.
func IsolateGit(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

// Configure writes .patchstack.yaml pointing at the scene's upstream, with
// any further overrides applied by fn.
func (s *Scene) Configure(t *testing.T, fn func(*config.RepoConfig)) {
	t.Helper()
	url := s.Upstream.Dir
	branch := UpstreamBranch
	overrides := &config.RepoConfig{UpstreamURL: &url, UpstreamBranch: &branch}
	if fn != nil {
		fn(overrides)
	}
	require.NoError(t, config.Save(s.Root, overrides))
}

// Config loads the scene's resolved configuration.
func (s *Scene) Config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(s.Root)
	require.NoError(t, err)
	return cfg
}

// Context returns a runtime context for the scene with output discarded.
func (s *Scene) Context(t *testing.T) *runtime.Context {
	t.Helper()
	return runtime.NewContext(context.Background(), s.Config(t), output.NewDiscardSplog())
}

// SetPin records rev in the pin file.
func (s *Scene) SetPin(t *testing.T, rev string) {
	t.Helper()
	s.Pin = rev
	require.NoError(t, os.WriteFile(s.Config(t).PinPath(), []byte(rev+"\n"), 0644))
}

// AdvanceUpstream commits changes on the upstream branch and returns the new head.
func (s *Scene) AdvanceUpstream(t *testing.T, message string, changes ...Change) string {
	t.Helper()
	require.NoError(t, s.Upstream.CommitChange(message, changes...))
	return Must(s.Upstream.Head())
}

// WritePatchSeries replaces the patch series with one patch per entry,
// each built as a commit on top of the pin and extracted by git format-patch.
// It returns the patch file names in series order.
func (s *Scene) WritePatchSeries(t *testing.T, patches ...Patch) []string {
	t.Helper()
	scratch, err := CloneGitRepo(s.Upstream.Dir, filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)
	require.NoError(t, scratch.RunGitCommand("checkout", "--quiet", "--detach", s.Pin))
	for _, p := range patches {
		require.NoError(t, scratch.CommitChange(p.Message, p.Changes...))
	}
	return s.writeSeriesFrom(t, scratch)
}

// WriteBrokenPatch replaces the patch series with a single patch whose
// preimage never existed upstream, so it can only apply with rejects.
func (s *Scene) WriteBrokenPatch(t *testing.T, path string) []string {
	t.Helper()
	scratch, err := CloneGitRepo(s.Upstream.Dir, filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)
	require.NoError(t, scratch.RunGitCommand("checkout", "--quiet", "--detach", s.Pin))
	require.NoError(t, scratch.CommitChange("Local rewrite", Change{Path: path, Content: "alpha\nbeta\ngamma\n"}))
	base := Must(scratch.Head())
	require.NoError(t, scratch.CommitChange("Tweak rewrite", Change{Path: path, Content: "alpha\nBETA\ngamma\n"}))

	patchesDir := s.resetPatchesDir(t)
	require.NoError(t, scratch.RunGitCommand(formatPatchArgs(base, patchesDir)...))
	return listNames(t, patchesDir)
}

// WriteJunkPatch replaces the patch series with a single file that is not a
// mail-formatted patch and returns its path.
func (s *Scene) WriteJunkPatch(t *testing.T) string {
	t.Helper()
	path := filepath.Join(s.resetPatchesDir(t), "0001-junk.patch")
	require.NoError(t, os.WriteFile(path, []byte("not a patch\n"), 0644))
	return path
}

func (s *Scene) writeSeriesFrom(t *testing.T, scratch *GitRepo) []string {
	t.Helper()
	patchesDir := s.resetPatchesDir(t)
	require.NoError(t, scratch.RunGitCommand(formatPatchArgs(s.Pin, patchesDir)...))
	return listNames(t, patchesDir)
}

func (s *Scene) resetPatchesDir(t *testing.T) string {
	t.Helper()
	patchesDir := s.Config(t).PatchesPath()
	require.NoError(t, os.RemoveAll(patchesDir))
	require.NoError(t, os.MkdirAll(patchesDir, 0755))
	return patchesDir
}

// formatPatchArgs produces patches in the same canonical form patchstack writes.
func formatPatchArgs(base, outDir string) []string {
	return []string{
		"format-patch",
		"--base=" + base,
		"--output-directory", outDir,
		"--no-stat", "--no-numbered", "--no-signature", "--zero-commit",
		base,
	}
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
