package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when config does not exist", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		cfg, err := Load(root)
		require.NoError(t, err)
		require.Equal(t, DefaultMirrorDir, cfg.MirrorDir)
		require.Equal(t, DefaultUpstreamURL, cfg.UpstreamURL)
		require.Equal(t, DefaultUpstreamBranch, cfg.UpstreamBranch)
		require.Equal(t, filepath.Join(root, "GECKO_DEV_COMMIT"), cfg.PinPath())
		require.Equal(t, filepath.Join(root, "patches.orig"), cfg.BackupPath())
		require.Equal(t, filepath.Join(root, "gecko-dev"), cfg.MirrorPath())
		require.Equal(t, filepath.Join(root, "gecko-dev", "js", "src", "make-source-package.sh"), cfg.PackageScriptPath(cfg.MirrorPath()))
		require.Equal(t, filepath.Join("/mirror", "js", "src", "make-source-package.sh"), cfg.PackageScriptPath("/mirror"))
	})

	t.Run("applies overrides from the config file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		err := Save(root, &RepoConfig{
			UpstreamURL:    stringPtr("/srv/upstream.git"),
			UpstreamBranch: stringPtr("main"),
			VendorDir:      stringPtr("vendor/engine"),
		})
		require.NoError(t, err)

		cfg, err := Load(root)
		require.NoError(t, err)
		require.Equal(t, "/srv/upstream.git", cfg.UpstreamURL)
		require.Equal(t, "main", cfg.UpstreamBranch)
		require.Equal(t, filepath.Join(root, "vendor", "engine"), cfg.VendorPath())
		// Untouched fields keep their defaults
		require.Equal(t, DefaultPatchesDir, cfg.PatchesDir)
	})

	t.Run("keeps absolute paths as they are", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		script := filepath.Join(t.TempDir(), "package.sh")

		err := Save(root, &RepoConfig{PackageScript: &script})
		require.NoError(t, err)

		cfg, err := Load(root)
		require.NoError(t, err)
		require.Equal(t, script, cfg.PackageScriptPath("/mirror"))
	})

	t.Run("empty config file yields defaults", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), nil, 0600))

		cfg, err := Load(root)
		require.NoError(t, err)
		require.Equal(t, DefaultFilterFile, cfg.FilterFile)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("trunk: main\n"), 0600))

		_, err := Load(root)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse")
	})
}

func stringPtr(s string) *string {
	return &s
}
