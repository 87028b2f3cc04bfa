package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the optional override file in the host project root
const FileName = ".patchstack.yaml"

// BackupSuffix is appended to the patch series directory while it is set aside
const BackupSuffix = ".orig"

// Defaults matching the SpiderMonkey vendoring layout
const (
	DefaultMirrorDir      = "gecko-dev"
	DefaultUpstreamURL    = "https://github.com/mozilla/gecko-dev.git"
	DefaultUpstreamBranch = "release"
	DefaultPinFile        = "GECKO_DEV_COMMIT"
	DefaultPatchesDir     = "patches"
	DefaultPackageScript  = "js/src/make-source-package.sh"
	DefaultStagingPrefix  = "mozjs-"
	DefaultFilterFile     = "filters.txt"
	DefaultVendorDir      = "spidermonkey_src/mozjs"
)

// RepoConfig represents the overrides a host project may set in .patchstack.yaml.
// Unset fields fall back to the defaults.
type RepoConfig struct {
	MirrorDir      *string `yaml:"mirror_dir,omitempty"`
	UpstreamURL    *string `yaml:"upstream_url,omitempty"`
	UpstreamBranch *string `yaml:"upstream_branch,omitempty"`
	PinFile        *string `yaml:"pin_file,omitempty"`
	PatchesDir     *string `yaml:"patches_dir,omitempty"`
	PackageScript  *string `yaml:"package_script,omitempty"`
	StagingPrefix  *string `yaml:"staging_prefix,omitempty"`
	FilterFile     *string `yaml:"filter_file,omitempty"`
	VendorDir      *string `yaml:"vendor_dir,omitempty"`
}

// Config is the resolved configuration for one invocation. Relative paths
// are resolved against Root, the directory patchstack was invoked from.
type Config struct {
	Root           string
	MirrorDir      string
	UpstreamURL    string
	UpstreamBranch string
	PinFile        string
	PatchesDir     string
	PackageScript  string
	StagingPrefix  string
	FilterFile     string
	VendorDir      string
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Root:           root,
		MirrorDir:      DefaultMirrorDir,
		UpstreamURL:    DefaultUpstreamURL,
		UpstreamBranch: DefaultUpstreamBranch,
		PinFile:        DefaultPinFile,
		PatchesDir:     DefaultPatchesDir,
		PackageScript:  DefaultPackageScript,
		StagingPrefix:  DefaultStagingPrefix,
		FilterFile:     DefaultFilterFile,
		VendorDir:      DefaultVendorDir,
	}
}

// GetRepoConfig reads the override file from root. A missing file yields an
// empty RepoConfig.
func GetRepoConfig(root string) (*RepoConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RepoConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg RepoConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Load resolves the configuration for root, applying any overrides
func Load(root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	overrides, err := GetRepoConfig(absRoot)
	if err != nil {
		return nil, err
	}

	cfg := Default(absRoot)
	apply := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	apply(&cfg.MirrorDir, overrides.MirrorDir)
	apply(&cfg.UpstreamURL, overrides.UpstreamURL)
	apply(&cfg.UpstreamBranch, overrides.UpstreamBranch)
	apply(&cfg.PinFile, overrides.PinFile)
	apply(&cfg.PatchesDir, overrides.PatchesDir)
	apply(&cfg.PackageScript, overrides.PackageScript)
	apply(&cfg.StagingPrefix, overrides.StagingPrefix)
	apply(&cfg.FilterFile, overrides.FilterFile)
	apply(&cfg.VendorDir, overrides.VendorDir)

	return cfg, nil
}

// Save writes overrides to root's override file
func Save(root string, overrides *RepoConfig) error {
	data, err := yaml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(root, FileName), data, 0600)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// MirrorPath returns the absolute path of the upstream mirror
func (c *Config) MirrorPath() string { return c.resolve(c.MirrorDir) }

// PinPath returns the absolute path of the pin file
func (c *Config) PinPath() string { return c.resolve(c.PinFile) }

// PatchesPath returns the absolute path of the patch series directory
func (c *Config) PatchesPath() string { return c.resolve(c.PatchesDir) }

// BackupPath returns where the previous patch series is set aside during extraction
func (c *Config) BackupPath() string { return c.PatchesPath() + BackupSuffix }

// FilterPath returns the absolute path of the rsync merge-filter file
func (c *Config) FilterPath() string { return c.resolve(c.FilterFile) }

// VendorPath returns the absolute path of the vendored directory
func (c *Config) VendorPath() string { return c.resolve(c.VendorDir) }

// PackageScriptPath returns the packaging entry point. A relative
// PackageScript is resolved against mirrorDir, the mirror's working tree.
func (c *Config) PackageScriptPath(mirrorDir string) string {
	if filepath.IsAbs(c.PackageScript) {
		return c.PackageScript
	}
	return filepath.Join(mirrorDir, c.PackageScript)
}
