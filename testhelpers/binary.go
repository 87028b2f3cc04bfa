package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	binaryPath string
	binaryDir  string
	binaryOnce sync.Once
	binaryErr  error
)

// BinaryPath returns the path of a patchstack binary built from this module,
// building it on first use. The test is skipped when the Go toolchain is unavailable.
func BinaryPath(t *testing.T) string {
	t.Helper()
	binaryOnce.Do(func() {
		binaryPath, binaryDir, binaryErr = buildBinary()
	})
	if binaryErr != nil {
		t.Fatalf("failed to build patchstack binary: %v", binaryErr)
	}
	return binaryPath
}

// TestMain runs the package's tests and removes the shared binary afterwards.
func TestMain(m *testing.M) {
	code := m.Run()
	if binaryDir != "" {
		_ = os.RemoveAll(binaryDir)
	}
	os.Exit(code)
}

func buildBinary() (string, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", "", fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "patchstack-test-binary-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := filepath.Join(tmpDir, "patchstack")
	cmd := exec.Command("go", "build", "-o", path, "./cmd/patchstack")
	cmd.Dir = moduleRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("failed to build: %s: %w", string(output), err)
	}
	return path, tmpDir, nil
}

// findModuleRoot walks up from startDir to the directory containing go.mod.
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
