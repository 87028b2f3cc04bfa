// Package pin reads the upstream commit the patch series is based on.
//
// The pin lives in a single file in the host project root and is edited by
// hand between runs; patchstack only ever reads it.
package pin

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

// Pin is an opaque commit identifier
type Pin string

func (p Pin) String() string {
	return string(p)
}

// Short returns an abbreviated form for display
func (p Pin) Short() string {
	if len(p) > 12 {
		return string(p[:12])
	}
	return string(p)
}

// Read returns the pin stored at path with trailing whitespace removed
func Read(path string) (Pin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", pserrors.NewPreconditionError(pserrors.ErrPinNotFound, path)
		}
		return "", fmt.Errorf("could not retrieve commit: %w", err)
	}

	commit := strings.TrimRightFunc(string(data), unicode.IsSpace)
	if commit == "" {
		return "", pserrors.NewPreconditionError(pserrors.ErrPinEmpty, path)
	}
	return Pin(commit), nil
}
