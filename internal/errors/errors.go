// Package errors provides sentinel errors and custom error types for patchstack.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for precondition failures
var (
	// ErrMirrorNotFound indicates that the upstream mirror has not been created yet
	ErrMirrorNotFound = errors.New("could not find upstream mirror")

	// ErrPinNotFound indicates that the pin file is missing
	ErrPinNotFound = errors.New("could not retrieve pinned commit")

	// ErrPinEmpty indicates that the pin file holds no commit identifier
	ErrPinEmpty = errors.New("pinned commit is empty")

	// ErrPinUnresolved indicates that the pin does not name a commit in the fetched history
	ErrPinUnresolved = errors.New("pinned commit not found in upstream history")

	// ErrBackupExists indicates that a previous patch series backup is still on disk
	ErrBackupExists = errors.New("patch series backup already exists")

	// ErrPatchesNotFound indicates that the patch series directory is missing
	ErrPatchesNotFound = errors.New("could not open patches directory")

	// ErrFilterNotFound indicates that the vendoring filter rule file is missing
	ErrFilterNotFound = errors.New("could not find filter rules")

	// ErrPatchConflict indicates that patch application rejected one or more hunks
	ErrPatchConflict = errors.New("patch conflict")

	// ErrIncompleteSeries indicates that extraction did not write one patch per commit
	ErrIncompleteSeries = errors.New("incomplete patch series")
)

// PreconditionError is reported before any mutation is attempted.
type PreconditionError struct {
	Path string
	Err  error
}

func (e *PreconditionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Path)
	}
	return e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// NewPreconditionError creates a new PreconditionError
func NewPreconditionError(err error, path string) *PreconditionError {
	return &PreconditionError{Path: path, Err: err}
}

// CommandError represents a failed subprocess invocation during a named step
type CommandError struct {
	Step     string
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Step, e.Command)
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", strings.TrimSpace(e.Stderr))
	}
	if e.Err != nil && e.ExitCode < 0 {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError. exitCode is -1 when the process
// never produced an exit status (not found, killed by a signal).
func NewCommandError(step, command string, args []string, exitCode int, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Step:     step,
		Command:  command,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Err:      err,
	}
}

// StructuralError reports an artifact missing after a subprocess that claimed success
type StructuralError struct {
	Step    string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

// NewStructuralError creates a new StructuralError
func NewStructuralError(step, message string) *StructuralError {
	return &StructuralError{Step: step, Message: message}
}

// ConflictError represents rejected hunks left behind by patch application
type ConflictError struct {
	Rejected []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("could not apply patches cleanly: %d reject file(s) written", len(e.Rejected))
}

// Is returns true if the target error is ErrPatchConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrPatchConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(rejected []string) *ConflictError {
	return &ConflictError{Rejected: rejected}
}

// IncompleteSeriesError reports a mismatch between commits and written patches
type IncompleteSeriesError struct {
	Commits int
	Patches int
}

func (e *IncompleteSeriesError) Error() string {
	return fmt.Sprintf("format-patch wrote %d patch(es) for %d commit(s)", e.Patches, e.Commits)
}

// Is returns true if the target error is ErrIncompleteSeries
func (e *IncompleteSeriesError) Is(target error) bool {
	return target == ErrIncompleteSeries
}
