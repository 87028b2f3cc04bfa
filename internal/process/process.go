// Package process runs external tools as blocking subprocesses.
//
// Every collaborator patchstack drives (git, the upstream packaging script,
// rsync) goes through Run, which waits for the process to exit and turns a
// non-zero exit status into an errors.CommandError carrying the step name,
// the exit status and the captured output.
package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	pserrors "patchstack.dev/patchstack/internal/errors"
)

// Command describes a single subprocess invocation
type Command struct {
	// Step names the workflow step for error reporting (fetch, reset, apply, ...)
	Step string
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory
	Dir string
	// Env is appended to the current environment
	Env []string
}

// Result holds the captured output of a successful command
type Result struct {
	Stdout string
	Stderr string
}

// Run executes the command and waits for it to exit. There is no timeout:
// only cancellation of ctx stops a running process.
func Run(ctx context.Context, c Command) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return Result{}, pserrors.NewCommandError(c.Step, c.Name, c.Args, exitCode, stdout.String(), stderr.String(), err)
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
