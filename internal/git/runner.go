package git

import (
	"context"
	"strings"

	"patchstack.dev/patchstack/internal/process"
)

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	env        []string
}

// NewCommandRunner creates a new CommandRunner rooted at workingDir. env is
// appended to the inherited environment of every command.
func NewCommandRunner(workingDir string, env ...string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, env: env}
}

// Run executes a git command for the named step and returns its trimmed output
func (r *CommandRunner) Run(ctx context.Context, step string, args ...string) (string, error) {
	return r.runInternal(ctx, step, args...)
}

// RunLines executes a git command and returns output as lines
func (r *CommandRunner) RunLines(ctx context.Context, step string, args ...string) ([]string, error) {
	output, err := r.Run(ctx, step, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

func (r *CommandRunner) runInternal(ctx context.Context, step string, args ...string) (string, error) {
	res, err := process.Run(ctx, process.Command{
		Step: step,
		Name: "git",
		Args: args,
		Dir:  r.workingDir,
		Env:  r.env,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
