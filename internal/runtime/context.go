package runtime

import (
	"context"
	"fmt"
	"os"

	"patchstack.dev/patchstack/internal/config"
	"patchstack.dev/patchstack/internal/output"
)

// Context provides access to configuration and output for commands
type Context struct {
	Context context.Context
	Config  *config.Config
	Splog   *output.Splog
}

// NewContext creates a context for the given configuration and logger
func NewContext(ctx context.Context, cfg *config.Config, splog *output.Splog) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Context: ctx,
		Config:  cfg,
		Splog:   splog,
	}
}

// GetContext loads the configuration for the current working directory,
// which is the invocation root every fixed path is relative to.
func GetContext(ctx context.Context, splog *output.Splog) (*Context, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return NewContext(ctx, cfg, splog), nil
}
