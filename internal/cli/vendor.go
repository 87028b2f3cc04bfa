package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/actions/vendor"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/runtime"
)

// newVendorCmd creates the vendor command
func newVendorCmd(splog *output.Splog) *cobra.Command {
	return &cobra.Command{
		Use:   "vendor",
		Short: "Package the patched mirror and sync it into the vendored directory",
		Long: `Package the patched mirror and sync it into the vendored directory.

Runs the upstream packaging script into a temporary staging directory and
mirrors the packaged sources into the vendored directory through the filter
rules, deleting files that are no longer shipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context(), splog)
			if err != nil {
				return err
			}

			_, err = vendor.Action(ctx)
			return err
		},
	}
}
