package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/actions/checkout"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/runtime"
)

// newCheckoutCmd creates the checkout command
func newCheckoutCmd(splog *output.Splog) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Reset the upstream mirror to the pinned commit and apply the patch series",
		Long: `Reset the upstream mirror to the pinned commit and apply the patch series.

The mirror is created on first use. Every run fetches the tracked upstream
branch, hard-resets to the pinned commit and replays the patch series from a
clean state, discarding any edits that were not extracted with format-patch.
Hunks that do not apply are left as .rej files next to their targets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context(), splog)
			if err != nil {
				return err
			}

			_, err = checkout.Action(ctx)
			return err
		},
	}
}
