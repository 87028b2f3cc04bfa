package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/actions/formatpatch"
	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/runtime"
)

// newFormatPatchCmd creates the format-patch command
func newFormatPatchCmd(splog *output.Splog) *cobra.Command {
	return &cobra.Command{
		Use:   "format-patch",
		Short: "Regenerate the patch series from the patched mirror",
		Long: `Regenerate the patch series from the patched mirror.

Writes one patch per commit between the pinned commit and the mirror's HEAD.
The previous series is moved to patches.orig while the new one is written
and removed once extraction succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context(), splog)
			if err != nil {
				return err
			}

			_, err = formatpatch.Action(ctx)
			return err
		},
	}
}
