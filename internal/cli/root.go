// Package cli wires the patchstack commands into a cobra command tree.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/output"
)

// ErrNoCommand is returned when patchstack is run without a command
var ErrNoCommand = errors.New("no command")

// NewRootCmd creates the root cobra command
func NewRootCmd(splog *output.Splog) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "patchstack <checkout|format-patch|vendor>",
		Short: "Maintain a patched, vendored mirror of an upstream source tree",
		Long: `patchstack maintains a locally patched mirror of an upstream source tree.

  checkout      fetch the upstream branch, reset to the pinned commit and apply the patch series
  format-patch  regenerate the patch series from the patched tree
  vendor        package the patched tree and sync it into the vendored directory`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ErrNoCommand
			}
			return fmt.Errorf("unknown command %q", args[0])
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// help is not one of the three commands
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fmt.Errorf("unknown command %q", cmd.Name())
		},
	})

	rootCmd.AddCommand(newCheckoutCmd(splog))
	rootCmd.AddCommand(newFormatPatchCmd(splog))
	rootCmd.AddCommand(newVendorCmd(splog))

	return rootCmd
}
