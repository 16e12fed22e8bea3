/*
update.go implements `nx update`: streams `nix flake update` under the
repo root, forwarding any extra args after `--` (spec §4.10).
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/system"
)

var updateCmd = &cobra.Command{
	Use:                "update [-- <passthrough...>]",
	Short:              "Update flake inputs",
	RunE:               runUpdate,
	DisableFlagParsing: false,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	orch := system.New(appContext.RepoRoot, args)
	return orch.Update(cmd.Context())
}
