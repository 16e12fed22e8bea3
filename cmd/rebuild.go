/*
rebuild.go implements `nx rebuild`: runs the preflight checks then execs
darwin-rebuild switch (spec §4.10).
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/system"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [-- <passthrough...>]",
	Short: "Run preflight checks and rebuild the system configuration",
	RunE:  runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	orch := system.New(appContext.RepoRoot, args)
	return orch.Rebuild(cmd.Context())
}
