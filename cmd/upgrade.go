/*
upgrade.go implements `nx upgrade`: the four-phase flake/brew/rebuild/
commit flow (spec §4.10).
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/system"
)

var (
	upgradeSkipBrew    bool
	upgradeSkipRebuild bool
	upgradeSkipCommit  bool
	upgradeDryRun      bool
	upgradeNoAI        bool
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [-- <passthrough...>]",
	Short: "Update flake inputs, upgrade Homebrew, rebuild, and commit flake.lock",
	RunE:  runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeSkipBrew, "skip-brew", false, "skip the Homebrew upgrade phase")
	upgradeCmd.Flags().BoolVar(&upgradeSkipRebuild, "skip-rebuild", false, "skip the rebuild phase")
	upgradeCmd.Flags().BoolVar(&upgradeSkipCommit, "skip-commit", false, "skip committing flake.lock")
	upgradeCmd.Flags().BoolVar(&upgradeDryRun, "dry-run", false, "show what would change without running any phase that mutates state")
	upgradeCmd.Flags().BoolVar(&upgradeNoAI, "no-ai", false, "reserved; upgrade never engages an AI edit engine")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	orch := system.New(appContext.RepoRoot, args)
	return orch.Upgrade(cmd.Context(), system.UpgradeOptions{
		SkipBrew:    upgradeSkipBrew,
		SkipRebuild: upgradeSkipRebuild,
		SkipCommit:  upgradeSkipCommit,
		DryRun:      upgradeDryRun,
	})
}
