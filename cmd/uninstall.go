/*
uninstall.go adds `nx uninstall` as an additive synonym for `nx remove`
(spec §6 permits additive extensions that don't clash with the core
contracts; this one simply delegates).
*/
package cmd

import "github.com/spf13/cobra"

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <package...>",
	Short: "Alias for remove",
	RunE:  runRemove,
}

func init() {
	uninstallCmd.Flags().AddFlagSet(removeCmd.Flags())
	rootCmd.AddCommand(uninstallCmd)
}
