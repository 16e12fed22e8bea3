/*
status.go implements `nx status`: a quick summary of the repo, its
manifest inventory, and the package-search cache. Always exits 0.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the repo root, manifests, and search cache",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Printf("Repo root: %s\n", appContext.RepoRoot)
	fmt.Printf("Manifests: %d\n", len(appContext.Config.AllFiles()))

	all, err := appContext.Finder.FindAllPackages()
	if err != nil {
		return err
	}
	for _, b := range listDefaultOrder {
		fmt.Printf("  %s: %d\n", b, len(all[b]))
	}

	fmt.Printf("Search cache: %d name(s)\n", appContext.Cache.Count())
	fmt.Printf("Finder rebuilds: %d\n", appContext.Finder.RebuildCount())
	return nil
}
