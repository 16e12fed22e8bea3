/*
search.go implements the additive `nx search` command: run the
SearchOrchestrator and print every ranked candidate without routing or
committing anything (spec §6 permits additive, non-clashing extensions).
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/search"
)

var (
	searchJSON  bool
	searchFlags sourceFlags
)

var searchCmd = &cobra.Command{
	Use:   "search <package>",
	Short: "List every ranked candidate for a package name without installing it",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit the ranked candidate list as JSON")
	addSourceFlags(searchCmd, &searchFlags)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return nxerrors.NewArgError("search requires exactly one package name")
	}
	name := args[0]

	opts := search.Options{
		RepoRoot:    appContext.RepoRoot,
		Prefs:       searchFlags.resolve(),
		FlakeInputs: appContext.FlakeInputNames(),
		Revision:    primaryRevision(),
		Minimal:     appContext.Flags.Minimal,
		Verbose:     appContext.Flags.Verbose,
	}

	resolution, err := search.Resolve(cmd.Context(), name, opts, appContext.Finder, appContext.Cache)
	if err != nil {
		return err
	}

	if appContext.Flags.JSON || searchJSON {
		data, err := json.MarshalIndent(resolution.Results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(resolution.Results) == 0 {
		fmt.Printf("no match found for %q\n", name)
		return nil
	}
	for i, r := range resolution.Results {
		fmt.Printf("%d) [%s] %s %s - %s\n", i+1, r.Source, r.Attr, r.Version, r.Description)
	}
	return nil
}
