/*
where.go implements `nx where`: a thin, always-succeeding wrapper over
the Finder's exact/fuzzy lookup (spec §6 — exit 0 always, including
not-found).
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
)

var whereCmd = &cobra.Command{
	Use:   "where <package>",
	Short: "Print where a package is already declared",
	RunE:  runWhere,
}

func init() {
	rootCmd.AddCommand(whereCmd)
}

func runWhere(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nxerrors.NewArgError("where requires at least one package name")
	}

	for _, name := range args {
		if entry, ok, err := appContext.Finder.FindPackage(name); err == nil && ok {
			fmt.Printf("%s: %s:%d (%s)\n", name, entry.Path, entry.Line, entry.Bucket)
			continue
		}
		if match, entry, ok, err := appContext.Finder.FindPackageFuzzy(name); err == nil && ok {
			fmt.Printf("%s: %s:%d (%s, fuzzy match for %q)\n", name, entry.Path, entry.Line, entry.Bucket, match)
			continue
		}
		fmt.Printf("%s: not found\n", name)
	}
	return nil
}
