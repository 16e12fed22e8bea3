/*
remove.go implements `nx remove`/`nx rm`: locate a package's existing
declaration via the Finder and delete it, defaulting to "no" on the
confirmation prompt since this command is destructive (spec §4.9).
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/editengine"
	"github.com/shawnkhoffman/nx/internal/finder"
	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/util"
	"github.com/shawnkhoffman/nx/pkg/tui"
)

var removeDryRun bool

var removeCmd = &cobra.Command{
	Use:     "remove <package...>",
	Aliases: []string{"rm"},
	Short:   "Remove a package's declaration from wherever it lives",
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "show what would be removed without writing any file")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nxerrors.NewArgError("remove requires at least one package name")
	}

	glyphs := tui.GlyphsFor(appContext.Flags.Unicode)
	for _, name := range args {
		if err := removeOne(name, glyphs); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", glyphs.Cross, name, err)
		}
	}
	// remove always exits 0, including a per-item miss (spec §6): the
	// ✗ lines above already report which packages failed.
	return nil
}

func removeOne(name string, glyphs tui.Glyphs) error {
	entry, ok, err := appContext.Finder.FindPackage(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not declared anywhere in the repo")
	}
	if entry.Bucket == finder.BucketServices {
		return fmt.Errorf("%s is a launchd service stanza spanning multiple lines; edit %s:%d manually", entry.Name, entry.Path, entry.Line)
	}

	loc := util.Location{Path: entry.Path, Line: entry.Line}

	if removeDryRun {
		fmt.Printf("%s would remove %s from %s\n", glyphs.Check, entry.Name, loc.String())
		return nil
	}

	if !appContext.Flags.Yes {
		ok, err := tui.Confirm(os.Stdout, os.Stdin, fmt.Sprintf("Remove %s from %s?", entry.Name, loc.String()), false)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("removal of %q cancelled", name)
		}
	}

	direct := editengine.NewDirect(appContext.FileSystem())
	if err := direct.Remove(loc, entry.Name); err != nil {
		return err
	}

	fmt.Printf("%s removed %s from %s\n", glyphs.Check, entry.Name, loc.String())
	fmt.Println("Run: nx rebuild")
	return nil
}
