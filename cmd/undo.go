/*
undo.go implements `nx undo`: revert uncommitted edits to the repo's
manifest directories via `git checkout`. Destructive, so it defaults to
"no" on confirmation per spec §4.9.
*/
package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/pkg/tui"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert uncommitted changes under home/, packages/, system/, hosts/",
	RunE:  runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	if !appContext.Flags.Yes {
		ok, err := tui.Confirm(os.Stdout, os.Stdin, "Discard uncommitted changes under home/, packages/, system/, hosts/?", false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("undo cancelled")
			return nil
		}
	}

	gitCmd := exec.CommandContext(cmd.Context(), "git", "checkout", "--", "home", "packages", "system", "hosts")
	gitCmd.Dir = appContext.RepoRoot
	gitCmd.Stdout = os.Stdout
	gitCmd.Stderr = os.Stderr
	if err := gitCmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "undo: %v\n", err)
		return nil
	}
	fmt.Println("Reverted uncommitted manifest changes.")
	return nil
}
