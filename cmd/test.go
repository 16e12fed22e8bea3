/*
test.go implements `nx test`: runs `nix flake check` as the single
verification step before a rebuild is attempted (spec §6 — exit 0 iff
every step passes).
*/
package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/pkg/progress"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run flake checks without rebuilding",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Println("Checking flake...")
	c := exec.CommandContext(cmd.Context(), "nix", "flake", "check", appContext.RepoRoot)
	c.Dir = appContext.RepoRoot
	stdout, err := c.StdoutPipe()
	if err != nil {
		return err
	}
	c.Stderr = os.Stderr
	if err := c.Start(); err != nil {
		return err
	}
	if err := progress.StreamLines(os.Stdout, stdout); err != nil {
		return err
	}
	if err := c.Wait(); err != nil {
		return fmt.Errorf("nix flake check: %w", err)
	}
	fmt.Println("All checks passed.")
	return nil
}
