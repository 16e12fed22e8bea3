/*
secret.go adds the additive `nx secret`/`nx secrets` passthrough (spec
§6): a thin wrapper around sops, the secrets-management tool nix-darwin
configs commonly encrypt their sops-nix-managed secrets with.
*/
package cmd

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
)

var secretCmd = &cobra.Command{
	Use:     "secret <sops-subcommand> [args...]",
	Aliases: []string{"secrets"},
	Short:   "Passthrough to sops for editing/decrypting repo secrets",
	RunE:    runSecret,
}

func init() {
	rootCmd.AddCommand(secretCmd)
}

func runSecret(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nxerrors.NewArgError("secret requires at least one sops argument, e.g. `nx secret edit secrets.yaml`")
	}

	c := exec.CommandContext(cmd.Context(), "sops", args...)
	c.Dir = appContext.RepoRoot
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
