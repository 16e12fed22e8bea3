/*
Package locator resolves the nix-darwin configuration repo root, the
first step of every nx invocation (spec §4.1).
*/
package locator

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/pkg/platform"
)

const repoRootEnv = "B2NIX_REPO_ROOT"

// Locate resolves the repo root in order: $B2NIX_REPO_ROOT, `git
// rev-parse --show-toplevel` (if it contains flake.nix), then
// ~/.nix-config. When $B2NIX_REPO_ROOT is set but holds no flake.nix it
// fails with ConfigError{NoFlake} without trying the other two; otherwise
// it fails with ConfigError{NoRepo} if none contain flake.nix.
func Locate() (string, error) {
	if root := os.Getenv(repoRootEnv); root != "" {
		if hasFlake(root) {
			return root, nil
		}
		return "", nxerrors.NewConfigError(nxerrors.NoFlake, nil)
	}

	if root, ok := gitToplevel(); ok && hasFlake(root) {
		return root, nil
	}

	fallback, err := platform.GetDefaultRepoPath()
	if err == nil && hasFlake(fallback) {
		return fallback, nil
	}

	return "", nxerrors.NewConfigError(nxerrors.NoRepo, nil)
}

func hasFlake(root string) bool {
	if root == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(root, "flake.nix"))
	return err == nil
}

func gitToplevel() (string, bool) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}
