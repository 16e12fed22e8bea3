/*
Package util holds small cross-cutting helpers shared by the Finder,
Cache, and SearchOrchestrator: name normalization/aliasing, manifest
location parsing, and flake.nix input insertion. flake.lock parsing and
diffing live in internal/system.
*/
package util

import "strings"

// aliasMap maps common short or alternate package tokens onto their
// canonical nixpkgs attribute name. Lookups are case-insensitive.
var aliasMap = map[string]string{
	"rg":        "ripgrep",
	"fd":        "fd-find",
	"vim":       "vim",
	"nvim":      "neovim",
	"k8s":       "kubernetes",
	"py":        "python3",
	"py3":       "python3",
	"node":      "nodejs",
	"js":        "nodejs",
	"dc":        "docker-compose",
	"tf":        "terraform",
	"gpg":       "gnupg",
	"ssh":       "openssh",
}

// Normalize lower-cases a token and resolves it through the alias map.
// The result is used for cache keys, Finder lookups, and filter args; the
// original token is always preserved separately for display/insertion.
func Normalize(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := aliasMap[lower]; ok {
		return canonical
	}
	return lower
}

// ResolveAlias is an explicit alias-only lookup (case-insensitive),
// returning the canonical name and whether an alias fired.
func ResolveAlias(token string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(token))
	canonical, ok := aliasMap[lower]
	return canonical, ok
}
