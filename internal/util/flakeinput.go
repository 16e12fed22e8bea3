package util

import (
	"fmt"
	"regexp"
	"strings"
)

// inputDeclRe matches both the flat `inputs.<name>.url =` form and the
// nested `<name>.url =` form used inside an `inputs = { ... };` block.
var inputDeclRe = regexp.MustCompile(`(?m)^\s*(?:inputs\.)?([A-Za-z0-9_-]+)\.url\s*=`)

// AddFlakeInput inserts a new `inputs.<name>.url = "<url>";` declaration
// into flake.nix content, just after the last existing input url
// declaration it can find (flat or nested), or else just after the
// opening `inputs = {`. An input already declared in either form is left
// as it is. It is idempotent: calling it
// a second time with the same name is a no-op and returns the input
// unchanged.
func AddFlakeInput(flakeNix, name, url string) string {
	if inputAlreadyDeclared(flakeNix, name) {
		return flakeNix
	}

	decl := fmt.Sprintf("  inputs.%s.url = %q;\n", name, url)

	lines := strings.Split(flakeNix, "\n")
	lastDeclIdx := -1
	for i, line := range lines {
		if inputDeclRe.MatchString(line) {
			lastDeclIdx = i
		}
	}
	if lastDeclIdx >= 0 {
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:lastDeclIdx+1]...)
		out = append(out, strings.TrimSuffix(decl, "\n"))
		out = append(out, lines[lastDeclIdx+1:]...)
		return strings.Join(out, "\n")
	}

	// Fall back to inserting right after the first "inputs = {" block open.
	for i, line := range lines {
		if strings.Contains(line, "inputs = {") || strings.Contains(line, "inputs.") {
			out := make([]string, 0, len(lines)+1)
			out = append(out, lines[:i+1]...)
			out = append(out, strings.TrimSuffix(decl, "\n"))
			out = append(out, lines[i+1:]...)
			return strings.Join(out, "\n")
		}
	}

	return flakeNix + "\n" + decl
}

func inputAlreadyDeclared(flakeNix, name string) bool {
	for _, m := range inputDeclRe.FindAllStringSubmatch(flakeNix, -1) {
		if len(m) > 1 && m[1] == name {
			return true
		}
	}
	return strings.Contains(flakeNix, "inputs."+name+".url")
}

// FirstSegment returns the substring of s before its first '.', or s
// unchanged if it has none. Used to pull a flake input's name (e.g.
// "neovim-nightly" out of "neovim-nightly.packages.default") or a
// language package-set's attr prefix (e.g. "python3Packages" out of
// "python3Packages.requests") out of a dotted attr path.
func FirstSegment(s string) string {
	if idx := strings.Index(s, "."); idx >= 0 {
		return s[:idx]
	}
	return s
}
