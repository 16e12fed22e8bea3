/*
Package router decides which manifest an InstallPlan writes to and in
what insertion mode, given a chosen SourceResult (spec §4.7).
*/
package router

import (
	"path/filepath"
	"strings"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/configscan"
	"github.com/shawnkhoffman/nx/internal/sources"
)

// InsertionMode describes how the EditEngine should mutate the target manifest.
type InsertionMode string

const (
	// ListAppend inserts into an existing `pkgs = with pkgs; [ ... ]`-style list.
	ListAppend InsertionMode = "list-append"
	// AttrSetEntry inserts a `"Name" = id;`-style attrset entry (masApps).
	AttrSetEntry InsertionMode = "attrset-entry"
	// LanguageWithPackages inserts into a `<interp>Packages.<pkg>`-scoped list
	// in the languages manifest, distinct from a general nix_manifest append.
	LanguageWithPackages InsertionMode = "language-with-packages"
)

// Decision is the Router's output: where to write and how.
type Decision struct {
	Target        string
	Mode          InsertionMode
	Warning       *nxerrors.RouterWarning
}

// isMCPToken flags MCP-server-ish package names that must always be
// routed to the default packages manifest, regardless of source.
func isMCPToken(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "mcp-") || strings.HasSuffix(lower, "-mcp")
}

// Route implements the target/insertion-mode table from spec §4.7.
func Route(scan *configscan.Scan, name string, result sources.SourceResult) Decision {
	if isMCPToken(name) {
		return Decision{Target: scan.Packages(), Mode: ListAppend}
	}

	switch result.Source {
	case sources.Mas:
		return Decision{Target: candidateMasManifest(scan), Mode: AttrSetEntry}

	case sources.Cask:
		return Decision{Target: scan.HomebrewCasks(), Mode: ListAppend}

	case sources.Homebrew:
		return Decision{Target: scan.HomebrewBrews(), Mode: ListAppend}

	case sources.Nxs, sources.Unstable, sources.Nur, sources.FlakeInput:
		// flake-input candidates are general-nix packages too (spec §4.7's
		// table groups them together): they land in the same candidate
		// manifest as nxs/unstable/nur. Whether committing the plan must
		// *also* declare a brand-new `inputs.<name>.url` in flake.nix is a
		// separate, additional gated step the planner decides on
		// (InstallPlan.NeedsFlakeInput), not a distinct routing target.
		if isLanguagePackage(result.Attr) {
			return Decision{Target: scan.Languages(), Mode: LanguageWithPackages}
		}
		return Decision{Target: scan.Packages(), Mode: ListAppend}

	default:
		warning := nxerrors.NewRouterWarning(nxerrors.FellBackToDefault, "unrecognized source, routing to default packages manifest")
		return Decision{Target: scan.Packages(), Mode: ListAppend, Warning: warning}
	}
}

func candidateMasManifest(scan *configscan.Scan) string {
	// masApps live in the same manifest family as the Darwin system
	// configuration, since launchd/masApps are both darwin-system concerns.
	return scan.Darwin()
}

func isLanguagePackage(attr string) bool {
	return strings.Contains(attr, "Packages.") || strings.HasSuffix(strings.SplitN(attr, ".", 2)[0], "Packages")
}

// CandidateManifests lists every general-nix manifest eligible for
// routing when the AI-router decision procedure needs alternatives: the
// same parent directory as the default packages manifest, excluding the
// languages manifest and the Homebrew brews, casks and taps manifests.
func CandidateManifests(scan *configscan.Scan) []string {
	parent := filepath.Dir(scan.Packages())
	exclude := map[string]bool{
		scan.Languages():     true,
		scan.HomebrewBrews(): true,
		scan.HomebrewCasks(): true,
		scan.HomebrewTaps():  true,
	}

	var out []string
	for _, f := range scan.AllFiles() {
		if filepath.Dir(f) != parent {
			continue
		}
		if exclude[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
