package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shawnkhoffman/nx/internal/configscan"
	"github.com/shawnkhoffman/nx/internal/sources"
)

func newScan(t *testing.T) *configscan.Scan {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"home", "system", "hosts", "packages/nix", "packages/homebrew"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	scan, err := configscan.New(root)
	if err != nil {
		t.Fatalf("configscan.New: %v", err)
	}
	return scan
}

func TestRouteHomebrewAndCask(t *testing.T) {
	scan := newScan(t)

	d := Route(scan, "docker", sources.SourceResult{Source: sources.Homebrew, Attr: "docker"})
	if d.Target != scan.HomebrewBrews() || d.Mode != ListAppend {
		t.Fatalf("homebrew routing = %+v", d)
	}

	d = Route(scan, "docker", sources.SourceResult{Source: sources.Cask, Attr: "docker"})
	if d.Target != scan.HomebrewCasks() || d.Mode != ListAppend {
		t.Fatalf("cask routing = %+v", d)
	}
}

func TestRouteMasGoesToDarwin(t *testing.T) {
	scan := newScan(t)
	d := Route(scan, "Xcode", sources.SourceResult{Source: sources.Mas, Attr: "497799835", Pname: "Xcode"})
	if d.Target != scan.Darwin() || d.Mode != AttrSetEntry {
		t.Fatalf("mas routing = %+v", d)
	}
}

func TestRouteFlakeInput(t *testing.T) {
	scan := newScan(t)
	// A flake-input candidate is general-nix routed exactly like
	// nxs/unstable/nur (spec §4.7): it lands in the default packages
	// manifest, same as any other package. Whether it also needs a new
	// `inputs.<name>.url` declared is decided separately by the planner.
	d := Route(scan, "neovim-nightly", sources.SourceResult{Source: sources.FlakeInput, Attr: "neovim-nightly.packages.default"})
	if d.Target != scan.Packages() || d.Mode != ListAppend {
		t.Fatalf("flake-input routing = %+v, want general-nix routing to %s", d, scan.Packages())
	}
}

func TestRouteLanguagePackage(t *testing.T) {
	scan := newScan(t)
	d := Route(scan, "requests", sources.SourceResult{Source: sources.Nxs, Attr: "python3Packages.requests"})
	if d.Target != scan.Languages() || d.Mode != LanguageWithPackages {
		t.Fatalf("language routing = %+v", d)
	}
}

func TestRouteMCPTokenAlwaysDefaultPackages(t *testing.T) {
	scan := newScan(t)
	d := Route(scan, "mcp-filesystem", sources.SourceResult{Source: sources.Homebrew, Attr: "mcp-filesystem"})
	if d.Target != scan.Packages() || d.Mode != ListAppend {
		t.Fatalf("mcp-token routing should override source-based routing, got %+v", d)
	}
}

func TestRouteUnknownSourceFallsBackWithWarning(t *testing.T) {
	scan := newScan(t)
	d := Route(scan, "mystery", sources.SourceResult{Source: sources.Source("unknown"), Attr: "mystery"})
	if d.Target != scan.Packages() {
		t.Fatalf("expected fallback to default packages manifest, got %s", d.Target)
	}
	if d.Warning == nil {
		t.Fatal("expected a RouterWarning for an unrecognized source")
	}
}
