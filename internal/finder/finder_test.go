package finder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shawnkhoffman/nx/internal/configscan"
)

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTestFinder(t *testing.T) (*Finder, string) {
	t.Helper()
	root := t.TempDir()

	writeManifest(t, filepath.Join(root, "packages/nix/cli.nix"), `# nx:packages
{ pkgs, ... }:
{
  home.packages = with pkgs; [
    bat
    ripgrep
  ];
}
`)
	writeManifest(t, filepath.Join(root, "packages/homebrew/brews.nix"), `# nx:homebrew.brews
{
  homebrew.brews = [
    "docker"
  ];
}
`)
	writeManifest(t, filepath.Join(root, "system/darwin.nix"), `# nx:darwin
{
  homebrew.masApps = {
    "Xcode" = 497799835;
  };
}
`)

	scan, err := configscan.New(root)
	if err != nil {
		t.Fatalf("configscan.New: %v", err)
	}
	return New(root, scan), root
}

func TestFinderFindPackageExact(t *testing.T) {
	f, _ := newTestFinder(t)

	entry, ok, err := f.FindPackage("ripgrep")
	if err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	if !ok || entry.Bucket != BucketNxs {
		t.Fatalf("expected ripgrep to resolve in nxs bucket, got %+v ok=%v", entry, ok)
	}

	if _, ok, _ := f.FindPackage("nonexistent-pkg"); ok {
		t.Fatal("expected no match for a package that isn't declared anywhere")
	}
}

func TestFinderFindPackageAlias(t *testing.T) {
	f, _ := newTestFinder(t)

	entry, ok, err := f.FindPackage("rg")
	if err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	if !ok || entry.Name != "ripgrep" {
		t.Fatalf("expected alias 'rg' to resolve to ripgrep, got %+v ok=%v", entry, ok)
	}
}

func TestFinderFindPackageHomebrewAndMas(t *testing.T) {
	f, _ := newTestFinder(t)

	if _, ok, _ := f.FindPackage("docker"); !ok {
		t.Fatal("expected docker to resolve in the homebrew brews manifest")
	}
	if entry, ok, _ := f.FindPackage("Xcode"); !ok || entry.Bucket != BucketMas {
		t.Fatalf("expected Xcode to resolve in the mas bucket, got %+v ok=%v", entry, ok)
	}
}

func TestFinderFindPackageFuzzy(t *testing.T) {
	f, _ := newTestFinder(t)

	candidate, entry, ok, err := f.FindPackageFuzzy("ripgr")
	if err != nil {
		t.Fatalf("FindPackageFuzzy: %v", err)
	}
	if !ok || candidate != "ripgrep" || entry.Name != "ripgrep" {
		t.Fatalf("expected prefix match to find ripgrep, got candidate=%q entry=%+v ok=%v", candidate, entry, ok)
	}
}

func TestFinderAliasLineIsNotMistakenForDeclaration(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "packages/nix/cli.nix"), `# nx:packages
{
  vim = "nvim";
  home.packages = with pkgs; [
    neovim
  ];
}
`)
	scan, err := configscan.New(root)
	if err != nil {
		t.Fatalf("configscan.New: %v", err)
	}
	f := New(root, scan)

	if _, ok, _ := f.FindPackage("vim"); ok {
		t.Fatal("an alias assignment line outside any list block must not be recorded as a package declaration")
	}
}

func TestFinderRebuildsIndexOnlyWhenFilesChange(t *testing.T) {
	f, root := newTestFinder(t)

	if _, _, err := f.FindPackage("ripgrep"); err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	firstCount := f.RebuildCount()
	if firstCount == 0 {
		t.Fatal("expected at least one rebuild on first lookup")
	}

	if _, _, err := f.FindPackage("ripgrep"); err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	if f.RebuildCount() != firstCount {
		t.Fatalf("expected no rebuild when no manifest changed, got %d want %d", f.RebuildCount(), firstCount)
	}

	// Touch a manifest so its (mtime, size) signature changes.
	extra := filepath.Join(root, "packages/nix/cli.nix")
	writeManifest(t, extra, `# nx:packages
{ pkgs, ... }:
{
  home.packages = with pkgs; [
    bat
    ripgrep
    fd-find
  ];
}
`)
	if _, _, err := f.FindPackage("fd-find"); err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	if f.RebuildCount() <= firstCount {
		t.Fatalf("expected a rebuild after a manifest changed, got %d", f.RebuildCount())
	}
}
