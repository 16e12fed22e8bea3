package editengine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shawnkhoffman/nx/internal/planner"
	"github.com/shawnkhoffman/nx/internal/router"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/internal/util"
	"github.com/shawnkhoffman/nx/pkg/filesystem"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const cliManifest = `# nx:packages
{ pkgs, ... }:
{
  home.packages = with pkgs; [
    bat
    fd-find
    zoxide
  ];
}
`

func TestDirectCommitListAppendInsertsAlphabetically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.nix")
	writeFile(t, path, cliManifest)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	plan, err := planner.New("ripgrep",
		sources.SourceResult{Source: sources.Nxs, Attr: "ripgrep"},
		router.Decision{Target: path, Mode: router.ListAppend},
		planner.EngineDirect, false, false, "/repo", nil)
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}

	if err := d.Commit(plan); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(out)
	if !strings.Contains(content, "ripgrep") {
		t.Fatalf("ripgrep not inserted:\n%s", content)
	}

	// fd-find < ripgrep < zoxide alphabetically: ripgrep must land between them.
	fdIdx := strings.Index(content, "fd-find")
	rgIdx := strings.Index(content, "ripgrep")
	zIdx := strings.Index(content, "zoxide")
	if !(fdIdx < rgIdx && rgIdx < zIdx) {
		t.Fatalf("expected alphabetical insertion, got order fd=%d rg=%d z=%d", fdIdx, rgIdx, zIdx)
	}
}

func TestDirectCommitDryRunIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.nix")
	writeFile(t, path, cliManifest)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	plan, err := planner.New("ripgrep",
		sources.SourceResult{Source: sources.Nxs, Attr: "ripgrep"},
		router.Decision{Target: path, Mode: router.ListAppend},
		planner.EngineDirect, true, false, "/repo", nil)
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}

	if err := d.Commit(plan); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	out, _ := os.ReadFile(path)
	if string(out) != cliManifest {
		t.Fatalf("dry-run plan must not touch the file, got:\n%s", out)
	}
}

const masManifest = `# nx:darwin
{
  homebrew.masApps = {
    "Keynote" = 409183694;
    "Xcode" = 497799835;
  };
}
`

func TestDirectCommitAttrSetEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "darwin.nix")
	writeFile(t, path, masManifest)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	plan, err := planner.New("Pages",
		sources.SourceResult{Source: sources.Mas, Attr: "409201541", Pname: "Pages"},
		router.Decision{Target: path, Mode: router.AttrSetEntry},
		planner.EngineDirect, false, false, "/repo", nil)
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}

	if err := d.Commit(plan); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	out, _ := os.ReadFile(path)
	if !strings.Contains(string(out), `"Pages" = 409201541;`) {
		t.Fatalf("mas entry not inserted:\n%s", out)
	}
}

// TestDirectCommitFlakeInputDeclaresInputAndInsertsPackage covers the
// full flake-input commit: it must both declare the brand-new input in
// flake.nix *and* insert the package into its routed manifest (spec
// §4.7's general-nix routing table groups flake-input with
// nxs/unstable/nur; the old single flake.nix-only routing never added
// the package anywhere a rebuild would see it).
func TestDirectCommitFlakeInputDeclaresInputAndInsertsPackage(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "cli.nix")
	flakePath := filepath.Join(dir, "flake.nix")
	writeFile(t, manifestPath, cliManifest)
	writeFile(t, flakePath, sampleFlake)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	plan, err := planner.New("neovim-nightly",
		sources.SourceResult{Source: sources.FlakeInput, Attr: "neovim-nightly.packages.default"},
		router.Decision{Target: manifestPath, Mode: router.ListAppend},
		planner.EngineDirect, false, false, dir, nil)
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}
	if !plan.NeedsFlakeInput {
		t.Fatal("expected NeedsFlakeInput to be set for an undeclared flake input")
	}
	if plan.FlakeNixPath != flakePath {
		t.Fatalf("FlakeNixPath = %s, want %s", plan.FlakeNixPath, flakePath)
	}
	plan.FlakeInputURL = "github:nix-community/neovim-nightly-overlay"

	if err := d.Commit(plan); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	flakeOut, _ := os.ReadFile(flakePath)
	if !strings.Contains(string(flakeOut), "inputs.neovim-nightly.url") {
		t.Fatalf("flake input not declared:\n%s", flakeOut)
	}

	manifestOut, _ := os.ReadFile(manifestPath)
	if !strings.Contains(string(manifestOut), "neovim-nightly.packages.default") {
		t.Fatalf("package not inserted into its routed manifest:\n%s", manifestOut)
	}
}

// TestDirectCommitFlakeInputAlreadyDeclaredSkipsDecl covers idempotence:
// once an input is already declared, a second install from it must not
// touch flake.nix again, only insert the new package.
func TestDirectCommitFlakeInputAlreadyDeclaredSkipsDecl(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "cli.nix")
	flakePath := filepath.Join(dir, "flake.nix")
	writeFile(t, manifestPath, cliManifest)
	writeFile(t, flakePath, sampleFlake)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	plan, err := planner.New("neovim-nightly",
		sources.SourceResult{Source: sources.FlakeInput, Attr: "neovim-nightly.packages.default"},
		router.Decision{Target: manifestPath, Mode: router.ListAppend},
		planner.EngineDirect, false, false, dir, []string{"neovim-nightly"})
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}
	if plan.NeedsFlakeInput {
		t.Fatal("an already-declared flake input must not set NeedsFlakeInput")
	}

	if err := d.Commit(plan); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	flakeOut, _ := os.ReadFile(flakePath)
	if string(flakeOut) != sampleFlake {
		t.Fatalf("flake.nix should be untouched when the input is already declared:\n%s", flakeOut)
	}

	manifestOut, _ := os.ReadFile(manifestPath)
	if !strings.Contains(string(manifestOut), "neovim-nightly.packages.default") {
		t.Fatalf("package not inserted into its routed manifest:\n%s", manifestOut)
	}
}

func TestDirectRemoveDropsSoleItemOnItsOwnLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.nix")
	writeFile(t, path, cliManifest)

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	// Line 6 of cliManifest is the standalone "fd-find" list item.
	if err := d.Remove(util.Location{Path: path, Line: 6}, "fd-find"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	out, _ := os.ReadFile(path)
	if strings.Contains(string(out), "fd-find") {
		t.Fatalf("fd-find should have been removed:\n%s", out)
	}
	if !strings.Contains(string(out), "bat") || !strings.Contains(string(out), "zoxide") {
		t.Fatalf("neighboring items should survive:\n%s", out)
	}
}

func TestDirectRemoveExcisesTokenFromSharedListLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.nix")
	writeFile(t, path, "home.packages = with pkgs; [\n  bat fd-find zoxide\n];\n")

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	if err := d.Remove(util.Location{Path: path, Line: 2}, "fd-find"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	out, _ := os.ReadFile(path)
	if strings.Contains(string(out), "fd-find") {
		t.Fatalf("fd-find should have been excised:\n%s", out)
	}
	if !strings.Contains(string(out), "bat") || !strings.Contains(string(out), "zoxide") {
		t.Fatalf("neighboring tokens on the same line should survive:\n%s", out)
	}
}

func TestDirectRemoveDropsWholeAssignmentLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "darwin.nix")
	writeFile(t, path, "  \"Xcode\" = 497799835;\n  \"Pages\" = 409201541;\n")

	fs := filesystem.NewOSFileSystem()
	d := NewDirect(fs)

	if err := d.Remove(util.Location{Path: path, Line: 1}, "Xcode"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	out, _ := os.ReadFile(path)
	if strings.Contains(string(out), "Xcode") {
		t.Fatalf("Xcode line should be dropped entirely:\n%s", out)
	}
	if !strings.Contains(string(out), "Pages") {
		t.Fatalf("Pages line should survive:\n%s", out)
	}
}

const sampleFlake = `{
  inputs = {
    nixpkgs.url = "github:NixOS/nixpkgs/nixos-unstable";
  };
}
`
