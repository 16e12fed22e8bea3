package util

import "strings"

import "testing"

const sampleFlake = `{
  inputs = {
    nixpkgs.url = "github:NixOS/nixpkgs/nixos-unstable";
    home-manager.url = "github:nix-community/home-manager";
  };
}
`

func TestAddFlakeInputInsertsAfterLastDecl(t *testing.T) {
	out := AddFlakeInput(sampleFlake, "neovim-nightly", "github:nix-community/neovim-nightly-overlay")

	if !strings.Contains(out, `inputs.neovim-nightly.url = "github:nix-community/neovim-nightly-overlay";`) {
		t.Fatalf("declaration not inserted:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	lastExistingIdx, newIdx := -1, -1
	for i, l := range lines {
		if strings.Contains(l, "home-manager.url") {
			lastExistingIdx = i
		}
		if strings.Contains(l, "neovim-nightly.url") {
			newIdx = i
		}
	}
	if newIdx != lastExistingIdx+1 {
		t.Fatalf("expected new declaration directly after the last existing one, got lastExisting=%d new=%d", lastExistingIdx, newIdx)
	}
}

func TestAddFlakeInputIdempotent(t *testing.T) {
	once := AddFlakeInput(sampleFlake, "home-manager", "github:nix-community/home-manager")
	if once != sampleFlake {
		t.Fatalf("expected no-op for already-declared input, got:\n%s", once)
	}
}
