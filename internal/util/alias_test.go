package util

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"rg":     "ripgrep",
		"RG":     "ripgrep",
		" fd ":   "fd-find",
		"NeoVim": "neovim",
		"htop":   "htop",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAlias(t *testing.T) {
	canonical, ok := ResolveAlias("py")
	if !ok || canonical != "python3" {
		t.Fatalf("ResolveAlias(py) = (%q, %v), want (python3, true)", canonical, ok)
	}

	if _, ok := ResolveAlias("not-an-alias"); ok {
		t.Fatalf("ResolveAlias(not-an-alias) should not resolve")
	}
}
