package cache

import (
	"path/filepath"
	"testing"

	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/pkg/filesystem"
)

func nixNativeResult(attr string) sources.SourceResult {
	return sources.SourceResult{
		Source:      sources.Nxs,
		Attr:        attr,
		Pname:       attr,
		Version:     "1.0.0",
		Description: "a test package",
		Confidence:  1.0,
	}
}

func TestCachePutGetAllRoundTrip(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c.Put("ripgrep", "abc123", nixNativeResult("ripgrep"))
	c.Put("ripgrep", "", sources.SourceResult{Source: sources.Homebrew, Attr: "ripgrep", Pname: "ripgrep", Confidence: 0.8})

	got := c.GetAll("ripgrep", "abc123")
	if len(got) != 2 {
		t.Fatalf("GetAll returned %d entries, want 2", len(got))
	}
	if got[0].Source != sources.Nxs {
		t.Fatalf("expected nix-native result ranked first, got %s", got[0].Source)
	}

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded, err := Load(fs, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.GetAll("ripgrep", "abc123"); len(got) != 2 {
		t.Fatalf("reloaded GetAll returned %d entries, want 2", len(got))
	}
	if reloaded.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reloaded.Count())
	}
}

func TestCacheHomebrewOnlyGuardrail(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c.Put("docker", "", sources.SourceResult{Source: sources.Homebrew, Attr: "docker"})
	c.Put("docker", "", sources.SourceResult{Source: sources.Cask, Attr: "docker"})

	if got := c.GetAll("docker", ""); got != nil {
		t.Fatalf("expected Homebrew-only cache to be treated as incomplete, got %v", got)
	}
}

// TestCacheStaleRevisionIsInvalidated covers the upgrade round-trip: once
// `nx upgrade` moves the locked nixpkgs revision forward, entries cached
// under the old revision must no longer be returned as hits.
func TestCacheStaleRevisionIsInvalidated(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c.Put("ripgrep", "abc123", nixNativeResult("ripgrep"))

	if got := c.GetAll("ripgrep", "def456"); got != nil {
		t.Fatalf("expected stale-revision entry to be invalidated, got %v", got)
	}
	if got := c.GetAll("ripgrep", "abc123"); len(got) != 1 {
		t.Fatalf("expected current-revision entry to still hit, got %d entries", len(got))
	}
}

func TestCacheNormalizesNameForLookup(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c.Put("rg", "abc123", nixNativeResult("ripgrep"))

	if got := c.GetAll("RG", "abc123"); len(got) != 1 {
		t.Fatalf("expected alias+case-insensitive lookup to hit, got %d entries", len(got))
	}
}

func TestLoadDiscardsCorruptFile(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")
	if err := fs.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load should recover from corrupt file, got error: %v", err)
	}
	if c.Count() != 0 {
		t.Fatalf("expected empty cache after discarding corrupt file, got Count()=%d", c.Count())
	}
}

func TestLoadDiscardsMismatchedSchemaVersion(t *testing.T) {
	fs := filesystem.NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "packages_v4.json")
	if err := fs.WriteFile(path, []byte(`{"schema_version":999,"entries":{}}`), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load should recover from version mismatch, got error: %v", err)
	}
	if c.Count() != 0 {
		t.Fatalf("expected empty cache after schema mismatch, got Count()=%d", c.Count())
	}
}
