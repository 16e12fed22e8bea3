package search

import (
	"testing"

	"github.com/shawnkhoffman/nx/internal/sources"
)

func TestRankOrdersBySourcePriority(t *testing.T) {
	results := []sources.SourceResult{
		{Source: sources.Homebrew, Attr: "ripgrep", Confidence: 1.0},
		{Source: sources.Nxs, Attr: "ripgrep", Confidence: 1.0},
		{Source: sources.Cask, Attr: "ripgrep", Confidence: 1.0},
	}

	ranked := Rank(results, false)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results after ranking, got %d", len(ranked))
	}
	if ranked[0].Source != sources.Nxs {
		t.Fatalf("expected nxs to rank first, got %s", ranked[0].Source)
	}
	if ranked[1].Source != sources.Homebrew || ranked[2].Source != sources.Cask {
		t.Fatalf("expected homebrew then cask, got %s then %s", ranked[1].Source, ranked[2].Source)
	}
}

func TestRankBleedingEdgePromotesNur(t *testing.T) {
	results := []sources.SourceResult{
		{Source: sources.Nxs, Attr: "neovim", Confidence: 1.0},
		{Source: sources.Nur, Attr: "neovim", Confidence: 1.0},
	}

	ranked := Rank(results, true)
	if ranked[0].Source != sources.Nur {
		t.Fatalf("bleeding_edge should promote nur above nxs, got %s first", ranked[0].Source)
	}

	rankedDefault := Rank(results, false)
	if rankedDefault[0].Source != sources.Nxs {
		t.Fatalf("without bleeding_edge, nxs should rank before nur, got %s first", rankedDefault[0].Source)
	}
}

func TestRankDeduplicatesKeepingHighestConfidence(t *testing.T) {
	results := []sources.SourceResult{
		{Source: sources.Homebrew, Attr: "docker", Confidence: 0.4},
		{Source: sources.Homebrew, Attr: "docker", Confidence: 0.9},
	}

	ranked := Rank(results, false)
	if len(ranked) != 1 {
		t.Fatalf("expected duplicate (source, attr) pairs to collapse to one, got %d", len(ranked))
	}
	if ranked[0].Confidence != 0.9 {
		t.Fatalf("expected the higher-confidence duplicate to survive, got %v", ranked[0].Confidence)
	}
}

func TestRankBreaksTiesByConfidence(t *testing.T) {
	results := []sources.SourceResult{
		{Source: sources.Nxs, Attr: "foo", Confidence: 0.5},
		{Source: sources.Unstable, Attr: "bar", Confidence: 0.9},
	}

	ranked := Rank(results, false)
	if ranked[0].Attr != "bar" {
		t.Fatalf("expected the higher-confidence same-priority result first, got %s", ranked[0].Attr)
	}
}
