package planner

import (
	"errors"
	"testing"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/router"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyAttrForNixNativeSource(t *testing.T) {
	result := sources.SourceResult{Source: sources.Nxs, Attr: ""}
	decision := router.Decision{Target: "packages.nix", Mode: router.ListAppend}

	_, err := New("ripgrep", result, decision, EngineDirect, false, false, "/repo", nil)
	require.Error(t, err, "expected an error for a nix-native result with no attr")

	var planErr *nxerrors.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, nxerrors.MissingAttr, planErr.Kind)
}

func TestNewAllowsEmptyAttrForHomebrew(t *testing.T) {
	result := sources.SourceResult{Source: sources.Homebrew, Attr: ""}
	decision := router.Decision{Target: "brews.nix", Mode: router.ListAppend}

	plan, err := New("docker", result, decision, EngineDirect, false, false, "/repo", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.CorrelationID, "expected a non-empty correlation ID")
}

// flake-input results are routed like any other general-nix package
// (spec §4.7): Target/Mode come from the same candidate-manifest
// decision nxs/unstable/nur get. NeedsFlakeInput is the separate,
// additional gate this test exercises.
func TestCheckEngineGateFlakeInput(t *testing.T) {
	decision := router.Decision{Target: "packages/nix/cli.nix", Mode: router.ListAppend}
	result := sources.SourceResult{Source: sources.FlakeInput, Attr: "foo.packages.default"}

	turbo, err := New("foo", result, decision, EngineTurbo, false, false, "/repo", nil)
	require.NoError(t, err)
	assert.True(t, turbo.NeedsFlakeInput, "an undeclared flake-input source should set NeedsFlakeInput")
	assert.NotEmpty(t, turbo.FlakeNixPath)
	assert.Error(t, turbo.CheckEngineGate(), "turbo engine must always refuse a flake-input plan")

	// CheckEngineGate no longer refuses a direct/ai flake-input plan by
	// itself: the caller (cmd/install.go) is responsible for obtaining
	// --yes or an interactive tui.Confirm before calling Commit.
	direct, err := New("foo", result, decision, EngineDirect, false, false, "/repo", nil)
	require.NoError(t, err)
	assert.NoError(t, direct.CheckEngineGate(), "direct engine's own gate check should pass; interactive confirmation is the caller's job")
	assert.True(t, direct.RequiresInteractiveConfirmation(), "a flake-input plan should still report that it requires interactive confirmation")
	assert.Equal(t, "packages/nix/cli.nix", direct.Target, "flake-input plan must still route the package into a manifest")
	assert.Equal(t, router.ListAppend, direct.Mode)
}

// TestNewSkipsFlakeInputGateWhenAlreadyDeclared covers the idempotence
// side of the gate: once an input is declared, re-installing another
// package from the same input must not re-trigger the interactive gate.
func TestNewSkipsFlakeInputGateWhenAlreadyDeclared(t *testing.T) {
	decision := router.Decision{Target: "packages/nix/cli.nix", Mode: router.ListAppend}
	result := sources.SourceResult{Source: sources.FlakeInput, Attr: "foo.packages.default"}

	plan, err := New("foo", result, decision, EngineTurbo, false, false, "/repo", []string{"foo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.NeedsFlakeInput {
		t.Fatal("an already-declared flake input must not set NeedsFlakeInput")
	}
	if err := plan.CheckEngineGate(); err != nil {
		t.Fatalf("turbo should commit a plan for an already-declared flake input: %v", err)
	}
}

func TestNextCandidateSkipsUnavailablePlatforms(t *testing.T) {
	current := platform.GetNixSystem()
	remaining := []sources.SourceResult{
		{Source: sources.Nxs, Attr: "foo", Platforms: []string{"x86_64-linux"}},
		{Source: sources.Nxs, Attr: "foo", Platforms: []string{current}},
	}
	got, err := NextCandidate("foo", sources.Nxs, remaining)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Platforms) != 1 || got.Platforms[0] != current {
		t.Fatalf("expected the currently-available candidate, got %+v", got)
	}
}

func TestNextCandidateNoneAvailable(t *testing.T) {
	remaining := []sources.SourceResult{
		{Source: sources.Nxs, Attr: "foo", Platforms: []string{"x86_64-linux"}},
	}
	_, err := NextCandidate("foo", sources.Nxs, remaining)
	var planErr *nxerrors.PlanError
	if !errors.As(err, &planErr) || planErr.Kind != nxerrors.PlatformUnavailable {
		t.Fatalf("expected PLATFORM_UNAVAILABLE, got %v", err)
	}
}
