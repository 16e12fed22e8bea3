/*
Package planner turns a routed SourceResult into an InstallPlan: the
unit of work an EditEngine commits to disk (spec §4.8).
*/
package planner

import (
	"path/filepath"

	"github.com/google/uuid"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/router"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/internal/util"
)

// Engine selects which EditEngine implementation commits the plan.
type Engine string

const (
	EngineDirect Engine = "direct"
	EngineTurbo  Engine = "turbo"
	EngineAI     Engine = "ai"
)

// InstallPlan is the fully-resolved description of one package
// installation, ready to hand to an EditEngine.
type InstallPlan struct {
	// CorrelationID is a unique id that New assigns to each plan. The edit
	// engines and the logger do not read it.
	CorrelationID string

	PackageName string
	Result      sources.SourceResult
	Target      string
	Mode        router.InsertionMode
	Engine      Engine

	DryRun bool
	Rebuild bool

	// FlakeInputURL is set by the caller when NeedsFlakeInput is true: the
	// flake reference to declare for the brand-new input.
	FlakeInputURL string
	// NeedsFlakeInput is true when Result comes from a flake input that
	// isn't declared in flake.nix yet. Committing such a plan must, in
	// addition to (never instead of) inserting the package into Target
	// via Mode, first add an `inputs.<name>.url = ...;` declaration at
	// FlakeNixPath (spec §4.7/§4.8): the package still needs a manifest
	// entry, the input declaration is an extra gated prerequisite step.
	NeedsFlakeInput bool
	// FlakeNixPath is the flake.nix to declare the new input in, set
	// alongside NeedsFlakeInput.
	FlakeNixPath string

	// RoutingWarning rides along on the plan when the Router fell back to
	// a default target or an AI router decision was ambiguous.
	RoutingWarning *nxerrors.RouterWarning
}

// New builds an InstallPlan, enforcing the attr-non-empty invariant for
// every nix-native source (spec §3/§8): a nix-native result with an
// empty Attr can never be committed, since the EditEngine has nothing
// to write into the package list. declaredFlakeInputs is the set of
// flake inputs already present in flake.nix, used to decide whether a
// flake-input result needs NeedsFlakeInput set.
func New(pkgName string, result sources.SourceResult, decision router.Decision, engine Engine, dryRun, rebuild bool, repoRoot string, declaredFlakeInputs []string) (*InstallPlan, error) {
	if sources.IsNixNative(result.Source) && result.Attr == "" {
		return nil, nxerrors.NewPlanError(pkgName, nxerrors.MissingAttr, nil)
	}

	plan := &InstallPlan{
		CorrelationID:  uuid.NewString(),
		PackageName:    pkgName,
		Result:         result,
		Target:         decision.Target,
		Mode:           decision.Mode,
		Engine:         engine,
		DryRun:         dryRun,
		Rebuild:        rebuild,
		RoutingWarning: decision.Warning,
	}

	if result.Source == sources.FlakeInput {
		inputName := util.FirstSegment(result.Attr)
		if !containsString(declaredFlakeInputs, inputName) {
			plan.NeedsFlakeInput = true
			plan.FlakeNixPath = filepath.Join(repoRoot, "flake.nix")
		}
	}

	return plan, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RequiresInteractiveConfirmation reports whether committing this plan
// needs an explicit human yes, because it declares a new flake input
// (spec §4.8): the turbo engine refuses such plans outright, and the
// direct/ai engines require --yes or an interactive confirmation from
// the caller before Commit.
func (p *InstallPlan) RequiresInteractiveConfirmation() bool {
	return p.NeedsFlakeInput
}

// CheckEngineGate enforces the one part of the flake-input gate that no
// amount of interactive confirmation can satisfy: turbo always refuses
// to declare a new flake input, since it exists specifically for
// unattended/scripted runs. It does not by itself clear a direct/ai
// plan for commit — the caller must still honor
// RequiresInteractiveConfirmation (via --yes or a tui.Confirm prompt)
// before calling an EditEngine's Commit.
func (p *InstallPlan) CheckEngineGate() error {
	if !p.RequiresInteractiveConfirmation() {
		return nil
	}
	if p.Engine == EngineTurbo {
		return nxerrors.NewPlanError(p.PackageName, nxerrors.FlakeInputRequiresInteractive, nil)
	}
	return nil
}

// NextCandidate picks the next-highest-ranked candidate for the same
// source family when result's platform is unavailable on this system
// (spec §4.5/§4.8), or returns PlanError{PlatformUnavailable} if none remain.
func NextCandidate(pkgName string, source sources.Source, remaining []sources.SourceResult) (sources.SourceResult, error) {
	for _, r := range remaining {
		if r.Source != source {
			continue
		}
		if sources.Available(r) {
			return r, nil
		}
	}
	return sources.SourceResult{}, nxerrors.NewPlanError(pkgName, nxerrors.PlatformUnavailable, nil)
}
