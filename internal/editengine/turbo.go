package editengine

import (
	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/planner"
)

// Turbo is the non-interactive engine used by --engine turbo and any
// scripted invocation: it commits exactly like Direct except it refuses
// any plan that would declare a new flake input, since that always
// needs a human's yes (spec §4.8).
type Turbo struct {
	direct *Direct
}

// NewTurbo wraps a Direct engine with the flake-input refusal.
func NewTurbo(direct *Direct) *Turbo {
	return &Turbo{direct: direct}
}

func (t *Turbo) Commit(plan *planner.InstallPlan) error {
	if plan.RequiresInteractiveConfirmation() {
		return nxerrors.NewPlanError(plan.PackageName, nxerrors.FlakeInputRequiresInteractive, nil)
	}
	return t.direct.Commit(plan)
}
