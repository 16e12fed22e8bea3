/*
Package editengine commits an InstallPlan to disk. Two concrete
engines are provided — Direct (interactive, full capability) and Turbo
(non-interactive, refuses flake-input additions) — plus an
AI-assisted boundary that the spec scopes as an opaque third
implementation of the same interface.
*/
package editengine

import "github.com/shawnkhoffman/nx/internal/planner"

// EditEngine commits a resolved InstallPlan to the repo's manifests.
type EditEngine interface {
	Commit(plan *planner.InstallPlan) error
}
