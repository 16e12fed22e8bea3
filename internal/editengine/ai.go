package editengine

import "github.com/shawnkhoffman/nx/internal/planner"

// AI is the AI-assisted engine boundary. It is deliberately opaque: nx
// treats it as a third EditEngine implementation with the same
// Commit contract as Direct and Turbo, without prescribing how an
// eventual AI-assisted implementation decides where or how to edit.
// Until that implementation exists, AI delegates straight to Direct.
type AI struct {
	direct *Direct
}

// NewAI wraps a Direct engine behind the AI-assisted boundary.
func NewAI(direct *Direct) *AI {
	return &AI{direct: direct}
}

func (a *AI) Commit(plan *planner.InstallPlan) error {
	return a.direct.Commit(plan)
}
