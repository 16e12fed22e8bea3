package sources

import "github.com/shawnkhoffman/nx/pkg/platform"

// Available reports whether result is installable on the current
// platform (spec §4.5). The check is deliberately permissive: it only
// rejects when meta.platforms is an explicit list of systems and the
// current system is absent from it. Anything else — no platforms
// field, a non-list/unparsed spec, or the list containing the current
// system — is treated as available.
func Available(result SourceResult) bool {
	if len(result.Platforms) == 0 {
		return true
	}
	current := platform.GetNixSystem()
	for _, p := range result.Platforms {
		if p == current {
			return true
		}
	}
	return false
}
