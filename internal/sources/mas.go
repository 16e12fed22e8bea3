package sources

import "github.com/shawnkhoffman/nx/internal/logging"

// SyntheticMas builds a single synthetic Mas result for name rather than
// querying the Mac App Store: `mas search` is unauthenticated, rate
// limited, and frequently returns results with no relation to the
// query, so nx treats a --mas request as a declaration of intent and
// trusts the caller's app name instead of trying to disambiguate it.
//
// Under --verbose this choice is logged so a user who expected an
// actual search is not surprised by the absence of one.
func SyntheticMas(name string, verbose bool) SourceResult {
	if verbose {
		logging.Get().WithField("name", name).Debug("mas: skipping live search, trusting caller-supplied app name")
	}
	return SourceResult{
		Source:     Mas,
		Attr:       name,
		Pname:      name,
		Confidence: 1.0,
	}
}
