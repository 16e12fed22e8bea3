package sources

// SyntheticInstalled builds the short-circuit result returned when the
// Finder already has name declared somewhere in the repo: no source
// adapter runs, and the SearchOrchestrator returns this single result
// pointing at where the package already lives (spec §4.6).
func SyntheticInstalled(name, manifestPath string, line int) SourceResult {
	return SourceResult{
		Source:     Installed,
		Attr:       name,
		Pname:      name,
		Confidence: 1.0,
		Location: &InstalledLocation{
			ManifestPath: manifestPath,
			Line:         line,
		},
	}
}
