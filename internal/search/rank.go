package search

import (
	"sort"

	"github.com/shawnkhoffman/nx/internal/sources"
)

// Rank orders results by (priority, -confidence) honoring bleeding_edge,
// then deduplicates by (source, attr) keeping the highest-confidence
// occurrence of each (spec §4.6/§3).
func Rank(results []sources.SourceResult, bleedingEdge bool) []sources.SourceResult {
	best := make(map[string]sources.SourceResult)
	order := make([]string, 0, len(results))

	for _, r := range results {
		key := string(r.Source) + "|" + r.Attr
		existing, ok := best[key]
		if !ok {
			best[key] = r
			order = append(order, key)
			continue
		}
		if r.Confidence > existing.Confidence {
			best[key] = r
		}
	}

	deduped := make([]sources.SourceResult, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, best[key])
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		pi := sources.Priority(deduped[i].Source, bleedingEdge)
		pj := sources.Priority(deduped[j].Source, bleedingEdge)
		if pi != pj {
			return pi < pj
		}
		return deduped[i].Confidence > deduped[j].Confidence
	})

	return deduped
}
