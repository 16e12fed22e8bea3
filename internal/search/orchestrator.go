/*
Package search implements the SearchOrchestrator: the component that
turns a bare package name into a ranked list of SourceResult candidates
by trying, in order, a handful of cheap shortcuts before fanning out to
the slow primary sources in parallel (spec §4.6).
*/
package search

import (
	"context"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/cache"
	"github.com/shawnkhoffman/nx/internal/finder"
	"github.com/shawnkhoffman/nx/internal/logging"
	"github.com/shawnkhoffman/nx/internal/sources"
)

const primaryFanoutTimeout = 45 * time.Second

// languagePackageRe matches queries like "pythonPackages.requests" or
// "nodePackages.typescript": an explicit attr path into one of
// nixpkgs's per-language package sets, which bypasses general ranking
// entirely and is trusted as-is.
var languagePackageRe = regexp.MustCompile(`^([a-zA-Z0-9_]+Packages)\.([a-zA-Z0-9_.+-]+)$`)

// Resolution is the outcome of Resolve: the ranked candidates plus any
// non-fatal warnings collected along the way.
type Resolution struct {
	Results  []sources.SourceResult
	Warnings []*nxerrors.SourceWarning
}

// Options carries the inputs Resolve needs beyond the bare query name.
type Options struct {
	RepoRoot     string
	Prefs        sources.SourcePreferences
	FlakeInputs  []string // declared flake inputs other than nixpkgs and nixpkgs-unstable
	Revision     string   // flake.lock revision used as the cache key suffix for nix-native sources
	Minimal      bool     // suppress SourceWarning emission
	Verbose      bool
}

// Resolve implements the full shortcut-then-fanout decision procedure.
func Resolve(ctx context.Context, name string, opts Options, f *finder.Finder, c *cache.Cache) (Resolution, error) {
	// 1. installed short-circuit
	if entry, ok, err := f.FindPackage(name); err == nil && ok {
		return Resolution{Results: []sources.SourceResult{
			sources.SyntheticInstalled(entry.Name, entry.Path, entry.Line),
		}}, nil
	}

	// 2. force_source override
	if opts.Prefs.ForceSource != "" {
		results, warnings := resolveForcedSource(ctx, name, opts)
		return Resolution{Results: Rank(results, opts.Prefs.BleedingEdge), Warnings: warnings}, nil
	}

	// 3. cask/mas synthetic
	if opts.Prefs.IsMas {
		return Resolution{Results: []sources.SourceResult{sources.SyntheticMas(name, opts.Verbose)}}, nil
	}
	if opts.Prefs.IsCask {
		return Resolution{Results: []sources.SourceResult{{
			Source:     sources.Cask,
			Attr:       name,
			Pname:      name,
			Confidence: 1.0,
		}}}, nil
	}

	// 4. language-package pattern bypasses general ranking
	if m := languagePackageRe.FindStringSubmatch(name); m != nil {
		results, err := sources.SearchNixNative(ctx, opts.RepoRoot, sources.Nxs, name)
		if err != nil || len(results) == 0 {
			return Resolution{Results: []sources.SourceResult{{
				Source:     sources.Nxs,
				Attr:       name,
				Pname:      m[2],
				Confidence: 1.0,
			}}}, nil
		}
		return Resolution{Results: results[:1]}, nil
	}

	// 5. cache check
	if cached := c.GetAll(name, opts.Revision); len(cached) > 0 {
		return Resolution{Results: Rank(cached, opts.Prefs.BleedingEdge)}, nil
	}

	// 6. parallel primary fan-out
	fanoutCtx, cancel := context.WithTimeout(ctx, primaryFanoutTimeout)
	defer cancel()

	results, warnings := fanOutPrimary(fanoutCtx, name, opts)

	// 7. Homebrew formula+cask always appended after the fan-out
	if formulae, err := sources.SearchHomebrewFormula(ctx, name); err == nil {
		results = append(results, formulae...)
	} else if !opts.Minimal {
		warnings = append(warnings, nxerrors.NewSourceWarning(string(sources.Homebrew), nxerrors.SourceFailed, err))
	}
	if casks, err := sources.SearchHomebrewCask(ctx, name); err == nil {
		results = append(results, casks...)
	} else if !opts.Minimal {
		warnings = append(warnings, nxerrors.NewSourceWarning(string(sources.Cask), nxerrors.SourceFailed, err))
	}

	ranked := Rank(results, opts.Prefs.BleedingEdge)

	// persist per-source best entries for next time
	seen := make(map[sources.Source]bool)
	for _, r := range ranked {
		if seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		revision := ""
		if sources.IsNixNative(r.Source) {
			revision = opts.Revision
		}
		c.Put(name, revision, r)
	}

	if opts.Minimal {
		warnings = nil
	}
	return Resolution{Results: ranked, Warnings: warnings}, nil
}

func resolveForcedSource(ctx context.Context, name string, opts Options) ([]sources.SourceResult, []*nxerrors.SourceWarning) {
	switch opts.Prefs.ForceSource {
	case sources.Homebrew:
		results, err := sources.SearchHomebrewFormula(ctx, name)
		if err != nil {
			return nil, []*nxerrors.SourceWarning{nxerrors.NewSourceWarning(string(sources.Homebrew), nxerrors.SourceFailed, err)}
		}
		return results, nil
	case sources.Cask:
		results, err := sources.SearchHomebrewCask(ctx, name)
		if err != nil {
			return nil, []*nxerrors.SourceWarning{nxerrors.NewSourceWarning(string(sources.Cask), nxerrors.SourceFailed, err)}
		}
		return results, nil
	case sources.Nur:
		results, err := sources.SearchNixNative(ctx, opts.RepoRoot, sources.Nur, name)
		if err != nil {
			return nil, []*nxerrors.SourceWarning{nxerrors.NewSourceWarning(string(sources.Nur), nxerrors.SourceFailed, err)}
		}
		return results, nil
	default:
		results, err := sources.SearchNixNative(ctx, opts.RepoRoot, opts.Prefs.ForceSource, name)
		if err != nil {
			return nil, []*nxerrors.SourceWarning{nxerrors.NewSourceWarning(string(opts.Prefs.ForceSource), nxerrors.SourceFailed, err)}
		}
		return results, nil
	}
}

// fanOutPrimary runs nxs, unstable, NUR (if enabled), and every declared
// flake input concurrently, collecting whatever finishes before ctx's
// deadline. A slow or failing source produces a SourceWarning and is
// dropped; the other sources' results are kept regardless.
func fanOutPrimary(ctx context.Context, name string, opts Options) ([]sources.SourceResult, []*nxerrors.SourceWarning) {
	var (
		resultsMu sync.Mutex
		results   []sources.SourceResult
		warnings  []*nxerrors.SourceWarning
	)

	record := func(source string, r []sources.SourceResult, err error) {
		resultsMu.Lock()
		defer resultsMu.Unlock()
		if err != nil {
			kind := nxerrors.SourceFailed
			if ctx.Err() != nil {
				kind = nxerrors.Timeout
			}
			warnings = append(warnings, nxerrors.NewSourceWarning(source, kind, err))
			return
		}
		results = append(results, r...)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := sources.SearchNixNative(gctx, opts.RepoRoot, sources.Nxs, name)
		record(string(sources.Nxs), r, err)
		return nil
	})
	g.Go(func() error {
		r, err := sources.SearchNixNative(gctx, opts.RepoRoot, sources.Unstable, name)
		record(string(sources.Unstable), r, err)
		return nil
	})
	if opts.Prefs.Nur || opts.Prefs.BleedingEdge {
		g.Go(func() error {
			r, err := sources.SearchNixNative(gctx, opts.RepoRoot, sources.Nur, name)
			record(string(sources.Nur), r, err)
			return nil
		})
	}
	for _, input := range opts.FlakeInputs {
		input := input
		g.Go(func() error {
			r, err := sources.SearchFlakeInput(gctx, opts.RepoRoot, input, name)
			record("flake-input:"+input, r, err)
			return nil
		})
	}

	_ = g.Wait() // per-source errors are recorded via record(), never returned

	if len(warnings) > 0 {
		logging.Get().WithField("name", name).Debug("search: some primary sources reported warnings")
	}

	return results, warnings
}
