package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// brewSearchFormula mirrors the fields nx reads out of
// `brew search --formula --json=v2`.
type brewSearchFormula struct {
	Name     string   `json:"name"`
	FullName string   `json:"full_name"`
	Desc     string   `json:"desc"`
	Homepage string   `json:"homepage"`
	License  string   `json:"license"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Deprecated bool `json:"deprecated"`
	Disabled   bool `json:"disabled"`
}

type brewSearchCask struct {
	Token    string `json:"token"`
	Name     []string `json:"name"`
	Desc     string `json:"desc"`
	Homepage string `json:"homepage"`
	Version  string `json:"version"`
}

type brewSearchV2 struct {
	Formulae []brewSearchFormula `json:"formulae"`
	Casks    []brewSearchCask    `json:"casks"`
}

// SearchHomebrewFormula shells out to `brew search --formula --json=v2`
// and scores each hit's name against query.
func SearchHomebrewFormula(ctx context.Context, query string) ([]SourceResult, error) {
	out, err := runBrewJSON(ctx, "--formula", query)
	if err != nil {
		return nil, err
	}

	var parsed brewSearchV2
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse brew formula search output: %w", err)
	}

	results := make([]SourceResult, 0, len(parsed.Formulae))
	for _, f := range parsed.Formulae {
		results = append(results, SourceResult{
			Source:      Homebrew,
			Attr:        f.Name,
			Pname:       f.Name,
			Version:     f.Versions.Stable,
			Description: f.Desc,
			Homepage:    f.Homepage,
			License:     f.License,
			Broken:      f.Disabled || f.Deprecated,
			Confidence:  scoreMatch(query, f.Name, f.FullName),
		})
	}
	return results, nil
}

// SearchHomebrewCask mirrors SearchHomebrewFormula for casks.
func SearchHomebrewCask(ctx context.Context, query string) ([]SourceResult, error) {
	out, err := runBrewJSON(ctx, "--cask", query)
	if err != nil {
		return nil, err
	}

	var parsed brewSearchV2
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse brew cask search output: %w", err)
	}

	results := make([]SourceResult, 0, len(parsed.Casks))
	for _, c := range parsed.Casks {
		displayName := c.Token
		if len(c.Name) > 0 {
			displayName = c.Name[0]
		}
		results = append(results, SourceResult{
			Source:      Cask,
			Attr:        c.Token,
			Pname:       c.Token,
			Version:     c.Version,
			Description: displayName,
			Homepage:    c.Homepage,
			Confidence:  scoreMatch(query, c.Token, displayName),
		})
	}
	return results, nil
}

func runBrewJSON(ctx context.Context, kind, query string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "brew", "search", kind, "--json=v2", query)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := err.(*exec.ExitError); ok {
			// brew search exits non-zero with no matches; treat as empty.
			return []byte(`{"formulae":[],"casks":[]}`), nil
		}
		return nil, fmt.Errorf("brew search %s: %w", kind, err)
	}
	return out, nil
}
