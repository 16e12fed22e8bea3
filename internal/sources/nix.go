package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shawnkhoffman/nx/pkg/platform"
)

// nixSearchEntry mirrors one value of `nix search --json`'s output map,
// whose keys look like "legacyPackages.<system>.<attr>". meta is not
// part of the stock `nix search` shape but is included here so that a
// locally patched/wrapped `nix search` (or a future upstream one) that
// does attach it is picked up without further changes; its absence
// degrades gracefully to permissive zero values (spec §4.5).
type nixSearchEntry struct {
	Pname       string   `json:"pname"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Meta        *nixMeta `json:"meta,omitempty"`
}

// nixMeta mirrors the subset of a derivation's meta attrset that
// SourceResult surfaces (spec §4.5/§6's info --json shape).
type nixMeta struct {
	Homepage  string          `json:"homepage,omitempty"`
	License   json.RawMessage `json:"license,omitempty"`
	Broken    bool            `json:"broken,omitempty"`
	Insecure  bool            `json:"insecure,omitempty"`
	Platforms []string        `json:"platforms,omitempty"`
}

// licenseString reduces nixpkgs' several meta.license shapes (a plain
// string, a single {fullName/spdxId} attrset, or a list of either) down
// to one display string. An unrecognized shape yields "".
func licenseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var lic struct {
		FullName string `json:"fullName"`
		SpdxID   string `json:"spdxId"`
	}
	if err := json.Unmarshal(raw, &lic); err == nil && (lic.FullName != "" || lic.SpdxID != "") {
		if lic.FullName != "" {
			return lic.FullName
		}
		return lic.SpdxID
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return licenseString(list[0])
	}

	return ""
}

// flakeRefFor maps a Source to the flake reference `nix search` should
// query. NUR and flake inputs are addressed by their own flake refs;
// Nxs/Unstable use the repo's own locked nixpkgs input so results match
// what `rebuild` will actually build.
func flakeRefFor(source Source, repoRoot string) string {
	switch source {
	case Unstable:
		return repoRoot + "#legacyPackages." + platform.GetNixSystem()
	case Nur:
		return "github:nix-community/NUR"
	default:
		return repoRoot + "#legacyPackages." + platform.GetNixSystem()
	}
}

// SearchNixNative shells out to `nix search` against the given flake
// reference and returns every match for name, scored by how closely the
// attr/pname matches name.
func SearchNixNative(ctx context.Context, repoRoot string, source Source, name string) ([]SourceResult, error) {
	ref := flakeRefFor(source, repoRoot)
	cmd := exec.CommandContext(ctx, "nix", "search", "--json", ref, name)

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) == 0 && len(out) == 0 {
			// `nix search` exits 1 with no output when there are no matches.
			return nil, nil
		}
		return nil, fmt.Errorf("nix search %s: %w", ref, err)
	}

	var raw map[string]nixSearchEntry
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse nix search output: %w", err)
	}

	results := make([]SourceResult, 0, len(raw))
	for key, entry := range raw {
		attr := lastAttrSegment(key)
		results = append(results, sourceResultFromEntry(source, attr, name, entry))
	}
	return results, nil
}

// sourceResultFromEntry builds a SourceResult from a parsed nix search
// entry, carrying over meta.homepage/license/broken/insecure/platforms
// when the entry has a meta block at all.
func sourceResultFromEntry(source Source, attr, query string, entry nixSearchEntry) SourceResult {
	r := SourceResult{
		Source:      source,
		Attr:        attr,
		Pname:       entry.Pname,
		Description: entry.Description,
		Version:     entry.Version,
		Confidence:  scoreMatch(query, attr, entry.Pname),
	}
	if entry.Meta != nil {
		r.Homepage = entry.Meta.Homepage
		r.License = licenseString(entry.Meta.License)
		r.Broken = entry.Meta.Broken
		r.Insecure = entry.Meta.Insecure
		r.Platforms = entry.Meta.Platforms
	}
	return r
}

// SearchFlakeInput queries a declared flake input's own packages by attr
// path `<inputName>.legacyPackages.<system>` only; `packages.<system>`
// outputs are not searched. A failed search other than a cancelled or
// expired context yields no results and no error.
func SearchFlakeInput(ctx context.Context, repoRoot, inputName, name string) ([]SourceResult, error) {
	ref := fmt.Sprintf("%s#%s.legacyPackages.%s", repoRoot, inputName, platform.GetNixSystem())
	cmd := exec.CommandContext(ctx, "nix", "search", "--json", ref, name)

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}

	var raw map[string]nixSearchEntry
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse flake input search output: %w", err)
	}

	results := make([]SourceResult, 0, len(raw))
	for key, entry := range raw {
		attr := lastAttrSegment(key)
		r := sourceResultFromEntry(FlakeInput, attr, name, entry)
		r.Attr = fmt.Sprintf("%s.%s", inputName, attr)
		results = append(results, r)
	}
	return results, nil
}

func lastAttrSegment(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return key
	}
	return key[idx+1:]
}

// scoreMatch assigns a confidence in [0,1]: exact name match scores
// highest, then prefix, then substring, then an unrelated floor.
func scoreMatch(query, attr, pname string) float64 {
	q := strings.ToLower(query)
	a := strings.ToLower(attr)
	p := strings.ToLower(pname)

	if a == q || p == q {
		return 1.0
	}
	if strings.HasPrefix(a, q) || strings.HasPrefix(p, q) {
		return 0.8
	}
	if strings.Contains(a, q) || strings.Contains(p, q) {
		return 0.5
	}
	return 0.2
}
