/*
Package cache persists per-name search results across invocations at
~/.cache/nx/packages_v4.json (spec §4.4), so repeated lookups for the
same name skip the network/subprocess round trip to nix search and
Homebrew.
*/
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	validator "github.com/go-playground/validator/v10"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/internal/util"
	"github.com/shawnkhoffman/nx/pkg/filesystem"
)

// SchemaVersion is the current on-disk envelope version. A file written
// by a future, incompatible version is discarded rather than rejected.
const SchemaVersion = 1

const cacheFileName = "packages_v4.json"

// Key identifies one cached result: normalized name, source, revision.
type Key string

func makeKey(name string, source sources.Source, revision string) Key {
	return Key(fmt.Sprintf("%s|%s|%s", util.Normalize(name), source, revision))
}

// entryRecord is the validated, on-disk shape of one cached result.
type entryRecord struct {
	Source      string  `json:"source" validate:"required"`
	Attr        string  `json:"attr" validate:"required"`
	Pname       string  `json:"pname"`
	Version     string  `json:"version"`
	Description string  `json:"description"`
	Homepage    string  `json:"homepage"`
	License     string  `json:"license"`
	Broken      bool    `json:"broken"`
	Insecure    bool    `json:"insecure"`
	Platforms   []string `json:"platforms"`
	Confidence  float64 `json:"confidence"`
	Revision    string  `json:"revision"`
}

// envelope is the on-disk document shape.
type envelope struct {
	SchemaVersion int                      `json:"schema_version" validate:"required"`
	Entries       map[string][]entryRecord `json:"entries"`
}

// Cache is an in-memory view of the persisted envelope, keyed by
// normalized package name.
type Cache struct {
	fs   filesystem.FileSystem
	path string

	byName map[string][]SourceEntry
}

// SourceEntry pairs a cached sources.SourceResult with the key it was stored under.
type SourceEntry struct {
	Key    Key
	Result sources.SourceResult
}

var validate = validator.New()

// DefaultPath returns ~/.cache/nx/packages_v4.json.
func DefaultPath(cacheDir string) string {
	return filepath.Join(cacheDir, cacheFileName)
}

// Load reads and validates the envelope at path. Any schema mismatch or
// decode failure discards the cache and returns an empty, writable one
// rather than surfacing a fatal error (spec §4.4).
func Load(fs filesystem.FileSystem, path string) (*Cache, error) {
	c := &Cache{fs: fs, path: path, byName: make(map[string][]SourceEntry)}

	data, err := fs.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return c, nil
	}
	if err := validate.Struct(&env); err != nil {
		return c, nil
	}
	if env.SchemaVersion != SchemaVersion {
		return c, nil
	}

	for keyStr, records := range env.Entries {
		key := Key(keyStr)
		for _, rec := range records {
			if err := validate.Struct(&rec); err != nil {
				continue
			}
			name := nameFromKey(key)
			c.byName[name] = append(c.byName[name], SourceEntry{
				Key:    key,
				Result: recordToResult(rec),
			})
		}
	}
	return c, nil
}

func nameFromKey(k Key) string {
	s := string(k)
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			return s[:i]
		}
	}
	return s
}

func recordToResult(r entryRecord) sources.SourceResult {
	return sources.SourceResult{
		Source:      sources.Source(r.Source),
		Attr:        r.Attr,
		Pname:       r.Pname,
		Version:     r.Version,
		Description: r.Description,
		Homepage:    r.Homepage,
		License:     r.License,
		Broken:      r.Broken,
		Insecure:    r.Insecure,
		Platforms:   r.Platforms,
		Confidence:  r.Confidence,
	}
}

func resultToRecord(res sources.SourceResult, revision string) entryRecord {
	return entryRecord{
		Source:      string(res.Source),
		Attr:        res.Attr,
		Pname:       res.Pname,
		Version:     res.Version,
		Description: res.Description,
		Homepage:    res.Homepage,
		License:     res.License,
		Broken:      res.Broken,
		Insecure:    res.Insecure,
		Platforms:   res.Platforms,
		Confidence:  res.Confidence,
		Revision:    revision,
	}
}

// Put stores a single source result for name at the given revision
// (normally the flake.lock revision for nix-native sources, empty for
// Homebrew/cask/mas).
func (c *Cache) Put(name string, revision string, res sources.SourceResult) {
	key := makeKey(name, res.Source, revision)
	normalized := util.Normalize(name)

	existing := c.byName[normalized]
	for i, e := range existing {
		if e.Key == key {
			existing[i] = SourceEntry{Key: key, Result: res}
			c.byName[normalized] = existing
			return
		}
	}
	c.byName[normalized] = append(existing, SourceEntry{Key: key, Result: res})
}

// GetAll returns every cached result for name across nxs, nur,
// homebrew, and cask sources, applying two guardrails:
//
//   - stale revision: a nix-native entry cached under a flake.lock
//     revision other than the current one is dropped outright, since
//     `nx upgrade` may have moved the attr, changed its version, or
//     removed it entirely. Homebrew/cask/mas entries carry no revision
//     (always cached under ""), so they're unaffected.
//   - Homebrew-only: if what survives the revision check covers
//     Homebrew/cask but neither a nix-native nor NUR entry, the cache is
//     treated as incomplete and an empty slice is returned so the
//     caller re-runs the primary nix-native search instead of
//     committing to a stale Homebrew-only answer.
func (c *Cache) GetAll(name, revision string) []sources.SourceResult {
	entries := c.byName[util.Normalize(name)]
	if len(entries) == 0 {
		return nil
	}

	fresh := make([]SourceEntry, 0, len(entries))
	for _, e := range entries {
		if sources.IsNixNative(e.Result.Source) && revisionFromKey(e.Key) != revision {
			continue
		}
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return nil
	}

	var hasNixNative, hasHomebrewLike bool
	for _, e := range fresh {
		if sources.IsNixNative(e.Result.Source) {
			hasNixNative = true
		}
		if e.Result.Source == sources.Homebrew || e.Result.Source == sources.Cask {
			hasHomebrewLike = true
		}
	}
	if hasHomebrewLike && !hasNixNative {
		return nil
	}

	out := make([]sources.SourceResult, 0, len(fresh))
	for _, e := range fresh {
		out = append(out, e.Result)
	}
	sort.Slice(out, func(i, j int) bool {
		return sourceOrder(out[i].Source) < sourceOrder(out[j].Source)
	})
	return out
}

func sourceOrder(s sources.Source) int {
	switch s {
	case sources.Nxs, sources.Unstable, sources.FlakeInput:
		return 0
	case sources.Nur:
		return 1
	case sources.Homebrew:
		return 2
	case sources.Cask:
		return 3
	default:
		return 4
	}
}

// Count returns the number of distinct normalized names currently held
// in memory, used by `nx status` to report cache size.
func (c *Cache) Count() int {
	return len(c.byName)
}

// Flush validates and atomically persists the current in-memory state:
// write to a temp file in the same directory, then rename over the
// target, so a crash mid-write never leaves a truncated cache behind.
func (c *Cache) Flush() error {
	env := envelope{SchemaVersion: SchemaVersion, Entries: make(map[string][]entryRecord)}
	for _, entries := range c.byName {
		for _, e := range entries {
			rec := resultToRecord(e.Result, revisionFromKey(e.Key))
			env.Entries[string(e.Key)] = append(env.Entries[string(e.Key)], rec)
		}
	}

	if err := validate.Struct(&env); err != nil {
		return nxerrors.NewCacheError(nxerrors.SchemaMismatch, err)
	}

	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return nxerrors.NewCacheError(nxerrors.Corrupt, err)
	}

	dir := filepath.Dir(c.path)
	if err := c.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := c.fs.CreateTemp(dir, "packages_v4-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		c.fs.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		c.fs.Remove(tmpPath)
		return err
	}
	return c.fs.Rename(tmpPath, c.path)
}

func revisionFromKey(k Key) string {
	s := string(k)
	last := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	return s[last+1:]
}
