/*
Package finder parses package declarations across the repo's .nix
manifests, maintains an mtime/size-validated index, and answers
exact/alias/fuzzy lookups (spec §4.3).

Parsing is block-based rather than whole-file substring matching: a
package name is only recorded when it appears inside a recognized list
or attrset block (home.packages/environment.systemPackages,
homebrew.brews/casks/masApps, launchd agents). An alias assignment line
like `vim = "nvim";` sitting outside any such block is never visited by
the block scanner, so it can never be mistaken for a declaration of the
package "vim" — that is the false-positive discipline the spec calls for.
*/
package finder

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/shawnkhoffman/nx/internal/configscan"
	"github.com/shawnkhoffman/nx/internal/util"
)

// Bucket is one of the five package/service groupings the Finder tracks.
type Bucket string

const (
	BucketNxs      Bucket = "nxs"
	BucketBrews    Bucket = "brews"
	BucketCasks    Bucket = "casks"
	BucketMas      Bucket = "mas"
	BucketServices Bucket = "services"
)

// Entry is a single discovered declaration.
type Entry struct {
	Name   string
	Path   string
	Line   int
	Bucket Bucket
}

var (
	nxsListStartRe   = regexp.MustCompile(`^\s*(home\.packages|environment\.systemPackages)\s*=\s*(with\s+[\w.]+\s*;\s*)?\[`)
	brewsListStartRe = regexp.MustCompile(`^\s*homebrew\.brews\s*=\s*\[`)
	casksListStartRe = regexp.MustCompile(`^\s*homebrew\.casks\s*=\s*\[`)
	masBlockStartRe  = regexp.MustCompile(`^\s*homebrew\.masApps\s*=\s*\{`)
	masEntryRe       = regexp.MustCompile(`^\s*"?([A-Za-z0-9 ._+-]+)"?\s*=\s*([0-9]+)\s*;`)
	serviceDeclRe    = regexp.MustCompile(`^\s*launchd\.(?:agents|user\.agents)\.([A-Za-z0-9_.-]+)\s*=`)
	listItemRe       = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_'./-]*`)
	bareListStartRe  = regexp.MustCompile(`^\s*\[`)
)

// Finder parses and indexes package declarations for one repo root.
type Finder struct {
	repoRoot string
	scan     *configscan.Scan

	mu          sync.Mutex
	entries     map[Bucket][]Entry
	signatures  map[string]fileSig
	rebuildCtr  int
}

type fileSig struct {
	mtimeNs int64
	size    int64
}

// New creates a Finder bound to repoRoot, using scan's purpose-routed
// paths to recognize dedicated Homebrew manifests.
func New(repoRoot string, scan *configscan.Scan) *Finder {
	return &Finder{repoRoot: repoRoot, scan: scan}
}

// RebuildCount exposes the index-rebuild counter for tests (spec §4.3/§8).
func (f *Finder) RebuildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebuildCtr
}

// ensureIndex rebuilds the index iff the set of (path, mtime_ns, size)
// signatures across all manifests has changed since the last build.
func (f *Finder) ensureIndex() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	files, err := f.globManifests()
	if err != nil {
		return err
	}

	newSigs := make(map[string]fileSig, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		newSigs[path] = fileSig{mtimeNs: info.ModTime().UnixNano(), size: info.Size()}
	}

	if f.signatures != nil && sigsEqual(f.signatures, newSigs) {
		return nil
	}

	entries := make(map[Bucket][]Entry)
	for _, path := range files {
		parsed, err := parseFile(path, f.isDedicatedBrews(path), f.isDedicatedCasks(path))
		if err != nil {
			continue
		}
		for bucket, es := range parsed {
			entries[bucket] = append(entries[bucket], es...)
		}
	}

	f.entries = entries
	f.signatures = newSigs
	f.rebuildCtr++
	return nil
}

func sigsEqual(a, b map[string]fileSig) bool {
	if len(a) != len(b) {
		return false
	}
	for path, sig := range a {
		other, ok := b[path]
		if !ok || other != sig {
			return false
		}
	}
	return true
}

func (f *Finder) isDedicatedBrews(path string) bool {
	return f.scan != nil && path == f.scan.HomebrewBrews()
}

func (f *Finder) isDedicatedCasks(path string) bool {
	return f.scan != nil && path == f.scan.HomebrewCasks()
}

// globManifests enumerates every .nix file under the four root dirs,
// including default.nix (package discovery is not purpose-routing).
func (f *Finder) globManifests() ([]string, error) {
	var files []string
	for _, dir := range []string{"home", "system", "hosts", "packages"} {
		root := filepath.Join(f.repoRoot, dir)
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if !info.IsDir() && filepath.Ext(path) == ".nix" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// parseFile scans a single manifest for declarations in every recognized bucket.
func parseFile(path string, dedicatedBrews, dedicatedCasks bool) (map[Bucket][]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := make(map[Bucket][]Entry)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	var openBucket Bucket
	var openIsBlock bool // true for attrset ({...}), false for list ([...])

	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		line := stripComment(raw)

		if openBucket == "" {
			switch {
			case nxsListStartRe.MatchString(line):
				openBucket, openIsBlock = BucketNxs, false
			case brewsListStartRe.MatchString(line):
				openBucket, openIsBlock = BucketBrews, false
			case casksListStartRe.MatchString(line):
				openBucket, openIsBlock = BucketCasks, false
			case masBlockStartRe.MatchString(line):
				openBucket, openIsBlock = BucketMas, true
			case serviceDeclRe.MatchString(line):
				m := serviceDeclRe.FindStringSubmatch(line)
				result[BucketServices] = append(result[BucketServices], Entry{Name: m[1], Path: path, Line: lineNum, Bucket: BucketServices})
				continue
			case dedicatedBrews && bareListStartRe.MatchString(line):
				openBucket, openIsBlock = BucketBrews, false
			case dedicatedCasks && bareListStartRe.MatchString(line):
				openBucket, openIsBlock = BucketCasks, false
			}
			if openBucket == "" {
				continue
			}
			// the start line may itself carry items/entries after the delimiter
			line = afterDelimiter(line, openIsBlock)
		}

		if openBucket == BucketMas {
			for _, m := range masEntryRe.FindAllStringSubmatch(line, -1) {
				result[BucketMas] = append(result[BucketMas], Entry{Name: strings.TrimSpace(m[1]), Path: path, Line: lineNum, Bucket: BucketMas})
			}
		} else {
			for _, tok := range listItemRe.FindAllString(line, -1) {
				if isListKeyword(tok) {
					continue
				}
				result[openBucket] = append(result[openBucket], Entry{Name: tok, Path: path, Line: lineNum, Bucket: openBucket})
			}
		}

		closeRune := "]"
		if openIsBlock {
			closeRune = "}"
		}
		if strings.Contains(line, closeRune) {
			openBucket = ""
		}
	}
	return result, scanner.Err()
}

func afterDelimiter(line string, isBlock bool) string {
	delim := "["
	if isBlock {
		delim = "{"
	}
	idx := strings.Index(line, delim)
	if idx < 0 {
		return line
	}
	return line[idx+1:]
}

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

var listKeywords = map[string]bool{"with": true, "pkgs": true, "lib": true}

func isListKeyword(tok string) bool {
	return listKeywords[tok]
}

// FindPackage applies the alias map and returns the first matching
// location across buckets (nxs, brews, casks, mas, services order).
func (f *Finder) FindPackage(name string) (Entry, bool, error) {
	if err := f.ensureIndex(); err != nil {
		return Entry{}, false, err
	}
	target := util.Normalize(name)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, bucket := range []Bucket{BucketNxs, BucketBrews, BucketCasks, BucketMas, BucketServices} {
		for _, e := range f.entries[bucket] {
			if util.Normalize(e.Name) == target {
				return e, true, nil
			}
		}
	}
	return Entry{}, false, nil
}

// FindAllPackages returns all five buckets as ordered name sequences.
func (f *Finder) FindAllPackages() (map[Bucket][]string, error) {
	if err := f.ensureIndex(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[Bucket][]string)
	for _, bucket := range []Bucket{BucketNxs, BucketBrews, BucketCasks, BucketMas, BucketServices} {
		names := make([]string, 0, len(f.entries[bucket]))
		for _, e := range f.entries[bucket] {
			names = append(names, e.Name)
		}
		out[bucket] = names
	}
	return out, nil
}

// FindPackageFuzzy tries exact, then longest-prefix, then substring
// matching. Ties break by shortest candidate then lexicographically.
func (f *Finder) FindPackageFuzzy(name string) (string, Entry, bool, error) {
	if entry, ok, err := f.FindPackage(name); err != nil {
		return "", Entry{}, false, err
	} else if ok {
		return entry.Name, entry, true, nil
	}

	if err := f.ensureIndex(); err != nil {
		return "", Entry{}, false, err
	}
	target := util.Normalize(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	var all []Entry
	for _, bucket := range []Bucket{BucketNxs, BucketBrews, BucketCasks, BucketMas, BucketServices} {
		all = append(all, f.entries[bucket]...)
	}

	if candidate, entry, ok := bestMatch(all, target, func(n string) bool {
		return strings.HasPrefix(util.Normalize(n), target)
	}); ok {
		return candidate, entry, true, nil
	}

	if candidate, entry, ok := bestMatch(all, target, func(n string) bool {
		return strings.Contains(util.Normalize(n), target)
	}); ok {
		return candidate, entry, true, nil
	}

	return "", Entry{}, false, nil
}

// bestMatch finds the entry whose name satisfies pred, breaking ties by
// shortest name then lexicographic order.
func bestMatch(all []Entry, target string, pred func(string) bool) (string, Entry, bool) {
	var matches []Entry
	for _, e := range all {
		if pred(e.Name) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return "", Entry{}, false
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].Name) != len(matches[j].Name) {
			return len(matches[i].Name) < len(matches[j].Name)
		}
		return matches[i].Name < matches[j].Name
	})
	return matches[0].Name, matches[0], true
}
