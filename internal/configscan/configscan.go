/*
Package configscan enumerates the repo's .nix manifests and reads their
`# nx:<purpose>` first-line comment, exposing purpose-keyed accessors
used by the Router (spec §4.2).
*/
package configscan

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var purposeRe = regexp.MustCompile(`^#\s*nx:(\S+)\s*$`)

const (
	Packages = "packages"
	Languages = "languages"
	Services = "services"
	Darwin   = "darwin"
	HomebrewBrews = "homebrew.brews"
	HomebrewCasks = "homebrew.casks"
	HomebrewTaps  = "homebrew.taps"
)

var rootDirs = []string{"home", "system", "hosts", "packages"}

// fallbacks gives each purpose a stable path relative to the repo root,
// used when no manifest declares that purpose via a comment.
var fallbacks = map[string]string{
	Packages:      "packages/nix/cli.nix",
	Languages:     "packages/nix/languages.nix",
	Services:      "home/services.nix",
	Darwin:        "system/darwin.nix",
	HomebrewBrews: "packages/homebrew/brews.nix",
	HomebrewCasks: "packages/homebrew/casks.nix",
	HomebrewTaps:  "packages/homebrew/taps.nix",
}

// excludedFromPurpose are parsed for package discovery (by the Finder)
// but never participate in purpose routing.
var excludedFromPurpose = map[string]bool{
	"default.nix": true,
	"common.nix":  true,
}

// Scan holds the discovered manifests for a single repo root.
type Scan struct {
	repoRoot string
	// allFiles excludes default.nix/common.nix, per spec.
	allFiles []string
	// purposeMap maps a purpose string to the (single) manifest path that
	// declared it; first file wins on duplicate declarations.
	purposeMap map[string]string
}

// New scans repoRoot's four root directories for .nix manifests.
func New(repoRoot string) (*Scan, error) {
	s := &Scan{repoRoot: repoRoot, purposeMap: make(map[string]string)}

	for _, dir := range rootDirs {
		root := filepath.Join(repoRoot, dir)
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".nix" {
				return nil
			}

			base := filepath.Base(path)
			purpose, hasPurpose := readPurpose(path)

			if !excludedFromPurpose[base] {
				s.allFiles = append(s.allFiles, path)
				if hasPurpose {
					if _, exists := s.purposeMap[purpose]; !exists {
						s.purposeMap[purpose] = path
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func readPurpose(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", false
	}
	line := strings.TrimRight(scanner.Text(), "\r\n")
	m := purposeRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// AllFiles returns every discovered manifest, excluding default.nix/common.nix.
func (s *Scan) AllFiles() []string {
	return append([]string(nil), s.allFiles...)
}

// ManifestFor returns the absolute path of the manifest declared for
// purpose, or the stable fallback path under repoRoot if none declared it.
func (s *Scan) ManifestFor(purpose string) string {
	if path, ok := s.purposeMap[purpose]; ok {
		return path
	}
	return filepath.Join(s.repoRoot, fallbacks[purpose])
}

func (s *Scan) Packages() string      { return s.ManifestFor(Packages) }
func (s *Scan) Languages() string     { return s.ManifestFor(Languages) }
func (s *Scan) Services() string      { return s.ManifestFor(Services) }
func (s *Scan) Darwin() string        { return s.ManifestFor(Darwin) }
func (s *Scan) HomebrewBrews() string { return s.ManifestFor(HomebrewBrews) }
func (s *Scan) HomebrewCasks() string { return s.ManifestFor(HomebrewCasks) }
func (s *Scan) HomebrewTaps() string  { return s.ManifestFor(HomebrewTaps) }

// RepoRoot returns the root this scan was built from.
func (s *Scan) RepoRoot() string { return s.repoRoot }
