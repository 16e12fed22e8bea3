package util

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Location identifies a single line within a manifest file.
type Location struct {
	Path string
	Line int
}

// String reassembles a location into "<path>:<line>" form.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// SplitLocation parses a "<path>:<line>" string produced by String back
// into its components. Reassembling the result must always equal the
// input for any well-formed location (spec §8).
func SplitLocation(s string) (Location, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Location{}, fmt.Errorf("malformed location %q: missing line separator", s)
	}
	path := s[:idx]
	lineStr := s[idx+1:]
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return Location{}, fmt.Errorf("malformed location %q: %w", s, err)
	}
	return Location{Path: path, Line: line}, nil
}

// Reassembled round-trips a Location back through String(), satisfying
// the split_location(x).reassembled == x invariant.
func (l Location) Reassembled() string {
	return l.String()
}

// RelativePath rewrites an absolute path under root into a root-relative
// path. It is idempotent: calling it again on an already-relative path
// that doesn't share root's prefix returns the input unchanged.
func RelativePath(root, path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(rel)
}
