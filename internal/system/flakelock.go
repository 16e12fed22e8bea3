package system

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FlakeLockKind is the tagged variant of a flake.lock input. Only github
// and tarball kinds are tracked; file-kind entries are ignored per spec.
type FlakeLockKind string

const (
	KindGithub  FlakeLockKind = "github"
	KindTarball FlakeLockKind = "tarball"
	kindFile    FlakeLockKind = "file"
)

// FlakeLockInput is a single tracked input from flake.lock.
type FlakeLockInput struct {
	Name         string
	Kind         FlakeLockKind
	Owner        string
	Repo         string
	Rev          string
	LastModified int64
}

type rawLock struct {
	Nodes map[string]rawNode `json:"nodes"`
	Root  string             `json:"root"`
}

type rawNode struct {
	Locked *rawLocked `json:"locked"`
}

type rawLocked struct {
	Type         string `json:"type"`
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Rev          string `json:"rev"`
	URL          string `json:"url"`
	LastModified int64  `json:"lastModified"`
}

// ParseFlakeLock reads and parses a flake.lock file, returning the
// tracked (github/tarball) inputs keyed by input name. file-kind entries
// are skipped; FlakeHub tarball URLs are parsed for owner/repo.
func ParseFlakeLock(path string) (map[string]FlakeLockInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flake.lock: %w", err)
	}
	return parseFlakeLockBytes(data)
}

func parseFlakeLockBytes(data []byte) (map[string]FlakeLockInput, error) {
	var raw rawLock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse flake.lock: %w", err)
	}

	inputs := make(map[string]FlakeLockInput)
	for name, node := range raw.Nodes {
		if name == raw.Root || node.Locked == nil {
			continue
		}
		switch FlakeLockKind(node.Locked.Type) {
		case KindGithub:
			inputs[name] = FlakeLockInput{
				Name:         name,
				Kind:         KindGithub,
				Owner:        node.Locked.Owner,
				Repo:         node.Locked.Repo,
				Rev:          node.Locked.Rev,
				LastModified: node.Locked.LastModified,
			}
		case KindTarball:
			owner, repo := parseFlakeHubTarballURL(node.Locked.URL)
			inputs[name] = FlakeLockInput{
				Name:         name,
				Kind:         KindTarball,
				Owner:        owner,
				Repo:         repo,
				Rev:          node.Locked.Rev,
				LastModified: node.Locked.LastModified,
			}
		case kindFile:
			// ignored per spec
		}
	}
	return inputs, nil
}

// parseFlakeHubTarballURL extracts owner/repo from a FlakeHub tarball URL
// of the form https://flakehub.com/f/<owner>/<repo>/<version>.tar.gz.
func parseFlakeHubTarballURL(raw string) (owner, repo string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "f" && i+2 < len(parts) {
			return parts[i+1], parts[i+2]
		}
	}
	return "", ""
}

// Revision returns the locked revision of an input truncated to 12 hex
// chars, the form used as a cache-key component.
func (f FlakeLockInput) Revision() string {
	if len(f.Rev) <= 12 {
		return f.Rev
	}
	return f.Rev[:12]
}

// DiffLocks compares two lock snapshots at input level and returns
// (changed, added, removed) input names. It is reflexive:
// DiffLocks(l, l) == (nil, nil, nil).
func DiffLocks(oldLock, newLock map[string]FlakeLockInput) (changed, added, removed []string) {
	for name, newInput := range newLock {
		oldInput, ok := oldLock[name]
		if !ok {
			added = append(added, name)
			continue
		}
		if oldInput.Rev != newInput.Rev {
			changed = append(changed, name)
		}
	}
	for name := range oldLock {
		if _, ok := newLock[name]; !ok {
			removed = append(removed, name)
		}
	}
	return changed, added, removed
}

// DefaultLockPath returns the conventional flake.lock path under a repo root.
func DefaultLockPath(repoRoot string) string {
	return filepath.Join(repoRoot, "flake.lock")
}
