/*
Package appctx builds the AppContext every command operates against: the
resolved repo root, its ConfigScan, the flake.lock path, an open Cache
handle, and the global flags parsed once in cmd/root.go's
PersistentPreRunE.
*/
package appctx

import (
	"github.com/shawnkhoffman/nx/internal/cache"
	"github.com/shawnkhoffman/nx/internal/configscan"
	"github.com/shawnkhoffman/nx/internal/finder"
	"github.com/shawnkhoffman/nx/internal/locator"
	"github.com/shawnkhoffman/nx/internal/system"
	"github.com/shawnkhoffman/nx/pkg/filesystem"
	"github.com/shawnkhoffman/nx/pkg/platform"
)

// GlobalFlags mirrors the CommandLayer's persistent flags, read once at
// construction time so a command's later flag mutations never change an
// already-running operation's behavior.
type GlobalFlags struct {
	Plain   bool
	Unicode bool
	Minimal bool
	Verbose bool
	JSON    bool
	Yes     bool
}

// AppContext is constructed once per invocation and threaded through
// every command.
type AppContext struct {
	RepoRoot      string
	Config        *configscan.Scan
	FlakeLockPath string
	Cache         *cache.Cache
	Finder        *finder.Finder
	Flags         GlobalFlags

	fs filesystem.FileSystem
}

// New resolves the repo root, scans its manifests, and opens the
// package-search cache.
func New(flags GlobalFlags) (*AppContext, error) {
	repoRoot, err := locator.Locate()
	if err != nil {
		return nil, err
	}

	scan, err := configscan.New(repoRoot)
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewOSFileSystem()

	cacheDir, err := platform.GetCacheDir()
	if err != nil {
		return nil, err
	}

	c, err := cache.Load(fs, cache.DefaultPath(cacheDir))
	if err != nil {
		return nil, err
	}

	return &AppContext{
		RepoRoot:      repoRoot,
		Config:        scan,
		FlakeLockPath: system.DefaultLockPath(repoRoot),
		Cache:         c,
		Finder:        finder.New(repoRoot, scan),
		Flags:         flags,
		fs:            fs,
	}, nil
}

// FileSystem returns the filesystem abstraction this context was built with.
func (a *AppContext) FileSystem() filesystem.FileSystem { return a.fs }

// FlakeInputNames returns every declared flake input's name other than
// the repo's own nixpkgs and nixpkgs-unstable inputs, used by the SearchOrchestrator's
// per-input fan-out.
func (a *AppContext) FlakeInputNames() []string {
	locks, err := system.ParseFlakeLock(a.FlakeLockPath)
	if err != nil {
		return nil
	}
	var names []string
	for name := range locks {
		if name == "nixpkgs" || name == "nixpkgs-unstable" {
			continue
		}
		names = append(names, name)
	}
	return names
}
