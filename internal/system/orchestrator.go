/*
Package system implements the SystemOrchestrator: update, rebuild, and
the four-phase upgrade flow (spec §4.10), shelling out to nix,
darwin-rebuild, brew, and git the way the teacher's pkg/nix.Installer
shells out to the Nix installer script — verbose, line-streamed, errors
wrapped with %w.
*/
package system

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/logging"
	"github.com/shawnkhoffman/nx/pkg/progress"
)

// cacheCorruptionSignature is the exact substring nix prints when its
// local fetcher cache is corrupt; seeing it triggers a one-time cache
// wipe and retry.
const cacheCorruptionSignature = "failed to insert entry: invalid object specified"

const fetcherCachePath = ".cache/nix/fetcher-cache-v4.sqlite"

// Orchestrator runs the repo-wide system operations against repoRoot.
type Orchestrator struct {
	RepoRoot    string
	Stdout      *os.File
	Passthrough []string // extra args forwarded to darwin-rebuild / nix flake update
}

// New constructs an Orchestrator targeting repoRoot.
func New(repoRoot string, passthrough []string) *Orchestrator {
	return &Orchestrator{RepoRoot: repoRoot, Stdout: os.Stdout, Passthrough: passthrough}
}

// Update runs `nix flake update`, streaming its output.
func (o *Orchestrator) Update(ctx context.Context) error {
	fmt.Println("Updating flake inputs...")
	args := append([]string{"flake", "update"}, o.Passthrough...)
	if err := o.streamCmd(ctx, "nix", args...); err != nil {
		return nxerrors.NewSystemError(nxerrors.UpdateFailed, err)
	}
	return nil
}

// Rebuild runs the preflight checks then execs darwin-rebuild switch
// directly (not wrapped in a login shell), so a sudoers NOPASSWD rule
// scoped to that absolute path still matches.
func (o *Orchestrator) Rebuild(ctx context.Context) error {
	if err := o.preflight(ctx); err != nil {
		return nxerrors.NewSystemError(nxerrors.PreflightFailed, err)
	}

	args := append([]string{"/run/current-system/sw/bin/darwin-rebuild", "switch", "--flake", o.RepoRoot}, o.Passthrough...)
	fmt.Println("Rebuilding system configuration...")
	cmd := exec.CommandContext(ctx, "sudo", args...)
	cmd.Stdout = o.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nxerrors.NewSystemError(nxerrors.RebuildFailed, err)
	}
	return nil
}

// preflight requires no untracked .nix files under the four root
// directories (nix silently ignores anything git doesn't track) and a
// clean `nix flake check`.
func (o *Orchestrator) preflight(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--others", "--exclude-standard",
		"home", "packages", "system", "hosts")
	cmd.Dir = o.RepoRoot
	out, err := cmd.Output()
	if err == nil {
		var untracked []string
		for _, f := range strings.Fields(string(out)) {
			if strings.HasSuffix(f, ".nix") {
				untracked = append(untracked, f)
			}
		}
		if len(untracked) > 0 {
			return fmt.Errorf("untracked .nix files present, nix will not see them: %s", strings.Join(untracked, ", "))
		}
	}

	fmt.Println("Checking flake...")
	return o.streamCmd(ctx, "nix", "flake", "check", o.RepoRoot)
}

// UpgradeOptions controls which phases of Upgrade run.
type UpgradeOptions struct {
	SkipBrew    bool
	SkipRebuild bool
	SkipCommit  bool
	DryRun      bool
}

// Upgrade runs the four-phase flow from spec §4.10: flake lock update,
// brew upgrade, rebuild, commit. Any phase failure short-circuits the
// remaining phases.
func (o *Orchestrator) Upgrade(ctx context.Context, opts UpgradeOptions) error {
	lockPath := DefaultLockPath(o.RepoRoot)

	oldLock, err := ParseFlakeLock(lockPath)
	if err != nil {
		oldLock = map[string]FlakeLockInput{}
	}

	var changed, added, removed []string
	if opts.DryRun {
		fmt.Println("Phase 1/4: dry run, skipping flake update.")
	} else {
		if err := o.upgradeFlakePhase(ctx); err != nil {
			return nxerrors.NewSystemError(nxerrors.UpdateFailed, err)
		}
		newLock, err := ParseFlakeLock(lockPath)
		if err != nil {
			newLock = oldLock
		}
		changed, added, removed = DiffLocks(oldLock, newLock)
		logging.Get().
			WithField("changed", changed).WithField("added", added).WithField("removed", removed).
			Info("flake.lock diff")
	}

	if !opts.SkipBrew {
		if err := o.upgradeBrewPhase(ctx, opts.DryRun); err != nil {
			return err
		}
	}

	if !opts.SkipRebuild {
		fmt.Println("Phase 3/4: rebuilding...")
		if err := o.Rebuild(ctx); err != nil {
			return err
		}
	}

	inputsTouched := append(append([]string{}, changed...), added...)
	if !opts.SkipCommit && !opts.DryRun && len(inputsTouched) > 0 {
		if err := o.commitLock(ctx, inputsTouched); err != nil {
			return nxerrors.NewSystemError(nxerrors.UpdateFailed, err)
		}
	}
	return nil
}

// upgradeFlakePhase runs `nix flake update`, injecting a GitHub access
// token via `gh auth token` (raises the unauthenticated API rate limit)
// when one is available, and retries exactly once — after deleting the
// corrupt fetcher cache — if the output carries the cache-corruption
// signature.
func (o *Orchestrator) upgradeFlakePhase(ctx context.Context) error {
	fmt.Println("Phase 1/4: updating flake inputs...")

	args := []string{"flake", "update"}
	if token, err := exec.CommandContext(ctx, "gh", "auth", "token").Output(); err == nil {
		trimmed := strings.TrimSpace(string(token))
		if trimmed != "" {
			args = append(args, "--option", "access-tokens", "github.com="+trimmed)
		}
	}
	args = append(args, o.Passthrough...)

	out, runErr := o.runCaptured(ctx, "nix", args...)
	if runErr != nil && strings.Contains(out, cacheCorruptionSignature) {
		logging.Get().Warn("flake update hit the cache-corruption signature, clearing fetcher cache and retrying once")
		if cacheErr := o.clearFetcherCache(); cacheErr != nil {
			logging.Get().WithError(cacheErr).Warn("could not delete the fetcher cache")
		}
		out, runErr = o.runCaptured(ctx, "nix", args...)
	}
	if runErr != nil {
		return fmt.Errorf("nix flake update: %w: %s", runErr, out)
	}
	return nil
}

func (o *Orchestrator) clearFetcherCache() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return os.Remove(home + "/" + fetcherCachePath)
}

func (o *Orchestrator) runCaptured(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = o.RepoRoot
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	err := cmd.Run()
	fmt.Print(combined.String())
	return combined.String(), err
}

type brewOutdatedEntry struct {
	Name              string   `json:"name"`
	InstalledVersions []string `json:"installed_versions"`
	CurrentVersion    string   `json:"current_version"`
}

type brewOutdatedReport struct {
	Formulae []brewOutdatedEntry `json:"formulae"`
}

type brewInfoEntry struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
}

type brewInfoV2 struct {
	Formulae []brewInfoEntry `json:"formulae"`
}

// upgradeBrewPhase runs `brew outdated --json`; if it reports nothing,
// the rest of the phase (including the metadata fetch) is skipped
// entirely. Otherwise it fetches per-package metadata, prints a
// summary, and — unless dryRun — runs `brew upgrade`.
func (o *Orchestrator) upgradeBrewPhase(ctx context.Context, dryRun bool) error {
	fmt.Println("Phase 2/4: checking Homebrew for outdated formulae...")

	out, err := exec.CommandContext(ctx, "brew", "outdated", "--json").Output()
	if err != nil {
		return nxerrors.NewSystemError(nxerrors.UpdateFailed, fmt.Errorf("brew outdated: %w", err))
	}

	var report brewOutdatedReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nxerrors.NewSystemError(nxerrors.UpdateFailed, fmt.Errorf("parse brew outdated: %w", err))
	}
	if len(report.Formulae) == 0 {
		fmt.Println("No outdated Homebrew formulae.")
		return nil
	}

	var names []string
	for _, f := range report.Formulae {
		if isRealBump(f) {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	infoArgs := append([]string{"info", "--json=v2"}, names...)
	infoOut, err := exec.CommandContext(ctx, "brew", infoArgs...).Output()
	if err == nil {
		var info brewInfoV2
		if json.Unmarshal(infoOut, &info) == nil {
			for _, f := range info.Formulae {
				fmt.Printf("  %s -> %s: %s\n", f.Name, f.Versions.Stable, f.Desc)
			}
		}
	}

	if dryRun {
		return nil
	}

	args := append([]string{"upgrade"}, names...)
	fmt.Printf("Upgrading: %s\n", strings.Join(names, ", "))
	if err := o.streamCmd(ctx, "brew", args...); err != nil {
		return nxerrors.NewSystemError(nxerrors.UpdateFailed, fmt.Errorf("brew upgrade: %w", err))
	}
	return nil
}

func isRealBump(f brewOutdatedEntry) bool {
	current, err := semver.NewVersion(f.CurrentVersion)
	if err != nil {
		return true // unparsable version strings are trusted as real bumps
	}
	for _, installed := range f.InstalledVersions {
		if v, err := semver.NewVersion(installed); err == nil && !current.GreaterThan(v) {
			return false
		}
	}
	return true
}

func (o *Orchestrator) commitLock(ctx context.Context, inputs []string) error {
	fmt.Println("Phase 4/4: committing flake.lock...")
	addCmd := exec.CommandContext(ctx, "git", "add", "flake.lock")
	addCmd.Dir = o.RepoRoot
	if err := addCmd.Run(); err != nil {
		return fmt.Errorf("git add flake.lock: %w", err)
	}

	message := fmt.Sprintf("Update flake (%s)", strings.Join(inputs, ", "))
	commitCmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	commitCmd.Dir = o.RepoRoot
	out, err := commitCmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "nothing to commit") {
			return nil
		}
		return fmt.Errorf("git commit: %w: %s", err, string(out))
	}

	shaCmd := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	shaCmd.Dir = o.RepoRoot
	if sha, err := shaCmd.Output(); err == nil {
		fmt.Printf("Committed: %s %s\n", strings.TrimSpace(string(sha)), message)
	}
	return nil
}

func (o *Orchestrator) streamCmd(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = o.RepoRoot
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	if err := progress.StreamLines(o.Stdout, stdout); err != nil {
		return err
	}
	return cmd.Wait()
}
