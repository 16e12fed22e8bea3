/*
install.go implements the CommandLayer's default operation: resolve one
or more package names through the SearchOrchestrator, route the chosen
candidate to a manifest, and commit an InstallPlan via the selected
EditEngine (spec §2's install data-flow diagram, §4.9).
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/editengine"
	"github.com/shawnkhoffman/nx/internal/planner"
	"github.com/shawnkhoffman/nx/internal/router"
	"github.com/shawnkhoffman/nx/internal/search"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/internal/system"
	"github.com/shawnkhoffman/nx/pkg/tui"
)

var (
	installDryRun  bool
	installRebuild bool
	installEngine  string
	installTUI     bool
	installFlags   sourceFlags
)

var installCmd = &cobra.Command{
	Use:   "install <package...>",
	Short: "Resolve one or more packages and add them to the right manifest",
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "show what would change without writing any file")
	installCmd.Flags().BoolVar(&installRebuild, "rebuild", false, "rebuild the system after a successful install")
	installCmd.Flags().StringVar(&installEngine, "engine", "direct", "edit engine to commit plans with: direct, turbo, or ai")
	installCmd.Flags().BoolVar(&installTUI, "tui", false, "use the interactive list picker to choose among candidates")
	addSourceFlags(installCmd, &installFlags)
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nxerrors.NewArgError("install requires at least one package name")
	}

	engine := planner.Engine(installEngine)
	switch engine {
	case planner.EngineDirect, planner.EngineTurbo, planner.EngineAI:
	default:
		return nxerrors.NewArgError(fmt.Sprintf("unknown engine %q", installEngine))
	}

	prefs := installFlags.resolve()
	glyphs := tui.GlyphsFor(appContext.Flags.Unicode)

	var failures int
	for _, name := range args {
		if err := installOne(cmd.Context(), name, engine, prefs, glyphs); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", glyphs.Cross, name, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d package(s) failed to install", failures, len(args))
	}
	return nil
}

// installOne runs one package's full resolve -> route -> plan -> commit
// pipeline to completion before the caller moves on to the next package
// (spec §5's sequential-ordering guarantee).
func installOne(ctx context.Context, name string, engine planner.Engine, prefs sources.SourcePreferences, glyphs tui.Glyphs) error {
	opts := search.Options{
		RepoRoot:    appContext.RepoRoot,
		Prefs:       prefs,
		FlakeInputs: appContext.FlakeInputNames(),
		Revision:    primaryRevision(),
		Minimal:     appContext.Flags.Minimal,
		Verbose:     appContext.Flags.Verbose,
	}

	resolution, err := search.Resolve(ctx, name, opts, appContext.Finder, appContext.Cache)
	if err != nil {
		return err
	}
	if !appContext.Flags.Minimal {
		for _, w := range resolution.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
		}
	}
	if len(resolution.Results) == 0 {
		return fmt.Errorf("no match found for %q", name)
	}

	if resolution.Results[0].Source == sources.Installed {
		loc := resolution.Results[0].Location
		fmt.Printf("%s %s is already declared at %s\n", glyphs.Bullet, name, loc.String())
		return nil
	}

	chosen, err := pickCandidate(name, resolution.Results)
	if err != nil {
		return err
	}

	if sources.IsNixNative(chosen.Source) && !sources.Available(chosen) {
		chosen, err = planner.NextCandidate(name, chosen.Source, resolution.Results)
		if err != nil {
			return err
		}
	}

	decision := router.Route(appContext.Config, name, chosen)
	plan, err := planner.New(name, chosen, decision, engine, installDryRun, installRebuild, appContext.RepoRoot, appContext.FlakeInputNames())
	if err != nil {
		return err
	}
	if plan.NeedsFlakeInput {
		plan.FlakeInputURL = flakeInputURLFor(chosen)
	}

	if err := plan.CheckEngineGate(); err != nil {
		return err
	}
	if plan.RoutingWarning != nil && !appContext.Flags.Minimal {
		fmt.Fprintf(os.Stderr, "warning: %s\n", plan.RoutingWarning.Error())
	}

	if plan.RequiresInteractiveConfirmation() && !appContext.Flags.Yes && !installDryRun {
		ok, err := tui.Confirm(os.Stdout, os.Stdin, fmt.Sprintf("Add new flake input %s (%s)?", name, plan.FlakeInputURL), false)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("installation of %q cancelled", name)
		}
	}

	engineImpl, err := buildEditEngine(engine)
	if err != nil {
		return err
	}
	if err := engineImpl.Commit(plan); err != nil {
		return err
	}

	if installDryRun {
		fmt.Printf("%s would add %s (%s) to %s\n", glyphs.Check, name, chosen.Source, plan.Target)
		return nil
	}

	if err := appContext.Cache.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist search cache: %v\n", err)
	}

	fmt.Printf("%s added %s (%s) to %s\n", glyphs.Check, name, chosen.Source, plan.Target)

	if installRebuild {
		orch := system.New(appContext.RepoRoot, nil)
		return orch.Rebuild(ctx)
	}
	fmt.Println("Run: nx rebuild")
	return nil
}

// pickCandidate returns the chosen candidate: the top-ranked result
// unconditionally under --yes/--dry-run or when only one candidate
// survived ranking, otherwise the user's numbered-prompt selection.
func pickCandidate(name string, results []sources.SourceResult) (sources.SourceResult, error) {
	if appContext.Flags.Yes || installDryRun || len(results) == 1 {
		return results[0], nil
	}

	if installTUI {
		choices := make([]string, len(results))
		for i, r := range results {
			choices[i] = fmt.Sprintf("%-10s %-30s %s", r.Source, candidateLabel(r), r.Description)
		}
		idx, err := tui.RunPicker(choices)
		if err != nil {
			return sources.SourceResult{}, err
		}
		return results[idx], nil
	}

	fmt.Printf("Found %d candidate(s) for %q:\n", len(results), name)
	for i, r := range results {
		fmt.Printf("  %d) %-10s %-30s %s\n", i+1, r.Source, candidateLabel(r), r.Description)
	}

	idx, err := tui.PromptInstall(os.Stdout, os.Stdin, len(results))
	if err != nil {
		return sources.SourceResult{}, err
	}
	return results[idx], nil
}

func candidateLabel(r sources.SourceResult) string {
	if r.Attr != "" {
		return r.Attr
	}
	return r.Pname
}

// primaryRevision returns the locked nixpkgs revision used as the cache
// key suffix for nix-native search results, or "" if flake.lock is
// unreadable (the cache then simply keys on an empty revision).
func primaryRevision() string {
	locks, err := system.ParseFlakeLock(appContext.FlakeLockPath)
	if err != nil {
		return ""
	}
	if in, ok := locks["nixpkgs"]; ok {
		return in.Revision()
	}
	return ""
}

// flakeInputURLFor derives a flake reference for a brand-new input
// declaration from the candidate's homepage, preferring the short
// github: form nix itself prints for GitHub-hosted flakes.
func flakeInputURLFor(r sources.SourceResult) string {
	const ghPrefix = "https://github.com/"
	if strings.HasPrefix(r.Homepage, ghPrefix) {
		return "github:" + strings.TrimSuffix(strings.TrimPrefix(r.Homepage, ghPrefix), "/")
	}
	return r.Homepage
}

func buildEditEngine(engine planner.Engine) (editengine.EditEngine, error) {
	direct := editengine.NewDirect(appContext.FileSystem())
	switch engine {
	case planner.EngineDirect:
		return direct, nil
	case planner.EngineTurbo:
		return editengine.NewTurbo(direct), nil
	case planner.EngineAI:
		return editengine.NewAI(direct), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
