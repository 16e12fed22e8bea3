/*
Package cmd provides the command-line interface for nx. It maps parsed
commands onto the core install-planning pipeline and enforces the
per-command exit-code and confirmation contracts (spec §4.9).
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/appctx"
	"github.com/shawnkhoffman/nx/internal/logging"
)

var knownCommands = map[string]bool{
	"install": true, "remove": true, "rm": true, "where": true, "list": true,
	"info": true, "status": true, "installed": true, "undo": true, "update": true,
	"test": true, "rebuild": true, "upgrade": true, "search": true, "uninstall": true,
	"secret": true, "secrets": true, "help": true, "completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "nx",
	Short: "A package manager for a nix-darwin + home-manager configuration repo",
	Long: `nx reconciles packages you ask for against nixpkgs, an unstable/flake-input
overlay, NUR, Homebrew formulae and casks, and the Mac App Store, then edits
the right .nix file so your next system rebuild picks up the change.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagPlain   bool
	flagUnicode bool
	flagMinimal bool
	flagVerbose bool
	flagJSON    bool
	flagYes     bool

	appContext *appctx.AppContext
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "disable ANSI color output")
	rootCmd.PersistentFlags().BoolVar(&flagUnicode, "unicode", true, "use unicode glyphs instead of ASCII")
	rootCmd.PersistentFlags().BoolVar(&flagMinimal, "minimal", false, "suppress non-fatal warnings")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit machine-readable JSON where supported")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "assume yes to confirmation prompts")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if os.Getenv("NO_COLOR") != "" {
			flagPlain = true
		}
		if err := logging.Init(flagVerbose); err != nil {
			return err
		}

		// Commands that don't need a resolved repo (help, completion) skip AppContext.
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		ctx, err := appctx.New(appctx.GlobalFlags{
			Plain:   flagPlain,
			Unicode: flagUnicode,
			Minimal: flagMinimal,
			Verbose: flagVerbose,
			JSON:    flagJSON,
			Yes:     flagYes,
		})
		if err != nil {
			return err
		}
		appContext = ctx
		return nil
	}
}

// Execute parses argv, pre-parsing the command name per spec §4.9: if the
// first non-flag token is not a known command, "install" is prepended so
// bare `nx ripgrep` behaves like `nx install ripgrep`.
func Execute() {
	args := preparseArgs(os.Args[1:])
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func preparseArgs(args []string) []string {
	for _, a := range args {
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		if knownCommands[a] {
			return args
		}
		return append([]string{"install"}, args...)
	}
	return args
}

// GetRootCommand returns the root cobra command.
func GetRootCommand() *cobra.Command {
	return rootCmd
}
