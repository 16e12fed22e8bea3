package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/pkg/platform"
	"github.com/shawnkhoffman/nx/pkg/prefs"
)

// sourceFlags are the per-invocation flags every source-sensitive
// command (install, search, info) shares.
type sourceFlags struct {
	bleedingEdge bool
	nur          bool
	forceSource  string
	isCask       bool
	isMas        bool
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().BoolVar(&f.bleedingEdge, "bleeding-edge", false, "prefer the unstable/NUR overlay")
	cmd.Flags().BoolVar(&f.nur, "nur", false, "include the NUR community overlay")
	cmd.Flags().StringVar(&f.forceSource, "force-source", "", "pin resolution to exactly one source")
	cmd.Flags().BoolVar(&f.isCask, "cask", false, "treat the package as a Homebrew cask")
	cmd.Flags().BoolVar(&f.isMas, "mas", false, "treat the package as a Mac App Store app")
}

// resolve merges the on-disk defaults (~/.config/nx/prefs.yaml) with
// this invocation's explicit flags. A boolean default of true cannot be
// turned off by a flag: bleeding_edge and nur are each on when either
// the default or the flag sets them.
func (f *sourceFlags) resolve() sources.SourcePreferences {
	defaults := loadDefaults()
	p := sources.SourcePreferences{
		BleedingEdge: defaults.BleedingEdge || f.bleedingEdge,
		Nur:          defaults.Nur || f.nur,
		IsCask:       f.isCask,
		IsMas:        f.isMas,
	}
	if f.forceSource != "" {
		p.ForceSource = sources.Source(f.forceSource)
	}
	return p
}

func loadDefaults() prefs.Defaults {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return prefs.Defaults{}
	}
	d, err := prefs.Load(dir + "/prefs.yaml")
	if err != nil {
		return prefs.Defaults{}
	}
	return d
}
