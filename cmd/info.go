/*
info.go implements `nx info`: print what's known about a package name —
whether it's already declared, and what each upstream source reports —
as plain text or the `--json` shape from spec §6. Always exits 0, even
for an unknown name.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
	"github.com/shawnkhoffman/nx/internal/search"
	"github.com/shawnkhoffman/nx/internal/sources"
)

var (
	infoJSON  bool
	infoFlags sourceFlags
)

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Show everything known about a package across sources",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "emit structured JSON")
	addSourceFlags(infoCmd, &infoFlags)
	rootCmd.AddCommand(infoCmd)
}

type infoSourceJSON struct {
	Source      string `json:"source"`
	Attr        string `json:"attr"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	License     string `json:"license"`
	Broken      bool   `json:"broken"`
	Insecure    bool   `json:"insecure"`
}

type infoJSONDoc struct {
	Name          string           `json:"name"`
	Installed     bool             `json:"installed"`
	Location      *string          `json:"location"`
	Sources       []infoSourceJSON `json:"sources"`
	HmModule      *bool            `json:"hm_module,omitempty"`
	DarwinService *bool            `json:"darwin_service,omitempty"`
	Flakehub      *string          `json:"flakehub,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return nxerrors.NewArgError("info requires exactly one package name")
	}
	name := args[0]

	doc := infoJSONDoc{Name: name}

	if entry, ok, err := appContext.Finder.FindPackage(name); err == nil && ok {
		doc.Installed = true
		loc := fmt.Sprintf("%s:%d", entry.Path, entry.Line)
		doc.Location = &loc
	} else {
		prefs := infoFlags.resolve()
		opts := search.Options{
			RepoRoot:    appContext.RepoRoot,
			Prefs:       prefs,
			FlakeInputs: appContext.FlakeInputNames(),
			Revision:    primaryRevision(),
			Minimal:     true,
		}
		resolution, err := search.Resolve(cmd.Context(), name, opts, appContext.Finder, appContext.Cache)
		if err == nil {
			for _, r := range resolution.Results {
				doc.Sources = append(doc.Sources, infoSourceJSON{
					Source:      string(r.Source),
					Attr:        r.Attr,
					Version:     r.Version,
					Description: r.Description,
					Homepage:    r.Homepage,
					License:     r.License,
					Broken:      r.Broken,
					Insecure:    r.Insecure,
				})
			}
		}
		if prefs.BleedingEdge {
			if hub := flakehubHint(resolution.Results); hub != "" {
				doc.Flakehub = &hub
			}
		}
	}

	if appContext.Flags.JSON || infoJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printInfoPlain(doc)
	return nil
}

func printInfoPlain(doc infoJSONDoc) {
	if doc.Installed {
		fmt.Printf("%s: already declared at %s\n", doc.Name, *doc.Location)
		return
	}
	if len(doc.Sources) == 0 {
		fmt.Printf("%s: no match found\n", doc.Name)
		return
	}
	fmt.Printf("%s:\n", doc.Name)
	for _, s := range doc.Sources {
		fmt.Printf("  [%s] %s %s - %s\n", s.Source, s.Attr, s.Version, s.Description)
	}
	if doc.Flakehub != nil {
		fmt.Printf("  flakehub: %s\n", *doc.Flakehub)
	}
}

// flakehubHint derives a github:owner/repo style reference from the
// first flake-input result's homepage, as a convenience pointer rather
// than a verified FlakeHub registry lookup.
func flakehubHint(results []sources.SourceResult) string {
	for _, r := range results {
		if r.Source != sources.FlakeInput {
			continue
		}
		const ghPrefix = "https://github.com/"
		if strings.HasPrefix(r.Homepage, ghPrefix) {
			return "github:" + strings.TrimSuffix(strings.TrimPrefix(r.Homepage, ghPrefix), "/")
		}
	}
	return ""
}
