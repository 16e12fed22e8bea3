/*
installed.go implements `nx installed`: report whether each given name
already resolves to a declared package via the Finder, as plain text or
the {query: {match, location}} JSON shape from spec §6/§8 scenario 6.
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
)

var installedJSON bool

var installedCmd = &cobra.Command{
	Use:   "installed <package...>",
	Short: "Check whether each given name is already declared",
	RunE:  runInstalledCmd,
}

func init() {
	installedCmd.Flags().BoolVar(&installedJSON, "json", false, "emit {query: {match, location}} JSON")
	rootCmd.AddCommand(installedCmd)
}

type installedResult struct {
	Match    *string `json:"match"`
	Location *string `json:"location"`
}

func runInstalledCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nxerrors.NewArgError("installed requires at least one package name")
	}

	out := make(map[string]installedResult, len(args))
	allFound := true

	for _, name := range args {
		if entry, ok, err := appContext.Finder.FindPackage(name); err == nil && ok {
			match := entry.Name
			loc := fmt.Sprintf("%s:%d", entry.Path, entry.Line)
			out[name] = installedResult{Match: &match, Location: &loc}
			continue
		}
		allFound = false
		out[name] = installedResult{}
	}

	if appContext.Flags.JSON || installedJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		for _, name := range args {
			r := out[name]
			if r.Match != nil {
				fmt.Printf("%s: installed (%s)\n", name, *r.Location)
			} else {
				fmt.Printf("%s: not installed\n", name)
			}
		}
	}

	if !allFound {
		return nxerrors.NewArgError("not every requested package is installed")
	}
	return nil
}
