/*
list.go implements `nx list`: print the Finder's five buckets, filtered
by the source-filter aliases from spec §6, as plain text or `--json`.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shawnkhoffman/nx/internal/finder"
)

var listJSON bool

var listFilterAliases = map[string]finder.Bucket{
	"nix": finder.BucketNxs, "nxs": finder.BucketNxs,
	"brew": finder.BucketBrews, "brews": finder.BucketBrews, "homebrew": finder.BucketBrews,
	"cask": finder.BucketCasks, "casks": finder.BucketCasks,
	"mas": finder.BucketMas,
	"service": finder.BucketServices, "services": finder.BucketServices,
}

var listDefaultOrder = []finder.Bucket{
	finder.BucketNxs, finder.BucketBrews, finder.BucketCasks, finder.BucketMas, finder.BucketServices,
}

var listCmd = &cobra.Command{
	Use:   "list [filter...]",
	Short: "List declared packages, optionally filtered by source",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit {source: [name, ...]} JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	all, err := appContext.Finder.FindAllPackages()
	if err != nil {
		return err
	}

	buckets := listDefaultOrder
	if len(args) > 0 {
		buckets = nil
		seen := make(map[finder.Bucket]bool)
		for _, a := range args {
			b, ok := listFilterAliases[strings.ToLower(a)]
			if !ok {
				return fmt.Errorf("invalid source filter %q; valid filters: nix|nxs, brew|brews|homebrew, cask|casks, mas, service|services", a)
			}
			if !seen[b] {
				seen[b] = true
				buckets = append(buckets, b)
			}
		}
	}

	if appContext.Flags.JSON || listJSON {
		out := make(map[string][]string, len(buckets))
		for _, b := range buckets {
			out[string(b)] = all[b]
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, b := range buckets {
		names := all[b]
		fmt.Printf("%s (%d):\n", b, len(names))
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
	}
	return nil
}
