package editengine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shawnkhoffman/nx/internal/planner"
	"github.com/shawnkhoffman/nx/internal/router"
	"github.com/shawnkhoffman/nx/internal/sources"
	"github.com/shawnkhoffman/nx/internal/util"
	"github.com/shawnkhoffman/nx/pkg/filesystem"
)

// Remove deletes the declaration at loc: a mas/service assignment line is
// dropped whole, a list-item line is dropped whole if name is its only
// token, otherwise just the token is excised and the rest of the line
// (its neighbors, indentation) is left alone.
func (d *Direct) Remove(loc util.Location, name string) error {
	data, err := d.fs.ReadFile(loc.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", loc.Path, err)
	}
	lines := strings.Split(string(data), "\n")

	idx := loc.Line - 1
	if idx < 0 || idx >= len(lines) {
		return fmt.Errorf("%s: line %d out of range", loc.Path, loc.Line)
	}

	if strings.Contains(lines[idx], "=") {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else if rest := exciseToken(lines[idx], name); strings.TrimSpace(rest) == "" {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else {
		lines[idx] = rest
	}

	return d.fs.WriteFile(loc.Path, []byte(strings.Join(lines, "\n")), 0644)
}

func exciseToken(line, name string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b\s*`)
	return re.ReplaceAllString(line, "")
}

// Direct is the interactive, full-capability engine: it performs the
// actual manifest-mutation logic, inserting into the list in
// alphabetical order while preserving the surrounding file's formatting.
type Direct struct {
	fs filesystem.FileSystem
}

// NewDirect constructs a Direct engine writing through fs.
func NewDirect(fs filesystem.FileSystem) *Direct {
	return &Direct{fs: fs}
}

func (d *Direct) Commit(plan *planner.InstallPlan) error {
	if plan.DryRun {
		return nil
	}

	// A flake-input declaration is an additional prerequisite step, not
	// the terminal routing decision: the package itself still lands in
	// its routed manifest via the switch below (spec §4.7/§4.8).
	if plan.NeedsFlakeInput {
		if err := d.commitFlakeInputDecl(plan); err != nil {
			return err
		}
	}

	switch plan.Mode {
	case router.ListAppend:
		return d.commitListAppend(plan)
	case router.LanguageWithPackages:
		return d.commitLanguagePackage(plan)
	case router.AttrSetEntry:
		return d.commitAttrSetEntry(plan)
	default:
		return fmt.Errorf("direct edit engine: unknown insertion mode %q", plan.Mode)
	}
}

func (d *Direct) commitListAppend(plan *planner.InstallPlan) error {
	data, err := d.fs.ReadFile(plan.Target)
	if err != nil {
		return fmt.Errorf("read %s: %w", plan.Target, err)
	}

	header := headerRegexForSource(plan.Result.Source)
	name := itemNameFor(plan.Result)

	updated, inserted := insertIntoList(string(data), header, name)
	if !inserted {
		return fmt.Errorf("no matching list block found in %s for source %s", plan.Target, plan.Result.Source)
	}

	return d.fs.WriteFile(plan.Target, []byte(updated), 0644)
}

// commitLanguagePackage inserts into the `<pkgSet> = with pkgs.<pkgSet>; [ ... ]`
// block for the language result's package-set prefix (e.g. python3Packages),
// falling back to the general nxs list block if no such header exists yet.
func (d *Direct) commitLanguagePackage(plan *planner.InstallPlan) error {
	data, err := d.fs.ReadFile(plan.Target)
	if err != nil {
		return fmt.Errorf("read %s: %w", plan.Target, err)
	}

	pkgSet := util.FirstSegment(plan.Result.Attr)
	pkgName := plan.Result.Attr
	if idx := strings.Index(plan.Result.Attr, "."); idx >= 0 {
		pkgName = plan.Result.Attr[idx+1:]
	}

	header := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(pkgSet) + `\s*=\s*(with\s+[\w.]+\s*;\s*)?\[`)
	updated, inserted := insertIntoList(string(data), header, pkgName)
	if !inserted {
		updated, inserted = insertIntoList(string(data), headerRegexForSource(plan.Result.Source), plan.Result.Attr)
	}
	if !inserted {
		return fmt.Errorf("no matching language package-set block found in %s", plan.Target)
	}
	return d.fs.WriteFile(plan.Target, []byte(updated), 0644)
}

func (d *Direct) commitAttrSetEntry(plan *planner.InstallPlan) error {
	data, err := d.fs.ReadFile(plan.Target)
	if err != nil {
		return fmt.Errorf("read %s: %w", plan.Target, err)
	}

	updated, inserted := insertMasEntry(string(data), plan.Result.Pname, plan.Result.Attr)
	if !inserted {
		return fmt.Errorf("no homebrew.masApps block found in %s", plan.Target)
	}

	return d.fs.WriteFile(plan.Target, []byte(updated), 0644)
}

// commitFlakeInputDecl adds the new input's `inputs.<name>.url = ...;`
// declaration to flake.nix, ahead of inserting the package itself into
// its routed manifest. AddFlakeInput is idempotent, so a second install
// from the same input is a no-op here.
func (d *Direct) commitFlakeInputDecl(plan *planner.InstallPlan) error {
	data, err := d.fs.ReadFile(plan.FlakeNixPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", plan.FlakeNixPath, err)
	}

	inputName := util.FirstSegment(plan.Result.Attr)
	updated := util.AddFlakeInput(string(data), inputName, plan.FlakeInputURL)
	return d.fs.WriteFile(plan.FlakeNixPath, []byte(updated), 0644)
}

func itemNameFor(r sources.SourceResult) string {
	if r.Attr != "" {
		return r.Attr
	}
	return r.Pname
}

func headerRegexForSource(source sources.Source) *regexp.Regexp {
	switch source {
	case sources.Homebrew:
		return regexp.MustCompile(`^\s*homebrew\.brews\s*=\s*\[`)
	case sources.Cask:
		return regexp.MustCompile(`^\s*homebrew\.casks\s*=\s*\[`)
	default:
		return regexp.MustCompile(`^\s*(home\.packages|environment\.systemPackages)\s*=\s*(with\s+[\w.]+\s*;\s*)?\[`)
	}
}

// insertIntoList finds the first list block whose header matches
// headerRe and inserts name in alphabetical order, matching the
// indentation of its neighboring items.
func insertIntoList(content string, headerRe *regexp.Regexp, name string) (string, bool) {
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if headerRe.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return content, false
	}

	end := -1
	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], "]") {
			end = i
			break
		}
	}
	if end < 0 {
		return content, false
	}

	indent := "  "
	itemLineIdx := -1
	for i := start + 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		indent = lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))]
		if itemLineIdx < 0 {
			itemLineIdx = i
		}
	}

	newLine := fmt.Sprintf("%s%s", indent, name)
	insertAt := end
	for i := start + 1; i < end; i++ {
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(lines[i]), ";"))
		if trimmed == "" {
			continue
		}
		if trimmed > name {
			insertAt = i
			break
		}
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt]...)
	out = append(out, newLine)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n"), true
}

func insertMasEntry(content, appName, appID string) (string, bool) {
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if regexp.MustCompile(`^\s*homebrew\.masApps\s*=\s*\{`).MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return content, false
	}

	end := -1
	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], "}") {
			end = i
			break
		}
	}
	if end < 0 {
		return content, false
	}

	indent := "  "
	for i := start + 1; i < end; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		indent = lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))]
		break
	}

	newLine := fmt.Sprintf(`%s"%s" = %s;`, indent, appName, appID)

	entryRe := regexp.MustCompile(`^\s*"?([A-Za-z0-9 ._+-]+)"?\s*=\s*[0-9]+\s*;`)
	insertAt := end
	for i := start + 1; i < end; i++ {
		m := entryRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if m[1] > appName {
			insertAt = i
			break
		}
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt]...)
	out = append(out, newLine)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n"), true
}
