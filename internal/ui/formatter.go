package ui

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	"repoman/internal/artifact"
	"repoman/internal/ci"
	"repoman/internal/store"
)

// Formatter prints repo contents and run results to the terminal.
type Formatter struct{}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// PrintArtifacts prints the contents of every store as a name/version tree.
func (f *Formatter) PrintArtifacts(stores []store.Store) {
	for _, s := range stores {
		list := s.Artifacts()
		color.Cyan("%s store: %d artifact name(s)", s.Name(), list.Len())
		names := make([]string, 0, len(list.Names))
		for name := range list.Names {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			connector := "├──"
			childPrefix := "│   "
			if i == len(names)-1 {
				connector = "└──"
				childPrefix = "    "
			}
			color.Yellow("%s %s", connector, name)
			for _, ver := range artifact.SortedVersions(versionsOf(list.Names[name])) {
				fmt.Printf("%s%s\n", childPrefix, ver)
			}
		}
	}
}

func versionsOf(name *artifact.Name) []string {
	versions := make([]string, 0, len(name.Versions))
	for ver := range name.Versions {
		versions = append(versions, ver)
	}
	return versions
}

// PrintRemoved prints the paths removed by a prune.
func (f *Formatter) PrintRemoved(paths []string) {
	if len(paths) == 0 {
		color.Green("Nothing to remove")
		return
	}
	color.Red("Removed %d file(s):", len(paths))
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
	}
}

// PrintRunSummary prints the per-environment outcome of a CI run.
func (f *Formatter) PrintRunSummary(result *ci.RunResult) {
	color.Cyan("CI run %s", result.ID)
	for _, env := range result.Envs {
		if env.Passed {
			color.Green("  ✓ %-16s %s", env.Name, env.Duration)
		} else {
			color.Red("  ✗ %-16s %s", env.Name, env.Duration)
		}
	}
	if result.Passed {
		color.Green("✓ All environments passed! (%s)", result.Duration)
	} else {
		color.Red("✗ Run failed after %s", result.Duration)
	}
}
