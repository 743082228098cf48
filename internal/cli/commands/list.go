package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ptc/internal/config"
	"ptc/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	deps   *Dependencies
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, deps *Dependencies) *ListCommand {
	return &ListCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	if lc.config.Flags.Changed {
		return lc.listChanged(cmd)
	}

	targets := lc.config.Flags.Paths
	if len(targets) == 0 {
		targets = lc.config.GetTestPaths()
	}
	tests, err := lc.deps.Collector.Files(lc.config.GetProjectRoot(), targets)
	if err != nil {
		return err
	}

	// Filter tests
	tests = lc.deps.Filter.FilterByName(tests, lc.config.Flags.NameFilter)

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	return lc.deps.Formatter.PrintTestList(tests, lc.config.Flags.TestCases, lc.failedPaths())
}

func (lc *ListCommand) listChanged(cmd *cobra.Command) error {
	report, err := buildChangeReport(cmd.Context(), lc.config, lc.deps)
	if err != nil {
		return err
	}

	lc.deps.Formatter.PrintChangeSet(report.Set, report.Fingerprint)
	if report.Set.Len() == 0 {
		return nil
	}

	result, err := selectChanged(lc.config, lc.deps, report)
	if err != nil {
		return err
	}
	lc.deps.Formatter.PrintSelection(result)
	return nil
}

// failedPaths returns the files with unresolved failures in the last run, if any
func (lc *ListCommand) failedPaths() map[string]struct{} {
	output, err := lc.deps.Storage.Load()
	if err != nil {
		return nil
	}
	paths := make(map[string]struct{})
	for _, failure := range output.Details {
		if !failure.Resolved {
			paths[ui.NormalizedPathKey(lc.config.GetProjectRoot(), failure.FilePath)] = struct{}{}
		}
	}
	return paths
}
