package commands

import (
	"fmt"

	"ptc/internal/config"
	"ptc/internal/domain"
	"ptc/internal/execution"
	"ptc/internal/storage"
	"ptc/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config *config.Config
	deps   *Dependencies
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, deps *Dependencies) *RunCommand {
	return &RunCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		jobs      []domain.TestJob
		summary   *domain.SelectionSummary
		err       error
		emptyNote = "No tests to execute"
	)

	switch {
	case rc.config.Flags.OnlyFailed:
		jobs, err = rc.failedJobs()
		emptyNote = "No failed tests from the last run"
	case rc.config.Flags.Changed:
		jobs, summary, err = rc.changedJobs(cmd)
		emptyNote = "No changed tests to execute"
	default:
		jobs, err = rc.allJobs()
	}
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		color.Yellow(emptyNote)
		return nil
	}

	// Prepare per-worker databases
	if rc.config.Flags.CreateDBs {
		created, err := rc.deps.Databases.EnsureDatabases(ctx, rc.config.Processors)
		if err != nil {
			return fmt.Errorf("prepare worker databases: %w", err)
		}
		if created > 0 {
			color.Green("Created %d worker database(s)", created)
		}
	}

	// Create and set progress bar
	progressBar := ui.NewProgressBar(len(jobs))
	rc.deps.Executor.SetProgress(progressBar)

	// Execute tests
	results, duration, err := rc.deps.Executor.Execute(ctx, jobs, rc.config.Flags.FailFast)
	if err != nil {
		return err
	}

	// Parse failures
	var failures []domain.TestFailure
	for _, result := range results {
		if !result.Success {
			failures = append(failures, rc.deps.OutputParser.ParseFailure(result)...)
		}
	}

	// Save results
	run := storage.Run{
		Results:   results,
		Failures:  failures,
		Duration:  duration,
		Workers:   rc.config.Processors,
		Selection: summary,
	}
	if err := rc.deps.Storage.Save(run); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	// Print stats
	if err := rc.deps.Formatter.PrintMetaStats(); err != nil {
		return err
	}

	if rc.config.Flags.OpenFaills && len(failures) > 0 {
		output, err := rc.deps.Storage.Load()
		if err != nil {
			return err
		}
		return rc.deps.Viewer.View(output)
	}
	return nil
}

// allJobs runs every discovered test file
func (rc *RunCommand) allJobs() ([]domain.TestJob, error) {
	targets := rc.config.Flags.Paths
	if len(targets) == 0 {
		targets = rc.config.GetTestPaths()
	}

	root := rc.config.GetProjectRoot()
	tests, err := rc.deps.Collector.Files(root, targets)
	if err != nil {
		return nil, err
	}

	// Filter tests
	tests = rc.deps.Filter.FilterByName(tests, rc.config.Flags.NameFilter)
	return execution.FileJobs(root, tests), nil
}

// changedJobs runs only the tests selected by the change set
func (rc *RunCommand) changedJobs(cmd *cobra.Command) ([]domain.TestJob, *domain.SelectionSummary, error) {
	report, err := buildChangeReport(cmd.Context(), rc.config, rc.deps)
	if err != nil {
		return nil, nil, err
	}

	rc.deps.Formatter.PrintChangeSet(report.Set, report.Fingerprint)
	if report.Set.Len() == 0 {
		return nil, nil, nil
	}

	result, err := selectChanged(rc.config, rc.deps, report)
	if err != nil {
		return nil, nil, err
	}
	color.Cyan("Selected %d test(s), deselected %d", len(result.Run), len(result.Dropped()))

	return rc.deps.Scheduler.Schedule(result.Run), summarize(rc.config, report, result), nil
}

// failedJobs reruns the unresolved failures of the last run
func (rc *RunCommand) failedJobs() ([]domain.TestJob, error) {
	output, err := rc.deps.Storage.Load()
	if err != nil {
		return nil, err
	}
	return execution.NodeIDJobs(output.UnresolvedNodeIDs()), nil
}
