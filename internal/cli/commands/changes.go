package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"ptc/internal/changeset"
	"ptc/internal/config"
	"ptc/internal/domain"
	"ptc/internal/selection"
	"ptc/internal/vcs"
)

// changeReport is a change set together with how it was produced
type changeReport struct {
	Set         *domain.ChangeSet
	BaseRef     string
	Fingerprint string
}

// buildChangeReport compares the configured head with the base ref and
// returns the changed test files narrowed by the positional paths.
func buildChangeReport(ctx context.Context, cfg *config.Config, deps *Dependencies) (*changeReport, error) {
	repo, err := vcs.Open(cfg.GetProjectRoot())
	if err != nil {
		return nil, err
	}
	repo.UseWorktree(cfg.Flags.Uncommitted)

	baseRef := cfg.BaseRef
	if baseRef == "" {
		if baseRef, err = repo.DefaultBaseRef(); err != nil {
			return nil, err
		}
	}
	slog.Debug("comparing revisions", "base", baseRef, "head", cfg.HeadRef, "uncommitted", cfg.Flags.Uncommitted)

	builder := changeset.NewBuilder(repo, deps.DiffScanner)
	cs, err := builder.Build(ctx, changeset.Options{
		RepoRoot:         repo.Root(),
		BaseRef:          baseRef,
		HeadRef:          cfg.HeadRef,
		TestFilePatterns: cfg.Pytest.PythonFiles,
		PathArgs:         cfg.Flags.Paths,
	})
	if err != nil {
		return nil, err
	}

	return &changeReport{
		Set:         cs,
		BaseRef:     baseRef,
		Fingerprint: changeset.Fingerprint(cs),
	}, nil
}

// selectChanged collects the items of the changed files that still exist and
// partitions them against the change set.
func selectChanged(cfg *config.Config, deps *Dependencies, report *changeReport) (domain.SelectionResult, error) {
	var files []string
	for _, key := range report.Set.Keys() {
		file := filepath.FromSlash(key)
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("changed file missing on disk", "path", file)
				continue
			}
			return domain.SelectionResult{}, err
		}
		files = append(files, file)
	}
	files = deps.Filter.FilterByName(files, cfg.Flags.NameFilter)

	items, err := deps.Collector.CollectFiles(cfg.GetProjectRoot(), files)
	if err != nil {
		return domain.SelectionResult{}, err
	}
	return selection.Select(report.Set, items), nil
}

// summarize records the change set and selection for storage
func summarize(cfg *config.Config, report *changeReport, result domain.SelectionResult) *domain.SelectionSummary {
	root := cfg.GetProjectRoot()
	changed := make(map[string][]string, report.Set.Len())
	for _, entry := range report.Set.Entries() {
		key := entry.Path
		if rel, err := filepath.Rel(root, filepath.FromSlash(entry.Path)); err == nil {
			key = filepath.ToSlash(rel)
		}
		changed[key] = entry.Names
	}

	selected := make([]string, 0, len(result.Run))
	for _, item := range result.Run {
		selected = append(selected, item.NodeID())
	}

	return &domain.SelectionSummary{
		Fingerprint:  report.Fingerprint,
		BaseRef:      report.BaseRef,
		ChangedFiles: changed,
		Selected:     selected,
		Deselected:   len(result.Dropped()),
	}
}
