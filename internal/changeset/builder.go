// Package changeset maps the test files changed between two commits to the
// test names touched in each of them.
package changeset

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"ptc/internal/diffscan"
	"ptc/internal/domain"
)

// ChangeSource produces the per-file change records between two commits
type ChangeSource interface {
	Changes(ctx context.Context, baseRef, headRef string) ([]domain.ChangeRecord, error)
}

// Options configures a single Build
type Options struct {
	RepoRoot         string   // Absolute repository root, joined with record paths into slash-separated keys
	BaseRef          string   // Diff base, typically the remote default branch tip
	HeadRef          string   // Diff head, typically HEAD
	TestFilePatterns []string // Test file naming convention, e.g. "test_*.py"
	PathArgs         []string // Optional path substrings narrowing the result
}

// Builder assembles change sets
type Builder struct {
	source  ChangeSource
	scanner *diffscan.Scanner
}

// NewBuilder creates a new Builder
func NewBuilder(source ChangeSource, scanner *diffscan.Scanner) *Builder {
	return &Builder{source: source, scanner: scanner}
}

// Build returns the changed test files and their changed names.
// Modified records are applied first, then added, then renamed ones.
func (b *Builder) Build(ctx context.Context, opts Options) (*domain.ChangeSet, error) {
	records, err := b.source.Changes(ctx, opts.BaseRef, opts.HeadRef)
	if err != nil {
		return nil, fmt.Errorf("changeset: list changes %s..%s: %w", opts.BaseRef, opts.HeadRef, err)
	}

	modified, added, renamed := partition(records)
	convention := NewConvention(opts.TestFilePatterns)
	changed := domain.NewChangeSet()

	for _, record := range append(modified, added...) {
		p := record.Path()
		if !convention.Match(path.Base(p)) {
			slog.Debug("skip non-test file", "path", p, "kind", record.Kind)
			continue
		}
		names, err := b.scanner.Scan(record.Diff)
		if err != nil {
			return nil, fmt.Errorf("changeset: scan %s: %w", p, err)
		}
		full := repoPath(opts.RepoRoot, p)
		slog.Debug("changed test file", "path", full, "kind", record.Kind, "names", names)
		changed.Set(full, names)
	}

	for _, record := range renamed {
		if !convention.Match(path.Base(record.NewPath)) {
			slog.Debug("skip non-test rename", "from", record.OldPath, "to", record.NewPath)
			continue
		}
		names, err := b.scanner.Scan(record.Diff)
		if err != nil {
			return nil, fmt.Errorf("changeset: scan %s: %w", record.NewPath, err)
		}
		oldFull := repoPath(opts.RepoRoot, record.OldPath)
		newFull := repoPath(opts.RepoRoot, record.NewPath)
		if changed.Has(oldFull) {
			slog.Debug("drop renamed-away entry", "path", oldFull)
			changed.Delete(oldFull)
		}
		slog.Debug("renamed test file", "from", oldFull, "to", newFull, "names", names)
		changed.Set(newFull, names)
	}

	return FilterByPathArgs(changed, opts.PathArgs), nil
}

// repoPath joins a record path onto the repository root. Keys stay
// slash-separated on every platform so they compare with collected item paths.
func repoPath(root, p string) string {
	return path.Join(filepath.ToSlash(root), p)
}

func partition(records []domain.ChangeRecord) (modified, added, renamed []domain.ChangeRecord) {
	for _, r := range records {
		switch r.Kind {
		case domain.Modified:
			modified = append(modified, r)
		case domain.Added:
			added = append(added, r)
		case domain.Renamed:
			renamed = append(renamed, r)
		}
	}
	return modified, added, renamed
}
