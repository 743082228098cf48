package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"ptc/internal/domain"
)

type pendingChange struct {
	kind    domain.ChangeKind
	oldPath string
	newPath string
}

// worktreeChanges diffs the base tree against the working tree. It covers the
// committed changes plus every file that is dirty or untracked on disk.
func (r *Repository) worktreeChanges(baseTree *object.Tree, committed object.Changes) ([]domain.ChangeRecord, error) {
	var pending []pendingChange
	seen := make(map[string]bool)

	for _, change := range committed {
		kind, ok, err := classify(change)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p := pendingChange{kind: kind, newPath: change.To.Name}
		if kind != domain.Added {
			p.oldPath = change.From.Name
		}
		pending = append(pending, p)
		seen[p.newPath] = true
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("vcs: worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("vcs: status: %w", err)
	}

	dirty := make([]string, 0, len(status))
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted || st.Staging == git.Deleted {
			continue
		}
		if !seen[path] {
			dirty = append(dirty, path)
		}
	}
	sort.Strings(dirty)

	for _, path := range dirty {
		p := pendingChange{kind: domain.Added, newPath: path}
		if _, err := baseTree.File(path); err == nil {
			p.kind = domain.Modified
			p.oldPath = path
		}
		pending = append(pending, p)
	}

	var records []domain.ChangeRecord
	for _, p := range pending {
		current, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(p.newPath)))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vcs: read %s: %w", p.newPath, err)
		}

		var previous string
		if p.oldPath != "" {
			previous, err = fileContents(baseTree, p.oldPath)
			if err != nil {
				return nil, err
			}
		}

		records = append(records, domain.ChangeRecord{
			Kind:    p.kind,
			OldPath: p.oldPath,
			NewPath: p.newPath,
			Diff:    LineDiff(previous, string(current), DefaultContextLines),
		})
	}
	return records, nil
}

func fileContents(tree *object.Tree, path string) (string, error) {
	f, err := tree.File(path)
	if err != nil {
		return "", fmt.Errorf("vcs: base file %s: %w", path, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("vcs: base contents %s: %w", path, err)
	}
	return contents, nil
}
