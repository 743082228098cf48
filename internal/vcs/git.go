// Package vcs reads change records from a git repository with go-git.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"ptc/internal/changeset"
	"ptc/internal/domain"
)

// ErrNoBaseRef is returned when no remote default branch can be found
var ErrNoBaseRef = errors.New("no remote default branch found")

// Repository is a git repository used as a ChangeSource
type Repository struct {
	repo        *git.Repository
	root        string
	uncommitted bool
}

var _ changeset.ChangeSource = (*Repository)(nil)

// Open opens the repository containing dir
func Open(dir string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("vcs: open %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("vcs: worktree %s: %w", dir, err)
	}
	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the absolute path of the working tree
func (r *Repository) Root() string {
	return r.root
}

// UseWorktree makes Changes compare the base commit with the files on disk
// instead of the head commit.
func (r *Repository) UseWorktree(enabled bool) {
	r.uncommitted = enabled
}

// ResolveCommit resolves a revision such as "HEAD" or "origin/main"
func (r *Repository) ResolveCommit(ref string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("vcs: resolve %q: %w", ref, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("vcs: commit %s: %w", hash, err)
	}
	return commit, nil
}

// DefaultBaseRef returns the remote default branch, e.g. "origin/main".
// origin/HEAD wins when set, then origin/main, then origin/master.
func (r *Repository) DefaultBaseRef() (string, error) {
	head, err := r.repo.Reference(plumbing.NewRemoteHEADReferenceName("origin"), false)
	if err == nil && head.Type() == plumbing.SymbolicReference {
		return strings.TrimPrefix(head.Target().String(), "refs/remotes/"), nil
	}
	for _, name := range []string{"main", "master"} {
		if _, err := r.repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true); err == nil {
			return "origin/" + name, nil
		}
	}
	return "", ErrNoBaseRef
}

// Changes returns one record per added, modified or renamed file between baseRef and headRef.
// Deleted files are skipped.
func (r *Repository) Changes(ctx context.Context, baseRef, headRef string) ([]domain.ChangeRecord, error) {
	base, err := r.ResolveCommit(baseRef)
	if err != nil {
		return nil, err
	}
	head, err := r.ResolveCommit(headRef)
	if err != nil {
		return nil, err
	}
	slog.Debug("diff commits", "base", baseRef, "baseHash", base.Hash.String(), "head", headRef, "headHash", head.Hash.String())

	baseTree, err := base.Tree()
	if err != nil {
		return nil, fmt.Errorf("vcs: tree of %s: %w", baseRef, err)
	}
	headTree, err := head.Tree()
	if err != nil {
		return nil, fmt.Errorf("vcs: tree of %s: %w", headRef, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("vcs: diff %s..%s: %w", baseRef, headRef, err)
	}

	if r.uncommitted {
		return r.worktreeChanges(baseTree, changes)
	}

	var records []domain.ChangeRecord
	for _, change := range changes {
		kind, ok, err := classify(change)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		body, err := patchBody(ctx, change)
		if err != nil {
			return nil, err
		}
		records = append(records, newRecord(kind, change, body))
	}
	return records, nil
}

func classify(change *object.Change) (domain.ChangeKind, bool, error) {
	action, err := change.Action()
	if err != nil {
		return "", false, fmt.Errorf("vcs: change action: %w", err)
	}
	switch action {
	case merkletrie.Insert:
		return domain.Added, true, nil
	case merkletrie.Modify:
		if change.From.Name != change.To.Name {
			return domain.Renamed, true, nil
		}
		return domain.Modified, true, nil
	default:
		return "", false, nil
	}
}

func newRecord(kind domain.ChangeKind, change *object.Change, body []byte) domain.ChangeRecord {
	record := domain.ChangeRecord{Kind: kind, NewPath: change.To.Name, Diff: body}
	if kind != domain.Added {
		record.OldPath = change.From.Name
	}
	return record
}

// patchBody renders the unified diff of one change without its file header.
// Hunk headers carry the enclosing declaration of the old file.
func patchBody(ctx context.Context, change *object.Change) ([]byte, error) {
	patch, err := change.PatchContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("vcs: patch %s: %w", change.To.Name, err)
	}
	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(patch); err != nil {
		return nil, fmt.Errorf("vcs: encode patch %s: %w", change.To.Name, err)
	}

	from, _, err := change.Files()
	if err != nil {
		return nil, fmt.Errorf("vcs: files %s: %w", change.To.Name, err)
	}
	var previous string
	if from != nil {
		if previous, err = from.Contents(); err != nil {
			return nil, fmt.Errorf("vcs: contents %s: %w", change.From.Name, err)
		}
	}
	return withFunctionContext(stripFileHeader(buf.Bytes()), previous), nil
}

// stripFileHeader drops everything before the first hunk header, so the
// "---"/"+++" lines never reach the scanner.
func stripFileHeader(patch []byte) []byte {
	if bytes.HasPrefix(patch, []byte("@@")) {
		return patch
	}
	if i := bytes.Index(patch, []byte("\n@@")); i >= 0 {
		return patch[i+1:]
	}
	return nil
}
