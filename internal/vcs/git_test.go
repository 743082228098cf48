package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptc/internal/changeset"
	"ptc/internal/diffscan"
	"ptc/internal/domain"
)

const movedBody = `import pytest


def test_one():
    assert 1 == 1


def test_two():
    assert 2 == 2


def test_three():
    assert 3 == 3
`

// longTest returns a module holding one test_long with twenty assignments
// x1 = 1 .. x20 = 20, where assignment n is given value.
func longTest(n int, value string) string {
	var b strings.Builder
	b.WriteString("def test_long():\n")
	for i := 1; i <= 20; i++ {
		v := fmt.Sprint(i)
		if i == n {
			v = value
		}
		fmt.Fprintf(&b, "    x%d = %s\n", i, v)
	}
	return b.String()
}

type fixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &fixture{t: t, dir: dir, repo: repo, wt: wt}
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, filepath.FromSlash(path))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *fixture) commit(msg string, paths ...string) plumbing.Hash {
	f.t.Helper()
	for _, p := range paths {
		_, err := f.wt.Add(p)
		require.NoError(f.t, err)
	}
	hash, err := f.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test", When: time.Now()},
	})
	require.NoError(f.t, err)
	return hash
}

func (f *fixture) setRemoteBranch(name string, hash plumbing.Hash) {
	f.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", name), hash)
	require.NoError(f.t, f.repo.Storer.SetReference(ref))
}

// seed creates a base commit on origin/main and a head commit that modifies,
// adds, renames and deletes test files.
func seed(t *testing.T) *fixture {
	f := newFixture(t)
	f.write("tests/test_user.py", "def test_login():\n    assert True\n\n\ndef test_logout():\n    assert True\n")
	f.write("tests/test_old.py", movedBody)
	f.write("tests/test_gone.py", "import os\nimport shutil\n\n\nclass TestCleanup:\n    def test_gone(self, tmp_path):\n        shutil.rmtree(tmp_path)\n        assert not os.path.exists(tmp_path)\n")
	f.write("app/user.py", "def login():\n    return True\n")
	base := f.commit("base", "tests/test_user.py", "tests/test_old.py", "tests/test_gone.py", "app/user.py")
	f.setRemoteBranch("main", base)

	f.write("tests/test_user.py", "def test_login():\n    assert login()\n\n\ndef test_logout():\n    assert True\n")
	f.write("tests/test_new.py", "def test_new():\n    assert True\n")
	_, err := f.wt.Move("tests/test_old.py", "tests/test_moved.py")
	require.NoError(t, err)
	f.write("tests/test_moved.py", strings.Replace(movedBody, "assert 3 == 3", "assert 3 == 4", 1))
	_, err = f.wt.Remove("tests/test_gone.py")
	require.NoError(t, err)
	f.commit("head", "tests/test_user.py", "tests/test_new.py", "tests/test_moved.py")
	return f
}

func recordsByPath(records []domain.ChangeRecord) map[string]domain.ChangeRecord {
	byPath := make(map[string]domain.ChangeRecord, len(records))
	for _, r := range records {
		byPath[r.NewPath] = r
	}
	return byPath
}

func TestRepository_Changes(t *testing.T) {
	f := seed(t)
	repo, err := Open(f.dir)
	require.NoError(t, err)

	records, err := repo.Changes(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)

	byPath := recordsByPath(records)
	require.Len(t, byPath, 3, "deleted files are skipped")

	modified := byPath["tests/test_user.py"]
	assert.Equal(t, domain.Modified, modified.Kind)
	assert.Equal(t, "tests/test_user.py", modified.OldPath)
	assert.True(t, strings.HasPrefix(string(modified.Diff), "@@"), "file header is stripped: %q", modified.Diff)
	assert.NotContains(t, string(modified.Diff), "+++")
	assert.Contains(t, string(modified.Diff), "+    assert login()")
	assert.Contains(t, string(modified.Diff), "-    assert True")

	added := byPath["tests/test_new.py"]
	assert.Equal(t, domain.Added, added.Kind)
	assert.Empty(t, added.OldPath)
	assert.Contains(t, string(added.Diff), "+def test_new():")

	renamed := byPath["tests/test_moved.py"]
	assert.Equal(t, domain.Renamed, renamed.Kind)
	assert.Equal(t, "tests/test_old.py", renamed.OldPath)
	assert.Contains(t, string(renamed.Diff), "+    assert 3 == 4")
}

func TestRepository_ChangesUnknownRef(t *testing.T) {
	f := seed(t)
	repo, err := Open(f.dir)
	require.NoError(t, err)

	_, err = repo.Changes(context.Background(), "origin/develop", "HEAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"origin/develop"`)
}

func TestRepository_DefaultBaseRef(t *testing.T) {
	t.Run("origin main", func(t *testing.T) {
		f := seed(t)
		repo, err := Open(f.dir)
		require.NoError(t, err)

		ref, err := repo.DefaultBaseRef()
		require.NoError(t, err)
		assert.Equal(t, "origin/main", ref)
	})

	t.Run("origin HEAD wins", func(t *testing.T) {
		f := seed(t)
		head, err := f.repo.Head()
		require.NoError(t, err)
		f.setRemoteBranch("trunk", head.Hash())
		sym := plumbing.NewSymbolicReference(plumbing.NewRemoteHEADReferenceName("origin"), plumbing.NewRemoteReferenceName("origin", "trunk"))
		require.NoError(t, f.repo.Storer.SetReference(sym))

		repo, err := Open(f.dir)
		require.NoError(t, err)
		ref, err := repo.DefaultBaseRef()
		require.NoError(t, err)
		assert.Equal(t, "origin/trunk", ref)
	})

	t.Run("no remote", func(t *testing.T) {
		f := newFixture(t)
		f.write("test_a.py", "def test_a():\n    pass\n")
		f.commit("init", "test_a.py")

		repo, err := Open(f.dir)
		require.NoError(t, err)
		_, err = repo.DefaultBaseRef()
		assert.ErrorIs(t, err, ErrNoBaseRef)
	})
}

func TestRepository_OpenFromSubdirectory(t *testing.T) {
	f := seed(t)
	repo, err := Open(filepath.Join(f.dir, "tests"))
	require.NoError(t, err)
	assert.Equal(t, f.dir, repo.Root())
}

func TestRepository_WorktreeChanges(t *testing.T) {
	f := seed(t)
	f.write("tests/test_user.py", "def test_login():\n    assert login()\n\n\ndef test_logout():\n    assert not logged_in()\n")
	f.write("tests/test_untracked.py", "def test_draft():\n    pass\n")

	repo, err := Open(f.dir)
	require.NoError(t, err)
	repo.UseWorktree(true)

	records, err := repo.Changes(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)
	byPath := recordsByPath(records)

	modified := byPath["tests/test_user.py"]
	assert.Equal(t, domain.Modified, modified.Kind)
	assert.Contains(t, string(modified.Diff), "+    assert login()")
	assert.Contains(t, string(modified.Diff), "+    assert not logged_in()")

	untracked := byPath["tests/test_untracked.py"]
	assert.Equal(t, domain.Added, untracked.Kind)
	assert.Contains(t, string(untracked.Diff), "+def test_draft():")

	assert.Equal(t, domain.Renamed, byPath["tests/test_moved.py"].Kind)
	assert.NotContains(t, byPath, "tests/test_gone.py")
}

// buildChanged runs the committed changes between origin/main and HEAD through
// a change set builder.
func buildChanged(t *testing.T, f *fixture) *domain.ChangeSet {
	t.Helper()
	repo, err := Open(f.dir)
	require.NoError(t, err)
	cs, err := changeset.NewBuilder(repo, diffscan.NewScanner()).Build(context.Background(), changeset.Options{
		RepoRoot:         repo.Root(),
		BaseRef:          "origin/main",
		HeadRef:          "HEAD",
		TestFilePatterns: []string{"test_*.py"},
	})
	require.NoError(t, err)
	return cs
}

func TestRepository_ChangesFunctionContext(t *testing.T) {
	f := newFixture(t)
	f.write("tests/test_a.py", longTest(15, "15"))
	f.setRemoteBranch("main", f.commit("base", "tests/test_a.py"))
	f.write("tests/test_a.py", longTest(15, "99"))
	f.commit("head", "tests/test_a.py")

	repo, err := Open(f.dir)
	require.NoError(t, err)
	records, err := repo.Changes(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)
	require.Len(t, records, 1)

	diff := string(records[0].Diff)
	assert.True(t, strings.HasPrefix(diff, "@@ -13,7 +13,7 @@ def test_long():\n"), diff)
	assert.Contains(t, diff, "-    x15 = 15\n+    x15 = 99\n")
}

func TestBuild_ChangeFarBelowDeclaration(t *testing.T) {
	f := newFixture(t)
	f.write("tests/test_a.py", longTest(15, "15"))
	f.setRemoteBranch("main", f.commit("base", "tests/test_a.py"))
	f.write("tests/test_a.py", longTest(15, "99"))
	f.commit("head", "tests/test_a.py")

	cs := buildChanged(t, f)

	names, ok := cs.Get(filepath.ToSlash(filepath.Join(f.dir, "tests", "test_a.py")))
	require.True(t, ok, "keys: %v", cs.Keys())
	assert.Equal(t, []string{"test_long"}, names)
}

func TestBuild_MethodChangeAttributedToClass(t *testing.T) {
	body := func(value string) string {
		return "import pytest\n\n\nclass TestUser:\n    def test_name(self):\n" +
			strings.Repeat("        assert True\n", 8) +
			"        assert user.name == " + value + "\n"
	}
	f := newFixture(t)
	f.write("tests/test_user.py", body(`"ann"`))
	f.setRemoteBranch("main", f.commit("base", "tests/test_user.py"))
	f.write("tests/test_user.py", body(`"bob"`))
	f.commit("head", "tests/test_user.py")

	cs := buildChanged(t, f)

	names, ok := cs.Get(filepath.ToSlash(filepath.Join(f.dir, "tests", "test_user.py")))
	require.True(t, ok, "keys: %v", cs.Keys())
	assert.Equal(t, []string{"TestUser"}, names)
}

func TestBuild_WorktreeChangeFarBelowDeclaration(t *testing.T) {
	f := newFixture(t)
	f.write("tests/test_a.py", longTest(15, "15"))
	f.setRemoteBranch("main", f.commit("base", "tests/test_a.py"))
	f.write("tests/test_a.py", longTest(18, "0"))

	repo, err := Open(f.dir)
	require.NoError(t, err)
	repo.UseWorktree(true)
	cs, err := changeset.NewBuilder(repo, diffscan.NewScanner()).Build(context.Background(), changeset.Options{
		RepoRoot:         repo.Root(),
		BaseRef:          "origin/main",
		HeadRef:          "HEAD",
		TestFilePatterns: []string{"test_*.py"},
	})
	require.NoError(t, err)

	names, _ := cs.Get(filepath.ToSlash(filepath.Join(f.dir, "tests", "test_a.py")))
	assert.Equal(t, []string{"test_long"}, names)
}
