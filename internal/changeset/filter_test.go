package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ptc/internal/domain"
)

func TestFilterByPathArgs(t *testing.T) {
	cs := domain.NewChangeSet()
	cs.Set("/repo/tests/unit/test_a.py", []string{"test_a"})
	cs.Set("/repo/tests/e2e/test_b.py", []string{"test_b"})
	cs.Set("/repo/tests/unit/test_c.py", nil)

	t.Run("empty args returns the same set", func(t *testing.T) {
		assert.Same(t, cs, FilterByPathArgs(cs, nil))
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		got := FilterByPathArgs(cs, []string{"test_c", "unit/test_a"})
		assert.Equal(t, []string{"/repo/tests/unit/test_a.py", "/repo/tests/unit/test_c.py"}, got.Keys())
	})

	t.Run("file matching several args kept once", func(t *testing.T) {
		got := FilterByPathArgs(cs, []string{"tests", "e2e"})
		assert.Equal(t, 3, got.Len())
	})

	t.Run("no match", func(t *testing.T) {
		got := FilterByPathArgs(cs, []string{"integration"})
		assert.Equal(t, 0, got.Len())
	})
}

func TestFingerprint(t *testing.T) {
	a := domain.NewChangeSet()
	a.Set("/repo/test_a.py", []string{"test_a", "test_b"})

	b := domain.NewChangeSet()
	b.Set("/repo/test_a.py", []string{"test_a", "test_b"})

	c := domain.NewChangeSet()
	c.Set("/repo/test_a.py", []string{"test_b", "test_a"})

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.Len(t, Fingerprint(domain.NewChangeSet()), 16)
}
