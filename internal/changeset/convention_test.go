package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTestFile(t *testing.T) {
	defaults := []string{"test_*.py", "*_test.py"}

	tests := []struct {
		name     string
		file     string
		patterns []string
		expected bool
	}{
		{"prefix convention", "test_user.py", defaults, true},
		{"suffix convention", "user_test.py", defaults, true},
		{"plain module", "user.py", defaults, false},
		{"conftest is not a test file", "conftest.py", defaults, false},
		{"prefix must start the name", "my_test_user.py", []string{"test_*.py"}, false},
		{"name after separator", "tests/test_user.py", []string{"test_*.py"}, true},
		{"dot is literal", "test_userxpy", []string{"test_*.py"}, false},
		{"question mark matches one character", "check_1.py", []string{"check_?.py"}, true},
		{"custom convention", "check_api.py", []string{"check_*.py"}, true},
		{"no patterns matches nothing", "test_user.py", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTestFile(tt.file, tt.patterns))
		})
	}
}

func TestConvention_IsPure(t *testing.T) {
	c := NewConvention([]string{"test_*.py"})
	for i := 0; i < 3; i++ {
		assert.True(t, c.Match("test_a.py"))
		assert.False(t, c.Match("a.py"))
	}
	assert.Equal(t, []string{"test_*.py"}, c.Patterns())
}
