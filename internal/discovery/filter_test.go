package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_FilterByName(t *testing.T) {
	files := []string{
		"/repo/tests/test_user.py",
		"/repo/tests/test_payment.py",
		"/repo/tests/api/test_payment_service.py",
		"/repo/tests/api/user_test.py",
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:     "empty pattern keeps all",
			pattern:  "",
			expected: files,
		},
		{
			name:     "plain text matches base name",
			pattern:  "payment",
			expected: []string{"/repo/tests/test_payment.py", "/repo/tests/api/test_payment_service.py"},
		},
		{
			name:     "plain text ignores directories",
			pattern:  "api",
			expected: nil,
		},
		{
			name:     "glob on base name",
			pattern:  "test_user*",
			expected: []string{"/repo/tests/test_user.py"},
		},
		{
			name:     "glob with leading wildcard",
			pattern:  "*_test.py",
			expected: []string{"/repo/tests/api/user_test.py"},
		},
		{
			name:     "substring glob",
			pattern:  "*payment*",
			expected: []string{"/repo/tests/test_payment.py", "/repo/tests/api/test_payment_service.py"},
		},
		{
			name:     "node id keeps its file",
			pattern:  "tests/test_user.py::TestUser::test_login",
			expected: []string{"/repo/tests/test_user.py"},
		},
		{
			name:     "relative node id with dot prefix",
			pattern:  "./tests/api/user_test.py::test_name",
			expected: []string{"/repo/tests/api/user_test.py"},
		},
		{
			name:     "path glob matches trailing segments",
			pattern:  "api/test_*.py",
			expected: []string{"/repo/tests/api/test_payment_service.py"},
		},
		{
			name:     "comma separated terms",
			pattern:  "test_user.py, api/*_test.py",
			expected: []string{"/repo/tests/test_user.py", "/repo/tests/api/user_test.py"},
		},
		{
			name:     "no matches",
			pattern:  "*nonexistent*",
			expected: nil,
		},
	}

	filter := NewFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.FilterByName(files, tt.pattern))
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty test list", func(t *testing.T) {
		assert.Empty(t, filter.FilterByName([]string{}, "test_*.py"))
	})

	t.Run("only separators keeps all", func(t *testing.T) {
		files := []string{"tests/test_a.py"}
		assert.Equal(t, files, filter.FilterByName(files, " , "))
	})

	t.Run("path deeper than file", func(t *testing.T) {
		assert.Empty(t, filter.FilterByName([]string{"test_a.py"}, "tests/unit/test_a.py"))
	})

	t.Run("relative files", func(t *testing.T) {
		files := []string{"tests/test_user_service.py", "tests/test_user_controller.py", "tests/test_payment.py"}
		assert.Equal(t, files[:2], filter.FilterByName(files, "test_user*.py"))
	})
}
