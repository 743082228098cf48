package ui

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptc/internal/domain"
)

func sampleFailures() []domain.TestFailure {
	return []domain.TestFailure{
		{NodeID: "tests/test_user.py::TestUser::test_login", TestName: "test_login"},
		{NodeID: "tests/test_user.py::test_helper", TestName: "test_helper"},
		{NodeID: "tests/test_api.py::TestApi::TestAuth::test_token[a::b]", TestName: "test_token[a::b]"},
		{NodeID: "tests/test_user.py::TestUser::test_logout", TestName: "test_logout", Resolved: true},
		{FilePath: "tests/test_legacy.py", TestName: "test_old"},
	}
}

func TestFailureScope(t *testing.T) {
	tests := []struct {
		name              string
		failure           domain.TestFailure
		file, scope, leaf string
	}{
		{"method", domain.TestFailure{NodeID: "tests/test_user.py::TestUser::test_login"}, "tests/test_user.py", "TestUser", "test_login"},
		{"module level", domain.TestFailure{NodeID: "tests/test_user.py::test_helper"}, "tests/test_user.py", "", "test_helper"},
		{"nested class", domain.TestFailure{NodeID: "t/test_a.py::TestA::TestB::test_c"}, "t/test_a.py", "TestA::TestB", "test_c"},
		{"parametrized", domain.TestFailure{NodeID: "t/test_a.py::test_c[x::y]"}, "t/test_a.py", "", "test_c[x::y]"},
		{"module only", domain.TestFailure{NodeID: "t/test_a.py", TestName: "collection"}, "t/test_a.py", "", "collection"},
		{"no node id", domain.TestFailure{FilePath: "t/test_a.py", TestName: "test_c"}, "t/test_a.py", "", "test_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, scope, leaf := failureScope(tt.failure)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.scope, scope)
			assert.Equal(t, tt.leaf, leaf)
		})
	}
}

func TestGroupFailures(t *testing.T) {
	groups := groupFailures(sampleFailures())

	assert.Equal(t, []fileGroup{
		{File: "tests/test_user.py", Scopes: []scopeGroup{
			{Scope: "TestUser", Failures: []int{0, 3}},
			{Scope: "", Failures: []int{1}},
		}},
		{File: "tests/test_api.py", Scopes: []scopeGroup{
			{Scope: "TestApi::TestAuth", Failures: []int{2}},
		}},
		{File: "tests/test_legacy.py", Scopes: []scopeGroup{
			{Scope: "", Failures: []int{4}},
		}},
	}, groups)
	assert.Equal(t, []int{0, 3, 1}, groups[0].Failures())
}

func TestGroupLabel(t *testing.T) {
	resolved := map[int]bool{3: true}

	assert.Equal(t, "TestUser [yellow](1/2)[white]", groupLabel("TestUser", []int{0, 3}, resolved))
	assert.Equal(t, "[gray]✓ TestUser (1)[white]", groupLabel("TestUser", []int{3}, resolved))
}

func TestFailureLabel(t *testing.T) {
	f := domain.TestFailure{NodeID: "t/test_a.py::test_c[1]"}

	assert.Equal(t, "[red]✗[white] "+tview.Escape("test_c[1]"), failureLabel(f, 0, false))
	assert.Equal(t, "[gray]✓ "+tview.Escape("test_c[1]")+"[white]", failureLabel(f, 0, true))
	assert.Equal(t, "[red]✗[white] test 3", failureLabel(domain.TestFailure{}, 2, false))
}

func TestFailureTree_Toggle(t *testing.T) {
	results := &domain.TestResultsOutput{Details: sampleFailures()}
	ft := newFailureTree(results)

	files := ft.root.GetChildren()
	require.Len(t, files, 3)
	userFile := files[0]
	require.Len(t, userFile.GetChildren(), 2, "class node plus module level test")
	classNode := userFile.GetChildren()[0]
	require.Len(t, classNode.GetChildren(), 2)

	// One of the two class failures is open: toggling resolves both
	assert.True(t, ft.toggle(classNode))
	ft.sync()
	assert.True(t, results.Details[0].Resolved)
	assert.True(t, results.Details[3].Resolved)
	assert.False(t, results.Details[1].Resolved)
	assert.Contains(t, classNode.GetText(), "✓ TestUser (2)")

	// All resolved: toggling reopens them
	assert.True(t, ft.toggle(classNode))
	ft.sync()
	assert.False(t, results.Details[0].Resolved)
	assert.False(t, results.Details[3].Resolved)

	assert.False(t, ft.toggle(tview.NewTreeNode("loose")))
}

func TestFailureTree_Header(t *testing.T) {
	ft := newFailureTree(&domain.TestResultsOutput{Details: sampleFailures()})

	assert.Contains(t, ft.header(), "pytest failures: 5 in 3 module(s), 4 unresolved")
}

func TestFormatFailureStats(t *testing.T) {
	got := formatFailureStats(domain.TestFailure{NodeID: "tests/test_user.py::TestUser::test_login"})

	assert.Equal(t, "[cyan]module:[white] tests/test_user.py  [cyan]class:[white] TestUser  [cyan]test:[white] test_login\n", got)
}

func TestFormatFailureDetails(t *testing.T) {
	stack := make([]string, maxStackLines+2)
	for i := range stack {
		stack[i] = "frame"
	}
	got := formatFailureDetails(domain.TestFailure{
		NodeID:     "tests/test_user.py::test_login",
		File:       "tests/test_user.py",
		Line:       12,
		Message:    "assert [1] == [2]",
		StackTrace: stack,
	})

	assert.Contains(t, got, "[red]✗ tests/test_user.py::test_login[white]")
	assert.Contains(t, got, "tests/test_user.py:12")
	assert.Contains(t, got, tview.Escape("assert [1] == [2]"))
	assert.Contains(t, got, "... 2 more")
	assert.NotContains(t, got, "Traceback:")
}

func TestFormatGroupSummary(t *testing.T) {
	got := formatGroupSummary(sampleFailures(), []int{0, 3}, map[int]bool{3: true})

	assert.Equal(t, "[yellow]1 of 2 unresolved[white]\n\n"+
		"[red]✗[white] tests/test_user.py::TestUser::test_login\n"+
		"[gray]✓[white] tests/test_user.py::TestUser::test_logout\n", got)
}
