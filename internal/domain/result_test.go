package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestResultsOutput_UnresolvedNodeIDs(t *testing.T) {
	output := &TestResultsOutput{
		Details: []TestFailure{
			{NodeID: "tests/test_a.py::test_one"},
			{NodeID: "tests/test_a.py::test_two", Resolved: true},
			{NodeID: "tests/test_b.py::TestB::test_three"},
			{NodeID: "tests/test_a.py::test_one"},
			{TestName: "legacy entry without node id"},
		},
	}

	assert.Equal(t, []string{
		"tests/test_a.py::test_one",
		"tests/test_b.py::TestB::test_three",
	}, output.UnresolvedNodeIDs())
}
