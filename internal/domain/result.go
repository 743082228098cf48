package domain

import "time"

// TestResult represents the result of executing one test job
type TestResult struct {
	TestPath string        // Path to the test file that was executed
	NodeIDs  []string      // Node ids passed to pytest, empty when the whole file ran
	Success  bool          // Whether pytest exited with status 0
	Output   string        // Raw output from pytest
	Error    error         `json:"-"` // Error if execution failed
	Duration time.Duration // Time taken to execute
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	TotalTestFiles  int     `json:"total_test_files"`
	FailedTestFiles int     `json:"failed_test_files"`
	PassedTestFiles int     `json:"passed_test_files"`
	PassedTestCases int     `json:"passed_test_cases"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// SelectionSummary records which change set produced a run
type SelectionSummary struct {
	Fingerprint  string              `json:"fingerprint"`
	BaseRef      string              `json:"base_ref"`
	ChangedFiles map[string][]string `json:"changed_files"`
	Selected     []string            `json:"selected"`
	Deselected   int                 `json:"deselected"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta      TestResultsMeta   `json:"meta"`
	Selection *SelectionSummary `json:"selection,omitempty"`
	Details   []TestFailure     `json:"details"`
}

// UnresolvedNodeIDs returns the node ids of failures not yet marked resolved, in order
func (o *TestResultsOutput) UnresolvedNodeIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, failure := range o.Details {
		if failure.Resolved || failure.NodeID == "" || seen[failure.NodeID] {
			continue
		}
		seen[failure.NodeID] = true
		ids = append(ids, failure.NodeID)
	}
	return ids
}
