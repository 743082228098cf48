package execution

import (
	"context"
	"time"

	"ptc/internal/domain"
)

// Executor executes test jobs and returns results
type Executor interface {
	Execute(ctx context.Context, jobs []domain.TestJob, failFast bool) ([]domain.TestResult, time.Duration, error)
}

// JobRunner runs a single test job on behalf of a worker
type JobRunner interface {
	Run(ctx context.Context, job domain.TestJob, workerID int) domain.TestResult
}

// Progress receives completion updates while jobs run
type Progress interface {
	Update(completedFiles, passedCases, failedCases int)
	Finish()
}
