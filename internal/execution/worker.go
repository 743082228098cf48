package execution

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ptc/internal/domain"
	"ptc/internal/parser"
)

var errStopped = errors.New("execution: stopped after first failure")

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	workers  int
	runner   JobRunner
	parser   parser.Parser
	progress Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runner JobRunner, p parser.Parser) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		runner:  runner,
		parser:  p,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs jobs in parallel. Each running job holds a worker id in
// [1, workers], so workers can own a database each. With failFast no job is
// started after the first failure and results of jobs interrupted by it are dropped.
func (wp *WorkerPool) Execute(ctx context.Context, jobs []domain.TestJob, failFast bool) ([]domain.TestResult, time.Duration, error) {
	if len(jobs) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()

	workerCount := min(wp.workers, len(jobs))
	ids := make(chan int, workerCount)
	for i := 1; i <= workerCount; i++ {
		ids <- i
	}

	var (
		mu             sync.Mutex
		results        = make([]*domain.TestResult, len(jobs))
		completedFiles int
		passedCases    int
		failedCases    int
		stopped        bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for i, job := range jobs {
		i, job := i, job
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			workerID := <-ids
			defer func() { ids <- workerID }()

			if gctx.Err() != nil {
				return nil
			}

			slog.Debug("running job", "worker", workerID, "file", job.File, "node_ids", len(job.NodeIDs))
			result := wp.runner.Run(gctx, job, workerID)

			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return nil
			}

			results[i] = &result
			completedFiles++
			if wp.parser != nil {
				p, f := wp.parser.ParseTestCounts(result)
				passedCases += p
				failedCases += f
			} else if result.Success {
				passedCases++
			} else {
				failedCases++
			}
			if wp.progress != nil {
				wp.progress.Update(completedFiles, passedCases, failedCases)
			}

			if failFast && !result.Success {
				stopped = true
				return errStopped
			}
			return nil
		})
	}

	err := g.Wait()
	if wp.progress != nil {
		wp.progress.Finish()
	}

	var allResults []domain.TestResult
	for _, result := range results {
		if result != nil {
			allResults = append(allResults, *result)
		}
	}

	if err != nil && !errors.Is(err, errStopped) {
		return allResults, time.Since(startTime), err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return allResults, time.Since(startTime), ctxErr
	}
	return allResults, time.Since(startTime), nil
}
