package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"ptc/internal/config"
	"ptc/internal/domain"
)

// pytestArgs always request the short summary for failures and errors, which the parser relies on
var pytestArgs = []string{"-rfE", "--tb=short", "--color=no"}

// Runner executes pytest for a single job
type Runner struct {
	config *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// Command returns the program and arguments used to run job
func (r *Runner) Command(job domain.TestJob) (string, []string) {
	fields := strings.Fields(r.config.PytestCommand)
	if len(fields) == 0 {
		fields = strings.Fields(config.DefaultPytestCommand)
	}

	args := append([]string{}, fields[1:]...)
	args = append(args, pytestArgs...)
	if len(job.NodeIDs) > 0 {
		args = append(args, job.NodeIDs...)
	} else {
		args = append(args, job.File)
	}
	return fields[0], args
}

// Run executes pytest for a single job
func (r *Runner) Run(ctx context.Context, job domain.TestJob, workerID int) domain.TestResult {
	name, args := r.Command(job)
	cmd := exec.CommandContext(ctx, name, args...)

	// Set environment variables
	cmd.Env = os.Environ() // Start with current environment
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("PTC_WORKER=%d", workerID),
		fmt.Sprintf("DB_DATABASE=%s", r.config.GetDatabaseName(workerID)),
	)

	// Set working directory
	cmd.Dir = r.config.ProjectPath

	start := time.Now()
	output, err := cmd.CombinedOutput()

	return domain.TestResult{
		TestPath: job.File,
		NodeIDs:  job.NodeIDs,
		Success:  err == nil,
		Output:   string(output),
		Error:    err,
		Duration: time.Since(start),
	}
}
