package storage

import (
	"time"

	"ptc/internal/config"
	"ptc/internal/domain"
	"ptc/internal/parser"
)

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(run Run) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after toggling resolved failures).
	SaveOutput(output *domain.TestResultsOutput) error
}

// Run is everything recorded about one test run
type Run struct {
	Results   []domain.TestResult
	Failures  []domain.TestFailure
	Duration  time.Duration
	Workers   int
	Selection *domain.SelectionSummary // Nil unless the run was narrowed to changed tests
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg     *config.Config
	counter parser.Parser
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
// counter provides per-case counts; when nil every file counts as one case.
func NewJSONStorage(cfg *config.Config, counter parser.Parser) *JSONStorage {
	return &JSONStorage{cfg: cfg, counter: counter}
}
