package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".ptc"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultPytestCommand is the command used to run pytest
	DefaultPytestCommand = "python -m pytest"
	// DefaultHeadRef is the revision compared against the base branch
	DefaultHeadRef = "HEAD"
	// DefaultDatabasePrefix is the prefix of per-worker test database names
	DefaultDatabasePrefix = "testing"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"venv",
	"env",
	"node_modules",
	"build",
	"dist",
	"site-packages",
	"__pycache__",
	"htmlcov",
}

// Pytest's own defaults for test discovery
var (
	DefaultPythonFiles     = []string{"test_*.py", "*_test.py"}
	DefaultPythonClasses   = []string{"Test"}
	DefaultPythonFunctions = []string{"test"}
)
