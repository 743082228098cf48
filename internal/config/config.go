package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors     int
	PytestCommand  string
	DatabasePrefix string

	// Change detection settings
	BaseRef string // Empty means the remote default branch
	HeadRef string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Discovery conventions read from the project's pytest configuration
	Pytest PytestSettings

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors  int
	NameFilter  string
	TestPath    string
	TestCases   bool
	FailFast    bool
	OnlyFailed  bool
	OpenFaills  bool
	Changed     bool
	Uncommitted bool
	CreateDBs   bool
	BaseRef     string
	Paths       []string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		PytestCommand:  DefaultPytestCommand,
		DatabasePrefix: DefaultDatabasePrefix,
		HeadRef:        DefaultHeadRef,
		Pytest:         DefaultPytestSettings(),
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config for projectPath and applies the environment, the
// project's pytest settings and flags, in that order.
func Load(projectPath string, flags Flags) (*Config, error) {
	cfg := New()
	if projectPath != "" {
		cfg.ProjectPath = projectPath
	}
	cfg.Flags = flags
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve reads .env, PTC_* environment variables and the pytest settings of
// the project, then applies flag overrides.
func (c *Config) Resolve() error {
	if err := LoadEnv(c.ProjectPath); err != nil {
		return err
	}
	c.ApplyEnv()

	settings, err := LoadPytestSettings(c.ProjectPath)
	if err != nil {
		return err
	}
	c.Pytest = settings

	// Apply flag overrides
	if c.Flags.Processors > 0 {
		c.Processors = c.Flags.Processors
	}
	if c.Flags.BaseRef != "" {
		c.BaseRef = c.Flags.BaseRef
	}
	return nil
}

// ApplyEnv overrides settings from PTC_* environment variables
func (c *Config) ApplyEnv() {
	v := viper.New()
	v.SetEnvPrefix("ptc")
	v.AutomaticEnv()
	v.SetDefault("base_ref", c.BaseRef)
	v.SetDefault("head_ref", c.HeadRef)
	v.SetDefault("processors", c.Processors)
	v.SetDefault("pytest", c.PytestCommand)
	v.SetDefault("db_prefix", c.DatabasePrefix)
	_ = v.BindEnv("db_prefix", "DB_DATABASE_PREFIX")

	c.BaseRef = v.GetString("base_ref")
	c.HeadRef = v.GetString("head_ref")
	if n := v.GetInt("processors"); n > 0 {
		c.Processors = n
	}
	c.PytestCommand = v.GetString("pytest")
	c.DatabasePrefix = v.GetString("db_prefix")
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetTestPaths returns the directories discovery starts from: the test path
// flag, else pytest's testpaths, else the default test path.
func (c *Config) GetTestPaths() []string {
	if c.Flags.TestPath != "" || len(c.Pytest.TestPaths) == 0 {
		return []string{c.GetTestPath()}
	}
	paths := make([]string, 0, len(c.Pytest.TestPaths))
	for _, p := range c.Pytest.TestPaths {
		if filepath.IsAbs(p) {
			paths = append(paths, p)
			continue
		}
		paths = append(paths, filepath.Join(c.ProjectPath, p))
	}
	return paths
}

// GetProjectRoot returns the absolute project path
func (c *Config) GetProjectRoot() string {
	if abs, err := filepath.Abs(c.ProjectPath); err == nil {
		return abs
	}
	return c.ProjectPath
}

// GetOutputPath returns the full path to the output JSON file (under project so run and faills use the same file).
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseName returns the database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	return fmt.Sprintf("%s_%d", c.DatabasePrefix, workerID)
}
