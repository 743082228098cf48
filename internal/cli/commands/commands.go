package commands

import (
	"ptc/internal/cli"
	"ptc/internal/config"
	"ptc/internal/diffscan"
	"ptc/internal/discovery"
	"ptc/internal/execution"
	"ptc/internal/parser"
	"ptc/internal/storage"
	"ptc/internal/ui"
	"ptc/internal/workerdb"

	"github.com/spf13/cobra"
)

// Dependencies are built once flags, environment and pytest settings are resolved
type Dependencies struct {
	Scanner      *discovery.Scanner
	Filter       *discovery.Filter
	Parser       *discovery.Parser
	Collector    *discovery.Collector
	DiffScanner  *diffscan.Scanner
	Scheduler    execution.Scheduler
	Executor     *execution.WorkerPool
	OutputParser *parser.PytestParser
	Storage      storage.Storage
	Formatter    *ui.Formatter
	Viewer       *ui.ErrorViewer
	Databases    *workerdb.DatabaseManager
}

// Init wires the dependencies for cfg
func (d *Dependencies) Init(cfg *config.Config) {
	d.Scanner = discovery.NewScanner(cfg.PathsToIgnore, cfg.Pytest.PythonFiles)
	d.Filter = discovery.NewFilter()
	d.Parser = discovery.NewParser(cfg.Pytest.PythonClasses, cfg.Pytest.PythonFunctions)
	d.Collector = discovery.NewCollector(d.Scanner, d.Parser)
	d.DiffScanner = diffscan.NewScanner()
	d.Scheduler = execution.NewFileScheduler()
	d.OutputParser = parser.NewPytestParser()
	d.Executor = execution.NewWorkerPool(cfg.Processors, execution.NewRunner(cfg), d.OutputParser)
	d.Storage = storage.NewJSONStorage(cfg, d.OutputParser)
	d.Formatter = ui.NewFormatter(cfg, d.Parser, d.Storage)
	d.Viewer = ui.NewErrorViewer(d.Storage)
	d.Databases = workerdb.NewDatabaseManager(cfg, workerdb.SettingsFromEnv())
}

// Commands holds all CLI commands
type Commands struct {
	Changed *ChangedCommand
	Run     *RunCommand
	List    *ListCommand
	Faills  *FaillsCommand

	config *config.Config
	deps   *Dependencies
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	deps := &Dependencies{}

	return &Commands{
		Changed: NewChangedCommand(cfg, deps),
		Run:     NewRunCommand(cfg, deps),
		List:    NewListCommand(cfg, deps),
		Faills:  NewFaillsCommand(cfg, deps),
		config:  cfg,
		deps:    deps,
	}
}

// prepare applies the parsed flags to the config and wires dependencies
func (c *Commands) prepare(flags *cli.Flags) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags.Paths = args
		if flags.Project != "" {
			c.config.ProjectPath = flags.Project
		}
		c.config.Flags = flags.ToConfigFlags()
		if err := c.config.Resolve(); err != nil {
			return err
		}
		c.deps.Init(c.config)
		return nil
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.Project, "project", "", "Project root (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.BaseRef, "base", "", "Base revision to compare against (default: origin/HEAD, origin/main or origin/master)")
	rootCmd.PersistentFlags().BoolVar(&flags.Uncommitted, "uncommitted", false, "Compare the working tree instead of HEAD, including uncommitted changes")

	// Changed command
	changedCmd := &cobra.Command{
		Use:     "changed [paths...]",
		Short:   "Show changed test files and test names",
		Long:    "Compare HEAD with the base branch and report the test files and test names touched by the diff",
		RunE:    c.Changed.Execute,
		PreRunE: c.prepare(flags),
	}
	rootCmd.AddCommand(changedCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [paths...]",
		Short:   "Run pytest tests in parallel",
		Long:    "Discover and execute pytest tests using parallel workers, optionally only the tests changed since the base branch",
		RunE:    c.Run.Execute,
		PreRunE: c.prepare(flags),
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of processors to use (default: $PTC_PROCESSORS or 4)")
	runCmd.Flags().BoolVar(&flags.Changed, "changed", false, "Run only tests changed since the base branch")
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., 'test_user*.py' or '*payment*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().BoolVar(&flags.CreateDBs, "create-dbs", false, "Create missing per-worker MySQL databases before running")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [paths...]",
		Short:   "List discovered tests",
		Long:    "Scan and list pytest tests without executing them",
		RunE:    c.List.Execute,
		PreRunE: c.prepare(flags),
	}
	listCmd.Flags().BoolVar(&flags.Changed, "changed", false, "List only tests changed since the base branch")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., 'test_user*.py' or '*payment*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of test files")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last test run in an interactive viewer",
		Args:    cobra.NoArgs,
		RunE:    c.Faills.Execute,
		PreRunE: c.prepare(flags),
	}
	rootCmd.AddCommand(faillsCmd)
}
