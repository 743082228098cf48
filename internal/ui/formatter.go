package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"ptc/internal/config"
	"ptc/internal/discovery"
	"ptc/internal/domain"
	"ptc/internal/storage"
)

// Formatter formats and displays output
type Formatter struct {
	config  *config.Config
	parser  *discovery.Parser
	storage storage.Storage
	out     io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, parser *discovery.Parser, st storage.Storage) *Formatter {
	return &Formatter{
		config:  cfg,
		parser:  parser,
		storage: st,
		out:     color.Output,
	}
}

// SetOutput redirects the change set and selection reports
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

// relPath returns path relative to the project root when possible
func (f *Formatter) relPath(path string) string {
	if native := filepath.FromSlash(path); filepath.IsAbs(native) {
		if rel, err := filepath.Rel(f.config.GetProjectRoot(), native); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path
}

// PrintChangeSet writes the changed test files and their changed names
func (f *Formatter) PrintChangeSet(cs *domain.ChangeSet, fingerprint string) {
	if cs.Len() == 0 {
		fmt.Fprintln(f.out, color.YellowString("No changed test files"))
		return
	}

	fmt.Fprintln(f.out, color.CyanString("Changed test files... %d:", cs.Len()))
	for _, entry := range cs.Entries() {
		fmt.Fprintln(f.out, color.GreenString("+ %s:", f.relPath(entry.Path)))
		fmt.Fprintf(f.out, "  [%s]\n", strings.Join(entry.Names, ", "))
	}
	if fingerprint != "" {
		fmt.Fprintf(f.out, "%s %s\n", color.HiBlackString("fingerprint:"), fingerprint)
	}
}

// PrintSelection lists the tests selected to run, grouped by file, and the counts of the rest
func (f *Formatter) PrintSelection(result domain.SelectionResult) {
	color.New(color.FgGreen).Fprintf(f.out, "Selected %d test(s):\n", len(result.Run))

	var files []string
	byFile := make(map[string][]domain.TestItem)
	for _, item := range result.Run {
		if _, ok := byFile[item.Path]; !ok {
			files = append(files, item.Path)
		}
		byFile[item.Path] = append(byFile[item.Path], item)
	}

	for i, file := range files {
		isLastFile := i == len(files)-1
		if isLastFile {
			fmt.Fprintln(f.out, color.CyanString("└── %s", file))
		} else {
			fmt.Fprintln(f.out, color.CyanString("├── %s", file))
		}
		items := byFile[file]
		for j, item := range items {
			prefix := "│   "
			if isLastFile {
				prefix = "    "
			}
			if j == len(items)-1 {
				prefix += "└── "
			} else {
				prefix += "├── "
			}
			name := item.Name
			if item.Class != "" {
				name = item.Class + "::" + item.Name
			}
			fmt.Fprintf(f.out, "%s%s\n", prefix, color.YellowString(name))
		}
	}

	fmt.Fprintf(f.out, "%s %d  %s %d\n",
		color.RedString("deselected:"), len(result.Dropped()),
		color.HiBlackString("unevaluated:"), len(result.Unevaluated))
}

// PrintMetaStats reads and displays meta statistics from the stored results
func (f *Formatter) PrintMetaStats() error {
	// Clear terminal screen
	fmt.Print("\033[2J\033[H")

	output, err := f.storage.Load()
	if err != nil {
		return err
	}

	meta := output.Meta

	// Print header
	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                    Test Execution Statistics                  ║")
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	// Print table
	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	// Total Test Files
	fmt.Printf("│ %-31s │ ", "Total Test Files")
	color.White("%-27d │\n", meta.TotalTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Passed Test Files
	fmt.Printf("│ %-31s │ ", "Passed Test Files")
	color.Green("%-27d │\n", meta.PassedTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Failed Test Files
	fmt.Printf("│ %-31s │ ", "Failed Test Files")
	color.Red("%-27d │\n", meta.FailedTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Passed Test Cases
	fmt.Printf("│ %-31s │ ", "Passed Test Cases")
	color.Green("%-27d │\n", meta.PassedTestCases)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Failed Test Cases
	fmt.Printf("│ %-31s │ ", "Failed Test Cases")
	color.Red("%-27d │\n", meta.FailedTestCases)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	if sel := output.Selection; sel != nil {
		fmt.Printf("│ %-31s │ ", "Changed Test Files")
		color.White("%-27d │\n", len(sel.ChangedFiles))
		fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

		fmt.Printf("│ %-31s │ ", "Selected / Deselected")
		color.White("%-27s │\n", fmt.Sprintf("%d / %d", len(sel.Selected), sel.Deselected))
		fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

		fmt.Printf("│ %-31s │ ", "Base Ref")
		color.White("%-27s │\n", sel.BaseRef)
		fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

		fmt.Printf("│ %-31s │ ", "Fingerprint")
		color.White("%-27s │\n", sel.Fingerprint)
		fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")
	}

	// Duration
	fmt.Printf("│ %-31s │ ", "Duration")
	durationStr := fmt.Sprintf("%.2fs", meta.DurationSeconds)
	color.White("%-27s │\n", durationStr)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Workers
	fmt.Printf("│ %-31s │ ", "Workers")
	color.White("%-27d │\n", meta.Workers)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	// Timestamp
	fmt.Printf("│ %-31s │ ", "Timestamp")
	color.White("%-27s │\n", meta.Timestamp)

	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Println()
	if meta.FailedTestFiles == 0 {
		color.Green("✓ All tests passed!")
	} else {
		color.Red("✗ %d test file(s) failed with %d test case failure(s)", meta.FailedTestFiles, meta.FailedTestCases)
		fmt.Println()
		f.printFailedTestsTree(output.Details)
	}

	return nil
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsFile   bool
}

// printFailedTestsTree prints a tree structure of failed tests
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	if len(failures) == 0 {
		return
	}

	// Group failures by file path
	fileMap := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		fileMap[failure.FilePath] = append(fileMap[failure.FilePath], failure)
	}

	root := &TreeNode{
		Name:     "",
		Children: make(map[string]*TreeNode),
		IsFile:   false,
	}

	// Process each file
	for filePath, fileFailures := range fileMap {
		parts := strings.Split(strings.TrimPrefix(filePath, "./"), "/")
		current := root

		// Navigate/create tree nodes for each path part
		for i, part := range parts {
			if part == "" {
				continue
			}

			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}

			current = current.Children[part]

			// If this is the file (last part), add failures
			if i == len(parts)-1 {
				current.Failures = fileFailures
			}
		}
	}

	// Print tree recursively
	f.printTreeNode(root, "", true, true)
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string, isLast bool, isRoot bool) {
	// Sort children for consistent output
	var keys []string
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Print children
	for i, key := range keys {
		child := node.Children[key]
		isLastChild := i == len(keys)-1

		// Determine connector
		var connector string
		if isRoot {
			connector = ""
		} else if isLastChild {
			connector = prefix + "   |_"
		} else {
			connector = prefix + "  |_"
		}

		// Print child node
		if child.IsFile {
			color.Yellow("%s%s", connector, child.Name)
		} else {
			color.Cyan("%s%s", connector, child.Name)
		}

		// Print test cases if this is a file
		if child.IsFile && len(child.Failures) > 0 {
			for j, failure := range child.Failures {
				isLastCase := j == len(child.Failures)-1
				var casePrefix string
				if isLastChild {
					if isLastCase {
						casePrefix = strings.ReplaceAll(prefix, "|", " ") + "        |_"
					} else {
						casePrefix = prefix + "  |        |_"
					}
				} else {
					if isLastCase {
						casePrefix = prefix + "  |        |_"
					} else {
						casePrefix = prefix + "  |  |     |_"
					}
				}
				color.Red("%s%s", casePrefix, failure.TestName)
			}
		}

		// Recursively print children
		var newPrefix string
		if isRoot {
			newPrefix = "  "
		} else if isLastChild {
			newPrefix = strings.ReplaceAll(prefix, "|", " ") + "  "
		} else {
			newPrefix = prefix + "  |"
		}
		f.printTreeNode(child, newPrefix, isLastChild, false)
	}
}

// CountTestCases returns the total number of test items across the given test files.
func (f *Formatter) CountTestCases(tests []string) (int, error) {
	var total int
	for _, test := range tests {
		items, err := f.parser.FindTestItems(f.config.GetProjectRoot(), test)
		if err != nil {
			return 0, err
		}
		total += len(items)
	}
	return total, nil
}

// NormalizedPathKey returns the key used to match a test file against stored failure paths.
func NormalizedPathKey(projectPath, path string) string {
	p := path
	if projectPath != "" {
		if rel, err := filepath.Rel(projectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return filepath.ToSlash(p)
}

// PrintTestList prints a list of test files, optionally with test cases.
// failedPaths is optional; if set, files in this set are marked with [F] in red (from last run).
func (f *Formatter) PrintTestList(tests []string, showTestCases bool, failedPaths map[string]struct{}) error {
	root := f.config.GetProjectRoot()
	if showTestCases {
		// Display tree view with test cases
		color.Green("Found %d test file(s) with test cases:\n", len(tests))
	} else {
		color.Green("Found %d test file(s):\n", len(tests))
	}

	for i, test := range tests {
		// Get relative path for cleaner display
		relPath := NormalizedPathKey(root, test)

		failMarker := ""
		if _, ok := failedPaths[relPath]; ok {
			failMarker = " " + color.RedString("[F]")
		}

		// Print test file as root node
		isLastFile := i == len(tests)-1
		if isLastFile {
			color.Cyan("└── %s%s", relPath, failMarker)
		} else {
			color.Cyan("├── %s%s", relPath, failMarker)
		}
		if !showTestCases {
			continue
		}

		items, err := f.parser.FindTestItems(root, test)
		if err != nil {
			color.Red("Error reading test file %s: %v", test, err)
			continue
		}

		// Print test cases as children
		if len(items) == 0 {
			var prefix string
			if isLastFile {
				prefix = "    └── "
			} else {
				prefix = "│   └── "
			}
			fmt.Printf("%s%s\n", prefix, color.RedString("(no test cases found)"))
		}
		for j, item := range items {
			isLastCase := j == len(items)-1

			var prefix string
			if isLastFile {
				if isLastCase {
					prefix = "    └── "
				} else {
					prefix = "    ├── "
				}
			} else {
				if isLastCase {
					prefix = "│   └── "
				} else {
					prefix = "│   ├── "
				}
			}

			name := item.Name
			if item.Class != "" {
				name = item.Class + "::" + item.Name
			}
			fmt.Printf("%s%s\n", prefix, color.YellowString(name))
		}

		// Add spacing between files (except for the last one)
		if i < len(tests)-1 {
			fmt.Println()
		}
	}

	return nil
}

// Warnf prints a yellow notice to stderr
func Warnf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
}
