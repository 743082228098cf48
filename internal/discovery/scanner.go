package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ptc/internal/changeset"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs   map[string]bool
	convention *changeset.Convention
}

// NewScanner creates a new Scanner with the given directories to skip and
// the python_files patterns a test module name must match.
func NewScanner(skipDirs []string, patterns []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, convention: changeset.NewConvention(patterns)}
}

// IsTestFile reports whether path is a Python module whose base name follows the test file convention
func (s *Scanner) IsTestFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".py") && s.convention.Match(name)
}

// Scan finds all test files in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (.git, .venv, .tox, ...)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] || strings.HasSuffix(name, ".egg-info") {
				return filepath.SkipDir
			}

			return nil
		}

		if s.IsTestFile(path) {
			testfiles = append(testfiles, path)
		}

		return nil
	})

	return testfiles, err
}
