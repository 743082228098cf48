package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ptc/internal/domain"
)

// Collector turns collection targets into test items
type Collector struct {
	scanner *Scanner
	parser  *Parser
}

// NewCollector creates a new Collector
func NewCollector(scanner *Scanner, parser *Parser) *Collector {
	return &Collector{scanner: scanner, parser: parser}
}

// Files expands targets into test files. Directories are scanned, files are
// taken as given. Relative targets are resolved against projectRoot.
func (c *Collector) Files(projectRoot string, targets []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(file string) {
		if !seen[file] {
			seen[file] = true
			files = append(files, file)
		}
	}

	for _, target := range targets {
		if !filepath.IsAbs(target) {
			target = filepath.Join(projectRoot, target)
		}
		target = filepath.Clean(target)

		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("test path does not exist: %s", target)
		}
		if !info.IsDir() {
			add(target)
			continue
		}

		found, err := c.scanner.Scan(target)
		if err != nil {
			return nil, err
		}
		for _, file := range found {
			add(file)
		}
	}

	return files, nil
}

// Collect parses every test file under targets and returns their items in file order
func (c *Collector) Collect(projectRoot string, targets []string) ([]domain.TestItem, error) {
	files, err := c.Files(projectRoot, targets)
	if err != nil {
		return nil, err
	}
	return c.CollectFiles(projectRoot, files)
}

// CollectFiles parses the given test files
func (c *Collector) CollectFiles(projectRoot string, files []string) ([]domain.TestItem, error) {
	var items []domain.TestItem
	for _, file := range files {
		found, err := c.parser.FindTestItems(projectRoot, file)
		if err != nil {
			return nil, err
		}
		slog.Debug("collected", "file", file, "items", len(found))
		items = append(items, found...)
	}
	return items, nil
}
