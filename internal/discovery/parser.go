package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ptc/internal/domain"
)

var (
	classPattern = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[:(]`)
	defPattern   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// Parser parses Python test modules to extract test items
type Parser struct {
	classes   []string
	functions []string
}

// NewParser creates a new Parser for the given python_classes and
// python_functions conventions. Entries are name prefixes unless they hold a
// glob wildcard.
func NewParser(classes, functions []string) *Parser {
	return &Parser{classes: classes, functions: functions}
}

// FindTestItems finds the test functions and test methods defined in file.
// Item paths are relative to projectRoot and slash separated.
func (p *Parser) FindTestItems(projectRoot, file string) ([]domain.TestItem, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", file, err)
	}

	relPath := file
	if rel, err := filepath.Rel(projectRoot, file); err == nil {
		relPath = rel
	}
	relPath = filepath.ToSlash(relPath)

	var (
		items        []domain.TestItem
		class        string // Current test class, empty at module level
		inClass      bool   // Inside any top-level class body
		methodIndent = -1
		docQuote     string
	)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		// Skip the body of triple-quoted strings
		if docQuote != "" {
			if strings.Count(line, docQuote)%2 == 1 {
				docQuote = ""
			}
			continue
		}
		if q := openTripleQuote(line); q != "" {
			docQuote = q
			continue
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if !startsIndented(line) {
			inClass, class, methodIndent = false, "", -1
			if m := classPattern.FindStringSubmatch(line); m != nil {
				inClass = true
				if p.isTestClass(m[1]) {
					class = m[1]
				}
				continue
			}
		}

		m := defPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent, name := len(m[1]), m[2]

		switch {
		case indent == 0:
			if p.isTestFunction(name) {
				items = append(items, domain.TestItem{Path: relPath, Name: name, Line: lineNo})
			}
		case inClass:
			if methodIndent < 0 {
				methodIndent = indent
			}
			if indent == methodIndent && class != "" && p.isTestFunction(name) {
				items = append(items, domain.TestItem{Path: relPath, Name: name, Class: class, Line: lineNo})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", file, err)
	}

	return items, nil
}

func (p *Parser) isTestClass(name string) bool {
	return matchesAny(name, p.classes)
}

func (p *Parser) isTestFunction(name string) bool {
	return matchesAny(name, p.functions)
}

func matchesAny(name string, conventions []string) bool {
	for _, c := range conventions {
		if strings.ContainsAny(c, "*?[") {
			if matched, err := filepath.Match(c, name); err == nil && matched {
				return true
			}
			continue
		}
		if strings.HasPrefix(name, c) {
			return true
		}
	}
	return false
}

func startsIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// openTripleQuote returns the quote when line opens a triple-quoted string it does not close
func openTripleQuote(line string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.Count(line, q)%2 == 1 {
			return q
		}
	}
	return ""
}
