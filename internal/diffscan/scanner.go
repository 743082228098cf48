// Package diffscan finds the test functions and classes touched by a unified diff.
//
// The scan is textual: a line declaring a `def` or `class` whose name contains
// "test" becomes the current name, and every following added or removed line is
// attributed to it. Changes before the first such declaration, and changes under
// declarations whose name lacks "test", are not reported.
package diffscan

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when a diff line is not valid UTF-8
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// declarationPattern matches the last `def`/`class` declaration on a line
var declarationPattern = regexp.MustCompile(`.*(?:def|class)\s([a-zA-Z_0-9]*).*`)

// Scanner extracts changed test names from diff bodies
type Scanner struct{}

// NewScanner creates a new Scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns the changed names of one file's diff body in first-seen order, without duplicates
func (s *Scanner) Scan(diff []byte) ([]string, error) {
	var changed []string
	current := ""

	for i, raw := range bytes.Split(diff, []byte("\n")) {
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("diffscan: line %d: %w", i+1, ErrInvalidUTF8)
		}
		line := string(raw)

		if name, ok := DeclaredName(line); ok && strings.Contains(strings.ToLower(name), "test") {
			current = name
			continue
		}

		if current != "" && (strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")) {
			changed = append(changed, current)
		}
	}

	return removeDuplicates(changed), nil
}

// DeclaredName returns the identifier declared on line, if the line looks like a declaration.
// The identifier may be empty (e.g. "class (").
func DeclaredName(line string) (string, bool) {
	match := declarationPattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

func removeDuplicates(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
