package discovery

import (
	"path"
	"path/filepath"
	"strings"

	"ptc/internal/changeset"
)

// Filter narrows test files by the -f selection terms
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the test files matched by any of the comma separated terms in pattern.
//
// A term is one of:
//   - a node id such as "tests/test_user.py::TestUser::test_login", keeping the file it names
//   - a path such as "api/test_*.py", matched against the trailing segments of each file
//   - a python_files style glob such as "test_user*" or "*payment*", matched against the base name
//   - plain text, kept when the base name contains it
//
// An empty pattern keeps every file.
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	matchers := compileTerms(pattern)
	if len(matchers) == 0 {
		return tests
	}

	var filtered []string
	for _, test := range tests {
		slashed := filepath.ToSlash(test)
		for _, match := range matchers {
			if match(slashed) {
				filtered = append(filtered, test)
				break
			}
		}
	}
	return filtered
}

type matcher func(slashed string) bool

func compileTerms(pattern string) []matcher {
	var matchers []matcher
	for _, term := range strings.Split(pattern, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		matchers = append(matchers, compileTerm(term))
	}
	return matchers
}

func compileTerm(term string) matcher {
	if file, _, ok := strings.Cut(term, "::"); ok {
		return tailMatcher(file)
	}
	if strings.Contains(filepath.ToSlash(term), "/") {
		return tailMatcher(term)
	}
	if strings.ContainsAny(term, "*?") {
		convention := changeset.NewConvention([]string{term})
		return func(slashed string) bool {
			return convention.Match(path.Base(slashed))
		}
	}
	return func(slashed string) bool {
		return strings.Contains(path.Base(slashed), term)
	}
}

// tailMatcher globs pattern against as many trailing path segments as it has
func tailMatcher(pattern string) matcher {
	pattern = path.Clean(filepath.ToSlash(pattern))
	depth := strings.Count(pattern, "/") + 1
	return func(slashed string) bool {
		segments := strings.Split(slashed, "/")
		if len(segments) < depth {
			return false
		}
		ok, err := path.Match(pattern, strings.Join(segments[len(segments)-depth:], "/"))
		return err == nil && ok
	}
}
