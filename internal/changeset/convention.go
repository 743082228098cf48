package changeset

import (
	"regexp"
	"strings"
)

// Convention recognises test file names from glob-like patterns such as
// "test_*.py" or "*_test.py".
type Convention struct {
	patterns []string
	re       *regexp.Regexp
}

// NewConvention compiles the given patterns. An empty pattern list matches nothing.
func NewConvention(patterns []string) *Convention {
	c := &Convention{patterns: append([]string(nil), patterns...)}

	var alternatives []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		alternatives = append(alternatives, globToRegexp(p))
	}
	if len(alternatives) > 0 {
		c.re = regexp.MustCompile(`(?:^|/)(?:` + strings.Join(alternatives, "|") + `)`)
	}
	return c
}

// Patterns returns the patterns the convention was built from
func (c *Convention) Patterns() []string {
	return append([]string(nil), c.patterns...)
}

// Match reports whether name is a test file name.
// The name must start at the beginning of the string or right after a '/'.
func (c *Convention) Match(name string) bool {
	if c.re == nil {
		return false
	}
	return c.re.MatchString(name)
}

// IsTestFile reports whether name matches any of the patterns
func IsTestFile(name string, patterns []string) bool {
	return NewConvention(patterns).Match(name)
}

// globToRegexp escapes a glob and turns '*' into '.*' and '?' into '.'
func globToRegexp(glob string) string {
	quoted := regexp.QuoteMeta(glob)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	return strings.ReplaceAll(quoted, `\?`, `.`)
}
