package parser

import (
	"regexp"
	"strconv"
	"strings"

	"ptc/internal/domain"
)

var (
	// "==== 1 failed, 2 passed in 0.12s ====" or, with -q, "1 failed, 2 passed in 0.12s"
	summaryLinePattern = regexp.MustCompile(`^=*\s*(?:\d+ \w+,?\s*)+(?:in [\d.]+s.*)?=*$`)
	countPattern       = regexp.MustCompile(`(\d+) (passed|failed|errors?|xpassed|xfailed|skipped|deselected|warnings?)`)
	bannerPattern      = regexp.MustCompile(`^={3,}\s*(.*?)\s*={3,}$`)
	sectionPattern     = regexp.MustCompile(`^_{3,} (.+?) _{3,}$`)
	shortInfoPattern   = regexp.MustCompile(`^(FAILED|ERROR) (\S+)(?: - (.*))?$`)
	locationPattern    = regexp.MustCompile(`^(\S+\.py):(\d+)(?::|$)`)
	errorPhasePattern  = regexp.MustCompile(`^ERROR at (?:setup|teardown|call) of `)
)

// PytestParser parses pytest console output
type PytestParser struct{}

// NewPytestParser creates a new PytestParser
func NewPytestParser() *PytestParser {
	return &PytestParser{}
}

// ParseTestCounts extracts passed and failed test case counts from the pytest summary line.
// Errors count as failures. If parsing fails, returns (1,0) for success or (0,1) for failure (file-level fallback).
func (p *PytestParser) ParseTestCounts(result domain.TestResult) (passed, failed int) {
	lines := strings.Split(result.Output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || !summaryLinePattern.MatchString(line) {
			continue
		}
		for _, m := range countPattern.FindAllStringSubmatch(line, -1) {
			n, _ := strconv.Atoi(m[1])
			switch m[2] {
			case "passed":
				passed += n
			case "failed", "error", "errors":
				failed += n
			}
		}
		if passed > 0 || failed > 0 {
			return passed, failed
		}
		break
	}

	// Fallback: one "test" per file
	if result.Success {
		return 1, 0
	}
	return 0, 1
}

// section is one "____ title ____" block of the FAILURES or ERRORS report
type section struct {
	title string
	body  []string
}

// ParseFailure parses test failures from pytest output.
// The short test summary (-rfE) gives the node ids, the FAILURES and ERRORS
// sections give messages and locations.
func (p *PytestParser) ParseFailure(result domain.TestResult) []domain.TestFailure {
	lines := strings.Split(result.Output, "\n")
	sections, summary := p.split(lines)

	var failures []domain.TestFailure
	used := make(map[int]bool)

	for _, m := range summary {
		nodeID, shortMessage := m[2], m[3]
		failure := newFailure(result.TestPath, nodeID)
		if idx := matchSection(sections, nodeID, used); idx >= 0 {
			used[idx] = true
			p.fill(&failure, sections[idx], result.TestPath)
		}
		if failure.Message == "" {
			failure.Message = shortMessage
		}
		failures = append(failures, failure)
	}

	// Sections without a summary entry, e.g. when -rfE was not passed
	for i, s := range sections {
		if used[i] {
			continue
		}
		failure := newFailure(result.TestPath, sectionNodeID(result.TestPath, s.title))
		p.fill(&failure, s, result.TestPath)
		failures = append(failures, failure)
	}

	return failures
}

// split collects the report sections and the short summary matches
func (p *PytestParser) split(lines []string) ([]section, [][]string) {
	var (
		sections []section
		summary  [][]string
		current  *section
		banner   string
	)

	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if m := bannerPattern.FindStringSubmatch(line); m != nil {
			flush()
			banner = strings.ToLower(m[1])
			continue
		}

		switch {
		case banner == "failures" || banner == "errors":
			if m := sectionPattern.FindStringSubmatch(line); m != nil {
				flush()
				current = &section{title: m[1]}
				continue
			}
			if current != nil {
				current.body = append(current.body, line)
			}
		case strings.HasPrefix(banner, "short test summary"):
			if m := shortInfoPattern.FindStringSubmatch(line); m != nil {
				summary = append(summary, m)
			}
		}
	}
	flush()

	return sections, summary
}

func (p *PytestParser) fill(failure *domain.TestFailure, s section, testPath string) {
	var messageLines []string
	var stackTrace []string

	for _, line := range s.body {
		if strings.HasPrefix(line, "E ") {
			messageLines = append(messageLines, strings.TrimSpace(strings.TrimPrefix(line, "E")))
			continue
		}
		if m := locationPattern.FindStringSubmatch(line); m != nil {
			stackTrace = append(stackTrace, strings.TrimSpace(line))
			// Prefer the location inside the test file itself
			if failure.File == "" || (m[1] == testPath && failure.File != testPath) {
				failure.File = m[1]
				failure.Line, _ = strconv.Atoi(m[2])
			}
		}
	}

	// Trim surrounding empty lines
	body := s.body
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}

	failure.ErrorDetails = strings.Join(body, "\n")
	failure.Message = strings.Join(messageLines, "\n")
	failure.StackTrace = stackTrace
}

func newFailure(testPath, nodeID string) domain.TestFailure {
	filePath, name := testPath, nodeID
	if i := strings.Index(nodeID, "::"); i >= 0 {
		filePath, name = nodeID[:i], nodeID[i+2:]
	}
	return domain.TestFailure{
		TestName:   name,
		FilePath:   filePath,
		NodeID:     nodeID,
		StackTrace: []string{},
	}
}

// sectionNodeID rebuilds a node id from a section title such as
// "TestUser.test_create" or "ERROR at setup of test_login".
func sectionNodeID(testPath, title string) string {
	if path, ok := strings.CutPrefix(title, "ERROR collecting "); ok {
		return path
	}
	return testPath + "::" + titleToNodePath(title)
}

// titleToNodePath turns "TestUser.test_update[a.b]" into "TestUser::test_update[a.b]"
func titleToNodePath(title string) string {
	title = errorPhasePattern.ReplaceAllString(title, "")
	name, params, hasParams := strings.Cut(title, "[")
	name = strings.ReplaceAll(name, ".", "::")
	if hasParams {
		return name + "[" + params
	}
	return name
}

func matchSection(sections []section, nodeID string, used map[int]bool) int {
	for i, s := range sections {
		if used[i] {
			continue
		}
		if path, ok := strings.CutPrefix(s.title, "ERROR collecting "); ok {
			if path == nodeID {
				return i
			}
			continue
		}
		if strings.HasSuffix(nodeID, "::"+titleToNodePath(s.title)) {
			return i
		}
	}
	return -1
}
