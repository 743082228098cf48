package vcs

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxFunctionContext caps the declaration copied into a hunk header, like git does
const maxFunctionContext = 80

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+\d+(?:,\d+)? @@`)

// functionContext returns the nearest line among the first `before` lines of
// lines that starts with a letter, '_' or '$'. It is the same line git's default
// funcname rule puts after a hunk header.
func functionContext(lines []string, before int) string {
	for i := min(before, len(lines)) - 1; i >= 0; i-- {
		line := lines[i]
		if line == "" {
			continue
		}
		c := rune(line[0])
		if c != '_' && c != '$' && !unicode.IsLetter(c) {
			continue
		}
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if len(line) > maxFunctionContext {
			line = line[:maxFunctionContext]
		}
		return line
	}
	return ""
}

// withFunctionContext rewrites every hunk header of body so its trailing text is
// the enclosing declaration taken from previous, the old side of the diff.
func withFunctionContext(body []byte, previous string) []byte {
	if len(body) == 0 {
		return body
	}
	oldLines := splitLines(previous)

	var buf bytes.Buffer
	for _, line := range bytes.SplitAfter(body, []byte("\n")) {
		match := hunkHeaderPattern.FindSubmatch(line)
		if match == nil {
			buf.Write(line)
			continue
		}
		start, _ := strconv.Atoi(string(match[1]))
		count := 1
		if len(match[2]) > 0 {
			count, _ = strconv.Atoi(string(match[2]))
		}
		before := start - 1
		if count == 0 {
			before = start
		}

		buf.Write(match[0])
		if ctx := functionContext(oldLines, before); ctx != "" {
			buf.WriteByte(' ')
			buf.WriteString(ctx)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// hunkRange formats one side of a hunk header the way git does: the count is
// left out when it is 1 and an empty side points at the line before it.
func hunkRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return strconv.Itoa(start)
	default:
		return fmt.Sprintf("%d,%d", start, count)
	}
}
