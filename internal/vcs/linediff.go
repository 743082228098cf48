package vcs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContextLines is the number of unchanged lines kept around each change
const DefaultContextLines = 3

type diffLine struct {
	op   byte
	text string
}

// LineDiff renders a line-level diff of two texts as unified-diff body lines
// (' ', '+', '-' prefixes). Runs of unchanged lines farther than context from a
// change are cut. Each kept region starts with a git style hunk header carrying
// the line ranges and the enclosing declaration of the previous text.
func LineDiff(previous, current string, context int) []byte {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(previous, current)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = '+'
		case diffmatchpatch.DiffDelete:
			op = '-'
		}
		for _, text := range splitLines(d.Text) {
			all = append(all, diffLine{op: op, text: text})
		}
	}

	keep := make([]bool, len(all))
	for i, l := range all {
		if l.op == ' ' {
			continue
		}
		for j := max(0, i-context); j <= min(len(all)-1, i+context); j++ {
			keep[j] = true
		}
	}

	oldLines := splitLines(previous)
	var buf bytes.Buffer
	var h *hunk
	flush := func() {
		if h != nil {
			h.writeTo(&buf, oldLines)
			h = nil
		}
	}

	oldNo, newNo := 1, 1
	for i, l := range all {
		if !keep[i] {
			flush()
		} else {
			if h == nil {
				h = &hunk{oldStart: oldNo, newStart: newNo}
			}
			h.add(l)
		}
		if l.op != '+' {
			oldNo++
		}
		if l.op != '-' {
			newNo++
		}
	}
	flush()
	return buf.Bytes()
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []diffLine
}

func (h *hunk) add(l diffLine) {
	if l.op != '+' {
		h.oldCount++
	}
	if l.op != '-' {
		h.newCount++
	}
	h.lines = append(h.lines, l)
}

func (h *hunk) writeTo(buf *bytes.Buffer, oldLines []string) {
	fmt.Fprintf(buf, "@@ -%s +%s @@", hunkRange(h.oldStart, h.oldCount), hunkRange(h.newStart, h.newCount))
	before := h.oldStart - 1
	if ctx := functionContext(oldLines, before); ctx != "" {
		buf.WriteByte(' ')
		buf.WriteString(ctx)
	}
	buf.WriteByte('\n')
	for _, l := range h.lines {
		buf.WriteByte(l.op)
		buf.WriteString(l.text)
		buf.WriteByte('\n')
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
