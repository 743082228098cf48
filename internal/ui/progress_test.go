package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestDescribeProgress(t *testing.T) {
	color.NoColor = true

	assert.Equal(t, "pytest 0/4 files  passed 0", describeProgress(0, 4, 0, 0))
	assert.Equal(t, "pytest 3/4 files  passed 12  failed 2", describeProgress(3, 4, 12, 2))
}

func TestProgressBar_Update(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	bar := NewProgressBar(2, WithProgressWriter(&out), WithProgressThrottle(0))
	bar.Update(1, 5, 1)
	bar.Update(2, 9, 1)
	bar.Finish()

	assert.Contains(t, out.String(), "pytest 1/2 files  passed 5  failed 1")
	assert.Contains(t, out.String(), "pytest 2/2 files  passed 9  failed 1")
}
