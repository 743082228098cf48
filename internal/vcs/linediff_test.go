package vcs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineDiff(t *testing.T) {
	previous := "def test_a():\n    assert 1\n"
	current := "def test_a():\n    assert 2\n"

	got := string(LineDiff(previous, current, DefaultContextLines))

	assert.Equal(t, "@@ -1,2 +1,2 @@\n def test_a():\n-    assert 1\n+    assert 2\n", got)
}

func TestLineDiff_TrimsContext(t *testing.T) {
	previous := "a\nb\nc\nd\ne\nf\ng\nh\n"
	current := "a\nb\nc\nd\ne\nf\ng\nH\n"

	got := string(LineDiff(previous, current, 1))

	assert.Equal(t, "@@ -7,2 +7,2 @@ f\n g\n-h\n+H\n", got)
}

func TestLineDiff_NewFile(t *testing.T) {
	got := string(LineDiff("", "def test_new():\n    pass\n", DefaultContextLines))

	assert.Equal(t, "@@ -0,0 +1,2 @@\n+def test_new():\n+    pass\n", got)
}

func TestLineDiff_FunctionContext(t *testing.T) {
	previous := longTest(15, "15")
	current := longTest(15, "99")

	got := string(LineDiff(previous, current, DefaultContextLines))

	assert.True(t, strings.HasPrefix(got, "@@ -13,7 +13,7 @@ def test_long():\n"), got)
	assert.Contains(t, got, "-    x15 = 15\n+    x15 = 99\n")
}

func TestLineDiff_FunctionContextSkipsIndentedLines(t *testing.T) {
	previous := "import os\n\n\nclass TestUser:\n    def test_name(self):\n" + strings.Repeat("        pass\n", 8) + "        assert 1\n"
	current := strings.Replace(previous, "assert 1", "assert 2", 1)

	got := string(LineDiff(previous, current, DefaultContextLines))

	assert.True(t, strings.HasPrefix(got, "@@ -11,4 +11,4 @@ class TestUser:\n"), got)
}

func TestLineDiff_Identical(t *testing.T) {
	assert.Empty(t, LineDiff("x\n", "x\n", DefaultContextLines))
}

func TestStripFileHeader(t *testing.T) {
	patch := "diff --git a/t.py b/t.py\nindex 1..2 100644\n--- a/t.py\n+++ b/t.py\n@@ -1 +1 @@\n-a\n+b\n"
	assert.Equal(t, "@@ -1 +1 @@\n-a\n+b\n", string(stripFileHeader([]byte(patch))))
	assert.Nil(t, stripFileHeader([]byte("diff --git a/x b/x\nBinary files differ\n")))
}

func TestFunctionContext(t *testing.T) {
	lines := []string{"import os", "", "def test_a():", "    x = 1", "\tdef nested():", "$var", "  y = 2"}

	assert.Equal(t, "", functionContext(lines, 0))
	assert.Equal(t, "import os", functionContext(lines, 2))
	assert.Equal(t, "def test_a():", functionContext(lines, 5))
	assert.Equal(t, "$var", functionContext(lines, 7))
	assert.Equal(t, "$var", functionContext(lines, 100))
	assert.Len(t, functionContext([]string{"def " + strings.Repeat("x", 100) + "():"}, 1), maxFunctionContext)
}

func TestWithFunctionContext(t *testing.T) {
	previous := "def test_a():\n    a = 1\n    b = 2\n    c = 3\n    d = 4\n    e = 5\n"
	body := "@@ -3,4 +3,4 @@     a = 1\n     b = 2\n-    c = 3\n+    c = 9\n     d = 4\n@@ -0,0 +1 @@\n+x\n"

	got := string(withFunctionContext([]byte(body), previous))

	assert.Equal(t, "@@ -3,4 +3,4 @@ def test_a():\n     b = 2\n-    c = 3\n+    c = 9\n     d = 4\n@@ -0,0 +1 @@\n+x\n", got)
}

func TestHunkRange(t *testing.T) {
	assert.Equal(t, "0,0", hunkRange(1, 0))
	assert.Equal(t, "4", hunkRange(4, 1))
	assert.Equal(t, "4,7", hunkRange(4, 7))
}
