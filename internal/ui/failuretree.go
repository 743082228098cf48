package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"ptc/internal/domain"
)

// failureScope splits a failure's pytest node id into its module path, the
// class scope ("TestUser" or "TestUser::TestNested", empty for module level
// tests) and the test name. Failures without a node id fall back to their path and name.
func failureScope(f domain.TestFailure) (file, scope, name string) {
	nodeID := f.NodeID
	if nodeID == "" {
		return f.FilePath, "", f.TestName
	}
	// Parameter ids may hold "::" themselves
	params := ""
	if i := strings.Index(nodeID, "["); i >= 0 {
		nodeID, params = nodeID[:i], nodeID[i:]
	}
	parts := strings.Split(nodeID, "::")
	if len(parts) == 1 {
		return parts[0], "", f.TestName
	}
	return parts[0], strings.Join(parts[1:len(parts)-1], "::"), parts[len(parts)-1] + params
}

// scopeGroup holds the failures of one class scope, as indexes into the failure list
type scopeGroup struct {
	Scope    string
	Failures []int
}

// fileGroup holds the failures of one test module by class scope.
// Module level failures are in the scope with an empty name.
type fileGroup struct {
	File   string
	Scopes []scopeGroup
}

// Failures returns every failure index of the module
func (g fileGroup) Failures() []int {
	var all []int
	for _, s := range g.Scopes {
		all = append(all, s.Failures...)
	}
	return all
}

// groupFailures groups failures by module, then by class scope, in first-seen order
func groupFailures(failures []domain.TestFailure) []fileGroup {
	var groups []fileGroup
	fileIndex := make(map[string]int)

	for i, f := range failures {
		file, scope, _ := failureScope(f)
		if file == "" {
			file = "unknown"
		}
		gi, ok := fileIndex[file]
		if !ok {
			gi = len(groups)
			fileIndex[file] = gi
			groups = append(groups, fileGroup{File: file})
		}

		g := &groups[gi]
		si := -1
		for j := range g.Scopes {
			if g.Scopes[j].Scope == scope {
				si = j
				break
			}
		}
		if si < 0 {
			si = len(g.Scopes)
			g.Scopes = append(g.Scopes, scopeGroup{Scope: scope})
		}
		g.Scopes[si].Failures = append(g.Scopes[si].Failures, i)
	}
	return groups
}

func countUnresolved(indexes []int, resolved map[int]bool) int {
	n := 0
	for _, i := range indexes {
		if !resolved[i] {
			n++
		}
	}
	return n
}

// groupLabel renders a module or class node as "name (open/total)", grayed out once every failure is resolved
func groupLabel(name string, indexes []int, resolved map[int]bool) string {
	open := countUnresolved(indexes, resolved)
	if open == 0 {
		return fmt.Sprintf("[gray]✓ %s (%d)[white]", tview.Escape(name), len(indexes))
	}
	return fmt.Sprintf("%s [yellow](%d/%d)[white]", tview.Escape(name), open, len(indexes))
}

// failureLabel renders a single test node
func failureLabel(f domain.TestFailure, index int, resolved bool) string {
	_, _, name := failureScope(f)
	if name == "" {
		name = fmt.Sprintf("test %d", index+1)
	}
	if resolved {
		return "[gray]✓ " + tview.Escape(name) + "[white]"
	}
	return "[red]✗[white] " + tview.Escape(name)
}
