package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ptc/internal/domain"
	"ptc/internal/storage"
)

// maxStackLines caps the stack trace shown for one failure
const maxStackLines = 10

// ErrorViewer browses stored pytest failures as a module > class > test tree
type ErrorViewer struct {
	storage storage.Storage
}

var _ Viewer = (*ErrorViewer)(nil)

// NewErrorViewer creates a new ErrorViewer. Resolved marks are written back through st.
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// failureTree is the state behind one viewer session
type failureTree struct {
	results  *domain.TestResultsOutput
	resolved map[int]bool
	groups   []fileGroup
	root     *tview.TreeNode
}

// nodeRef is attached to every tree node. A test node covers one failure,
// a module or class node covers all failures below it.
type nodeRef struct {
	label    string // module path or class scope, empty for test nodes
	failures []int
}

func newFailureTree(results *domain.TestResultsOutput) *failureTree {
	ft := &failureTree{
		results:  results,
		resolved: make(map[int]bool),
		groups:   groupFailures(results.Details),
		root:     tview.NewTreeNode("failures"),
	}
	for i, f := range results.Details {
		if f.Resolved {
			ft.resolved[i] = true
		}
	}

	for _, g := range ft.groups {
		fileNode := tview.NewTreeNode("").
			SetReference(&nodeRef{label: g.File, failures: g.Failures()}).
			SetColor(tcell.ColorAqua)
		for _, s := range g.Scopes {
			parent := fileNode
			if s.Scope != "" {
				parent = tview.NewTreeNode("").SetReference(&nodeRef{label: s.Scope, failures: s.Failures})
				fileNode.AddChild(parent)
			}
			for _, i := range s.Failures {
				parent.AddChild(tview.NewTreeNode("").SetReference(&nodeRef{failures: []int{i}}))
			}
		}
		ft.root.AddChild(fileNode)
	}
	ft.relabel(ft.root)
	return ft
}

// relabel refreshes the text of node and everything below it
func (ft *failureTree) relabel(node *tview.TreeNode) {
	if ref, ok := node.GetReference().(*nodeRef); ok {
		if ref.label == "" {
			i := ref.failures[0]
			node.SetText(failureLabel(ft.results.Details[i], i, ft.resolved[i]))
		} else {
			node.SetText(groupLabel(ref.label, ref.failures, ft.resolved))
		}
	}
	for _, child := range node.GetChildren() {
		ft.relabel(child)
	}
}

// toggle flips the resolved mark of every failure under node. A group whose
// failures are all resolved is reopened, otherwise all of them are resolved.
func (ft *failureTree) toggle(node *tview.TreeNode) bool {
	ref, ok := node.GetReference().(*nodeRef)
	if !ok {
		return false
	}
	mark := countUnresolved(ref.failures, ft.resolved) > 0
	for _, i := range ref.failures {
		ft.resolved[i] = mark
	}
	ft.relabel(ft.root)
	return true
}

// sync copies the resolved marks back onto the stored failures
func (ft *failureTree) sync() {
	for i := range ft.results.Details {
		ft.results.Details[i].Resolved = ft.resolved[i]
	}
}

func (ft *failureTree) header() string {
	all := make([]int, len(ft.results.Details))
	for i := range all {
		all[i] = i
	}
	return fmt.Sprintf(" pytest failures: %d in %d module(s), %d unresolved | ↑↓ navigate, Enter fold, [yellow]R[white] resolve, → details, ← back, q quit ",
		len(all), len(ft.groups), countUnresolved(all, ft.resolved))
}

// View opens the failure browser and blocks until the user quits
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	ft := newFailureTree(results)
	app := tview.NewApplication()

	tree := tview.NewTreeView().
		SetRoot(ft.root).
		SetTopLevel(1).
		SetGraphicsColor(tcell.ColorDarkCyan)
	tree.SetBorder(true).SetTitle(" Failures ")

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	detailsView.SetBorder(true).SetTitle(" Details ")

	show := func(node *tview.TreeNode) {
		headerView.SetText(ft.header())
		ref, ok := node.GetReference().(*nodeRef)
		if !ok {
			return
		}
		if ref.label != "" {
			statsView.SetText(fmt.Sprintf("[cyan]%s[white]", tview.Escape(ref.label)))
			detailsView.SetText(formatGroupSummary(results.Details, ref.failures, ft.resolved))
			return
		}
		failure := results.Details[ref.failures[0]]
		statsView.SetText(formatFailureStats(failure))
		detailsView.SetText(formatFailureDetails(failure))
	}

	tree.SetChangedFunc(show)
	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		if len(node.GetChildren()) > 0 {
			node.SetExpanded(!node.IsExpanded())
			return
		}
		app.SetFocus(detailsView)
	})

	tree.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'r', 'R':
				node := tree.GetCurrentNode()
				if node != nil && ft.toggle(node) {
					ft.sync()
					if err := ev.storage.SaveOutput(results); err != nil {
						slog.Warn("save resolved status", "err", err)
					}
					show(node)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(tree)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 2, 0, false).
		AddItem(detailsView, 0, 1, false)
	body := tview.NewFlex().
		AddItem(tree, 0, 1, true).
		AddItem(rightSide, 0, 2, false)
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(body, 0, 1, true)

	if children := ft.root.GetChildren(); len(children) > 0 {
		tree.SetCurrentNode(children[0])
		show(children[0])
	}

	if err := app.SetRoot(layout, true).SetFocus(tree).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatGroupSummary lists the node ids below a module or class node
func formatGroupSummary(details []domain.TestFailure, indexes []int, resolved map[int]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]%d of %d unresolved[white]\n\n", countUnresolved(indexes, resolved), len(indexes))
	for _, i := range indexes {
		id := details[i].NodeID
		if id == "" {
			id = details[i].TestName
		}
		mark := "[red]✗[white]"
		if resolved[i] {
			mark = "[gray]✓[white]"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, tview.Escape(id))
	}
	return b.String()
}

// formatFailureDetails renders the pytest report of one failure with tview color tags
func formatFailureDetails(failure domain.TestFailure) string {
	var b strings.Builder

	title := failure.NodeID
	if title == "" {
		title = failure.TestName
	}
	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(title))
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(&b, "[yellow]Raised at:[white] %s:%d\n\n", tview.Escape(failure.File), failure.Line)
	}
	if failure.Message != "" {
		fmt.Fprintf(&b, "[yellow]Error:[white]\n%s\n\n", tview.Escape(failure.Message))
	}
	if failure.ErrorDetails != "" {
		fmt.Fprintf(&b, "[yellow]Traceback:[white]\n%s\n\n", tview.Escape(failure.ErrorDetails))
	}
	if n := len(failure.StackTrace); n > 0 {
		b.WriteString("[yellow]Stack:[white]\n")
		for _, frame := range failure.StackTrace[:min(n, maxStackLines)] {
			fmt.Fprintf(&b, "  %s\n", tview.Escape(frame))
		}
		if n > maxStackLines {
			fmt.Fprintf(&b, "  [gray]... %d more[white]\n", n-maxStackLines)
		}
	}
	return b.String()
}

// formatFailureStats renders the module, scope and test of one failure on a single line
func formatFailureStats(failure domain.TestFailure) string {
	file, scope, name := failureScope(failure)
	if file == "" {
		file = "unknown"
	}
	line := "[cyan]module:[white] " + tview.Escape(file)
	if scope != "" {
		line += "  [cyan]class:[white] " + tview.Escape(scope)
	}
	return line + "  [cyan]test:[white] " + tview.Escape(name) + "\n"
}
