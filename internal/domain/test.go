package domain

// TestItem is a single collected pytest test
type TestItem struct {
	Path  string // Location path relative to the project root, slash separated
	Name  string // Test function name
	Class string // Enclosing test class name, empty for module-level tests
	Line  int    // 1-based line of the definition
}

// NodeID returns the pytest node id of the item
func (t TestItem) NodeID() string {
	if t.Class != "" {
		return t.Path + "::" + t.Class + "::" + t.Name
	}
	return t.Path + "::" + t.Name
}

// TestJob is the unit of work handed to a worker: one test file and the node ids to run in it.
// An empty NodeIDs list runs the whole file.
type TestJob struct {
	File    string
	NodeIDs []string
}
