package domain

// ChangeKind is the kind of change a file went through between two commits.
// Values follow the git status letters.
type ChangeKind string

const (
	Modified ChangeKind = "M"
	Added    ChangeKind = "A"
	Renamed  ChangeKind = "R"
)

// ChangeRecord describes one file touched between two commits
type ChangeRecord struct {
	Kind    ChangeKind
	OldPath string // Repository-relative path before the change, empty for added files
	NewPath string // Repository-relative path after the change
	Diff    []byte // Unified diff body for this file only, without file headers
}

// Path returns the path a record is keyed on: the old path for modifications,
// the new path otherwise.
func (r ChangeRecord) Path() string {
	if r.Kind == Modified && r.OldPath != "" {
		return r.OldPath
	}
	return r.NewPath
}

// ChangeSetEntry is a single file of a ChangeSet
type ChangeSetEntry struct {
	Path  string
	Names []string
}

// ChangeSet maps absolute, slash-separated test file paths to the names changed in them.
// Iteration follows insertion order; overwriting a key keeps its position.
type ChangeSet struct {
	keys  []string
	names map[string][]string
}

// NewChangeSet creates an empty ChangeSet
func NewChangeSet() *ChangeSet {
	return &ChangeSet{names: make(map[string][]string)}
}

// Set inserts or overwrites the names for path
func (c *ChangeSet) Set(path string, names []string) {
	if _, ok := c.names[path]; !ok {
		c.keys = append(c.keys, path)
	}
	c.names[path] = names
}

// Get returns the names for path
func (c *ChangeSet) Get(path string) ([]string, bool) {
	names, ok := c.names[path]
	return names, ok
}

// Has reports whether path is a key of the set
func (c *ChangeSet) Has(path string) bool {
	_, ok := c.names[path]
	return ok
}

// Delete removes path from the set
func (c *ChangeSet) Delete(path string) {
	if _, ok := c.names[path]; !ok {
		return
	}
	delete(c.names, path)
	for i, k := range c.keys {
		if k == path {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of files in the set
func (c *ChangeSet) Len() int {
	return len(c.keys)
}

// Keys returns the file paths in insertion order
func (c *ChangeSet) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Entries returns the files and their names in insertion order
func (c *ChangeSet) Entries() []ChangeSetEntry {
	entries := make([]ChangeSetEntry, 0, len(c.keys))
	for _, k := range c.keys {
		entries = append(entries, ChangeSetEntry{Path: k, Names: c.names[k]})
	}
	return entries
}
