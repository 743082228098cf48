package domain

// SelectionResult partitions collected items against a ChangeSet.
//
// Run is authoritative for execution and holds no duplicates. Deselected holds
// every exclusion mark, so an item may appear in it several times and may also
// be in Run. Unevaluated items matched no changed file and are not executed.
type SelectionResult struct {
	Run         []TestItem
	Deselected  []TestItem
	Unevaluated []TestItem
}

// Dropped returns the distinct deselected items that are not part of Run
func (r SelectionResult) Dropped() []TestItem {
	seen := make(map[string]struct{}, len(r.Run))
	for _, item := range r.Run {
		seen[item.NodeID()] = struct{}{}
	}

	var dropped []TestItem
	for _, item := range r.Deselected {
		id := item.NodeID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dropped = append(dropped, item)
	}
	return dropped
}
