package changeset

import (
	"strings"

	"ptc/internal/domain"
)

// FilterByPathArgs keeps the files whose path contains at least one of args.
// Without args the change set is returned unchanged.
func FilterByPathArgs(cs *domain.ChangeSet, args []string) *domain.ChangeSet {
	if len(args) == 0 {
		return cs
	}

	filtered := domain.NewChangeSet()
	for _, entry := range cs.Entries() {
		for _, arg := range args {
			if strings.Contains(entry.Path, arg) {
				filtered.Set(entry.Path, entry.Names)
				break
			}
		}
	}
	return filtered
}
