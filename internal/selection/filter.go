// Package selection partitions collected test items against a change set.
package selection

import (
	"path/filepath"
	"strings"

	"ptc/internal/domain"
)

// Select decides for every item whether it runs.
//
// An item is compared with every changed file whose path contains the item's
// location path. Each changed name then either includes the item (it equals the
// item's name or its enclosing class) or marks it deselected. Items compared with
// no changed file end up in Unevaluated.
func Select(cs *domain.ChangeSet, items []domain.TestItem) domain.SelectionResult {
	var result domain.SelectionResult
	var run []domain.TestItem
	entries := cs.Entries()

	for _, item := range items {
		evaluated := false
		location := filepath.ToSlash(item.Path)
		for _, entry := range entries {
			if !strings.Contains(filepath.ToSlash(entry.Path), location) {
				continue
			}
			evaluated = true
			for _, name := range entry.Names {
				if matches(item, name) {
					run = append(run, item)
					continue
				}
				result.Deselected = append(result.Deselected, item)
			}
		}
		if !evaluated {
			result.Unevaluated = append(result.Unevaluated, item)
		}
	}

	result.Run = removeDuplicates(run)
	return result
}

func matches(item domain.TestItem, name string) bool {
	if item.Class != "" && name == item.Class {
		return true
	}
	return name == item.Name
}

func removeDuplicates(items []domain.TestItem) []domain.TestItem {
	seen := make(map[string]struct{}, len(items))
	var unique []domain.TestItem
	for _, item := range items {
		id := item.NodeID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
