package changeset

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"ptc/internal/domain"
)

// Fingerprint returns a stable hash of the files and names of a change set, in order
func Fingerprint(cs *domain.ChangeSet) string {
	h := xxh3.New()
	for _, entry := range cs.Entries() {
		h.WriteString(entry.Path)
		h.Write([]byte{0})
		for _, name := range entry.Names {
			h.WriteString(name)
			h.Write([]byte{1})
		}
		h.Write([]byte{2})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
