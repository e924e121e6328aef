package itemapi

import (
	"strings"

	"github.com/c360/itemstore/item"
)

// assignIdentity settles the record identifier and stamps the creation
// time. A caller-supplied id must be a string that is non-empty after
// trimming; the untrimmed original is what gets stored. A missing id is
// replaced with a fresh v4 UUID. createdAt is always assigned server-side,
// overwriting whatever the caller sent.
//
// Returns the non-empty failure reason when the supplied id is unusable.
func (h *Handler) assignIdentity(rec item.Record) (item.Record, string) {
	if rec.HasID() {
		id, ok := rec.ID()
		if !ok || strings.TrimSpace(id) == "" {
			return nil, reasonBadID
		}
	} else {
		rec.SetID(h.newID())
	}

	rec.StampCreatedAt(h.now())
	return rec, ""
}
