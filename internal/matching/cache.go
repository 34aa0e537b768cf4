package matching

import (
	"time"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/normalize"
	"github.com/xrash/smetrics"
)

// pairing threshold for the populate heuristic; JaroWinkler on normalized
// names rarely exceeds this for unrelated tracks.
const populateSimilarity = 0.90

// Cache is the run-scoped mapping from source entity id to destination
// entity id. It grows for the lifetime of one run and is never evicted or
// persisted. The engine runs a single task at a time, so no locking is
// needed; populate before the first read.
type Cache struct {
	ids map[string]string
}

// NewCache creates an empty match cache.
func NewCache() *Cache {
	return &Cache{ids: make(map[string]string)}
}

// Get returns the cached destination id for a source id.
func (c *Cache) Get(sourceID string) (string, bool) {
	id, ok := c.ids[sourceID]
	return id, ok
}

// Put records a resolved correspondence.
func (c *Cache) Put(sourceID, destID string) {
	if sourceID == "" || destID == "" {
		return
	}
	c.ids[sourceID] = destID
}

// Len returns the number of cached correspondences.
func (c *Cache) Len() int {
	return len(c.ids)
}

// Populate seeds the cache by pairing destination tracks already placed in a
// collection with the source tracks they most plausibly correspond to,
// so tracks already migrated are never searched again.
//
// Pairing is positional and best-effort: entry i of the destination list is
// compared against entry i of the source list, first under full track
// equivalence and then under a JaroWinkler name-similarity fallback. A
// playlist that was reordered on the destination side after a previous sync
// can therefore mis-pair similarly named tracks, and the reconciler will
// then see the reordered list as already correct and leave it alone. The
// worst case is a stale order, never a destructive write.
func (c *Cache) Populate(source []models.SourceTrack, dest []models.Track, tolerance time.Duration) {
	n := len(source)
	if len(dest) < n {
		n = len(dest)
	}

	for i := 0; i < n; i++ {
		src, dst := source[i], dest[i]
		if src.ID == "" || dst.ID == "" {
			continue
		}

		if trackEquivalent(src, dst, tolerance) {
			c.Put(src.ID, dst.ID)
			continue
		}

		sim := smetrics.JaroWinkler(normalize.Key(src.Name), normalize.Key(dst.Name), 0.7, 4)
		if sim >= populateSimilarity {
			c.Put(src.ID, dst.ID)
		}
	}
}
