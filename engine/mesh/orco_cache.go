package mesh

import (
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/meshdraw/engine/math"
)

type orcoEntry struct {
	generation uint32
	orco       []math.Vec3
}

// OrcoCache stores generated original coordinates per mesh asset. It is shared
// between extractions and safe for concurrent use; a mesh generation change
// makes its entry stale.
type OrcoCache struct {
	mutex   sync.Mutex
	entries map[uuid.UUID]*orcoEntry
}

func NewOrcoCache() *OrcoCache {
	return &OrcoCache{entries: make(map[uuid.UUID]*orcoEntry)}
}

// GetOrCompute returns the cached coordinates of m, calling compute under the
// cache lock when the entry is missing or stale. The returned slice must not be modified.
func (c *OrcoCache) GetOrCompute(m RenderData, compute func() []math.Vec3) []math.Vec3 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[m.ID()]; ok && e.generation == m.Generation() {
		return e.orco
	}
	orco := compute()
	c.entries[m.ID()] = &orcoEntry{generation: m.Generation(), orco: orco}
	return orco
}

// Invalidate drops the entry of the given mesh.
func (c *OrcoCache) Invalidate(id uuid.UUID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, id)
}

func (c *OrcoCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}
