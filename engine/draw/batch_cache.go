package draw

import (
	"sync"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
)

/**
 * @brief Per-mesh draw state: the layers requested by batches and the
 * buffers extracted for them.
 */
type MeshBatchCache struct {
	/** @brief The layers the current buffers were extracted with. */
	Used CustomDataUsed
	/** @brief The extracted tangent buffer, nil until the first extraction. */
	Tangents *gpu.VertBuf
	/** @brief Subdivision topology, only built when subdivision is enabled. */
	SubdivCache *subdiv.Cache

	mutex      sync.Mutex
	requested  CustomDataUsed
	generation uint32
	dirty      bool
}

func NewMeshBatchCache() *MeshBatchCache {
	return &MeshBatchCache{dirty: true}
}

// RequestTangents adds layers to the next extraction. Requests accumulate
// until the cache is cleared.
func (c *MeshBatchCache) RequestTangents(used CustomDataUsed) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.requested.Covers(used) {
		c.requested = c.requested.Merge(used)
		c.dirty = true
	}
}

// Invalidate forces the next EnsureTangents call to extract again.
func (c *MeshBatchCache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.dirty = true
}

// ClearRequests drops every accumulated request.
func (c *MeshBatchCache) ClearRequests() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.requested = CustomDataUsed{}
	c.dirty = true
}

func (c *MeshBatchCache) needsUpdate(mr mesh.RenderData) bool {
	return c.dirty || c.Tangents == nil || c.generation != mr.Generation()
}

/**
 * @brief Returns the tangent buffer of mr, extracting it again when requests
 * or geometry changed. With subdivLevel > 0 the subdivided path is used.
 */
func (e *Extractor) EnsureTangents(mr mesh.RenderData, c *MeshBatchCache, useHQ bool, subdivLevel int) (*gpu.VertBuf, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.needsUpdate(mr) {
		return c.Tangents, nil
	}

	// Extraction reads the request from Used, restored if anything fails.
	previous := c.Used
	c.Used = c.requested
	var (
		vbo *gpu.VertBuf
		err error
	)
	if subdivLevel > 0 {
		if c.SubdivCache == nil || c.SubdivCache.Level != subdivLevel || !c.SubdivCache.IsValidFor(mr) {
			var sc *subdiv.Cache
			if sc, err = subdiv.NewCache(mr, subdivLevel); err == nil {
				c.SubdivCache = sc
			}
		}
		if err == nil {
			vbo, err = e.ExtractTangentsSubdiv(mr, c.SubdivCache, c)
		}
	} else {
		vbo, err = e.ExtractTangents(mr, c, useHQ)
	}
	if err != nil {
		c.Used = previous
		return nil, err
	}

	if err := e.backend.VertBufUpload(vbo); err != nil {
		e.backend.VertBufDiscard(vbo)
		c.Used = previous
		return nil, err
	}
	if c.Tangents != nil {
		e.backend.VertBufDiscard(c.Tangents)
	}
	c.Tangents = vbo
	c.generation = mr.Generation()
	c.dirty = false
	core.LogDebug("tangent buffer of '%s' updated: %d vertices, %d attributes", mr.Name(), vbo.VertexLen(), vbo.Format().AttrLen())
	return vbo, nil
}

// Free releases the buffers of the cache.
func (e *Extractor) Free(c *MeshBatchCache) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.Tangents != nil {
		e.backend.VertBufDiscard(c.Tangents)
		c.Tangents = nil
	}
	c.SubdivCache = nil
	c.dirty = true
}
