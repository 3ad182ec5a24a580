package subdiv

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
)

// StencilEntry is the contribution of one coarse corner to a subdivision loop.
type StencilEntry struct {
	Corner int
	Weight float32
}

// Stencil expresses a subdivision loop as a weighted sum of coarse corners.
type Stencil []StencilEntry

/**
 * @brief Face-varying topology of a mesh subdivided a fixed number of times.
 * Every n-gon splits into n quads at the first level and every quad into 4
 * quads at the following ones. Values are interpolated linearly.
 */
type Cache struct {
	/** @brief The number of subdivision levels. */
	Level int
	/** @brief The number of corners of the coarse mesh the cache was built from. */
	NumCoarseCorners int
	/** @brief The number of loops after subdivision, 4 per quad. */
	NumSubdivLoops int

	stencils   []Stencil
	quadFaces  []int
	generation uint32
}

// NewCache builds the stencils of m subdivided level times.
func NewCache(m mesh.RenderData, level int) (*Cache, error) {
	if level < 1 || level > core.MaxSubdivLevel {
		err := fmt.Errorf("%w: subdivision level %d not in [1, %d]", core.ErrInvalidConfig, level, core.MaxSubdivLevel)
		core.LogError(err.Error())
		return nil, err
	}
	c := &Cache{
		Level:            level,
		NumCoarseCorners: m.CornersNum(),
		generation:       m.Generation(),
	}
	poly := make([]Stencil, 0, 8)
	for f := 0; f < m.FacesNum(); f++ {
		start, end := m.FaceCorners(f)
		poly = poly[:0]
		for corner := start; corner < end; corner++ {
			poly = append(poly, Stencil{{Corner: corner, Weight: 1.0}})
		}
		c.split(f, poly, level)
	}
	c.NumSubdivLoops = len(c.stencils)
	core.LogDebug("subdivision cache for '%s': level %d, %d coarse corners, %d loops", m.Name(), level, c.NumCoarseCorners, c.NumSubdivLoops)
	return c, nil
}

// split emits the quads of poly once depth reaches zero.
func (c *Cache) split(face int, poly []Stencil, depth int) {
	if depth == 0 {
		c.stencils = append(c.stencils, poly...)
		c.quadFaces = append(c.quadFaces, face)
		return
	}
	n := len(poly)
	center := average(poly...)
	mids := make([]Stencil, n)
	for i := 0; i < n; i++ {
		mids[i] = average(poly[i], poly[(i+1)%n])
	}
	for i := 0; i < n; i++ {
		quad := []Stencil{poly[i], mids[i], center, mids[(i+n-1)%n]}
		c.split(face, quad, depth-1)
	}
}

// average merges stencils with equal weights, summing shared corners.
func average(stencils ...Stencil) Stencil {
	w := 1.0 / float32(len(stencils))
	out := make(Stencil, 0, len(stencils[0])*2)
	for _, s := range stencils {
		for _, e := range s {
			found := false
			for k := range out {
				if out[k].Corner == e.Corner {
					out[k].Weight += e.Weight * w
					found = true
					break
				}
			}
			if !found {
				out = append(out, StencilEntry{Corner: e.Corner, Weight: e.Weight * w})
			}
		}
	}
	return out
}

// Stencil returns the weights of subdivision loop l.
func (c *Cache) Stencil(l int) Stencil {
	return c.stencils[l]
}

// NumQuads is the number of faces after subdivision.
func (c *Cache) NumQuads() int {
	return len(c.quadFaces)
}

// CoarseFace returns the coarse face subdivision quad q comes from.
func (c *Cache) CoarseFace(q int) int {
	return c.quadFaces[q]
}

// IsValidFor reports whether the cache still matches the topology of m.
func (c *Cache) IsValidFor(m mesh.RenderData) bool {
	return c.generation == m.Generation() && c.NumCoarseCorners == m.CornersNum()
}
