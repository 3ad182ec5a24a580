package draw

import (
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
)

// originalCoords returns the undeformed vertex coordinates of mr: the
// original vertex coordinates of an edit mesh, the positions of a final mesh.
func originalCoords(mr mesh.RenderData) []math.Vec3 {
	switch m := mr.(type) {
	case *mesh.EditMesh:
		return m.VertCos()
	case *mesh.FinalMesh:
		cos := make([]math.Vec3, len(m.Positions))
		copy(cos, m.Positions)
		return cos
	}
	return mr.VertPositions()
}

/**
 * @brief Returns the orco layer of mr, generating it when the mesh carries
 * none. Generated coordinates are normalized to the mesh texture space and
 * stored in cache; with a nil cache they live for this call only.
 */
func orcoCoords(mr mesh.RenderData, cache *mesh.OrcoCache) []math.Vec3 {
	if orco := mr.VertData().Orco(); orco != nil {
		return orco
	}
	compute := func() []math.Vec3 {
		orco := originalCoords(mr)
		mesh.OrcoVertsTransform(mr, orco, false)
		return orco
	}
	if cache == nil {
		return compute()
	}
	return cache.GetOrCompute(mr, compute)
}
