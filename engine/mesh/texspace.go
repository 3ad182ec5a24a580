package mesh

import (
	"github.com/spaghettifunk/meshdraw/engine/math"
)

/**
 * @brief The texture space of a mesh: a box used to map positions to
 * normalized original coordinates.
 */
type Texspace struct {
	/** @brief The centre of the box. */
	Location math.Vec3
	/** @brief The half extent of the box on each axis. Never zero. */
	Size math.Vec3
}

// TexspaceFromPositions computes the automatic texture space from the bounds of positions.
// An empty mesh gets the unit box around the origin.
func TexspaceFromPositions(positions []math.Vec3) Texspace {
	extents := math.Extents3D{
		Min: math.NewVec3(-1, -1, -1),
		Max: math.NewVec3(1, 1, 1),
	}
	if len(positions) > 0 {
		extents = math.ExtentsFromPoints(positions)
	}
	size := extents.HalfSize()
	return Texspace{
		Location: extents.Center(),
		Size:     math.NewVec3(safeSize(size.X), safeSize(size.Y), safeSize(size.Z)),
	}
}

func safeSize(s float32) float32 {
	switch {
	case s == 0:
		return 1.0
	case s > 0 && s < 0.00001:
		return 0.00001
	case s < 0 && s > -0.00001:
		return -0.00001
	}
	return s
}

// Normalize maps co into the texture space, where the box spans [-1, 1] on each axis.
func (t Texspace) Normalize(co math.Vec3) math.Vec3 {
	return co.Sub(t.Location).Div(t.Size)
}

// Denormalize is the inverse of Normalize.
func (t Texspace) Denormalize(co math.Vec3) math.Vec3 {
	return math.NewVec3(
		co.X*t.Size.X+t.Location.X,
		co.Y*t.Size.Y+t.Location.Y,
		co.Z*t.Size.Z+t.Location.Z)
}

// OrcoVertsTransform normalizes orco in place with the texture space of m.
// With invert set, normalized coordinates are mapped back to object space.
func OrcoVertsTransform(m RenderData, orco []math.Vec3, invert bool) {
	ts := m.Texspace()
	for i := range orco {
		if invert {
			orco[i] = ts.Denormalize(orco[i])
		} else {
			orco[i] = ts.Normalize(orco[i])
		}
	}
}
