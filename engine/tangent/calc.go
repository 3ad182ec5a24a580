package tangent

import (
	"github.com/spaghettifunk/meshdraw/engine/math"
)

// UVSet is one named source of per-corner texture coordinates.
type UVSet struct {
	Name string
	UVs  []math.Vec2
}

/**
 * @brief Flattened input of the tangent computation. Both mesh
 * representations are reduced to this form.
 */
type Input struct {
	/** @brief One position per vertex. */
	Positions []math.Vec3
	/** @brief The vertex of every corner. */
	CornerVerts []int
	/** @brief Triangulation of the faces as corner indices. */
	CornerTris [][3]int
	/** @brief The shading normal of every corner. */
	CornerNormals []math.Vec3
	/** @brief The UV layers to compute tangents for, in output order. */
	UVSets []UVSet
	/** @brief Original coordinates per vertex. When set, an extra layer named OrcoLayerName is computed last. */
	Orco []math.Vec3
}

// Calc computes one tangent per corner for every UV set, plus the orco layer
// when requested. It never fails: corners without a usable UV gradient get an
// arbitrary tangent perpendicular to their normal.
func Calc(in Input) *Store {
	store := NewStore(len(in.CornerVerts))
	for _, set := range in.UVSets {
		calcLayer(in, set.UVs, store.Add(set.Name))
	}
	if in.Orco != nil {
		uvs := make([]math.Vec2, len(in.CornerVerts))
		for c, v := range in.CornerVerts {
			u, w, _ := math.MapToSphere(in.Orco[v])
			uvs[c] = math.NewVec2(u, w)
		}
		calcLayer(in, uvs, store.Add(OrcoLayerName))
	}
	return store
}

type weldKey struct {
	vert int
	uv   math.Vec2
}

func calcLayer(in Input, uvs []math.Vec2, out [][4]float32) {
	n := len(in.CornerVerts)
	tangents := make([]math.Vec3, n)
	bitangents := make([]math.Vec3, n)

	for _, tri := range in.CornerTris {
		p0 := in.Positions[in.CornerVerts[tri[0]]]
		p1 := in.Positions[in.CornerVerts[tri[1]]]
		p2 := in.Positions[in.CornerVerts[tri[2]]]
		t, b, ok := math.TriangleTangentBasis(p0, p1, p2, uvs[tri[0]], uvs[tri[1]], uvs[tri[2]])
		if !ok {
			continue
		}
		for _, c := range tri {
			tangents[c] = tangents[c].Add(t)
			bitangents[c] = bitangents[c].Add(b)
		}
	}

	// Corners sharing a vertex and a UV coordinate share their tangent.
	groups := make(map[weldKey][]int, n)
	for c := 0; c < n; c++ {
		key := weldKey{vert: in.CornerVerts[c], uv: uvs[c]}
		groups[key] = append(groups[key], c)
	}
	for _, corners := range groups {
		if len(corners) < 2 {
			continue
		}
		var t, b math.Vec3
		for _, c := range corners {
			t = t.Add(tangents[c])
			b = b.Add(bitangents[c])
		}
		for _, c := range corners {
			tangents[c] = t
			bitangents[c] = b
		}
	}

	for c := 0; c < n; c++ {
		normal := in.CornerNormals[c]
		// Gram-Schmidt
		t := tangents[c].Sub(normal.MulScalar(normal.Dot(tangents[c])))
		if t.LengthSquared() < math.K_FLOAT_EPSILON {
			t = math.OrthogonalVec(normal)
			out[c] = [4]float32{t.X, t.Y, t.Z, 1.0}
			continue
		}
		t = t.Normalized()
		sign := float32(1.0)
		if normal.Cross(t).Dot(bitangents[c]) < 0 {
			sign = -1.0
		}
		out[c] = [4]float32{t.X, t.Y, t.Z, sign}
	}
}
