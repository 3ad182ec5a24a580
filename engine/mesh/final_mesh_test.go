package mesh

import (
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadAndTriangle is a unit quad in the XY plane with a triangle attached to its right edge.
func quadAndTriangle(t *testing.T) *FinalMesh {
	positions := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 0, 0),
		math.NewVec3(1, 1, 0),
		math.NewVec3(0, 1, 0),
		math.NewVec3(2, 0.5, 0),
	}
	m, err := NewFinalMesh("quad", positions, []int{0, 4, 7}, []int{0, 1, 2, 3, 1, 4, 2})
	require.NoError(t, err)
	return m
}

func TestNewFinalMesh(t *testing.T) {
	m := quadAndTriangle(t)
	assert.Equal(t, ExtractTypeMesh, m.Kind())
	assert.Equal(t, 5, m.VertsNum())
	assert.Equal(t, 7, m.CornersNum())
	assert.Equal(t, 2, m.FacesNum())
	assert.Equal(t, 7, m.CornerData().Len())
	assert.Equal(t, 5, m.VertData().Len())
	assert.Equal(t, uint32(1), m.Generation())

	start, end := m.FaceCorners(1)
	assert.Equal(t, 4, start)
	assert.Equal(t, 7, end)

	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}}, m.CornerTris)
	assert.Equal(t, []int{0, 0, 1}, m.CornerTriFaces)
	for _, n := range m.CornerNormals {
		assert.True(t, n.Compare(math.NewVec3(0, 0, 1), 1e-6))
	}
}

func TestNewFinalMeshInvalid(t *testing.T) {
	positions := []math.Vec3{{}, {X: 1}, {Y: 1}}

	_, err := NewFinalMesh("bad", positions, []int{0, 2}, []int{0, 1})
	assert.ErrorIs(t, err, core.ErrInvalidMesh)

	_, err = NewFinalMesh("bad", positions, []int{0, 3}, []int{0, 1, 5})
	assert.ErrorIs(t, err, core.ErrInvalidMesh)

	_, err = NewFinalMesh("bad", positions, []int{0, 4}, []int{0, 1, 2})
	assert.ErrorIs(t, err, core.ErrInvalidMesh)

	empty, err := NewFinalMesh("empty", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.CornersNum())
	assert.Equal(t, 0, empty.FacesNum())
}

func TestSharpFaces(t *testing.T) {
	positions := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 0, 0),
		math.NewVec3(1, 1, 0),
		math.NewVec3(0, 1, 1),
	}
	m, err := NewFinalMesh("fold", positions, []int{0, 3, 6}, []int{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)

	// Smooth: shared vertices get the averaged normal.
	assert.Equal(t, m.CornerNormals[0], m.CornerNormals[3])

	require.NoError(t, m.SetSharpFaces([]bool{true, true}))
	assert.Equal(t, m.FaceNormals[0], m.CornerNormals[0])
	assert.Equal(t, m.FaceNormals[1], m.CornerNormals[3])
	assert.NotEqual(t, m.CornerNormals[0], m.CornerNormals[3])

	assert.ErrorIs(t, m.SetSharpFaces([]bool{true}), core.ErrInvalidMesh)
}

func TestCustomNormals(t *testing.T) {
	m := quadAndTriangle(t)
	computed := append([]math.Vec3(nil), m.CornerNormals...)
	gen := m.Generation()

	assert.ErrorIs(t, m.SetCustomNormals(make([]math.Vec3, 2)), core.ErrInvalidMesh)
	assert.False(t, m.HasCustomNormals())

	normals := make([]math.Vec3, m.CornersNum())
	for c := range normals {
		normals[c] = math.NewVec3(0, 3, 0)
	}
	require.NoError(t, m.SetCustomNormals(normals))
	assert.True(t, m.HasCustomNormals())
	assert.NotEqual(t, gen, m.Generation())
	for _, n := range m.CornerNormals {
		assert.Equal(t, math.NewVec3(0, 1, 0), n)
	}
	// Sharp flags do not override authored normals.
	require.NoError(t, m.SetSharpFaces([]bool{true, true}))
	assert.Equal(t, math.NewVec3(0, 1, 0), m.CornerNormals[0])

	require.NoError(t, m.SetCustomNormals(nil))
	require.NoError(t, m.SetSharpFaces(nil))
	assert.Equal(t, computed, m.CornerNormals)
}

func TestCustomDataLayers(t *testing.T) {
	m := quadAndTriangle(t)
	cd := m.CornerData()
	assert.Equal(t, -1, cd.ActiveUVLayer())
	assert.Equal(t, -1, cd.RenderUVLayer())

	i, err := cd.AddUVLayer("UVMap", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Len(t, cd.UVLayer(0), 7)

	_, err = cd.AddUVLayer("Second", make([]math.Vec2, 7))
	require.NoError(t, err)
	assert.Equal(t, 0, cd.ActiveUVLayer())
	assert.Equal(t, 0, cd.RenderUVLayer())
	assert.Equal(t, 1, cd.UVLayerIndex("Second"))
	assert.Equal(t, "Second", cd.UVLayerName(1))
	assert.Equal(t, "", cd.UVLayerName(2))
	assert.Nil(t, cd.UVLayerNamed("missing"))

	require.NoError(t, cd.SetActiveUVLayer(1))
	assert.Equal(t, 1, cd.ActiveUVLayer())
	assert.ErrorIs(t, cd.SetRenderUVLayer(4), core.ErrOutOfBounds)

	_, err = cd.AddUVLayer("", nil)
	assert.ErrorIs(t, err, core.ErrInvalidMesh)
	_, err = cd.AddUVLayer("short", make([]math.Vec2, 2))
	assert.ErrorIs(t, err, core.ErrInvalidMesh)

	for cd.UVLayerCount() < MaxUVLayers {
		_, err = cd.AddUVLayer("extra", nil)
		require.NoError(t, err)
	}
	_, err = cd.AddUVLayer("overflow", nil)
	assert.ErrorIs(t, err, core.ErrInvalidMesh)
}

func TestCustomDataUniqueUVNames(t *testing.T) {
	cd := quadAndTriangle(t).CornerData()
	for _, name := range []string{"UV", "UV", "UV", "UV.001", "UV.7"} {
		_, err := cd.AddUVLayer(name, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, "UV", cd.UVLayerName(0))
	assert.Equal(t, "UV.001", cd.UVLayerName(1))
	assert.Equal(t, "UV.002", cd.UVLayerName(2))
	assert.Equal(t, "UV.003", cd.UVLayerName(3))
	assert.Equal(t, "UV.7", cd.UVLayerName(4))
	assert.Equal(t, 1, cd.UVLayerIndex("UV.001"))
}

func TestVertOrcoLayer(t *testing.T) {
	m := quadAndTriangle(t)
	vd := m.VertData()
	assert.Nil(t, vd.Orco())
	assert.ErrorIs(t, vd.SetOrco(make([]math.Vec3, 2)), core.ErrInvalidMesh)
	require.NoError(t, vd.SetOrco(make([]math.Vec3, 5)))
	assert.Len(t, vd.Orco(), 5)
	require.NoError(t, vd.SetOrco(nil))
	assert.Nil(t, vd.Orco())
}
