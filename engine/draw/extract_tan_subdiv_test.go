package draw

import (
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubdivLayerOffsetsTile(t *testing.T) {
	m := twoLayerQuad(t)
	c, err := subdiv.NewCache(m, 2)
	require.NoError(t, err)

	stride := c.NumSubdivLoops * 4 * 4
	for pack := 0; pack < 4; pack++ {
		assert.Equal(t, pack*stride, SubdivLayerOffset(c, pack))
		assert.Equal(t, stride, SubdivLayerOffset(c, pack+1)-SubdivLayerOffset(c, pack))
	}
}

func TestExtractTangentsSubdiv(t *testing.T) {
	e, backend := newTestExtractor()
	m := twoLayerQuad(t)
	c, err := subdiv.NewCache(m, 1)
	require.NoError(t, err)
	require.Equal(t, 16, c.NumSubdivLoops)

	vbo, err := e.ExtractTangentsSubdiv(m, c, cacheWith(CustomDataUsed{Tan: 0b11}))
	require.NoError(t, err)
	assert.Equal(t, gpu.ResidencyDevice, vbo.Residency())
	assert.Equal(t, 16, vbo.VertexLen())
	require.Equal(t, 2, vbo.Format().AttrLen())
	assert.Equal(t, gpu.VertAttrTypeSFloat32x4, vbo.Format().Attr(1).Type)
	assert.Equal(t, 1, vbo.Format().AttrIndex(AliasRenderTangent))

	// Each layer lands in its own slice of the device buffer.
	for pack, expected := range [][4]float32{{1, 0, 0, 1}, {-1, 0, 0, -1}} {
		base, _ := vbo.AttrByteOffset(pack)
		assert.Equal(t, SubdivLayerOffset(c, pack), base)
		view, err := vbo.Attr(pack)
		require.NoError(t, err)
		for l := 0; l < c.NumSubdivLoops; l++ {
			f, err := view.Float4(l)
			require.NoError(t, err)
			assertNear4(t, expected, f, 1e-5)
		}
	}

	// The staging buffer is released, uploaded once per layer.
	assert.Equal(t, 1, backend.LiveBuffers())
	uploads, interps := backend.Stats()
	assert.Equal(t, 2, uploads)
	assert.Equal(t, 2, interps)
}

func TestExtractTangentsSubdivOrco(t *testing.T) {
	e, _ := newTestExtractor()
	m := plainQuad(t)
	c, err := subdiv.NewCache(m, 2)
	require.NoError(t, err)

	vbo, err := e.ExtractTangentsSubdiv(m, c, cacheWith(CustomDataUsed{TanOrco: true}))
	require.NoError(t, err)
	require.Equal(t, 1, vbo.Format().AttrLen())
	assert.Equal(t, c.NumSubdivLoops*16, vbo.ByteSize())

	view, err := vbo.Attr(0)
	require.NoError(t, err)
	for l := 0; l < c.NumSubdivLoops; l++ {
		f, err := view.Float4(l)
		require.NoError(t, err)
		assert.Contains(t, []float32{-1, 1}, f[3])
	}
}

func TestExtractTangentsSubdivDummy(t *testing.T) {
	e, _ := newTestExtractor()
	m := plainQuad(t)
	c, err := subdiv.NewCache(m, 1)
	require.NoError(t, err)

	vbo, err := e.ExtractTangentsSubdiv(m, c, cacheWith(CustomDataUsed{}))
	require.NoError(t, err)
	require.Equal(t, 1, vbo.Format().AttrLen())
	assert.Equal(t, DummyAttrName, vbo.Format().Attr(0).Name)
}

func TestExtractTangentsSubdivNoCorners(t *testing.T) {
	m, err := mesh.NewFinalMesh("empty", nil, nil, nil)
	require.NoError(t, err)
	c, err := subdiv.NewCache(m, 1)
	require.NoError(t, err)
	require.Equal(t, 0, c.NumSubdivLoops)

	cases := []struct {
		used CustomDataUsed
		attr string
	}{
		{CustomDataUsed{}, DummyAttrName},
		{CustomDataUsed{TanOrco: true}, TangentAttrName("")},
		{CustomDataUsed{Tan: 1}, DummyAttrName},
	}
	for _, tc := range cases {
		e, backend := newTestExtractor()
		vbo, err := e.ExtractTangentsSubdiv(m, c, cacheWith(tc.used))
		require.NoError(t, err, "%+v", tc.used)
		assert.Equal(t, 0, vbo.VertexLen())
		require.Equal(t, 1, vbo.Format().AttrLen())
		assert.Equal(t, tc.attr, vbo.Format().Attr(0).Name)
		assert.Equal(t, 1, backend.LiveBuffers(), "staging buffer released")
	}
}

func TestExtractTangentsSubdivStaleCache(t *testing.T) {
	e, _ := newTestExtractor()
	c, err := subdiv.NewCache(twoLayerQuad(t), 1)
	require.NoError(t, err)

	positions := []math.Vec3{{}, {X: 1}, {Y: 1}}
	tri, err := mesh.NewFinalMesh("tri", positions, []int{0, 3}, []int{0, 1, 2})
	require.NoError(t, err)
	_, err = e.ExtractTangentsSubdiv(tri, c, cacheWith(CustomDataUsed{}))
	assert.ErrorIs(t, err, core.ErrInvalidMesh)
}
