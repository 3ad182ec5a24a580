package subdiv

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/core"
	kmath "github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadAndTriangle has 7 corners: a quad (0-3) and a triangle (4-6).
func quadAndTriangle(t *testing.T) *mesh.FinalMesh {
	positions := []kmath.Vec3{
		kmath.NewVec3(0, 0, 0),
		kmath.NewVec3(1, 0, 0),
		kmath.NewVec3(1, 1, 0),
		kmath.NewVec3(0, 1, 0),
		kmath.NewVec3(2, 0.5, 0),
	}
	m, err := mesh.NewFinalMesh("quad", positions, []int{0, 4, 7}, []int{0, 1, 2, 3, 1, 4, 2})
	require.NoError(t, err)
	return m
}

func TestNewCacheLoopCounts(t *testing.T) {
	m := quadAndTriangle(t)
	for level := 1; level <= 3; level++ {
		c, err := NewCache(m, level)
		require.NoError(t, err)
		quadsPerSide := 1 << (2 * (level - 1))
		assert.Equal(t, (4+3)*quadsPerSide, c.NumQuads(), "level %d", level)
		assert.Equal(t, c.NumQuads()*4, c.NumSubdivLoops, "level %d", level)
		assert.Equal(t, 7, c.NumCoarseCorners)
		assert.True(t, c.IsValidFor(m))
	}
}

func TestNewCacheInvalidLevel(t *testing.T) {
	m := quadAndTriangle(t)
	_, err := NewCache(m, 0)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	_, err = NewCache(m, core.MaxSubdivLevel+1)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestStencils(t *testing.T) {
	m := quadAndTriangle(t)
	c, err := NewCache(m, 2)
	require.NoError(t, err)

	for l := 0; l < c.NumSubdivLoops; l++ {
		sum := float32(0)
		for _, e := range c.Stencil(l) {
			sum += e.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-5, "loop %d", l)
	}

	// The first loop of every level stays on the first coarse corner.
	assert.Equal(t, Stencil{{Corner: 0, Weight: 1}}, c.Stencil(0))
	assert.Equal(t, 0, c.CoarseFace(0))
	assert.Equal(t, 1, c.CoarseFace(c.NumQuads()-1))

	m.Update()
	assert.False(t, c.IsValidFor(m))
}

func TestEmptyMesh(t *testing.T) {
	m, err := mesh.NewFinalMesh("empty", nil, nil, nil)
	require.NoError(t, err)
	c, err := NewCache(m, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, c.NumSubdivLoops)
	assert.NoError(t, Interpolate(c, nil, nil, 4, 0))
}

func putFloats(b []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
}

func getFloat(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestInterpolate(t *testing.T) {
	m := quadAndTriangle(t)
	c, err := NewCache(m, 1)
	require.NoError(t, err)

	// One component per corner: the corner index.
	src := make([]byte, 7*4)
	putFloats(src, 0, 1, 2, 3, 4, 5, 6)

	const offset = 8
	dst := make([]byte, offset+c.NumSubdivLoops*4)
	require.NoError(t, Interpolate(c, src, dst, 1, offset))

	out := dst[offset:]
	// First quad of the coarse quad: corner 0, mid 0-1, center, mid 3-0.
	assert.InDelta(t, 0.0, getFloat(out, 0), 1e-6)
	assert.InDelta(t, 0.5, getFloat(out, 1), 1e-6)
	assert.InDelta(t, 1.5, getFloat(out, 2), 1e-6)
	assert.InDelta(t, 1.5, getFloat(out, 3), 1e-6)
	// First quad of the triangle starts at loop 16.
	assert.InDelta(t, 4.0, getFloat(out, 16), 1e-6)
	assert.InDelta(t, 5.0, getFloat(out, 18), 1e-6)
	// Bytes before the offset are untouched.
	assert.Equal(t, make([]byte, offset), dst[:offset])
}

func TestInterpolateBounds(t *testing.T) {
	m := quadAndTriangle(t)
	c, err := NewCache(m, 1)
	require.NoError(t, err)

	src := make([]byte, 7*16)
	dst := make([]byte, c.NumSubdivLoops*16)
	assert.NoError(t, Interpolate(c, src, dst, 4, 0))
	assert.ErrorIs(t, Interpolate(c, src, dst, 0, 0), core.ErrOutOfBounds)
	assert.ErrorIs(t, Interpolate(c, src[:16], dst, 4, 0), core.ErrOutOfBounds)
	assert.ErrorIs(t, Interpolate(c, src, dst, 4, 4), core.ErrOutOfBounds)
	assert.ErrorIs(t, Interpolate(c, src, dst, 4, -4), core.ErrOutOfBounds)
}
