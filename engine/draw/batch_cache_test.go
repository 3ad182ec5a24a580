package draw

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/renderer/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTangentsReusesBuffer(t *testing.T) {
	e, backend := newTestExtractor()
	m := twoLayerQuad(t)
	c := NewMeshBatchCache()
	c.RequestTangents(CustomDataUsed{Tan: 0b01})

	first, err := e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.False(t, first.IsDirty(), "uploaded")
	assert.Equal(t, CustomDataUsed{Tan: 0b01}, c.Used)

	again, err := e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// A request already covered does not trigger an extraction.
	c.RequestTangents(CustomDataUsed{Tan: 0b01})
	again, err = e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.Same(t, first, again)

	c.RequestTangents(CustomDataUsed{Tan: 0b10})
	second, err := e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, first.IsDiscarded())
	assert.Equal(t, 2, second.Format().AttrLen())
	assert.Equal(t, 1, backend.LiveBuffers())

	// Geometry changes invalidate the buffer.
	m.Update()
	third, err := e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.NotSame(t, second, third)

	c.Invalidate()
	fourth, err := e.EnsureTangents(m, c, false, 0)
	require.NoError(t, err)
	assert.NotSame(t, third, fourth)

	e.Free(c)
	assert.Nil(t, c.Tangents)
	assert.Equal(t, 0, backend.LiveBuffers())
}

func TestEnsureTangentsSubdiv(t *testing.T) {
	e, backend := newTestExtractor()
	m := twoLayerQuad(t)
	c := NewMeshBatchCache()
	c.RequestTangents(CustomDataUsed{Tan: 0b11})

	vbo, err := e.EnsureTangents(m, c, false, 1)
	require.NoError(t, err)
	require.NotNil(t, c.SubdivCache)
	assert.Equal(t, 1, c.SubdivCache.Level)
	assert.Equal(t, c.SubdivCache.NumSubdivLoops, vbo.VertexLen())

	subdivCache := c.SubdivCache
	c.Invalidate()
	_, err = e.EnsureTangents(m, c, false, 1)
	require.NoError(t, err)
	assert.Same(t, subdivCache, c.SubdivCache, "topology unchanged")

	c.Invalidate()
	_, err = e.EnsureTangents(m, c, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.SubdivCache.Level)

	e.Free(c)
	assert.Nil(t, c.SubdivCache)
	assert.Equal(t, 0, backend.LiveBuffers())
}

func TestClearRequests(t *testing.T) {
	e, _ := newTestExtractor()
	m := twoLayerQuad(t)
	c := NewMeshBatchCache()
	c.RequestTangents(CustomDataUsed{Tan: 0b11})
	_, err := e.EnsureTangents(m, c, true, 0)
	require.NoError(t, err)

	c.ClearRequests()
	vbo, err := e.EnsureTangents(m, c, true, 0)
	require.NoError(t, err)
	assert.Equal(t, DummyAttrName, vbo.Format().Attr(0).Name)
}

var errUploadFailed = errors.New("upload failed")

// uploadFailingBackend fails every upload while fail is set.
type uploadFailingBackend struct {
	*memory.Backend
	fail bool
}

func (b *uploadFailingBackend) VertBufUpload(vb *gpu.VertBuf) error {
	if b.fail {
		return errUploadFailed
	}
	return b.Backend.VertBufUpload(vb)
}

func TestEnsureTangentsUploadFailureKeepsBuffer(t *testing.T) {
	backend := &uploadFailingBackend{Backend: memory.New(0)}
	e := NewExtractor(backend, mesh.NewOrcoCache(), nil)
	m := twoLayerQuad(t)
	c := NewMeshBatchCache()
	c.RequestTangents(CustomDataUsed{Tan: 0b01})

	first, err := e.EnsureTangents(m, c, true, 0)
	require.NoError(t, err)

	backend.fail = true
	c.RequestTangents(CustomDataUsed{Tan: 0b10})
	for _, level := range []int{0, 1} {
		_, err = e.EnsureTangents(m, c, true, level)
		assert.ErrorIs(t, err, errUploadFailed)
		assert.Same(t, first, c.Tangents)
		assert.False(t, first.IsDiscarded())
		assert.Equal(t, CustomDataUsed{Tan: 0b01}, c.Used)
		assert.Equal(t, 1, backend.LiveBuffers())
	}

	backend.fail = false
	second, err := e.EnsureTangents(m, c, true, 0)
	require.NoError(t, err)
	assert.Same(t, second, c.Tangents)
	assert.True(t, first.IsDiscarded())
	assert.Equal(t, CustomDataUsed{Tan: 0b11}, c.Used)
	assert.Equal(t, 1, backend.LiveBuffers())
}
