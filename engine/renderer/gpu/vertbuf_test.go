package gpu

import (
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLayerBuf(t *testing.T, vertexLen int) *VertBuf {
	f := VertFormat{}
	f.Deinterleave()
	f.AddAttr("a", VertAttrTypeSFloat32x4)
	f.AddAttr("b", VertAttrTypeSNorm10_10_10_2)
	vb := NewVertBuf("test", f, UsageStatic, ResidencyHost)
	require.NoError(t, vb.DataAlloc(vertexLen))
	return vb
}

func TestVertBufDeinterleavedLayout(t *testing.T) {
	vb := twoLayerBuf(t, 3)
	assert.Equal(t, 3*20, vb.Size())
	assert.Equal(t, vb.Size(), vb.ByteSize())
	assert.True(t, vb.IsDirty())

	base, step := vb.AttrByteOffset(0)
	assert.Equal(t, 0, base)
	assert.Equal(t, 16, step)
	base, step = vb.AttrByteOffset(1)
	assert.Equal(t, 48, base)
	assert.Equal(t, 4, step)
}

func TestVertBufInterleavedLayout(t *testing.T) {
	f := VertFormat{}
	f.AddAttr("a", VertAttrTypeSFloat32)
	f.AddAttr("b", VertAttrTypeSNorm16x4)
	vb := NewVertBuf("test", f, UsageStatic, ResidencyHost)
	require.NoError(t, vb.DataAlloc(2))

	base, step := vb.AttrByteOffset(1)
	assert.Equal(t, 4, base)
	assert.Equal(t, 12, step)
}

func TestAttrViewRoundTrip(t *testing.T) {
	vb := twoLayerBuf(t, 2)
	a, err := vb.Attr(0)
	require.NoError(t, err)
	b, err := vb.AttrNamed("b")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	require.NoError(t, a.SetFloat4(1, [4]float32{1, 2, 3, -1}))
	got, err := a.Float4(1)
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 2, 3, -1}, got)

	p := PackedNormal{X: 100, Y: -100, Z: 0, W: 1}
	require.NoError(t, b.SetPackedNormal(0, p))
	gotP, err := b.PackedNormal(0)
	require.NoError(t, err)
	assert.Equal(t, p, gotP)

	// Writing b must not touch a.
	first, err := a.Float4(0)
	require.NoError(t, err)
	assert.Equal(t, [4]float32{}, first)
}

func TestAttrViewErrors(t *testing.T) {
	vb := twoLayerBuf(t, 2)
	a, err := vb.Attr(0)
	require.NoError(t, err)

	assert.ErrorIs(t, a.SetShort4(0, Short4{}), core.ErrTypeMismatch)
	assert.ErrorIs(t, a.SetFloat4(2, [4]float32{}), core.ErrOutOfBounds)
	assert.ErrorIs(t, a.SetFloat4(-1, [4]float32{}), core.ErrOutOfBounds)

	_, err = vb.Attr(5)
	assert.ErrorIs(t, err, core.ErrOutOfBounds)
	_, err = vb.AttrNamed("missing")
	assert.ErrorIs(t, err, core.ErrOutOfBounds)

	vb.Discard()
	assert.True(t, vb.IsDiscarded())
	_, err = vb.Attr(0)
	assert.ErrorIs(t, err, core.ErrBufferDiscarded)
	assert.ErrorIs(t, vb.DataAlloc(1), core.ErrBufferDiscarded)
}

func TestReserveHasNoHostStorage(t *testing.T) {
	f := NewVertFormatFromAttr("tan", VertAttrTypeSFloat32x4)
	vb := NewVertBuf("dev", f, UsageDeviceOnly, ResidencyDevice)
	vb.Reserve(10)
	assert.Equal(t, 10, vb.VertexLen())
	assert.Equal(t, 0, vb.Size())
	assert.Equal(t, 160, vb.ByteSize())
}
