package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrFormat(t *testing.T) {
	f, err := AttrFormat(gpu.VertAttrTypeSNorm10_10_10_2)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatA2b10g10r10SnormPack32, f)

	f, err = AttrFormat(gpu.VertAttrTypeSNorm16x4)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR16g16b16a16Snorm, f)

	_, err = AttrFormat(gpu.VertAttrTypeUnknown)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
}

func TestVertexInputDescriptionsDeinterleaved(t *testing.T) {
	format := gpu.VertFormat{}
	format.Deinterleave()
	format.AddAttr("tA", gpu.VertAttrTypeSNorm16x4)
	format.AddAttr("tB", gpu.VertAttrTypeSFloat32x4)

	bindings, attributes, err := VertexInputDescriptions(&format, 3)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	require.Len(t, attributes, 2)
	assert.Equal(t, uint32(8), bindings[0].Stride)
	assert.Equal(t, uint32(16), bindings[1].Stride)
	assert.Equal(t, uint32(4), attributes[1].Location)
	assert.Equal(t, uint32(1), attributes[1].Binding)
	assert.Equal(t, uint32(0), attributes[1].Offset)

	vb := gpu.NewVertBuf("tan", format, gpu.UsageStatic, gpu.ResidencyHost)
	vb.Reserve(10)
	assert.Equal(t, []vk.DeviceSize{0, 80}, BindingOffsets(vb))
}

func TestVertexInputDescriptionsInterleaved(t *testing.T) {
	format := gpu.VertFormat{}
	format.AddAttr("a", gpu.VertAttrTypeSFloat32)
	format.AddAttr("b", gpu.VertAttrTypeSNorm10_10_10_2)

	bindings, attributes, err := VertexInputDescriptions(&format, 0)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, uint32(8), bindings[0].Stride)
	assert.Equal(t, uint32(4), attributes[1].Offset)
	assert.Equal(t, uint32(0), attributes[1].Binding)

	vb := gpu.NewVertBuf("x", format, gpu.UsageStatic, gpu.ResidencyHost)
	assert.Equal(t, []vk.DeviceSize{0}, BindingOffsets(vb))

	bad := gpu.NewVertFormatFromAttr("bad", gpu.VertAttrTypeUnknown)
	_, _, err = VertexInputDescriptions(&bad, 0)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
}
