package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
)

var vertAttrFormats = map[gpu.VertAttrType]vk.Format{
	gpu.VertAttrTypeSFloat32:        vk.FormatR32Sfloat,
	gpu.VertAttrTypeSFloat32x4:      vk.FormatR32g32b32a32Sfloat,
	gpu.VertAttrTypeSNorm16x4:       vk.FormatR16g16b16a16Snorm,
	gpu.VertAttrTypeSNorm10_10_10_2: vk.FormatA2b10g10r10SnormPack32,
}

// AttrFormat maps an attribute type to the Vulkan vertex format.
func AttrFormat(t gpu.VertAttrType) (vk.Format, error) {
	f, ok := vertAttrFormats[t]
	if !ok {
		return vk.FormatUndefined, fmt.Errorf("%w: no vulkan format for %s", core.ErrTypeMismatch, t)
	}
	return f, nil
}

/**
 * @brief Builds the vertex input state of a buffer layout. Deinterleaved
 * formats get one binding per attribute, interleaved ones a single binding.
 * Attribute i is bound to shader location firstLocation+i.
 */
func VertexInputDescriptions(format *gpu.VertFormat, firstLocation uint32) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	bindings := []vk.VertexInputBindingDescription{}
	attributes := make([]vk.VertexInputAttributeDescription, 0, format.AttrLen())

	if !format.IsDeinterleaved() && format.AttrLen() > 0 {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   0,
			Stride:    uint32(format.Stride()),
			InputRate: vk.VertexInputRateVertex,
		})
	}
	for i := 0; i < format.AttrLen(); i++ {
		attr := format.Attr(i)
		vkFormat, err := AttrFormat(attr.Type)
		if err != nil {
			core.LogError(err.Error())
			return nil, nil, err
		}
		binding := uint32(0)
		offset := uint32(attr.Offset)
		if format.IsDeinterleaved() {
			binding = uint32(i)
			offset = 0
			bindings = append(bindings, vk.VertexInputBindingDescription{
				Binding:   binding,
				Stride:    uint32(attr.Type.Size()),
				InputRate: vk.VertexInputRateVertex,
			})
		}
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: firstLocation + uint32(i),
			Binding:  binding,
			Format:   vkFormat,
			Offset:   offset,
		})
	}
	return bindings, attributes, nil
}

// BindingOffsets returns the byte offset of every binding inside a deinterleaved buffer.
func BindingOffsets(vb *gpu.VertBuf) []vk.DeviceSize {
	format := vb.Format()
	if !format.IsDeinterleaved() {
		return []vk.DeviceSize{0}
	}
	offsets := make([]vk.DeviceSize, format.AttrLen())
	for i := range offsets {
		base, _ := vb.AttrByteOffset(i)
		offsets[i] = vk.DeviceSize(base)
	}
	return offsets
}
