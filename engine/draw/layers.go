package draw

import (
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
)

const (
	// AliasRenderTangent addresses the tangent of the render UV layer.
	AliasRenderTangent = "t"
	// AliasDisplayTangent addresses the tangent of the active (displayed) UV layer.
	AliasDisplayTangent = "at"
	// DummyAttrName is the single attribute of a buffer with nothing to hold.
	DummyAttrName = "dummy"

	tangentAttrPrefix = "t"
)

// CustomDataUsed lists the custom data layers the batches of a mesh need.
type CustomDataUsed struct {
	// Tan has bit i set when the tangents of UV layer i are needed.
	Tan uint32
	// TanOrco requests tangents computed from original coordinates.
	TanOrco bool
}

// Merge returns the union of two requests.
func (u CustomDataUsed) Merge(other CustomDataUsed) CustomDataUsed {
	return CustomDataUsed{Tan: u.Tan | other.Tan, TanOrco: u.TanOrco || other.TanOrco}
}

// Covers reports whether u already includes every layer of other.
func (u CustomDataUsed) Covers(other CustomDataUsed) bool {
	return u.Tan&other.Tan == other.Tan && (u.TanOrco || !other.TanOrco)
}

// LayerSelection is the outcome of tangent layer selection.
type LayerSelection struct {
	// Names are the selected UV layer names, in bit order.
	Names []string
	// UseOrco is set when the orco tangent layer must be computed.
	UseOrco bool
}

// TangentAttrName is the attribute name of the tangents of the given UV layer.
func TangentAttrName(layerName string) string {
	return tangentAttrPrefix + gpu.SafeAttrName(layerName)
}

/**
 * @brief Resolves the requested UV layers of cd and adds one attribute of
 * attrType per selected layer to format, in bit order. The render layer slot
 * gets the AliasRenderTangent alias and the active layer slot the
 * AliasDisplayTangent alias. Bits without a matching layer are ignored.
 *
 * When only orco tangents are requested but the mesh has UV layers, the
 * first UV layer is selected instead and the orco request is dropped: the
 * tangent computation expects a UV driven layer next to the orco one.
 */
func SelectTangentLayers(cd *mesh.CustomData, used CustomDataUsed, format *gpu.VertFormat, attrType gpu.VertAttrType) LayerSelection {
	mask := used.Tan
	sel := LayerSelection{UseOrco: used.TanOrco}

	if mask == 0 && sel.UseOrco && cd.UVLayerCount() > 0 {
		mask = 1
		sel.UseOrco = false
	}

	for i := 0; i < mesh.MaxUVLayers; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if i >= cd.UVLayerCount() {
			core.LogWarn("tangent layer %d requested but the mesh has %d uv layers", i, cd.UVLayerCount())
			continue
		}
		name := cd.UVLayerName(i)
		format.AddAttr(TangentAttrName(name), attrType)
		if i == cd.RenderUVLayer() {
			format.AddAlias(AliasRenderTangent)
		}
		if i == cd.ActiveUVLayer() {
			format.AddAlias(AliasDisplayTangent)
		}
		sel.Names = append(sel.Names, name)
	}
	if mask>>mesh.MaxUVLayers != 0 {
		core.LogWarn("tangent mask %#x has bits above the %d supported uv layers", mask, mesh.MaxUVLayers)
	}
	return sel
}
