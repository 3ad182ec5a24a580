package draw

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/tangent"
)

// tangentLayers is the common state of both tangent extraction paths.
type tangentLayers struct {
	format gpu.VertFormat
	// vertexLen is the corner count, at least 1.
	vertexLen int
	names     []string
	useOrco   bool
	store     *tangent.Store
}

// layerData returns the tangents to pack, in format order: the named layers
// followed by the orco layer.
func (t *tangentLayers) layerData() [][][4]float32 {
	if t.store == nil {
		return nil
	}
	layers := make([][][4]float32, 0, len(t.names)+1)
	for _, name := range t.names {
		layers = append(layers, t.store.Named(name))
	}
	if t.useOrco {
		layers = append(layers, t.store.Named(tangent.OrcoLayerName))
	}
	return layers
}

func (e *Extractor) initTangents(mr mesh.RenderData, used CustomDataUsed, attrType gpu.VertAttrType) (*tangentLayers, error) {
	t := &tangentLayers{}
	t.format.Deinterleave()

	sel := SelectTangentLayers(mr.CornerData(), used, &t.format, attrType)
	t.names = sel.Names
	t.useOrco = sel.UseOrco

	var orco []math.Vec3
	if t.useOrco {
		orco = orcoCoords(mr, e.orco)
	}

	if len(t.names) != 0 || t.useOrco {
		store, err := calcTangents(mr, t.names, orco)
		if err != nil {
			return nil, err
		}
		t.store = store
	}

	if t.useOrco {
		t.format.AddAttr(TangentAttrName(tangent.OrcoLayerName), attrType)
		t.format.AddAlias(AliasRenderTangent)
		t.format.AddAlias(AliasDisplayTangent)
	}

	t.vertexLen = max(mr.CornersNum(), 1)
	if t.format.AttrLen() == 0 {
		t.format.AddAttr(DummyAttrName, gpu.VertAttrTypeSFloat32)
		// Never bound, only allocate the minimum.
		t.vertexLen = 1
	}
	core.LogDebug("tangents of '%s' (%s): layers %v, orco %t, %d vertices", mr.Name(), mr.Kind(), t.names, t.useOrco, t.vertexLen)
	return t, nil
}

/**
 * @brief Extracts the requested tangent layers of mr into a host buffer, one
 * deinterleaved attribute per layer. useHQ selects 16-bit packing over the
 * compact 10-10-10-2 one.
 */
func (e *Extractor) ExtractTangents(mr mesh.RenderData, cache *MeshBatchCache, useHQ bool) (*gpu.VertBuf, error) {
	start := time.Now()
	attrType := gpu.VertAttrTypeSNorm10_10_10_2
	if useHQ {
		attrType = gpu.VertAttrTypeSNorm16x4
	}

	t, err := e.initTangents(mr, cache.Used, attrType)
	if err != nil {
		return nil, err
	}

	vbo, err := e.backend.VertBufCreate("tan", t.format, t.vertexLen, gpu.UsageStatic)
	if err != nil {
		err = fmt.Errorf("tangent buffer of '%s': %w", mr.Name(), err)
		core.LogError(err.Error())
		return nil, err
	}

	for i, data := range t.layerData() {
		if err := packLayer(vbo, i, data, mr.CornersNum(), useHQ); err != nil {
			e.backend.VertBufDiscard(vbo)
			core.LogError(err.Error())
			return nil, err
		}
	}

	e.metrics.Update(time.Since(start), mr.CornersNum(), vbo.Size())
	return vbo, nil
}

func packLayer(vbo *gpu.VertBuf, attr int, data [][4]float32, corners int, useHQ bool) error {
	view, err := vbo.Attr(attr)
	if err != nil {
		return err
	}
	for corner := 0; corner < corners; corner++ {
		if useHQ {
			err = view.SetShort4(corner, gpu.ConvertNormalShort4(data[corner]))
		} else {
			err = view.SetPackedNormal(corner, gpu.ConvertNormalPacked(data[corner]))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
