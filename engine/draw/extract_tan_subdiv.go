package draw

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
)

// coarseTanFormat is the layout of the per-layer staging buffer.
func coarseTanFormat() gpu.VertFormat {
	return gpu.NewVertFormatFromAttr("tan", gpu.VertAttrTypeSFloat32x4)
}

// SubdivLayerOffset is the byte offset of the pack-th tangent layer inside
// the device buffer of a subdivided mesh.
func SubdivLayerOffset(cache *subdiv.Cache, pack int) int {
	return cache.NumSubdivLoops * 4 * gpu.CompTypeF32.Size() * pack
}

/**
 * @brief Extracts the requested tangent layers of mr, interpolated to the
 * loops of the subdivided mesh, into a device buffer. Layers go through one
 * staging buffer, uploaded and interpolated one after the other.
 */
func (e *Extractor) ExtractTangentsSubdiv(mr mesh.RenderData, subdivCache *subdiv.Cache, cache *MeshBatchCache) (*gpu.VertBuf, error) {
	start := time.Now()
	if subdivCache.NumCoarseCorners != mr.CornersNum() {
		err := fmt.Errorf("%w: subdivision cache built for %d corners, '%s' has %d", core.ErrInvalidMesh, subdivCache.NumCoarseCorners, mr.Name(), mr.CornersNum())
		core.LogError(err.Error())
		return nil, err
	}

	t, err := e.initTangents(mr, cache.Used, gpu.VertAttrTypeSFloat32x4)
	if err != nil {
		return nil, err
	}

	vbo, err := e.backend.VertBufCreateOnDevice("tan", t.format, subdivCache.NumSubdivLoops)
	if err != nil {
		err = fmt.Errorf("subdivided tangent buffer of '%s': %w", mr.Name(), err)
		core.LogError(err.Error())
		return nil, err
	}

	// Dynamic as layers are uploaded and interpolated one at a time.
	coarse, err := e.backend.VertBufCreate("tan", coarseTanFormat(), t.vertexLen, gpu.UsageDynamic)
	if err != nil {
		e.backend.VertBufDiscard(vbo)
		err = fmt.Errorf("tangent staging buffer of '%s': %w", mr.Name(), err)
		core.LogError(err.Error())
		return nil, err
	}
	defer e.backend.VertBufDiscard(coarse)

	view, err := coarse.Attr(0)
	if err != nil {
		e.backend.VertBufDiscard(vbo)
		return nil, err
	}
	for pack, data := range t.layerData() {
		for corner := 0; corner < mr.CornersNum(); corner++ {
			if err := view.SetFloat4(corner, gpu.SignedFloat4(data[corner])); err != nil {
				e.backend.VertBufDiscard(vbo)
				core.LogError(err.Error())
				return nil, err
			}
		}
		coarse.TagDirty()
		dstOffset := SubdivLayerOffset(subdivCache, pack)
		if err := e.backend.InterpCustomData(subdivCache, coarse, vbo, gpu.CompTypeF32, 4, dstOffset); err != nil {
			e.backend.VertBufDiscard(vbo)
			return nil, err
		}
	}

	e.metrics.Update(time.Since(start), mr.CornersNum(), vbo.ByteSize())
	return vbo, nil
}
