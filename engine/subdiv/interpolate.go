package subdiv

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spaghettifunk/meshdraw/engine/core"
)

// Interpolate expands src, holding compLen float32 components per coarse
// corner, into dst at dstOffset bytes: one compLen-wide value per
// subdivision loop.
func Interpolate(c *Cache, src []byte, dst []byte, compLen int, dstOffset int) error {
	if compLen <= 0 {
		return fmt.Errorf("%w: component count %d", core.ErrOutOfBounds, compLen)
	}
	elem := compLen * 4
	if len(src) < c.NumCoarseCorners*elem {
		return fmt.Errorf("%w: source holds %d bytes, %d corners need %d", core.ErrOutOfBounds, len(src), c.NumCoarseCorners, c.NumCoarseCorners*elem)
	}
	if dstOffset < 0 || dstOffset+c.NumSubdivLoops*elem > len(dst) {
		return fmt.Errorf("%w: writing %d loops at offset %d overflows %d bytes", core.ErrOutOfBounds, c.NumSubdivLoops, dstOffset, len(dst))
	}

	value := make([]float32, compLen)
	for l, stencil := range c.stencils {
		for k := range value {
			value[k] = 0
		}
		for _, e := range stencil {
			base := e.Corner * elem
			for k := 0; k < compLen; k++ {
				value[k] += e.Weight * math.Float32frombits(binary.LittleEndian.Uint32(src[base+k*4:]))
			}
		}
		out := dstOffset + l*elem
		for k := 0; k < compLen; k++ {
			binary.LittleEndian.PutUint32(dst[out+k*4:], math.Float32bits(value[k]))
		}
	}
	return nil
}
