package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
)

/**
 * @brief A buffer backend that keeps every buffer in host memory. Device
 * buffers are emulated and interpolation runs on the CPU. Used headless and
 * in tests.
 */
type Backend struct {
	/** @brief Upper bound of live bytes, 0 for unlimited. */
	MaxBytes int

	mutex     sync.Mutex
	live      map[uuid.UUID]*gpu.VertBuf
	liveBytes int
	uploads   int
	interps   int
}

func New(maxBytes int) *Backend {
	return &Backend{
		MaxBytes: maxBytes,
		live:     make(map[uuid.UUID]*gpu.VertBuf),
	}
}

func (b *Backend) Name() string { return core.BackendMemory }

func (b *Backend) alloc(vb *gpu.VertBuf, vertexLen int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	size := vertexLen * vb.Format().Stride()
	if b.MaxBytes > 0 && b.liveBytes+size > b.MaxBytes {
		err := fmt.Errorf("%w: '%s' needs %d bytes, %d of %d in use", core.ErrAllocationFailed, vb.Name, size, b.liveBytes, b.MaxBytes)
		core.LogError(err.Error())
		return err
	}
	if err := vb.DataAlloc(vertexLen); err != nil {
		core.LogError(err.Error())
		return err
	}
	b.live[vb.ID] = vb
	b.liveBytes += size
	return nil
}

func (b *Backend) VertBufCreate(name string, format gpu.VertFormat, vertexLen int, usage gpu.Usage) (*gpu.VertBuf, error) {
	vb := gpu.NewVertBuf(name, format, usage, gpu.ResidencyHost)
	if err := b.alloc(vb, vertexLen); err != nil {
		return nil, err
	}
	return vb, nil
}

func (b *Backend) VertBufCreateOnDevice(name string, format gpu.VertFormat, vertexLen int) (*gpu.VertBuf, error) {
	vb := gpu.NewVertBuf(name, format, gpu.UsageDeviceOnly, gpu.ResidencyDevice)
	if err := b.alloc(vb, vertexLen); err != nil {
		return nil, err
	}
	return vb, nil
}

func (b *Backend) VertBufUpload(vb *gpu.VertBuf) error {
	if vb.IsDiscarded() {
		return core.ErrBufferDiscarded
	}
	if !vb.IsDirty() {
		return nil
	}
	b.mutex.Lock()
	b.uploads++
	b.mutex.Unlock()
	vb.ClearDirty()
	return nil
}

func (b *Backend) VertBufDiscard(vb *gpu.VertBuf) {
	if vb == nil || vb.IsDiscarded() {
		return
	}
	b.mutex.Lock()
	if _, ok := b.live[vb.ID]; ok {
		b.liveBytes -= vb.Size()
		delete(b.live, vb.ID)
	}
	b.mutex.Unlock()
	vb.Discard()
}

func (b *Backend) InterpCustomData(cache *subdiv.Cache, src *gpu.VertBuf, dst *gpu.VertBuf, comp gpu.CompType, compLen int, dstOffset int) error {
	if src.IsDiscarded() || dst.IsDiscarded() {
		return core.ErrBufferDiscarded
	}
	if comp != gpu.CompTypeF32 {
		err := fmt.Errorf("%w: interpolation supports float components only", core.ErrTypeMismatch)
		core.LogError(err.Error())
		return err
	}
	if err := b.VertBufUpload(src); err != nil {
		return err
	}
	if err := subdiv.Interpolate(cache, src.Data(), dst.Data(), compLen, dstOffset); err != nil {
		core.LogError(err.Error())
		return err
	}
	b.mutex.Lock()
	b.interps++
	b.mutex.Unlock()
	return nil
}

func (b *Backend) Shutdown() error {
	b.mutex.Lock()
	bufs := make([]*gpu.VertBuf, 0, len(b.live))
	for _, vb := range b.live {
		bufs = append(bufs, vb)
	}
	b.mutex.Unlock()

	for _, vb := range bufs {
		core.LogDebug("releasing buffer '%s' (%s)", vb.Name, vb.ID)
		b.VertBufDiscard(vb)
	}
	return nil
}

// LiveBuffers returns the number of buffers not yet discarded.
func (b *Backend) LiveBuffers() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.live)
}

// LiveBytes returns the storage held by live buffers.
func (b *Backend) LiveBytes() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.liveBytes
}

// Stats returns the number of uploads and interpolations performed.
func (b *Backend) Stats() (uploads int, interps int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.uploads, b.interps
}
