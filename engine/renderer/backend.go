package renderer

import (
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
)

/**
 * @brief The buffer operations consumed by draw extraction.
 */
type BufferBackend interface {
	/** @brief Human readable backend name, for logs. */
	Name() string
	/** @brief Allocates a host-visible buffer for vertexLen vertices of format. */
	VertBufCreate(name string, format gpu.VertFormat, vertexLen int, usage gpu.Usage) (*gpu.VertBuf, error)
	/** @brief Allocates a device-resident buffer, written only by interpolation. */
	VertBufCreateOnDevice(name string, format gpu.VertFormat, vertexLen int) (*gpu.VertBuf, error)
	/** @brief Sends dirty host content to the device. No-op for clean buffers. */
	VertBufUpload(vb *gpu.VertBuf) error
	/** @brief Releases the buffer and its device memory. */
	VertBufDiscard(vb *gpu.VertBuf)
	/** @brief Releases every buffer still alive. */
	Shutdown() error
}

/**
 * @brief Expands per-corner data to subdivision loops.
 */
type Interpolator interface {
	/**
	 * @brief Interpolates src, holding compLen components of type comp per coarse
	 * corner, into dst starting at dstOffset bytes. Operations are applied in
	 * the order they are issued.
	 */
	InterpCustomData(cache *subdiv.Cache, src *gpu.VertBuf, dst *gpu.VertBuf, comp gpu.CompType, compLen int, dstOffset int) error
}

/**
 * @brief A backend able to run both coarse and subdivision extraction.
 */
type Backend interface {
	BufferBackend
	Interpolator
}
