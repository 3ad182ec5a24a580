package vulkan

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/subdiv"
)

/**
 * @brief Internal buffer data stored in gpu.VertBuf.InternalData.
 */
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	/** @brief Allocated size in bytes. */
	Size uint64
	/** @brief Host visible buffers can be mapped and written directly. */
	HostVisible bool
}

/**
 * @brief A buffer backend over a Vulkan device. Host buffers live in host
 * visible memory and are written through a mapping, device buffers live in
 * device local memory and are filled through transfer commands.
 */
type VulkanBackend struct {
	context *VulkanContext

	mutex sync.Mutex
	live  map[uuid.UUID]*gpu.VertBuf
}

func New(context *VulkanContext) *VulkanBackend {
	return &VulkanBackend{
		context: context,
		live:    make(map[uuid.UUID]*gpu.VertBuf),
	}
}

func (vb *VulkanBackend) Name() string { return core.BackendVulkan }

func (vb *VulkanBackend) createBuffer(size uint64, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (*VulkanBuffer, error) {
	// Vulkan does not allow zero sized buffers.
	if size == 0 {
		size = 4
	}
	buffer := &VulkanBuffer{
		Size:        size,
		HostVisible: props&vk.MemoryPropertyHostVisibleBit != 0,
	}
	err := vb.context.locks.SafeCall(BufferManagement, func() error {
		createInfo := vk.BufferCreateInfo{
			SType:       vk.StructureTypeBufferCreateInfo,
			Size:        vk.DeviceSize(size),
			Usage:       vk.BufferUsageFlags(usage),
			SharingMode: vk.SharingModeExclusive,
		}
		if err := vulkanError("vkCreateBuffer", vk.CreateBuffer(vb.context.Device, &createInfo, vb.context.Allocator, &buffer.Handle)); err != nil {
			return err
		}

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(vb.context.Device, buffer.Handle, &requirements)
		requirements.Deref()

		index := vb.context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(props))
		if index == -1 {
			vk.DestroyBuffer(vb.context.Device, buffer.Handle, vb.context.Allocator)
			return fmt.Errorf("no memory type for buffer of %d bytes", size)
		}
		allocateInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: uint32(index),
		}
		if err := vulkanError("vkAllocateMemory", vk.AllocateMemory(vb.context.Device, &allocateInfo, vb.context.Allocator, &buffer.Memory)); err != nil {
			vk.DestroyBuffer(vb.context.Device, buffer.Handle, vb.context.Allocator)
			return err
		}
		return vulkanError("vkBindBufferMemory", vk.BindBufferMemory(vb.context.Device, buffer.Handle, buffer.Memory, 0))
	})
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrAllocationFailed, err.Error())
		core.LogError(err.Error())
		return nil, err
	}
	return buffer, nil
}

func (vb *VulkanBackend) destroyBuffer(buffer *VulkanBuffer) {
	_ = vb.context.locks.SafeCall(BufferManagement, func() error {
		if buffer.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(vb.context.Device, buffer.Memory, vb.context.Allocator)
			buffer.Memory = vk.NullDeviceMemory
		}
		if buffer.Handle != vk.NullBuffer {
			vk.DestroyBuffer(vb.context.Device, buffer.Handle, vb.context.Allocator)
			buffer.Handle = vk.NullBuffer
		}
		return nil
	})
}

// loadRange copies data into a host visible buffer at offset.
func (vb *VulkanBackend) loadRange(buffer *VulkanBuffer, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return vb.context.locks.SafeCall(MemoryManagement, func() error {
		var ptr unsafe.Pointer
		if err := vulkanError("vkMapMemory", vk.MapMemory(vb.context.Device, buffer.Memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr)); err != nil {
			return err
		}
		n := vk.Memcopy(ptr, data)
		vk.UnmapMemory(vb.context.Device, buffer.Memory)
		if n != len(data) {
			return fmt.Errorf("copied %d of %d bytes", n, len(data))
		}
		return nil
	})
}

// copyRange records and submits a buffer to buffer copy, waiting for completion.
func (vb *VulkanBackend) copyRange(src *VulkanBuffer, srcOffset uint64, dst *VulkanBuffer, dstOffset uint64, size uint64) error {
	cb, err := AllocateAndBeginSingleUse(vb.context, vb.context.TransferCommandPool)
	if err != nil {
		return err
	}
	region := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(srcOffset),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, src.Handle, dst.Handle, 1, []vk.BufferCopy{region})
	return cb.EndSingleUse(vb.context, vb.context.TransferCommandPool, vb.context.TransferQueue)
}

func (vb *VulkanBackend) track(buf *gpu.VertBuf) {
	vb.mutex.Lock()
	vb.live[buf.ID] = buf
	vb.mutex.Unlock()
}

func (vb *VulkanBackend) VertBufCreate(name string, format gpu.VertFormat, vertexLen int, usage gpu.Usage) (*gpu.VertBuf, error) {
	buf := gpu.NewVertBuf(name, format, usage, gpu.ResidencyHost)
	if err := buf.DataAlloc(vertexLen); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	buffer, err := vb.createBuffer(
		uint64(buf.ByteSize()),
		vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
	)
	if err != nil {
		return nil, err
	}
	buf.InternalData = buffer
	vb.track(buf)
	return buf, nil
}

func (vb *VulkanBackend) VertBufCreateOnDevice(name string, format gpu.VertFormat, vertexLen int) (*gpu.VertBuf, error) {
	buf := gpu.NewVertBuf(name, format, gpu.UsageDeviceOnly, gpu.ResidencyDevice)
	buf.Reserve(vertexLen)
	buffer, err := vb.createBuffer(
		uint64(buf.ByteSize()),
		vk.BufferUsageVertexBufferBit|vk.BufferUsageStorageBufferBit|vk.BufferUsageTransferDstBit,
		vk.MemoryPropertyDeviceLocalBit,
	)
	if err != nil {
		return nil, err
	}
	buf.InternalData = buffer
	vb.track(buf)
	return buf, nil
}

func (vb *VulkanBackend) VertBufUpload(buf *gpu.VertBuf) error {
	if buf.IsDiscarded() {
		return core.ErrBufferDiscarded
	}
	if !buf.IsDirty() || buf.Residency() != gpu.ResidencyHost {
		return nil
	}
	buffer, ok := buf.InternalData.(*VulkanBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer '%s' was not created by the vulkan backend", core.ErrUnknownBackend, buf.Name)
	}
	if err := vb.loadRange(buffer, 0, buf.Data()); err != nil {
		core.LogError("failed to upload '%s': %s", buf.Name, err)
		return err
	}
	buf.ClearDirty()
	return nil
}

func (vb *VulkanBackend) VertBufDiscard(buf *gpu.VertBuf) {
	if buf == nil || buf.IsDiscarded() {
		return
	}
	if buffer, ok := buf.InternalData.(*VulkanBuffer); ok {
		vb.destroyBuffer(buffer)
	}
	vb.mutex.Lock()
	delete(vb.live, buf.ID)
	vb.mutex.Unlock()
	buf.Discard()
}

/**
 * @brief Interpolates on the CPU from the host copy of src, then stages the
 * result and copies it into dst at dstOffset. Each call waits for its copy,
 * so src can be rewritten as soon as it returns.
 */
func (vb *VulkanBackend) InterpCustomData(cache *subdiv.Cache, src *gpu.VertBuf, dst *gpu.VertBuf, comp gpu.CompType, compLen int, dstOffset int) error {
	if src.IsDiscarded() || dst.IsDiscarded() {
		return core.ErrBufferDiscarded
	}
	if comp != gpu.CompTypeF32 {
		err := fmt.Errorf("%w: interpolation supports float components only", core.ErrTypeMismatch)
		core.LogError(err.Error())
		return err
	}
	dstBuffer, ok := dst.InternalData.(*VulkanBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer '%s' was not created by the vulkan backend", core.ErrUnknownBackend, dst.Name)
	}
	if err := vb.VertBufUpload(src); err != nil {
		return err
	}

	size := cache.NumSubdivLoops * compLen * comp.Size()
	if dstOffset < 0 || dstOffset+size > dst.ByteSize() {
		err := fmt.Errorf("%w: %d bytes at offset %d overflow '%s' (%d bytes)", core.ErrOutOfBounds, size, dstOffset, dst.Name, dst.ByteSize())
		core.LogError(err.Error())
		return err
	}
	if size == 0 {
		return nil
	}

	data := make([]byte, size)
	if err := subdiv.Interpolate(cache, src.Data(), data, compLen, 0); err != nil {
		core.LogError(err.Error())
		return err
	}
	staging, err := vb.createBuffer(uint64(size), vk.BufferUsageTransferSrcBit, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	defer vb.destroyBuffer(staging)

	if err := vb.loadRange(staging, 0, data); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := vb.copyRange(staging, 0, dstBuffer, uint64(dstOffset), uint64(size)); err != nil {
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vb *VulkanBackend) Shutdown() error {
	vk.DeviceWaitIdle(vb.context.Device)

	vb.mutex.Lock()
	bufs := make([]*gpu.VertBuf, 0, len(vb.live))
	for _, buf := range vb.live {
		bufs = append(bufs, buf)
	}
	vb.mutex.Unlock()

	for _, buf := range bufs {
		vb.VertBufDiscard(buf)
	}
	vb.context.Destroy()
	core.LogInfo("Vulkan buffer backend shut down.")
	return nil
}
