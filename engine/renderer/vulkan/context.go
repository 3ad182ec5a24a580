package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/meshdraw/engine/core"
)

/**
 * @brief The Vulkan objects the buffer backend works with. Instance and
 * devices are created by the host application and handed in.
 */
type VulkanContext struct {
	Instance       vk.Instance
	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	Allocator      *vk.AllocationCallbacks

	// The queue used for transfers, and its family.
	TransferQueue       vk.Queue
	TransferQueueFamily uint32

	// Pool for the single-use transfer command buffers.
	TransferCommandPool vk.CommandPool

	memoryProperties vk.PhysicalDeviceMemoryProperties
	locks            *VulkanLockPool
}

func NewVulkanContext(instance vk.Instance, physical vk.PhysicalDevice, device vk.Device, queue vk.Queue, queueFamily uint32) (*VulkanContext, error) {
	vc := &VulkanContext{
		Instance:            instance,
		PhysicalDevice:      physical,
		Device:              device,
		TransferQueue:       queue,
		TransferQueueFamily: queueFamily,
		locks:               NewVulkanLockPool(),
	}
	vc.locks.SetQueueFamily(queueFamily)

	vk.GetPhysicalDeviceMemoryProperties(physical, &vc.memoryProperties)
	vc.memoryProperties.Deref()

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit | vk.CommandPoolCreateTransientBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device, &poolCreateInfo, vc.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create transfer command pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	vc.TransferCommandPool = pool
	core.LogDebug("Vulkan transfer command pool created for queue family %d.", queueFamily)
	return vc, nil
}

func (vc *VulkanContext) Destroy() {
	if vc.Device == nil {
		return
	}
	vk.DeviceWaitIdle(vc.Device)
	if vc.TransferCommandPool != nil {
		vk.DestroyCommandPool(vc.Device, vc.TransferCommandPool, vc.Allocator)
		vc.TransferCommandPool = nil
	}
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	for i := uint32(0); i < vc.memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		vc.memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(vc.memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
