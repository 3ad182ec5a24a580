package renderer

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/memory"
	"github.com/spaghettifunk/meshdraw/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Memory RendererType = iota
	Vulkan
)

// ParseRendererType maps a configured backend name to its type.
func ParseRendererType(name string) (RendererType, error) {
	switch name {
	case core.BackendMemory:
		return Memory, nil
	case core.BackendVulkan:
		return Vulkan, nil
	}
	return 0, fmt.Errorf("%w: '%s'", core.ErrUnknownBackend, name)
}

/**
 * @brief Creates the backend named in the configuration. The Vulkan backend
 * needs the context of the device owned by the host application.
 */
func NewBackend(cfg *core.ExtractConfig, vkContext *vulkan.VulkanContext) (Backend, error) {
	rt, err := ParseRendererType(cfg.Backend)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	switch rt {
	case Vulkan:
		if vkContext == nil {
			err := fmt.Errorf("%w: vulkan backend requested without a device", core.ErrUnknownBackend)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogInfo("Using the Vulkan buffer backend.")
		return vulkan.New(vkContext), nil
	default:
		core.LogInfo("Using the host memory buffer backend.")
		return memory.New(0), nil
	}
}
