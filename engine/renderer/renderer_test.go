package renderer

import (
	"testing"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendererType(t *testing.T) {
	rt, err := ParseRendererType("memory")
	require.NoError(t, err)
	assert.Equal(t, Memory, rt)

	rt, err = ParseRendererType("vulkan")
	require.NoError(t, err)
	assert.Equal(t, Vulkan, rt)

	_, err = ParseRendererType("opengl")
	assert.ErrorIs(t, err, core.ErrUnknownBackend)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(&core.ExtractConfig{Backend: core.BackendMemory}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.BackendMemory, b.Name())
	assert.NoError(t, b.Shutdown())

	_, err = NewBackend(&core.ExtractConfig{Backend: core.BackendVulkan}, nil)
	assert.ErrorIs(t, err, core.ErrUnknownBackend)

	_, err = NewBackend(&core.ExtractConfig{Backend: "dx12"}, nil)
	assert.ErrorIs(t, err, core.ErrUnknownBackend)
}
