package mesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
)

/** @brief The maximum number of UV layers a mesh can carry. */
const MaxUVLayers = 8

/**
 * @brief A named per-corner texture coordinate layer.
 */
type UVLayer struct {
	/** @brief The layer name, as authored. */
	Name string
	/** @brief One coordinate per corner (or per loop for edit meshes). */
	Data []math.Vec2
}

/**
 * @brief Custom attribute layers attached to a mesh domain.
 * Corner domains carry UV layers, vertex domains carry the optional ORCO layer.
 */
type CustomData struct {
	uvLayers []UVLayer
	activeUV int
	renderUV int
	orco     []math.Vec3
	length   int
}

func newCustomData(length int) *CustomData {
	return &CustomData{activeUV: -1, renderUV: -1, length: length}
}

// Len returns the number of elements every layer of this domain holds.
func (cd *CustomData) Len() int {
	return cd.length
}

// AddUVLayer appends a UV layer and returns its index. The first layer added
// becomes both active and render layer. A name already in use gets a numeric
// suffix ("UVMap" becomes "UVMap.001"), see UVLayerName for the final name.
func (cd *CustomData) AddUVLayer(name string, data []math.Vec2) (int, error) {
	if len(cd.uvLayers) >= MaxUVLayers {
		return -1, fmt.Errorf("%w: at most %d uv layers are supported", core.ErrInvalidMesh, MaxUVLayers)
	}
	if name == "" {
		return -1, fmt.Errorf("%w: uv layers need a name", core.ErrInvalidMesh)
	}
	if data == nil {
		data = make([]math.Vec2, cd.length)
	}
	if len(data) != cd.length {
		return -1, fmt.Errorf("%w: uv layer '%s' has %d elements, expected %d", core.ErrInvalidMesh, name, len(data), cd.length)
	}
	cd.uvLayers = append(cd.uvLayers, UVLayer{Name: cd.uniqueUVName(name), Data: data})
	index := len(cd.uvLayers) - 1
	if cd.activeUV < 0 {
		cd.activeUV = index
	}
	if cd.renderUV < 0 {
		cd.renderUV = index
	}
	return index, nil
}

// uniqueUVName returns name, or name with the first free ".NNN" suffix when
// another layer already uses it. An existing numeric suffix is replaced.
func (cd *CustomData) uniqueUVName(name string) string {
	if cd.UVLayerIndex(name) < 0 {
		return name
	}
	base := name
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		if _, err := strconv.Atoi(name[dot+1:]); err == nil {
			base = name[:dot]
		}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%03d", base, n)
		if cd.UVLayerIndex(candidate) < 0 {
			return candidate
		}
	}
}

func (cd *CustomData) UVLayerCount() int {
	return len(cd.uvLayers)
}

// UVLayerName returns the name of the n-th UV layer, or "" when out of range.
func (cd *CustomData) UVLayerName(n int) string {
	if n < 0 || n >= len(cd.uvLayers) {
		return ""
	}
	return cd.uvLayers[n].Name
}

// UVLayer returns the coordinates of the n-th UV layer, or nil when out of range.
func (cd *CustomData) UVLayer(n int) []math.Vec2 {
	if n < 0 || n >= len(cd.uvLayers) {
		return nil
	}
	return cd.uvLayers[n].Data
}

// UVLayerNamed returns the coordinates of the UV layer called name, or nil.
func (cd *CustomData) UVLayerNamed(name string) []math.Vec2 {
	return cd.UVLayer(cd.UVLayerIndex(name))
}

// UVLayerIndex returns the index of the UV layer called name, or -1.
func (cd *CustomData) UVLayerIndex(name string) int {
	for i := range cd.uvLayers {
		if cd.uvLayers[i].Name == name {
			return i
		}
	}
	return -1
}

// ActiveUVLayer is the layer displayed in the editor, -1 when there are no layers.
func (cd *CustomData) ActiveUVLayer() int {
	return cd.activeUV
}

// RenderUVLayer is the layer used for final output, -1 when there are no layers.
func (cd *CustomData) RenderUVLayer() int {
	return cd.renderUV
}

func (cd *CustomData) SetActiveUVLayer(n int) error {
	if n < 0 || n >= len(cd.uvLayers) {
		return fmt.Errorf("%w: active uv layer %d", core.ErrOutOfBounds, n)
	}
	cd.activeUV = n
	return nil
}

func (cd *CustomData) SetRenderUVLayer(n int) error {
	if n < 0 || n >= len(cd.uvLayers) {
		return fmt.Errorf("%w: render uv layer %d", core.ErrOutOfBounds, n)
	}
	cd.renderUV = n
	return nil
}

// Orco returns the cached original coordinates, or nil when the layer is absent.
func (cd *CustomData) Orco() []math.Vec3 {
	return cd.orco
}

// SetOrco stores an ORCO layer. Passing nil removes it.
func (cd *CustomData) SetOrco(orco []math.Vec3) error {
	if orco != nil && len(orco) != cd.length {
		return fmt.Errorf("%w: orco layer has %d elements, expected %d", core.ErrInvalidMesh, len(orco), cd.length)
	}
	cd.orco = orco
	return nil
}

// grow extends every layer by n zeroed elements.
func (cd *CustomData) grow(n int) {
	cd.length += n
	for i := range cd.uvLayers {
		cd.uvLayers[i].Data = append(cd.uvLayers[i].Data, make([]math.Vec2, n)...)
	}
	if cd.orco != nil {
		cd.orco = append(cd.orco, make([]math.Vec3, n)...)
	}
}
