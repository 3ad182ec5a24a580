package mesh

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/meshdraw/engine/math"
)

// ExtractType tells which mesh representation a RenderData wraps.
type ExtractType int

const (
	// ExtractTypeEditMesh is the editable halfedge topology.
	ExtractTypeEditMesh ExtractType = iota
	// ExtractTypeMesh is the finalized, flat-array mesh.
	ExtractTypeMesh
)

func (t ExtractType) String() string {
	switch t {
	case ExtractTypeEditMesh:
		return "editmesh"
	case ExtractTypeMesh:
		return "mesh"
	}
	return "unknown"
}

// RenderData is the read-only view of a mesh used by draw extraction.
// It is implemented by *EditMesh and *FinalMesh only.
type RenderData interface {
	// Kind is the representation discriminator.
	Kind() ExtractType
	// ID identifies the mesh asset across extractions.
	ID() uuid.UUID
	// Generation is incremented every time the geometry changes.
	Generation() uint32
	Name() string

	VertsNum() int
	CornersNum() int
	FacesNum() int
	// FaceCorners returns the corner range [start, end) of face f.
	FaceCorners(f int) (start int, end int)

	// CornerData holds the per-corner UV layers.
	CornerData() *CustomData
	// VertData holds the per-vertex layers, including the optional ORCO layer.
	VertData() *CustomData

	// VertPositions are the positions used for display.
	VertPositions() []math.Vec3
	// Texspace is the texture space used to normalize original coordinates.
	Texspace() Texspace
}

/**
 * @brief State shared by both mesh representations.
 */
type meshBase struct {
	/** @brief The unique asset identifier. */
	id uuid.UUID
	/** @brief The mesh name. */
	name string
	/** @brief Incremented every time the geometry changes. */
	generation uint32
	/** @brief Manually assigned texture space, nil when automatic. */
	texspace *Texspace

	cornerData *CustomData
	vertData   *CustomData
}

func newMeshBase(name string) meshBase {
	return meshBase{
		id:         uuid.New(),
		name:       name,
		cornerData: newCustomData(0),
		vertData:   newCustomData(0),
	}
}

func (m *meshBase) ID() uuid.UUID           { return m.id }
func (m *meshBase) Name() string            { return m.name }
func (m *meshBase) Generation() uint32      { return m.generation }
func (m *meshBase) CornerData() *CustomData { return m.cornerData }
func (m *meshBase) VertData() *CustomData   { return m.vertData }

// SetTexspace overrides the automatic texture space.
func (m *meshBase) SetTexspace(ts Texspace) {
	m.texspace = &ts
}

func (m *meshBase) texspaceOr(positions []math.Vec3) Texspace {
	if m.texspace != nil {
		return *m.texspace
	}
	return TexspaceFromPositions(positions)
}

// Tag marks the geometry as changed.
func (m *meshBase) Tag() {
	m.generation++
}
