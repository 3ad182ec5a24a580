package mesh

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
)

// Index types keep the halfedge references readable.
type (
	VertIndex int
	LoopIndex int
	FaceIndex int
)

const (
	EmptyVert VertIndex = -1
	EmptyLoop LoopIndex = -1
	EmptyFace FaceIndex = -1
)

type EditVert struct {
	// Co is the original, undeformed coordinate.
	Co math.Vec3
	// Loop is any loop starting at this vertex.
	Loop LoopIndex
}

// EditLoop is a halfedge: a face corner starting at Vert.
type EditLoop struct {
	Vert VertIndex
	Face FaceIndex
	Next LoopIndex
	Prev LoopIndex
	// Twin is the opposite loop on the neighbouring face, EmptyLoop on boundaries.
	Twin LoopIndex
}

type EditFace struct {
	// Loop is the first loop of the face.
	Loop LoopIndex
	Len  int
	// Smooth selects vertex normals over the face normal.
	Smooth bool
}

/**
 * @brief An editable halfedge mesh. Loop indices double as corner indices
 * since loops of a face are allocated contiguously.
 */
type EditMesh struct {
	meshBase

	Verts []EditVert
	Loops []EditLoop
	Faces []EditFace

	// Optional deformed positions (e.g. from modifiers), used for display.
	deformed []math.Vec3

	edges map[[2]VertIndex]LoopIndex

	faceNormals []math.Vec3
	loopNormals []math.Vec3
	normalsGen  uint32
	normalsOK   bool
}

func NewEditMesh(name string) *EditMesh {
	return &EditMesh{
		meshBase: newMeshBase(name),
		edges:    make(map[[2]VertIndex]LoopIndex),
	}
}

func (m *EditMesh) Kind() ExtractType { return ExtractTypeEditMesh }

func (m *EditMesh) VertsNum() int   { return len(m.Verts) }
func (m *EditMesh) CornersNum() int { return len(m.Loops) }
func (m *EditMesh) FacesNum() int   { return len(m.Faces) }

// AddVert appends a vertex and returns its index.
func (m *EditMesh) AddVert(co math.Vec3) VertIndex {
	m.Verts = append(m.Verts, EditVert{Co: co, Loop: EmptyLoop})
	m.vertData.grow(1)
	m.Tag()
	return VertIndex(len(m.Verts) - 1)
}

// AddFace creates a face over verts, in winding order, and links the new
// loops to their twins.
func (m *EditMesh) AddFace(verts []VertIndex, smooth bool) (FaceIndex, error) {
	if len(verts) < 3 {
		return EmptyFace, fmt.Errorf("%w: a face needs at least 3 vertices, got %d", core.ErrInvalidMesh, len(verts))
	}
	for i, v := range verts {
		if v < 0 || int(v) >= len(m.Verts) {
			return EmptyFace, fmt.Errorf("%w: face vertex %d out of range", core.ErrInvalidMesh, v)
		}
		next := verts[(i+1)%len(verts)]
		if next == v {
			return EmptyFace, fmt.Errorf("%w: face has a degenerate edge at vertex %d", core.ErrInvalidMesh, v)
		}
		if _, exists := m.edges[[2]VertIndex{v, next}]; exists {
			return EmptyFace, fmt.Errorf("%w: halfedge %d->%d already used", core.ErrInvalidMesh, v, next)
		}
	}

	face := FaceIndex(len(m.Faces))
	first := LoopIndex(len(m.Loops))
	n := len(verts)
	for i, v := range verts {
		l := first + LoopIndex(i)
		m.Loops = append(m.Loops, EditLoop{
			Vert: v,
			Face: face,
			Next: first + LoopIndex((i+1)%n),
			Prev: first + LoopIndex((i+n-1)%n),
			Twin: EmptyLoop,
		})
		if m.Verts[v].Loop == EmptyLoop {
			m.Verts[v].Loop = l
		}
	}
	for i, v := range verts {
		l := first + LoopIndex(i)
		next := verts[(i+1)%n]
		m.edges[[2]VertIndex{v, next}] = l
		if twin, ok := m.edges[[2]VertIndex{next, v}]; ok {
			m.Loops[l].Twin = twin
			m.Loops[twin].Twin = l
		}
	}
	m.Faces = append(m.Faces, EditFace{Loop: first, Len: n, Smooth: smooth})
	m.cornerData.grow(n)
	m.Tag()
	return face, nil
}

// FaceLoops returns the loops of face f in winding order.
func (m *EditMesh) FaceLoops(f FaceIndex) []LoopIndex {
	face := m.Faces[f]
	loops := make([]LoopIndex, 0, face.Len)
	l := face.Loop
	for i := 0; i < face.Len; i++ {
		loops = append(loops, l)
		l = m.Loops[l].Next
	}
	return loops
}

// FaceCorners relies on the loops of a face being allocated contiguously.
func (m *EditMesh) FaceCorners(f int) (int, int) {
	face := m.Faces[f]
	return int(face.Loop), int(face.Loop) + face.Len
}

// SetLoopUV assigns the coordinate of loop l in UV layer n.
func (m *EditMesh) SetLoopUV(n int, l LoopIndex, uv math.Vec2) error {
	data := m.cornerData.UVLayer(n)
	if data == nil || l < 0 || int(l) >= len(data) {
		return fmt.Errorf("%w: uv layer %d loop %d", core.ErrOutOfBounds, n, l)
	}
	data[l] = uv
	return nil
}

// SetDeformedPositions replaces the deformed positions and tags the mesh.
// Passing nil goes back to the original coordinates.
func (m *EditMesh) SetDeformedPositions(positions []math.Vec3) error {
	if positions != nil && len(positions) != len(m.Verts) {
		return fmt.Errorf("%w: %d deformed positions for %d vertices", core.ErrInvalidMesh, len(positions), len(m.Verts))
	}
	m.deformed = positions
	m.Tag()
	return nil
}

// VertPositions returns the deformed positions when present, otherwise the
// original vertex coordinates.
func (m *EditMesh) VertPositions() []math.Vec3 {
	if m.deformed != nil && len(m.deformed) == len(m.Verts) {
		return m.deformed
	}
	return m.VertCos()
}

// VertCos returns the original coordinates of every vertex.
func (m *EditMesh) VertCos() []math.Vec3 {
	cos := make([]math.Vec3, len(m.Verts))
	for i := range m.Verts {
		cos[i] = m.Verts[i].Co
	}
	return cos
}

func (m *EditMesh) Texspace() Texspace {
	return m.texspaceOr(m.VertCos())
}

// FaceNormals returns one normal per face, recomputed when the mesh changed.
func (m *EditMesh) FaceNormals() []math.Vec3 {
	m.ensureNormals()
	return m.faceNormals
}

// LoopNormals returns one normal per loop: the vertex normal on smooth faces,
// the face normal on flat ones.
func (m *EditMesh) LoopNormals() []math.Vec3 {
	m.ensureNormals()
	return m.loopNormals
}

func (m *EditMesh) ensureNormals() {
	if m.normalsOK && m.normalsGen == m.generation {
		return
	}
	positions := m.VertPositions()
	m.faceNormals = make([]math.Vec3, len(m.Faces))
	vertNormals := make([]math.Vec3, len(m.Verts))
	points := make([]math.Vec3, 0, 8)
	for f := range m.Faces {
		points = points[:0]
		for _, l := range m.FaceLoops(FaceIndex(f)) {
			points = append(points, positions[m.Loops[l].Vert])
		}
		m.faceNormals[f] = math.PolyNormal(points)
		for _, l := range m.FaceLoops(FaceIndex(f)) {
			v := m.Loops[l].Vert
			vertNormals[v] = vertNormals[v].Add(m.faceNormals[f])
		}
	}
	m.loopNormals = make([]math.Vec3, len(m.Loops))
	for l := range m.Loops {
		loop := m.Loops[l]
		if m.Faces[loop.Face].Smooth {
			m.loopNormals[l] = vertNormals[loop.Vert].Normalized()
		} else {
			m.loopNormals[l] = m.faceNormals[loop.Face]
		}
	}
	m.normalsGen = m.generation
	m.normalsOK = true
}
