package mesh

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
)

/**
 * @brief A finalized mesh stored as flat arrays. Face i spans the corners
 * [FaceOffsets[i], FaceOffsets[i+1]).
 */
type FinalMesh struct {
	meshBase

	/** @brief One position per vertex. */
	Positions []math.Vec3
	/** @brief Corner offsets of every face, plus the total corner count at the end. */
	FaceOffsets []int
	/** @brief The vertex used by each corner. */
	CornerVerts []int
	/** @brief Per-face flat shading flags. Empty means every face is smooth. */
	SharpFaces []bool

	/** @brief Triangulation of the faces, as corner indices. */
	CornerTris [][3]int
	/** @brief The face each corner triangle belongs to. */
	CornerTriFaces []int

	VertNormals   []math.Vec3
	FaceNormals   []math.Vec3
	CornerNormals []math.Vec3

	// Authored corner normals, used as CornerNormals when set.
	customNormals []math.Vec3
}

// NewFinalMesh validates the topology and builds the derived triangulation and normals.
func NewFinalMesh(name string, positions []math.Vec3, faceOffsets []int, cornerVerts []int) (*FinalMesh, error) {
	if len(faceOffsets) == 0 {
		faceOffsets = []int{0}
	}
	if faceOffsets[0] != 0 || faceOffsets[len(faceOffsets)-1] != len(cornerVerts) {
		err := fmt.Errorf("%w: face offsets must start at 0 and end at the corner count %d", core.ErrInvalidMesh, len(cornerVerts))
		core.LogError(err.Error())
		return nil, err
	}
	for i := 0; i+1 < len(faceOffsets); i++ {
		if faceOffsets[i+1]-faceOffsets[i] < 3 {
			err := fmt.Errorf("%w: face %d has fewer than 3 corners", core.ErrInvalidMesh, i)
			core.LogError(err.Error())
			return nil, err
		}
	}
	for c, v := range cornerVerts {
		if v < 0 || v >= len(positions) {
			err := fmt.Errorf("%w: corner %d references vertex %d of %d", core.ErrInvalidMesh, c, v, len(positions))
			core.LogError(err.Error())
			return nil, err
		}
	}

	m := &FinalMesh{
		meshBase:    newMeshBase(name),
		Positions:   positions,
		FaceOffsets: faceOffsets,
		CornerVerts: cornerVerts,
	}
	m.cornerData.grow(len(cornerVerts))
	m.vertData.grow(len(positions))
	m.Update()
	return m, nil
}

func (m *FinalMesh) Kind() ExtractType { return ExtractTypeMesh }

func (m *FinalMesh) VertsNum() int   { return len(m.Positions) }
func (m *FinalMesh) CornersNum() int { return len(m.CornerVerts) }
func (m *FinalMesh) FacesNum() int   { return len(m.FaceOffsets) - 1 }

func (m *FinalMesh) VertPositions() []math.Vec3 { return m.Positions }

func (m *FinalMesh) Texspace() Texspace {
	return m.texspaceOr(m.Positions)
}

// Face returns the corner range of face i.
func (m *FinalMesh) Face(i int) (start int, end int) {
	return m.FaceOffsets[i], m.FaceOffsets[i+1]
}

func (m *FinalMesh) FaceCorners(f int) (int, int) {
	return m.Face(f)
}

// IsSharp reports whether face i is flat shaded.
func (m *FinalMesh) IsSharp(i int) bool {
	return len(m.SharpFaces) > i && m.SharpFaces[i]
}

// SetSharpFaces assigns flat shading flags and refreshes the corner normals.
func (m *FinalMesh) SetSharpFaces(sharp []bool) error {
	if sharp != nil && len(sharp) != m.FacesNum() {
		return fmt.Errorf("%w: %d sharp flags for %d faces", core.ErrInvalidMesh, len(sharp), m.FacesNum())
	}
	m.SharpFaces = sharp
	m.calcCornerNormals()
	return nil
}

// SetCustomNormals assigns authored per-corner normals, normalized on the way
// in. Passing nil goes back to normals derived from the geometry.
func (m *FinalMesh) SetCustomNormals(normals []math.Vec3) error {
	if normals != nil && len(normals) != m.CornersNum() {
		return fmt.Errorf("%w: %d custom normals for %d corners", core.ErrInvalidMesh, len(normals), m.CornersNum())
	}
	m.customNormals = nil
	if normals != nil {
		m.customNormals = make([]math.Vec3, len(normals))
		for c, n := range normals {
			m.customNormals[c] = n.Normalized()
		}
	}
	m.calcCornerNormals()
	m.Tag()
	return nil
}

// HasCustomNormals reports whether corner normals were authored.
func (m *FinalMesh) HasCustomNormals() bool {
	return m.customNormals != nil
}

// Update recomputes the triangulation and normals after the arrays changed.
func (m *FinalMesh) Update() {
	m.calcCornerTris()
	m.calcNormals()
	m.Tag()
}

// calcCornerTris fan-triangulates every face.
func (m *FinalMesh) calcCornerTris() {
	m.CornerTris = m.CornerTris[:0]
	m.CornerTriFaces = m.CornerTriFaces[:0]
	for f := 0; f < m.FacesNum(); f++ {
		start, end := m.Face(f)
		for c := start + 1; c+1 < end; c++ {
			m.CornerTris = append(m.CornerTris, [3]int{start, c, c + 1})
			m.CornerTriFaces = append(m.CornerTriFaces, f)
		}
	}
}

func (m *FinalMesh) calcNormals() {
	m.FaceNormals = make([]math.Vec3, m.FacesNum())
	m.VertNormals = make([]math.Vec3, len(m.Positions))

	points := make([]math.Vec3, 0, 8)
	for f := range m.FaceNormals {
		start, end := m.Face(f)
		points = points[:0]
		for c := start; c < end; c++ {
			points = append(points, m.Positions[m.CornerVerts[c]])
		}
		m.FaceNormals[f] = math.PolyNormal(points)
		for c := start; c < end; c++ {
			v := m.CornerVerts[c]
			m.VertNormals[v] = m.VertNormals[v].Add(m.FaceNormals[f])
		}
	}
	for v := range m.VertNormals {
		m.VertNormals[v] = m.VertNormals[v].Normalized()
	}
	m.calcCornerNormals()
}

func (m *FinalMesh) calcCornerNormals() {
	m.CornerNormals = make([]math.Vec3, len(m.CornerVerts))
	if len(m.customNormals) == len(m.CornerVerts) && m.customNormals != nil {
		copy(m.CornerNormals, m.customNormals)
		return
	}
	for f := 0; f < m.FacesNum(); f++ {
		start, end := m.Face(f)
		for c := start; c < end; c++ {
			if m.IsSharp(f) {
				m.CornerNormals[c] = m.FaceNormals[f]
			} else {
				m.CornerNormals[c] = m.VertNormals[m.CornerVerts[c]]
			}
		}
	}
}
