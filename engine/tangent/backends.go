package tangent

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
)

func uvSets(cd *mesh.CustomData, names []string) ([]UVSet, error) {
	sets := make([]UVSet, 0, len(names))
	for _, name := range names {
		uvs := cd.UVLayerNamed(name)
		if uvs == nil {
			return nil, fmt.Errorf("%w: no UV layer named '%s'", core.ErrInvalidMesh, name)
		}
		sets = append(sets, UVSet{Name: name, UVs: uvs})
	}
	return sets, nil
}

/**
 * @brief Computes tangents over the loops of an edit mesh, using the loop
 * normals and the displayed positions. With calcActive set, the active UV
 * layer is computed too when it is not among names.
 */
func CalcEditMesh(em *mesh.EditMesh, names []string, calcActive bool, orco []math.Vec3) (*Store, error) {
	cd := em.CornerData()
	if calcActive && cd.ActiveUVLayer() >= 0 {
		active := cd.UVLayerName(cd.ActiveUVLayer())
		found := false
		for _, name := range names {
			found = found || name == active
		}
		if !found {
			names = append(append([]string{}, names...), active)
		}
	}
	sets, err := uvSets(cd, names)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	cornerVerts := make([]int, len(em.Loops))
	for l := range em.Loops {
		cornerVerts[l] = int(em.Loops[l].Vert)
	}
	tris := make([][3]int, 0, len(em.Loops))
	for f := range em.Faces {
		loops := em.FaceLoops(mesh.FaceIndex(f))
		for i := 1; i+1 < len(loops); i++ {
			tris = append(tris, [3]int{int(loops[0]), int(loops[i]), int(loops[i+1])})
		}
	}

	return Calc(Input{
		Positions:     em.VertPositions(),
		CornerVerts:   cornerVerts,
		CornerTris:    tris,
		CornerNormals: em.LoopNormals(),
		UVSets:        sets,
		Orco:          orco,
	}), nil
}

// CalcMesh computes tangents over the flat arrays of a final mesh.
func CalcMesh(fm *mesh.FinalMesh, names []string, orco []math.Vec3) (*Store, error) {
	sets, err := uvSets(fm.CornerData(), names)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return Calc(Input{
		Positions:     fm.Positions,
		CornerVerts:   fm.CornerVerts,
		CornerTris:    fm.CornerTris,
		CornerNormals: fm.CornerNormals,
		UVSets:        sets,
		Orco:          orco,
	}), nil
}
