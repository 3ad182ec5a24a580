package draw

import (
	"fmt"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/tangent"
)

// calcTangents runs the tangent computation matching the representation of mr.
// Only the requested layers are computed, never the active one on its own.
func calcTangents(mr mesh.RenderData, names []string, orco []math.Vec3) (*tangent.Store, error) {
	switch m := mr.(type) {
	case *mesh.EditMesh:
		return tangent.CalcEditMesh(m, names, false, orco)
	case *mesh.FinalMesh:
		return tangent.CalcMesh(m, names, orco)
	}
	err := fmt.Errorf("%w: unsupported mesh representation %T", core.ErrInvalidMesh, mr)
	core.LogError(err.Error())
	return nil, err
}
