package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/math"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/resources"
)

// UVLayerName is the name of the UV layer created for imported texture coordinates.
const UVLayerName = "UVMap"

// ModelLoader imports Wavefront OBJ files as final meshes, one per object or group.
type ModelLoader struct{}

type objCorner struct {
	vert   int
	uv     int
	normal int
}

type objFace struct {
	corners []objCorner
	smooth  bool
}

type objGeometry struct {
	name  string
	faces []objFace
}

type objReader struct {
	path      string
	positions []math.Vec3
	uvs       []math.Vec2
	normals   []math.Vec3
	smooth    bool
	objects   []*objGeometry
}

func (ml *ModelLoader) Load(path string, assetType resources.ResourceType) (*resources.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	defer f.Close()

	meshes, err := ml.Parse(path, f)
	if err != nil {
		return nil, err
	}
	corners := 0
	for _, m := range meshes {
		corners += m.CornersNum()
	}
	return &resources.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     assetType,
		DataSize: uint64(corners),
		Data:     meshes,
	}, nil
}

func (ml *ModelLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}

// Parse reads OBJ data from r. name is only used in error messages.
func (ml *ModelLoader) Parse(name string, r io.Reader) ([]*mesh.FinalMesh, error) {
	reader := &objReader{path: name, smooth: true}
	if err := reader.parse(r); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	meshes := make([]*mesh.FinalMesh, 0, len(reader.objects))
	for _, obj := range reader.objects {
		m, err := reader.createMesh(obj)
		if err != nil {
			core.LogError(err.Error())
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	core.LogDebug("imported %d meshes from '%s'", len(meshes), name)
	return meshes, nil
}

func (r *objReader) emitError(line int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: [%s: %d] %s", core.ErrInvalidMesh, r.path, line, fmt.Sprintf(format, args...))
}

func (r *objReader) current() *objGeometry {
	if len(r.objects) == 0 {
		r.objects = append(r.objects, &objGeometry{name: "default"})
	}
	return r.objects[len(r.objects)-1]
}

func (r *objReader) parse(in io.Reader) error {
	lineNum := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		switch tokens[0] {
		case "v":
			v, err := parseFloats(tokens, 3)
			if err != nil {
				return r.emitError(lineNum, "%s", err)
			}
			r.positions = append(r.positions, math.NewVec3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(tokens, 2)
			if err != nil {
				return r.emitError(lineNum, "%s", err)
			}
			r.uvs = append(r.uvs, math.NewVec2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(tokens, 3)
			if err != nil {
				return r.emitError(lineNum, "%s", err)
			}
			r.normals = append(r.normals, math.NewVec3(v[0], v[1], v[2]))
		case "o", "g":
			if len(tokens) < 2 {
				return r.emitError(lineNum, `expected a name after "%s"`, tokens[0])
			}
			// Faces before the first name stay in their own object.
			if len(r.objects) == 1 && len(r.objects[0].faces) == 0 {
				r.objects[0].name = tokens[1]
				continue
			}
			r.objects = append(r.objects, &objGeometry{name: tokens[1]})
		case "s":
			if len(tokens) < 2 {
				return r.emitError(lineNum, `expected a smoothing group after "s"`)
			}
			r.smooth = tokens[1] != "off" && tokens[1] != "0"
		case "f":
			face, err := r.parseFace(tokens)
			if err != nil {
				return r.emitError(lineNum, "%s", err)
			}
			obj := r.current()
			obj.faces = append(obj.faces, face)
		default:
			// Materials, curves and the rest are not imported.
		}
	}
	return scanner.Err()
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a 0-based one.
func resolveIndex(token string, count int) (int, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", token)
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d elements)", token, count)
	}
	return i, nil
}

func (r *objReader) parseFace(tokens []string) (objFace, error) {
	face := objFace{smooth: r.smooth}
	for _, token := range tokens[1:] {
		parts := strings.Split(token, "/")
		corner := objCorner{uv: -1, normal: -1}
		var err error
		if corner.vert, err = resolveIndex(parts[0], len(r.positions)); err != nil {
			return face, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if corner.uv, err = resolveIndex(parts[1], len(r.uvs)); err != nil {
				return face, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if corner.normal, err = resolveIndex(parts[2], len(r.normals)); err != nil {
				return face, err
			}
		}
		face.corners = append(face.corners, corner)
	}
	return face, nil
}

// fixupFace removes repeated vertices from a face. Faces left with fewer than
// three corners are dropped.
func fixupFace(face objFace) (objFace, bool) {
	seen := make(map[int]bool, len(face.corners))
	fixed := objFace{smooth: face.smooth, corners: make([]objCorner, 0, len(face.corners))}
	for _, c := range face.corners {
		if seen[c.vert] {
			continue
		}
		seen[c.vert] = true
		fixed.corners = append(fixed.corners, c)
	}
	return fixed, len(fixed.corners) >= 3
}

func (r *objReader) createMesh(obj *objGeometry) (*mesh.FinalMesh, error) {
	remap := make(map[int]int)
	positions := make([]math.Vec3, 0)
	faceOffsets := []int{0}
	cornerVerts := make([]int, 0)
	cornerUVs := make([]math.Vec2, 0)
	cornerNormals := make([]math.Vec3, 0)
	sharp := make([]bool, 0)
	hasUV := false
	normalCorners := 0
	hasSharp := false

	for _, face := range obj.faces {
		face, ok := fixupFace(face)
		if !ok {
			core.LogWarn("'%s': dropping a face with fewer than 3 distinct vertices", obj.name)
			continue
		}
		for _, c := range face.corners {
			v, exists := remap[c.vert]
			if !exists {
				v = len(positions)
				remap[c.vert] = v
				positions = append(positions, r.positions[c.vert])
			}
			cornerVerts = append(cornerVerts, v)
			uv := math.Vec2{}
			if c.uv >= 0 {
				uv = r.uvs[c.uv]
				hasUV = true
			}
			cornerUVs = append(cornerUVs, uv)
			n := math.Vec3{}
			if c.normal >= 0 {
				n = r.normals[c.normal]
				normalCorners++
			}
			cornerNormals = append(cornerNormals, n)
		}
		faceOffsets = append(faceOffsets, len(cornerVerts))
		sharp = append(sharp, !face.smooth)
		hasSharp = hasSharp || !face.smooth
	}
	if len(faceOffsets) == 1 {
		core.LogWarn("'%s' has no valid faces, skipped", obj.name)
		return nil, nil
	}

	m, err := mesh.NewFinalMesh(obj.name, positions, faceOffsets, cornerVerts)
	if err != nil {
		return nil, err
	}
	if hasSharp {
		if err := m.SetSharpFaces(sharp); err != nil {
			return nil, err
		}
	}
	if hasUV {
		if _, err := m.CornerData().AddUVLayer(UVLayerName, cornerUVs); err != nil {
			return nil, err
		}
	}
	switch {
	case normalCorners == len(cornerVerts):
		if err := m.SetCustomNormals(cornerNormals); err != nil {
			return nil, err
		}
	case normalCorners > 0:
		core.LogWarn("'%s': %d of %d corners have normals, using computed normals", obj.name, normalCorners, len(cornerVerts))
	}
	return m, nil
}

func parseFloats(tokens []string, count int) ([]float32, error) {
	if len(tokens)-1 < count {
		return nil, fmt.Errorf(`"%s" expects %d values, got %d`, tokens[0], count, len(tokens)-1)
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		f, err := strconv.ParseFloat(tokens[i+1], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tokens[i+1])
		}
		out[i] = float32(f)
	}
	return out, nil
}
