package math

import "github.com/chewxy/math32"

// TriangleTangentBasis returns the unnormalized tangent and bitangent of a triangle
// from its positions and texture coordinates. ok is false when the UV area is degenerate.
func TriangleTangentBasis(p0, p1, p2 Vec3, uv0, uv1, uv2 Vec2) (tangent Vec3, bitangent Vec3, ok bool) {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	deltaU1 := uv1.X - uv0.X
	deltaV1 := uv1.Y - uv0.Y

	deltaU2 := uv2.X - uv0.X
	deltaV2 := uv2.Y - uv0.Y

	dividend := (deltaU1*deltaV2 - deltaU2*deltaV1)
	if math32.Abs(dividend) < K_FLOAT_EPSILON {
		return Vec3{}, Vec3{}, false
	}
	fc := 1.0 / dividend

	tangent = Vec3{
		(fc * (deltaV2*edge1.X - deltaV1*edge2.X)),
		(fc * (deltaV2*edge1.Y - deltaV1*edge2.Y)),
		(fc * (deltaV2*edge1.Z - deltaV1*edge2.Z))}

	bitangent = Vec3{
		(fc * (deltaU1*edge2.X - deltaU2*edge1.X)),
		(fc * (deltaU1*edge2.Y - deltaU2*edge1.Y)),
		(fc * (deltaU1*edge2.Z - deltaU2*edge1.Z))}

	return tangent, bitangent, true
}

// TriangleNormal returns the unit normal of the triangle (p0, p1, p2).
func TriangleNormal(p0, p1, p2 Vec3) Vec3 {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)
	return edge1.Cross(edge2).Normalized()
}

// PolyNormal computes a polygon normal with Newell's method, which is robust
// for non-planar and concave polygons.
func PolyNormal(points []Vec3) Vec3 {
	n := Vec3{}
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Normalized()
}

// OrthogonalVec returns a unit vector perpendicular to n.
func OrthogonalVec(n Vec3) Vec3 {
	var t Vec3
	if math32.Abs(n.X) < 0.9 {
		t = Vec3{X: 1}.Sub(n.MulScalar(n.X))
	} else {
		t = Vec3{Y: 1}.Sub(n.MulScalar(n.Y))
	}
	return t.Normalized()
}

// ExtentsFromPoints returns the axis aligned bounds of points. An empty slice yields zero extents.
func ExtentsFromPoints(points []Vec3) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	e := Extents3D{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		e.Min.X = math32.Min(e.Min.X, p.X)
		e.Min.Y = math32.Min(e.Min.Y, p.Y)
		e.Min.Z = math32.Min(e.Min.Z, p.Z)
		e.Max.X = math32.Max(e.Max.X, p.X)
		e.Max.Y = math32.Max(e.Max.Y, p.Y)
		e.Max.Z = math32.Max(e.Max.Z, p.Z)
	}
	return e
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

func (e Extents3D) HalfSize() Vec3 {
	return e.Max.Sub(e.Min).MulScalar(0.5)
}

// MapToSphere projects a point onto spherical texture coordinates.
// ok is false for the origin, where both coordinates are zero.
func MapToSphere(p Vec3) (u float32, v float32, ok bool) {
	length := p.Length()
	if length <= 0 {
		return 0, 0, false
	}
	if p.X == 0 && p.Y == 0 {
		u = 0
	} else {
		u = (1.0 - math32.Atan2(p.X, p.Y)/K_PI) / 2.0
	}
	v = 1.0 - safeAcos(p.Z/length)/K_PI
	return u, v, true
}

func safeAcos(x float32) float32 {
	return math32.Acos(Clamp(x, -1.0, 1.0))
}
