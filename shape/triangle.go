package shape

import (
	"math"

	"lumen/aabox"
	"lumen/affinetransform"
	"lumen/ray"
	"lumen/vmath/mat33"
	"lumen/vmath/vec2"
	"lumen/vmath/vec3"
)

// Triangle is a flat triangle with optionally interpolated vertex normals and
// texture coordinates.  Its uv coordinates are barycentric: the hit point is
// (1-u-v)*P0 + u*P1 + v*P2.
type Triangle struct {
	ModelToWorld affinetransform.AffineTransform

	PointsOrig  [3]vec3.T
	NormalsOrig [3]vec3.T
	TexCoords   [3]vec2.T

	points  [3]vec3.T
	normals [3]vec3.T
	v0v1    vec3.T
	v0v2    vec3.T
}

var _ Shape = (*Triangle)(nil)

// NewTriangle returns a triangle with face normals and default texture
// coordinates (0,1), (0,0), (1,0).
func NewTriangle(modelToWorld affinetransform.AffineTransform, points [3]vec3.T) *Triangle {
	n := vec3.Normalize(vec3.CProd(vec3.SubVV(points[1], points[0]), vec3.SubVV(points[2], points[0])))
	t := &Triangle{
		ModelToWorld: modelToWorld,
		PointsOrig:   points,
		NormalsOrig:  [3]vec3.T{n, n, n},
		TexCoords:    [3]vec2.T{{0, 1}, {0, 0}, {1, 0}},
	}
	t.Crush(0)
	return t
}

// NewSmoothTriangle returns a triangle with the given vertex normals and
// texture coordinates.
func NewSmoothTriangle(modelToWorld affinetransform.AffineTransform, points, normals [3]vec3.T, texCoords [3]vec2.T) *Triangle {
	t := &Triangle{
		ModelToWorld: modelToWorld,
		PointsOrig:   points,
		NormalsOrig:  normals,
		TexCoords:    texCoords,
	}
	t.Crush(0)
	return t
}

func (t *Triangle) Crush(time float64) {
	nm := t.ModelToWorld.NormalTransformMat()
	for i := 0; i < 3; i++ {
		t.points[i] = affinetransform.TransformPoint(t.ModelToWorld, t.PointsOrig[i])
		t.normals[i] = vec3.Normalize(mat33.MulMV(nm, t.NormalsOrig[i]))
	}
	t.v0v1 = vec3.SubVV(t.points[1], t.points[0])
	t.v0v2 = vec3.SubVV(t.points[2], t.points[0])
}

// Intersect is the Moller-Trumbore test.
func (t *Triangle) Intersect(r *ray.Ray) (float64, vec2.T, bool) {
	pvec := vec3.CProd(r.Direction, t.v0v2)
	det := vec3.IProd(t.v0v1, pvec)
	if math.Abs(det) < math.SmallestNonzeroFloat64 {
		return 0, vec2.T{}, false
	}
	invdet := 1.0 / det

	tvec := vec3.SubVV(r.Origin, t.points[0])
	u := vec3.IProd(tvec, pvec) * invdet
	if u < 0.0 || u > 1.0 {
		return 0, vec2.T{}, false
	}

	qvec := vec3.CProd(tvec, t.v0v1)
	v := vec3.IProd(r.Direction, qvec) * invdet
	if v < 0.0 || u+v > 1.0 {
		return 0, vec2.T{}, false
	}

	dist := vec3.IProd(t.v0v2, qvec) * invdet
	if dist < 0.0 {
		return 0, vec2.T{}, false
	}
	return dist, vec2.T{u, v}, true
}

func (t *Triangle) Normal(time float64, uv vec2.T) vec3.T {
	w := 1 - uv[0] - uv[1]
	n := vec3.MulVS(t.normals[0], w)
	n = vec3.FMA(n, t.normals[1], uv[0])
	return vec3.FMA(n, t.normals[2], uv[1])
}

func (t *Triangle) NormalUV(time float64, uv vec2.T) (vec3.T, vec2.T) {
	return t.Normal(time, uv), vec2.Barycentric(uv, t.TexCoords[0], t.TexCoords[1], t.TexCoords[2])
}

// FaceNormal is the unit geometric normal, following the winding order.
func (t *Triangle) FaceNormal() vec3.T {
	return vec3.Normalize(vec3.CProd(t.v0v1, t.v0v2))
}

func (t *Triangle) Bounds() aabox.AABox {
	b := aabox.AccumZeroAABox()
	for _, p := range t.points {
		b = aabox.GrowAABoxToPoint(b, p)
	}
	return b
}
