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

// Sphere is the unit sphere in model space, placed in the world by
// ModelToWorld (which may scale it non-uniformly into an ellipsoid).
//
// Its uv coordinates are the azimuth and polar angle of the model-space hit
// point: u = atan2(y, x), v = acos(z).
type Sphere struct {
	ModelToWorld affinetransform.AffineTransform

	worldToModel        affinetransform.AffineTransform
	modelToWorldNormals mat33.T
}

var _ Shape = (*Sphere)(nil)

func NewSphere(center vec3.T, radius float64) *Sphere {
	s := &Sphere{
		ModelToWorld: affinetransform.Compose(affinetransform.Translate(center), affinetransform.Scale(radius)),
	}
	s.Crush(0)
	return s
}

func (s *Sphere) Crush(time float64) {
	s.worldToModel = s.ModelToWorld.Invert()
	s.modelToWorldNormals = s.ModelToWorld.NormalTransformMat()
}

func (s *Sphere) Intersect(r *ray.Ray) (float64, vec2.T, bool) {
	// The model-space direction stays unnormalized, so t is also the
	// world-space ray parameter.
	o := affinetransform.TransformPoint(s.worldToModel, r.Origin)
	d := affinetransform.TransformDirection(s.worldToModel, r.Direction)

	a := vec3.IProd(d, d)
	b := vec3.IProd(o, d)
	c := vec3.IProd(o, o) - 1.0

	disc := b*b - a*c
	if disc < 0 {
		return 0, vec2.T{}, false
	}
	root := math.Sqrt(disc)

	t := (-b - root) / a
	if t < 0 {
		t = (-b + root) / a
		if t < 0 {
			return 0, vec2.T{}, false
		}
	}

	p := vec3.FMA(o, d, t)
	return t, vec2.T{math.Atan2(p[1], p[0]), math.Acos(math.Max(-1, math.Min(1, p[2])))}, true
}

func (s *Sphere) Normal(time float64, uv vec2.T) vec3.T {
	sinV, cosV := math.Sincos(uv[1])
	sinU, cosU := math.Sincos(uv[0])
	n := vec3.T{sinV * cosU, sinV * sinU, cosV}
	return vec3.Normalize(mat33.MulMV(s.modelToWorldNormals, n))
}

func (s *Sphere) NormalUV(time float64, uv vec2.T) (vec3.T, vec2.T) {
	return s.Normal(time, uv), vec2.T{uv[0]/(2*math.Pi) + 0.5, 1 - uv[1]/math.Pi}
}

func (s *Sphere) Bounds() aabox.AABox {
	unit := aabox.AABox{
		X: ray.Span{Lo: -1.0, Hi: 1.0},
		Y: ray.Span{Lo: -1.0, Hi: 1.0},
		Z: ray.Span{Lo: -1.0, Hi: 1.0},
	}
	return unit.Transform(s.ModelToWorld)
}
