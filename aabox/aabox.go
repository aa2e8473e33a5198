package aabox

import (
	"math"

	"lumen/affinetransform"
	"lumen/ray"
	"lumen/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox is the empty box: growing it by anything yields that thing.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

func MinContainingAABox(a, b AABox) AABox {
	return AABox{
		X: ray.MinContainingSpan(a.X, b.X),
		Y: ray.MinContainingSpan(a.Y, b.Y),
		Z: ray.MinContainingSpan(a.Z, b.Z),
	}
}

func GrowAABoxToPoint(a AABox, b vec3.T) AABox {
	return MinContainingAABox(a, AABox{
		X: ray.Span{Lo: b[0], Hi: b[0]},
		Y: ray.Span{Lo: b[1], Hi: b[1]},
		Z: ray.Span{Lo: b[2], Hi: b[2]},
	})
}

// Axis returns the extent along axis i (0, 1 or 2).
func (a AABox) Axis(i int) ray.Span {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

func (a AABox) SurfaceArea() float64 {
	xLen := a.X.Hi - a.X.Lo
	yLen := a.Y.Hi - a.Y.Lo
	zLen := a.Z.Hi - a.Z.Lo
	return 2 * (xLen*yLen + xLen*zLen + yLen*zLen)
}

// Transform returns the box containing all eight transformed corners of a.
func (a AABox) Transform(t affinetransform.AffineTransform) AABox {
	result := AccumZeroAABox()
	for _, x := range [2]float64{a.X.Lo, a.X.Hi} {
		for _, y := range [2]float64{a.Y.Lo, a.Y.Hi} {
			for _, z := range [2]float64{a.Z.Lo, a.Z.Hi} {
				result = GrowAABoxToPoint(result, affinetransform.TransformPoint(t, vec3.T{x, y, z}))
			}
		}
	}
	return result
}

// RayTest clips seg to the part of the ray (origin, direction) inside b.  The
// result is NaNSpan if the ray misses b within seg.
func RayTest(origin, direction vec3.T, seg ray.Span, b AABox) ray.Span {
	cover := seg
	for i := 0; i < 3; i++ {
		axis := b.Axis(i)
		if axis.Lo > axis.Hi {
			return ray.NaNSpan()
		}

		cur := ray.Span{
			Lo: (axis.Lo - origin[i]) / direction[i],
			Hi: (axis.Hi - origin[i]) / direction[i],
		}
		if cur.Hi < cur.Lo {
			cur.Lo, cur.Hi = cur.Hi, cur.Lo
		}

		// A ray parallel to a slab and starting on its boundary yields NaN
		// here; treat it as inside.
		if math.IsNaN(cur.Lo) {
			cur.Lo = math.Inf(-1)
		}
		if math.IsNaN(cur.Hi) {
			cur.Hi = math.Inf(1)
		}

		if cur.Lo > cover.Lo {
			cover.Lo = cur.Lo
		}
		if cur.Hi < cover.Hi {
			cover.Hi = cur.Hi
		}
		if cover.Lo > cover.Hi {
			return ray.NaNSpan()
		}
	}
	return cover
}
