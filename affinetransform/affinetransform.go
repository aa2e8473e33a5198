// Package affinetransform places cameras and shapes in world space.
package affinetransform

import (
	"lumen/vmath/mat33"
	"lumen/vmath/vec3"
)

type AffineTransform struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() AffineTransform {
	return AffineTransform{
		Linear: mat33.Identity(),
	}
}

func Scale(s float64) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{s, 0.0, 0.0, 0.0, s, 0.0, 0.0, 0.0, s},
	}
}

func Translate(x vec3.T) AffineTransform {
	result := Identity()
	result.Offset = x
	return result
}

// Rotate returns a rotation by angle radians about the unit vector axis,
// through the origin.
func Rotate(axis vec3.T, angle float64) AffineTransform {
	return AffineTransform{
		Linear: mat33.RotationAxisAngle(axis, angle),
	}
}

// Compose returns the transform that applies b, then a.
func Compose(a, b AffineTransform) AffineTransform {
	return AffineTransform{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

func (t AffineTransform) Invert() AffineTransform {
	inv := mat33.Inverse(t.Linear)
	return AffineTransform{
		Linear: inv,
		Offset: vec3.Neg(mat33.MulMV(inv, t.Offset)),
	}
}

// NormalTransformMat is the matrix that carries surface normals through t.
func (t AffineTransform) NormalTransformMat() mat33.T {
	return mat33.Transpose(mat33.Inverse(t.Linear))
}

func TransformPoint(a AffineTransform, b vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(a.Linear, b), a.Offset)
}

// TransformDirection applies only the linear part of a.
func TransformDirection(a AffineTransform, b vec3.T) vec3.T {
	return mat33.MulMV(a.Linear, b)
}
