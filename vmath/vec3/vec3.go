// Package vec3 is the three-component value type used for both spatial
// vectors and linear-light colours.
package vec3

import (
	"math"
	"math/rand"
)

type T [3]float64

// Zero and One are the usual starting colour and mask of a ray.
var (
	Zero = T{0, 0, 0}
	One  = T{1, 1, 1}
)

// Splat returns a vector with all components set to s.
func Splat(s float64) T {
	return T{s, s, s}
}

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (v T) NormSquared() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// MaxComponent returns the largest of the three components.
func (v T) MaxComponent() float64 {
	return math.Max(v[0], math.Max(v[1], v[2]))
}

// Normalize scales v to unit length.  v must not be the zero vector; the
// result is NaN in that case.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// MulVV is the element-wise (Hadamard) product, used for colour filtering.
func MulVV(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func DivVV(a, b T) T {
	return T{
		a[0] / b[0],
		a[1] / b[1],
		a[2] / b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

// FMA returns a + b*s.
func FMA(a, b T, s float64) T {
	return T{
		a[0] + b[0]*s,
		a[1] + b[1]*s,
		a[2] + b[2]*s,
	}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func Neg(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

// PowVS raises each component of a to the power p.
func PowVS(a T, p float64) T {
	return T{
		math.Pow(a[0], p),
		math.Pow(a[1], p),
		math.Pow(a[2], p),
	}
}

// Exp is the element-wise natural exponential.
func Exp(a T) T {
	return T{
		math.Exp(a[0]),
		math.Exp(a[1]),
		math.Exp(a[2]),
	}
}

// Clamp limits each component of a to [lo, hi].  NaN components are mapped
// to lo.
func Clamp(a T, lo, hi float64) T {
	result := T{}
	for i := 0; i < 3; i++ {
		switch {
		case a[i] >= hi:
			result[i] = hi
		case a[i] >= lo:
			result[i] = a[i]
		default:
			result[i] = lo
		}
	}
	return result
}

func MinVV(a, b T) T {
	return T{
		math.Min(a[0], b[0]),
		math.Min(a[1], b[1]),
		math.Min(a[2], b[2]),
	}
}

func MaxVV(a, b T) T {
	return T{
		math.Max(a[0], b[0]),
		math.Max(a[1], b[1]),
		math.Max(a[2], b[2]),
	}
}

// Reject returns the component of b that is orthogonal to A.
func Reject(a, b T) T {
	return SubVV(b, MulVS(Normalize(a), IProd(a, b)/a.Norm()))
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// SphericalOffset maps spherical coordinates (theta measured from the third
// basis vector, phi around it starting at the first) onto the orthonormal basis
// (ref1, ref2, ref3).
func SphericalOffset(r, theta, phi float64, ref1, ref2, ref3 T) T {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)

	result := MulVS(ref1, r*sinTheta*cosPhi)
	result = FMA(result, ref2, r*sinTheta*sinPhi)
	result = FMA(result, ref3, r*cosTheta)
	return result
}

func UniformUnitDistribution(rng *rand.Rand) T {
	result := T{}
	for {
		result[0] = 2 * (rng.Float64() - 0.5)
		result[1] = 2 * (rng.Float64() - 0.5)
		result[2] = 2 * (rng.Float64() - 0.5)
		normSquared := result[0]*result[0] + result[1]*result[1] + result[2]*result[2]
		if normSquared <= 1.0 && normSquared != 0.0 {
			break
		}
	}
	return Normalize(result)
}

// IsotropicUnitDistribution draws a uniformly distributed direction from two
// variates, without rejection.
func IsotropicUnitDistribution(rng *rand.Rand) T {
	z := 1 - 2*rng.Float64()
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(math.Max(0, 1-z*z))
	sinPhi, cosPhi := math.Sincos(phi)
	return T{r * cosPhi, r * sinPhi, z}
}
