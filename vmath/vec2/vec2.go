package vec2

import "math"

// T holds object-space surface coordinates (u, v) or texture coordinates.
type T [2]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Barycentric blends three values with weights (1-u-v, u, v).
func Barycentric(uv T, a, b, c T) T {
	w := 1 - uv[0] - uv[1]
	return T{
		w*a[0] + uv[0]*b[0] + uv[1]*c[0],
		w*a[1] + uv[0]*b[1] + uv[1]*c[1],
	}
}
