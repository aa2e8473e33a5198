package material

import (
	"math"

	"lumen/vmath/vec2"
	"lumen/vmath/vec3"
)

// MaterialCoords locates a lookup into a map: UV is the texture coordinate of
// the hit, Point its world-space position.
type MaterialCoords struct {
	UV    vec2.T
	Point vec3.T
}

type ScalarMap func(MaterialCoords) float64

type ColourMap func(MaterialCoords) vec3.T

func ConstantScalar(scalar float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		return scalar
	}
}

func ConstantColour(colour vec3.T) ColourMap {
	return func(coords MaterialCoords) vec3.T {
		return colour
	}
}

func LerpBetween(t ScalarMap, a, b ColourMap) ColourMap {
	return func(coords MaterialCoords) vec3.T {
		tVal := t(coords)
		return vec3.AddVV(vec3.MulVS(a(coords), 1.0-tVal), vec3.MulVS(b(coords), tVal))
	}
}

func SwitchBetween(tSwitch float64, t ScalarMap, a, b ColourMap) ColourMap {
	return func(coords MaterialCoords) vec3.T {
		if t(coords) < tSwitch {
			return a(coords)
		}
		return b(coords)
	}
}

func Clamp(min, max float64, a ScalarMap) ScalarMap {
	return func(coords MaterialCoords) float64 {
		aVal := a(coords)
		if aVal < min {
			return min
		}
		if aVal >= max {
			return max
		}
		return aVal
	}
}

func parity(q float64) int {
	if q-math.Floor(q) > 0.5 {
		return 1
	}
	return 0
}

func CheckerboardSurface(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		p := parity(coords.UV[0]/period) ^ parity(coords.UV[1]/period)
		return float64(p)
	}
}

func CheckerboardVolume(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		p := parity(coords.Point[0]/period) ^ parity(coords.Point[1]/period) ^ parity(coords.Point[2]/period)
		return float64(p)
	}
}

func BullseyeSurface(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		d := coords.UV.Norm() / period
		if _, frac := math.Modf(d); frac < 0.5 {
			return 0.0
		}
		return 1.0
	}
}

func BullseyeVolume(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		d := coords.Point.Norm() / period
		if _, frac := math.Modf(d); frac < 0.5 {
			return 0.0
		}
		return 1.0
	}
}

// A multiplicative hash (in Knuth's style), that makes use of the fact that we
// only use 24 input bits.
func hashmul(x uint32) uint32 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x)
	return x
}

// perlinDotGrad dots the offset (d0, d1, d2) with one of twelve edge gradients
// picked by hashing the lattice cell.
func perlinDotGrad(c0, c1, c2 uint32, d0, d1, d2 float64) float64 {
	hash := hashmul(((c0 & 0xff) << 16) | ((c1 & 0xff) << 8) | (c2 & 0xff))

	switch hash & 0x0f {
	case 0x0, 0xc:
		return d0 + d1
	case 0x1:
		return d0 - d1
	case 0x2, 0xd:
		return -d0 + d1
	case 0x3:
		return -d0 - d1
	case 0x4:
		return d1 + d2
	case 0x5:
		return d1 - d2
	case 0x6, 0xe:
		return -d1 + d2
	case 0x7, 0xf:
		return -d1 - d2
	case 0x8:
		return d2 + d0
	case 0x9:
		return d2 - d0
	case 0xa:
		return -d2 + d0
	default:
		return -d2 - d0
	}
}

func fade(x float64) float64 {
	return x * x * x * (x*(x*6.0-15.0) + 10.0)
}

func lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

func perlin(x, y, z float64) float64 {
	cellX := uint32(int32(math.Floor(x)) & 0xff)
	cellY := uint32(int32(math.Floor(y)) & 0xff)
	cellZ := uint32(int32(math.Floor(z)) & 0xff)

	xRel := x - math.Floor(x)
	yRel := y - math.Floor(y)
	zRel := z - math.Floor(z)

	plane := func(dz uint32, zr float64) float64 {
		return lerp(fade(yRel),
			lerp(fade(xRel),
				perlinDotGrad(cellX, cellY, cellZ+dz, xRel, yRel, zr),
				perlinDotGrad(cellX+1, cellY, cellZ+dz, xRel-1, yRel, zr),
			),
			lerp(fade(xRel),
				perlinDotGrad(cellX, cellY+1, cellZ+dz, xRel, yRel-1, zr),
				perlinDotGrad(cellX+1, cellY+1, cellZ+dz, xRel-1, yRel-1, zr),
			),
		)
	}
	return lerp(fade(zRel), plane(0, zRel), plane(1, zRel-1))
}

func PerlinSurface(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		return perlin(coords.UV[0]*256.0/period, coords.UV[1]*256.0/period, 0)
	}
}

func PerlinVolume(period float64) ScalarMap {
	return func(coords MaterialCoords) float64 {
		return perlin(coords.Point[0]*256.0/period, coords.Point[1]*256.0/period, coords.Point[2]*256.0/period)
	}
}
