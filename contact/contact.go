// Package contact holds the record of a ray hitting a scene element.
package contact

import (
	"math"

	"lumen/vmath/vec2"
)

type Contact struct {
	// T is the ray parameter of the hit.
	T float64

	// UV is the object-space coordinate of the hit, in whatever
	// parameterization the shape uses.
	UV vec2.T

	// Element is the index of the hit scene element.
	Element int
}

func ContactNaN() Contact {
	return Contact{
		T:       math.NaN(),
		Element: -1,
	}
}

func (c Contact) IsNaN() bool {
	return math.IsNaN(c.T)
}
