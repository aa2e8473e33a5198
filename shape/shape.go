// Package shape implements the geometric primitives a scene is built from.
package shape

import (
	"lumen/aabox"
	"lumen/ray"
	"lumen/vmath/vec2"
	"lumen/vmath/vec3"
)

// Shape is a surface that rays can hit and bounce off.
//
// Intersect reports the ray parameter and object-space coordinates uv of the
// first hit at t >= 0.  Normal and NormalUV answer queries about the surface
// at those uv coordinates; normals are not necessarily unit length and may
// face either side of the surface.
type Shape interface {
	// Crush prepares cached world-space data for the given time.  It must be
	// called before any other query, and not concurrently with them.
	Crush(time float64)

	Intersect(r *ray.Ray) (t float64, uv vec2.T, ok bool)
	Normal(time float64, uv vec2.T) vec3.T

	// NormalUV also returns texture coordinates at uv.
	NormalUV(time float64, uv vec2.T) (vec3.T, vec2.T)

	Bounds() aabox.AABox
}
