// Package material implements the surface response of a ray bounce.
package material

import (
	"math"
	"math/rand"

	"lumen/ray"
	"lumen/shape"
	"lumen/vmath/vec2"
	"lumen/vmath/vec3"
)

// SurfaceOffset is how far a bounced ray's origin is pushed off the surface,
// so that the next cast does not hit the same point.
const SurfaceOffset = 1e-8

// Material decides what happens to a ray that hits a surface.
//
// Bounce is called with r.Dist set to the distance to the hit and uv the
// object-space coordinates reported by hit.  It moves r to the hit point,
// picks the outgoing direction, adds r.Mask*emission to r.Colour, then
// attenuates r.Mask.  Implementations are immutable and safe for concurrent
// use.
type Material interface {
	Bounce(rng *rand.Rand, uv vec2.T, hit shape.Shape, r *ray.Ray)
}

// facing returns the unit normal n flipped, if necessary, to point against
// direction.
func facing(n, direction vec3.T) vec3.T {
	n = vec3.Normalize(n)
	if vec3.IProd(n, direction) > 0 {
		return vec3.Neg(n)
	}
	return n
}

// cosineDirection samples a direction around normal, and reports the cosine
// of its angle to normal.
func cosineDirection(rng *rand.Rand, normal vec3.T) (vec3.T, float64) {
	rand1 := 2 * math.Pi * rng.Float64()
	rand2 := rng.Float64()
	rand2s := math.Sqrt(rand2)

	axis := vec3.T{1, 0, 0}
	if math.Abs(normal[0]) > 0.1 {
		axis = vec3.T{0, 1, 0}
	}

	u := vec3.Normalize(vec3.CProd(axis, normal))
	v := vec3.CProd(normal, u)

	sinPhi, cosPhi := math.Sincos(rand1)
	dir := vec3.MulVS(u, cosPhi*rand2s)
	dir = vec3.FMA(dir, v, sinPhi*rand2s)
	dir = vec3.FMA(dir, normal, math.Sqrt(1-rand2))
	dir = vec3.Normalize(dir)
	return dir, vec3.IProd(dir, normal)
}

// Diffuse scatters light over the hemisphere above the surface, like matte
// paint or chalk.
//
// Roughness is in [0, 1].  At 1 the surface follows Lambert's cosine law; at
// 0 the reflected colour does not fall off with angle.
type Diffuse struct {
	Emission  vec3.T
	Colour    vec3.T
	Roughness float64
}

var _ Material = (*Diffuse)(nil)

func NewDiffuse(emission, colour vec3.T, roughness float64) *Diffuse {
	return &Diffuse{
		Emission:  emission,
		Colour:    colour,
		Roughness: roughness,
	}
}

func (d *Diffuse) Bounce(rng *rand.Rand, uv vec2.T, hit shape.Shape, r *ray.Ray) {
	normal := facing(hit.Normal(r.Time, uv), r.Direction)
	dir, cos := cosineDirection(rng, normal)

	r.Origin = vec3.FMA(vec3.FMA(r.Origin, r.Direction, r.Dist), normal, SurfaceOffset)
	r.Direction = dir
	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, d.Emission))
	r.Mask = vec3.MulVS(vec3.MulVV(r.Mask, d.Colour), math.Pow(cos, d.Roughness))
}

// TexturedDiffuse is Diffuse with its reflected colour looked up from a map at
// the shape's texture coordinates.
type TexturedDiffuse struct {
	Emission  vec3.T
	Texture   ColourMap
	Roughness float64
}

var _ Material = (*TexturedDiffuse)(nil)

func (d *TexturedDiffuse) Bounce(rng *rand.Rand, uv vec2.T, hit shape.Shape, r *ray.Ray) {
	n, texCoords := hit.NormalUV(r.Time, uv)
	normal := facing(n, r.Direction)
	dir, cos := cosineDirection(rng, normal)

	point := vec3.FMA(r.Origin, r.Direction, r.Dist)
	colour := d.Texture(MaterialCoords{UV: texCoords, Point: point})

	r.Origin = vec3.FMA(point, normal, SurfaceOffset)
	r.Direction = dir
	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, d.Emission))
	r.Mask = vec3.MulVS(vec3.MulVV(r.Mask, colour), math.Pow(cos, d.Roughness))
}

// Reflective is a mirror.  A non-zero Roughness blurs the reflection by
// jittering the mirror direction within a ball of that radius.
type Reflective struct {
	Emission  vec3.T
	Colour    vec3.T
	Roughness float64
}

var _ Material = (*Reflective)(nil)

func (m *Reflective) Bounce(rng *rand.Rand, uv vec2.T, hit shape.Shape, r *ray.Ray) {
	normal := facing(hit.Normal(r.Time, uv), r.Direction)

	dir := vec3.Reflect(r.Direction, normal)
	if m.Roughness > 0 {
		jittered := vec3.FMA(dir, vec3.UniformUnitDistribution(rng), m.Roughness)
		if vec3.IProd(jittered, normal) > 0 {
			dir = vec3.Normalize(jittered)
		}
	}

	r.Origin = vec3.FMA(vec3.FMA(r.Origin, r.Direction, r.Dist), normal, SurfaceOffset)
	r.Direction = dir
	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, m.Emission))
	r.Mask = vec3.MulVV(r.Mask, m.Colour)
}

// Refractive is the boundary of a transparent volume filled with Medium.
//
// A ray hitting it is either reflected or transmitted, weighted by Schlick's
// approximation of the Fresnel term.  Transmitted rays entering the volume
// have Medium added to their medium list; rays leaving it have it removed.
type Refractive struct {
	Emission vec3.T
	Colour   vec3.T
	Medium   ray.Medium
}

var _ Material = (*Refractive)(nil)

func (m *Refractive) Bounce(rng *rand.Rand, uv vec2.T, hit shape.Shape, r *ray.Ray) {
	normal := facing(hit.Normal(r.Time, uv), r.Direction)
	point := vec3.FMA(r.Origin, r.Direction, r.Dist)

	n1 := r.Media.Active().Index()
	var n2 float64
	exiting := r.Media.Active() == m.Medium
	if exiting {
		n2 = 1.0
		if r.Media.Len() > 1 {
			n2 = r.Media.At(1).Index()
		}
	} else {
		n2 = m.Medium.Index()
	}

	cosI := -vec3.IProd(r.Direction, normal)
	eta := n1 / n2
	k := 1 - eta*eta*(1-cosI*cosI)

	reflect := k < 0
	if !reflect {
		r0 := (n1 - n2) / (n1 + n2)
		r0 *= r0
		schlick := r0 + (1-r0)*math.Pow(1-cosI, 5)
		reflect = rng.Float64() < schlick
	}

	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, m.Emission))
	r.Mask = vec3.MulVV(r.Mask, m.Colour)

	if reflect {
		r.Origin = vec3.FMA(point, normal, SurfaceOffset)
		r.Direction = vec3.Reflect(r.Direction, normal)
		return
	}

	r.Origin = vec3.FMA(point, normal, -SurfaceOffset)
	r.Direction = vec3.Normalize(vec3.FMA(vec3.MulVS(r.Direction, eta), normal, eta*cosI-math.Sqrt(k)))
	if exiting {
		r.Media.Remove(m.Medium)
	} else {
		r.Media.Add(m.Medium)
	}
}
