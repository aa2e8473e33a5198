// Package ray holds the transport state a sample carries through a scene.
package ray

import (
	"math"
	"math/rand"

	"lumen/vmath/vec3"
)

// Span is a closed interval of ray parameters.
type Span struct {
	Lo, Hi float64
}

func NaNSpan() Span {
	return Span{math.NaN(), math.NaN()}
}

func SpanOverlaps(a, b Span) bool {
	return !(a.Lo > b.Hi || a.Hi <= b.Lo)
}

func MinContainingSpan(a, b Span) Span {
	return Span{math.Min(a.Lo, b.Lo), math.Max(a.Hi, b.Hi)}
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

// Medium is a volume a ray can travel through, like air, water or glass.
//
// Scatter is called once per bounce with r.Dist set to the distance to the
// next surface.  It returns true when the medium itself changed the ray's
// path, in which case the surface bounce is skipped.
type Medium interface {
	Index() float64
	Priority() uint32
	Scatter(rng *rand.Rand, r *Ray) bool
}

// Ray is the mutable state of one sample.  It is created per pixel sample and
// never shared between goroutines.
type Ray struct {
	Origin    vec3.T
	Direction vec3.T

	// Colour is the light collected so far.  Starts at zero.
	Colour vec3.T

	// Mask is the throughput not yet absorbed.  Starts at one; emission seen
	// at a bounce is weighted by it.
	Mask vec3.T

	// Dist is the distance to the intersection that started the current
	// bounce.
	Dist float64

	// Time is the emission time relative to the exposure, 0 at the start and 1
	// at the end.
	Time float64

	Media MediumList
}

// New returns a ray with no collected colour and full throughput.
func New(origin, direction vec3.T, media MediumList) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		Colour:    vec3.Zero,
		Mask:      vec3.One,
		Time:      1,
		Media:     media,
	}
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.FMA(r.Origin, r.Direction, t)
}
