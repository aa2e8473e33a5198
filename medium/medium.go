// Package medium implements the volumes a ray can travel through.
//
// A medium has a refractive index, used by refractive materials, and a
// priority used to resolve overlapping media: a ray's active medium is the
// highest priority entry of its medium list.
package medium

import (
	"math"
	"math/rand"

	"lumen/ray"
	"lumen/vmath/vec3"
)

type Medium = ray.Medium

// NonAbsorber does not interact with light.  It models clear air or vacuum
// and is the identity of the medium protocol.
type NonAbsorber struct {
	IndexOfRefraction float64
	Prio              uint32
}

var _ Medium = (*NonAbsorber)(nil)

func NewNonAbsorber(index float64, priority uint32) *NonAbsorber {
	return &NonAbsorber{IndexOfRefraction: index, Prio: priority}
}

func (n *NonAbsorber) Index() float64   { return n.IndexOfRefraction }
func (n *NonAbsorber) Priority() uint32 { return n.Prio }

// Scatter never changes the ray.
func (n *NonAbsorber) Scatter(rng *rand.Rand, r *ray.Ray) bool {
	return false
}

// Absorber attenuates rays exponentially with distance travelled and emits
// light proportionally to it.
type Absorber struct {
	IndexOfRefraction float64
	Prio              uint32

	// EmissionVol is the colour emitted per unit distance.
	EmissionVol vec3.T

	// AbsorptionVol is the per-unit-distance absorption coefficient.
	AbsorptionVol vec3.T
}

var _ Medium = (*Absorber)(nil)

// NewAbsorber builds an absorber that tints light towards colour, removing
// (1 - colour) of each channel per absorptionDistance of travel.
func NewAbsorber(emission, colour vec3.T, emissionDistance, absorptionDistance, index float64, priority uint32) *Absorber {
	return &Absorber{
		IndexOfRefraction: index,
		Prio:              priority,
		EmissionVol:       vec3.DivVS(emission, emissionDistance),
		AbsorptionVol:     vec3.DivVS(vec3.SubVV(vec3.One, colour), absorptionDistance),
	}
}

func (a *Absorber) Index() float64   { return a.IndexOfRefraction }
func (a *Absorber) Priority() uint32 { return a.Prio }

func (a *Absorber) Scatter(rng *rand.Rand, r *ray.Ray) bool {
	absorb(r, a.EmissionVol, a.AbsorptionVol, r.Dist)
	return false
}

func absorb(r *ray.Ray, emissionVol, absorptionVol vec3.T, dist float64) {
	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, vec3.MulVS(emissionVol, dist)))
	r.Mask = vec3.MulVV(r.Mask, vec3.Exp(vec3.MulVS(absorptionVol, -dist)))
}

// Scatterer is an Absorber that can also redirect rays part way through the
// volume, modelling fog or smoke.
type Scatterer struct {
	Absorber

	// ScatteringDistance is the mean free path between scattering events.
	ScatteringDistance float64

	ScatteringEmission vec3.T
	ScatteringColour   vec3.T
}

var _ Medium = (*Scatterer)(nil)

func NewScatterer(emission, colour vec3.T, emissionDistance, absorptionDistance, index float64, priority uint32, scatteringEmission, scatteringColour vec3.T, scatteringDistance float64) *Scatterer {
	return &Scatterer{
		Absorber:           *NewAbsorber(emission, colour, emissionDistance, absorptionDistance, index, priority),
		ScatteringDistance: scatteringDistance,
		ScatteringEmission: scatteringEmission,
		ScatteringColour:   scatteringColour,
	}
}

// Scatter samples a free-flight distance.  If it ends before the next
// surface, the ray is moved there and sent in an isotropic direction.
func (s *Scatterer) Scatter(rng *rand.Rand, r *ray.Ray) bool {
	d := -s.ScatteringDistance * math.Log(1-rng.Float64())
	if d >= r.Dist {
		absorb(r, s.EmissionVol, s.AbsorptionVol, r.Dist)
		return false
	}

	absorb(r, s.EmissionVol, s.AbsorptionVol, d)
	r.Origin = r.Eval(d)
	r.Direction = vec3.IsotropicUnitDistribution(rng)
	r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, s.ScatteringEmission))
	r.Mask = vec3.MulVV(r.Mask, s.ScatteringColour)
	return true
}
