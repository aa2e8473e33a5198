// Package skybox holds the background seen by rays that leave the scene.
package skybox

import (
	"math"

	"lumen/material"
	"lumen/vmath/vec2"
	"lumen/vmath/vec3"
)

// Skybox returns the colour arriving from infinitely far away along a unit
// direction.  Implementations are immutable and safe for concurrent use.
type Skybox interface {
	Get(direction vec3.T) vec3.T
}

// Flat is the same colour in every direction.
type Flat struct {
	Background vec3.T
}

var _ Skybox = (*Flat)(nil)

func NewFlat(background vec3.T) *Flat {
	return &Flat{Background: background}
}

func (f *Flat) Get(direction vec3.T) vec3.T {
	return f.Background
}

// Gradient blends linearly from Horizon, for directions perpendicular to Up,
// to Zenith straight up.  Directions below the horizon see Ground.
type Gradient struct {
	Up      vec3.T
	Ground  vec3.T
	Horizon vec3.T
	Zenith  vec3.T
}

var _ Skybox = (*Gradient)(nil)

func (g *Gradient) Get(direction vec3.T) vec3.T {
	t := vec3.IProd(direction, vec3.Normalize(g.Up))
	if t < 0 {
		return g.Ground
	}
	return vec3.AddVV(vec3.MulVS(g.Horizon, 1-t), vec3.MulVS(g.Zenith, t))
}

// Directional is a window into an environment map.  Emissivity is queried
// with UV set to the azimuth and polar angle of the direction and Point set to
// the direction itself.
//
// An optional sun is added on top: a disc of angular radius SunRadius around
// SunDirection, of colour SunColour.
type Directional struct {
	Emissivity material.ColourMap

	SunDirection vec3.T
	SunRadius    float64
	SunColour    vec3.T
}

var _ Skybox = (*Directional)(nil)

func (d *Directional) Get(direction vec3.T) vec3.T {
	coords := material.MaterialCoords{
		UV: vec2.T{
			math.Atan2(direction[0], direction[1]),
			math.Acos(math.Max(-1, math.Min(1, direction[2]))),
		},
		Point: direction,
	}

	colour := d.Emissivity(coords)
	if d.SunRadius > 0 && vec3.IProd(direction, vec3.Normalize(d.SunDirection)) >= math.Cos(d.SunRadius) {
		colour = vec3.AddVV(colour, d.SunColour)
	}
	return colour
}
