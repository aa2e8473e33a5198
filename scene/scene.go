// Package scene owns the shapes, materials and media of a render, and answers
// the question of what a ray runs into.
package scene

import (
	"math"
	"math/rand"

	"lumen/aabox"
	"lumen/contact"
	"lumen/kdtree"
	"lumen/material"
	"lumen/ray"
	"lumen/shape"
	"lumen/skybox"
	"lumen/vmath/vec3"
)

type SceneElement struct {
	TheShape      shape.Shape
	MaterialIndex int
}

// Scene is built single-threaded with the Add methods, then frozen with
// Crush.  After Crush it is read-only, and Intersect and Raycast may be called
// from any number of goroutines.
type Scene struct {
	Materials []material.Material
	Media     []ray.Medium
	Elements  []SceneElement

	// MaskCutoff stops a ray once every component of its mask falls below it.
	// Zero disables the cutoff.
	MaskCutoff float64

	QueryAccelerator *kdtree.KDTree
}

// AddMaterial is a convenience function to register a material and get its
// index.
func (s *Scene) AddMaterial(m material.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddMedium registers a medium so that it lives as long as the scene.  Rays
// only hold references to media.
func (s *Scene) AddMedium(m ray.Medium) int {
	s.Media = append(s.Media, m)
	return len(s.Media) - 1
}

// Add places a shape in the scene, surfaced with the material at
// materialIndex, and returns the element index.
func (s *Scene) Add(sh shape.Shape, materialIndex int) int {
	s.Elements = append(s.Elements, SceneElement{
		TheShape:      sh,
		MaterialIndex: materialIndex,
	})
	return len(s.Elements) - 1
}

// Crush prepares every shape for the given time and rebuilds the query
// accelerator.
func (s *Scene) Crush(time float64) {
	kdElements := []kdtree.KDElement{}
	for i, element := range s.Elements {
		element.TheShape.Crush(time)
		kdElements = append(kdElements, kdtree.KDElement{
			Ref:    i,
			Bounds: element.TheShape.Bounds(),
		})
	}

	s.QueryAccelerator = kdtree.NewKDTree(kdElements)
	s.QueryAccelerator.RefineViaSurfaceAreaHeuristic(1.0, 0.9)
}

// Intersect finds the nearest element in front of r.  Only r's origin and
// direction are read.
func (s *Scene) Intersect(r *ray.Ray) (contact.Contact, bool) {
	if s.QueryAccelerator == nil {
		return s.intersectAll(r)
	}

	best := contact.ContactNaN()
	seg := ray.Span{Lo: 0, Hi: math.Inf(1)}

	selector := func(b aabox.AABox) bool {
		return !aabox.RayTest(r.Origin, r.Direction, seg, b).IsNaN()
	}

	visitor := func(i int) {
		t, uv, ok := s.Elements[i].TheShape.Intersect(r)
		if ok && t < seg.Hi {
			seg.Hi = t
			best = contact.Contact{T: t, UV: uv, Element: i}
		}
	}

	s.QueryAccelerator.Query(selector, visitor)

	return best, !best.IsNaN()
}

// intersectAll tests every element.  It serves scenes that were never
// crushed.
func (s *Scene) intersectAll(r *ray.Ray) (contact.Contact, bool) {
	best := contact.ContactNaN()
	for i := range s.Elements {
		t, uv, ok := s.Elements[i].TheShape.Intersect(r)
		if ok && (best.IsNaN() || t < best.T) {
			best = contact.Contact{T: t, UV: uv, Element: i}
		}
	}
	return best, !best.IsNaN()
}

// Raycast follows r through the scene for at most maxBounces interactions,
// accumulating light into r.Colour.  A ray that escapes picks up the skybox
// colour, weighted by its mask.  Running out of bounces is not an error; the
// ray simply contributes what it has gathered.
//
// r.Media must not be empty.
func (s *Scene) Raycast(rng *rand.Rand, r *ray.Ray, maxBounces int, sky skybox.Skybox) {
	for bounce := 0; bounce < maxBounces; bounce++ {
		hit, ok := s.Intersect(r)
		if !ok {
			r.Colour = vec3.AddVV(r.Colour, vec3.MulVV(r.Mask, sky.Get(r.Direction)))
			return
		}

		r.Dist = hit.T
		if !r.Media.Active().Scatter(rng, r) {
			element := &s.Elements[hit.Element]
			s.Materials[element.MaterialIndex].Bounce(rng, hit.UV, element.TheShape, r)
		}

		if s.MaskCutoff > 0 && r.Mask.MaxComponent() < s.MaskCutoff {
			return
		}
	}
}
