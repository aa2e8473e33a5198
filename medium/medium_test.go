package medium

import (
	"math"
	"math/rand"
	"testing"

	"lumen/ray"
	"lumen/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newRay(dist float64) ray.Ray {
	r := ray.New(vec3.T{0, 0, 0}, vec3.T{0, 1, 0}, ray.NewMediumList(NewNonAbsorber(1, 0)))
	r.Colour = vec3.T{0.1, 0.2, 0.3}
	r.Mask = vec3.T{0.5, 0.5, 0.5}
	r.Dist = dist
	return r
}

func TestNonAbsorberIsIdentity(t *testing.T) {
	m := NewNonAbsorber(1.33, 7)
	r := newRay(3)
	want := r

	if m.Scatter(rand.New(rand.NewSource(1)), &r) {
		t.Errorf("NonAbsorber reported a scatter")
	}
	got := []vec3.T{r.Origin, r.Direction, r.Colour, r.Mask}
	if diff := cmp.Diff(got, []vec3.T{want.Origin, want.Direction, want.Colour, want.Mask}); diff != "" {
		t.Errorf("NonAbsorber changed the ray; diff (-got +want)\n%s", diff)
	}
	if r.Dist != want.Dist || r.Media.Len() != want.Media.Len() {
		t.Errorf("NonAbsorber changed the ray's distance or media")
	}
	if m.Index() != 1.33 || m.Priority() != 7 {
		t.Errorf("Got index %v priority %v, want 1.33 and 7", m.Index(), m.Priority())
	}
}

func TestAbsorber(t *testing.T) {
	// Absorbs half of red per unit distance, emits 0.2 green per unit
	// distance.
	a := NewAbsorber(vec3.T{0, 0.4, 0}, vec3.T{0.5, 1, 1}, 2, 1, 1.0, 1)
	r := newRay(2)

	if a.Scatter(rand.New(rand.NewSource(1)), &r) {
		t.Errorf("Absorber reported a scatter")
	}

	wantMask := vec3.T{0.5 * math.Exp(-1), 0.5, 0.5}
	if diff := cmp.Diff(r.Mask, wantMask, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad mask; diff (-got +want)\n%s", diff)
	}

	wantColour := vec3.T{0.1, 0.2 + 0.5*0.2*2, 0.3}
	if diff := cmp.Diff(r.Colour, wantColour, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad colour; diff (-got +want)\n%s", diff)
	}
}

func TestScattererBeyondSurfaceActsAsAbsorber(t *testing.T) {
	// A mean free path this long never scatters before a surface 1 unit away
	// in practice.
	s := NewScatterer(vec3.Zero, vec3.T{0.5, 1, 1}, 1, 1, 1.0, 1, vec3.Zero, vec3.One, 1e300)
	a := NewAbsorber(vec3.Zero, vec3.T{0.5, 1, 1}, 1, 1, 1.0, 1)

	rs := newRay(1)
	ra := newRay(1)
	if s.Scatter(rand.New(rand.NewSource(1)), &rs) {
		t.Fatalf("Scatterer scattered despite an enormous mean free path")
	}
	a.Scatter(nil, &ra)

	if diff := cmp.Diff(rs.Mask, ra.Mask); diff != "" {
		t.Errorf("Scatterer mask differs from Absorber; diff (-got +want)\n%s", diff)
	}
}

func TestScattererRedirects(t *testing.T) {
	// A tiny mean free path always scatters before a surface far away.
	s := NewScatterer(vec3.Zero, vec3.One, 1, 1, 1.0, 1, vec3.T{1, 0, 0}, vec3.T{0.5, 0.5, 0.5}, 1e-9)
	r := newRay(1000)

	if !s.Scatter(rand.New(rand.NewSource(1)), &r) {
		t.Fatalf("Scatterer did not scatter despite a tiny mean free path")
	}

	if r.Origin[1] <= 0 || r.Origin[1] >= 1e-6 {
		t.Errorf("Scattered origin %v is not just ahead of the start", r.Origin)
	}
	if n := r.Direction.Norm(); math.Abs(n-1) > 1e-12 {
		t.Errorf("Scattered direction has norm %v", n)
	}
	if diff := cmp.Diff(r.Mask, vec3.T{0.25, 0.25, 0.25}, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Bad mask; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(r.Colour, vec3.T{0.6, 0.2, 0.3}, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Bad colour; diff (-got +want)\n%s", diff)
	}
}
