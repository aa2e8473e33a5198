package skybox

import (
	"math"
	"testing"

	"lumen/material"
	"lumen/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFlat(t *testing.T) {
	sky := NewFlat(vec3.T{0.75, 0.75, 0.99})
	for _, d := range []vec3.T{{1, 0, 0}, {0, 0, -1}, vec3.Normalize(vec3.T{1, 1, 1})} {
		if diff := cmp.Diff(sky.Get(d), vec3.T{0.75, 0.75, 0.99}); diff != "" {
			t.Errorf("Flat sky varies with direction %v; diff (-got +want)\n%s", d, diff)
		}
	}
}

func TestGradient(t *testing.T) {
	sky := &Gradient{
		Up:      vec3.T{0, 0, 2},
		Ground:  vec3.T{0.1, 0.1, 0.1},
		Horizon: vec3.T{1, 1, 1},
		Zenith:  vec3.T{0, 0, 1},
	}

	testCases := []struct {
		desc string
		dir  vec3.T
		want vec3.T
	}{
		{"zenith", vec3.T{0, 0, 1}, vec3.T{0, 0, 1}},
		{"horizon", vec3.T{1, 0, 0}, vec3.T{1, 1, 1}},
		{"half way", vec3.T{math.Sqrt(0.75), 0, 0.5}, vec3.T{0.5, 0.5, 1}},
		{"below", vec3.T{0, 0.6, -0.8}, vec3.T{0.1, 0.1, 0.1}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(sky.Get(tc.dir), tc.want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("Bad colour; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestDirectional(t *testing.T) {
	var lookups []material.MaterialCoords
	sky := &Directional{
		Emissivity: func(c material.MaterialCoords) vec3.T {
			lookups = append(lookups, c)
			return vec3.T{0.1, 0.2, 0.3}
		},
		SunDirection: vec3.T{0, 0, 3},
		SunRadius:    0.1,
		SunColour:    vec3.T{10, 10, 10},
	}

	if diff := cmp.Diff(sky.Get(vec3.T{0, 0, 1}), vec3.T{10.1, 10.2, 10.3}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Looking at the sun; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(sky.Get(vec3.T{0, 1, 0}), vec3.T{0.1, 0.2, 0.3}); diff != "" {
		t.Errorf("Looking away from the sun; diff (-got +want)\n%s", diff)
	}

	if len(lookups) != 2 {
		t.Fatalf("Got %d environment lookups, want 2", len(lookups))
	}
	last := lookups[1]
	if diff := cmp.Diff(last.Point, vec3.T{0, 1, 0}); diff != "" {
		t.Errorf("Bad lookup point; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(last.UV[1], math.Pi/2, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad polar angle; diff (-got +want)\n%s", diff)
	}
}
