package shape

import (
	"testing"

	"lumen/affinetransform"
	"lumen/ray"
	"lumen/vmath/mat33"
	"lumen/vmath/vec2"
	"lumen/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func castRay(origin, direction vec3.T) *ray.Ray {
	r := ray.New(origin, direction, ray.MediumList{})
	return &r
}

func TestTriangleIntersect(t *testing.T) {
	tri := NewTriangle(affinetransform.Identity(), [3]vec3.T{{0, 2, 0}, {1, 2, 0}, {0, 2, 1}})

	testCases := []struct {
		desc      string
		origin    vec3.T
		direction vec3.T
		wantHit   bool
		wantT     float64
		wantUV    vec2.T
	}{
		{"inside", vec3.T{0.2, 0, 0.2}, vec3.T{0, 1, 0}, true, 2, vec2.T{0.2, 0.2}},
		{"from behind", vec3.T{0.2, 4, 0.2}, vec3.T{0, -1, 0}, true, 2, vec2.T{0.2, 0.2}},
		{"outside the edge", vec3.T{0.8, 0, 0.8}, vec3.T{0, 1, 0}, false, 0, vec2.T{}},
		{"pointing away", vec3.T{0.2, 0, 0.2}, vec3.T{0, -1, 0}, false, 0, vec2.T{}},
		{"parallel", vec3.T{0.2, 0, 0.2}, vec3.T{1, 0, 0}, false, 0, vec2.T{}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gotT, gotUV, gotHit := tri.Intersect(castRay(tc.origin, tc.direction))
			if gotHit != tc.wantHit {
				t.Fatalf("Got hit %v, want %v", gotHit, tc.wantHit)
			}
			if !gotHit {
				return
			}
			if diff := cmp.Diff(gotT, tc.wantT, approx); diff != "" {
				t.Errorf("Bad distance; diff (-got +want)\n%s", diff)
			}
			if diff := cmp.Diff(gotUV, tc.wantUV, approx); diff != "" {
				t.Errorf("Bad uv; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestTriangleNormalAndTexCoords(t *testing.T) {
	tri := NewTriangle(affinetransform.Identity(), [3]vec3.T{{0, 2, 0}, {1, 2, 0}, {0, 2, 1}})

	n, tex := tri.NormalUV(0, vec2.T{0.25, 0.5})
	if diff := cmp.Diff(n, vec3.T{0, -1, 0}, approx); diff != "" {
		t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
	}

	// Default texture coordinates are (0,1), (0,0), (1,0).
	if diff := cmp.Diff(tex, vec2.T{0.5, 0.25}, approx); diff != "" {
		t.Errorf("Bad texture coordinates; diff (-got +want)\n%s", diff)
	}
}

func TestTriangleTransform(t *testing.T) {
	tri := NewTriangle(affinetransform.Translate(vec3.T{0, 3, 0}), [3]vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}})

	gotT, _, ok := tri.Intersect(castRay(vec3.T{0.1, 0, 0.1}, vec3.T{0, 1, 0}))
	if !ok {
		t.Fatalf("Missed the translated triangle")
	}
	if diff := cmp.Diff(gotT, 3.0, approx); diff != "" {
		t.Errorf("Bad distance; diff (-got +want)\n%s", diff)
	}

	b := tri.Bounds()
	if b.Y.Lo != 3 || b.Y.Hi != 3 {
		t.Errorf("Bounds %v are not at y=3", b)
	}
}

func TestSphereIntersect(t *testing.T) {
	s := NewSphere(vec3.T{0, 5, 0}, 1)

	testCases := []struct {
		desc       string
		origin     vec3.T
		wantHit    bool
		wantT      float64
		wantNormal vec3.T
	}{
		{"from outside", vec3.T{0, 0, 0}, true, 4, vec3.T{0, -1, 0}},
		{"from inside", vec3.T{0, 5, 0}, true, 1, vec3.T{0, 1, 0}},
		{"beyond", vec3.T{0, 7, 0}, false, 0, vec3.T{}},
		{"beside", vec3.T{2, 0, 0}, false, 0, vec3.T{}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gotT, uv, ok := s.Intersect(castRay(tc.origin, vec3.T{0, 1, 0}))
			if ok != tc.wantHit {
				t.Fatalf("Got hit %v, want %v", ok, tc.wantHit)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(gotT, tc.wantT, approx); diff != "" {
				t.Errorf("Bad distance; diff (-got +want)\n%s", diff)
			}
			if diff := cmp.Diff(s.Normal(0, uv), tc.wantNormal, approx); diff != "" {
				t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestEllipsoidNormal(t *testing.T) {
	// Stretched along x; the normal at the end of the long axis still
	// points along x.
	s := &Sphere{ModelToWorld: affinetransform.AffineTransform{
		Linear: mat33.T{3, 0, 0, 0, 1, 0, 0, 0, 1},
	}}
	s.Crush(0)

	gotT, uv, ok := s.Intersect(castRay(vec3.T{-10, 0, 0}, vec3.T{1, 0, 0}))
	if !ok {
		t.Fatalf("Missed the ellipsoid")
	}
	if diff := cmp.Diff(gotT, 7.0, approx); diff != "" {
		t.Errorf("Bad distance; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(s.Normal(0, uv), vec3.T{-1, 0, 0}, approx); diff != "" {
		t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
	}

	b := s.Bounds()
	if diff := cmp.Diff([]float64{b.X.Lo, b.X.Hi, b.Y.Lo, b.Y.Hi}, []float64{-3, 3, -1, 1}, approx); diff != "" {
		t.Errorf("Bad bounds; diff (-got +want)\n%s", diff)
	}
}
