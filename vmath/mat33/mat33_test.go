package mat33

import (
	"math"
	"testing"

	"lumen/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestInverse(t *testing.T) {
	testCases := []struct {
		desc string
		m    T
	}{
		{"identity", Identity()},
		{"scale", T{2, 0, 0, 0, 4, 0, 0, 0, 8}},
		{"needs pivoting", T{0, 1, 0, 1, 0, 0, 0, 0, 1}},
		{"general", T{2, 1, 1, 1, 3, 2, 1, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := MulMM(tc.m, Inverse(tc.m))
			if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("m * Inverse(m) is not the identity; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestRotationAxisAngle(t *testing.T) {
	r := RotationAxisAngle(vec3.T{0, 0, 1}, math.Pi/2)
	got := MulMV(r, vec3.T{1, 0, 0})
	if diff := cmp.Diff(got, vec3.T{0, 1, 0}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Quarter turn about z should take x to y; diff (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(MulMM(r, Transpose(r)), Identity(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Rotation is not orthogonal; diff (-got +want)\n%s", diff)
	}
}

func TestFromColumns(t *testing.T) {
	m := FromColumns(vec3.T{1, 2, 3}, vec3.T{4, 5, 6}, vec3.T{7, 8, 9})
	if diff := cmp.Diff(m.Column(1), vec3.T{4, 5, 6}); diff != "" {
		t.Errorf("Bad column; diff (-got +want)\n%s", diff)
	}
}
