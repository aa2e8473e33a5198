package kdtree

import (
	"math/rand"
	"sort"
	"testing"

	"lumen/aabox"
	"lumen/ray"

	"github.com/google/go-cmp/cmp"
)

func randomBox(rng *rand.Rand) aabox.AABox {
	span := func() ray.Span {
		lo := rng.Float64() * 100
		return ray.Span{Lo: lo, Hi: lo + rng.Float64()*5}
	}
	return aabox.AABox{X: span(), Y: span(), Z: span()}
}

func overlaps(a, b aabox.AABox) bool {
	return ray.SpanOverlaps(a.X, b.X) && ray.SpanOverlaps(a.Y, b.Y) && ray.SpanOverlaps(a.Z, b.Z)
}

func TestQueryMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	elements := []KDElement{}
	for i := 0; i < 500; i++ {
		elements = append(elements, KDElement{Ref: i, Bounds: randomBox(rng)})
	}

	tree := NewKDTree(append([]KDElement(nil), elements...))
	tree.RefineViaSurfaceAreaHeuristic(1.0, 0.9)

	if tree.Root.LoChild == nil {
		t.Fatalf("Refinement did not split the root")
	}

	for q := 0; q < 50; q++ {
		query := randomBox(rng)

		got := []int{}
		tree.Query(func(b aabox.AABox) bool { return overlaps(b, query) }, func(i int) { got = append(got, i) })
		sort.Ints(got)

		want := []int{}
		for _, e := range elements {
			if overlaps(e.Bounds, query) {
				want = append(want, e.Ref)
			}
		}

		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("Query %v visited the wrong elements; diff (-got +want)\n%s", query, diff)
		}
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewKDTree(nil)
	tree.RefineViaSurfaceAreaHeuristic(1.0, 0.9)

	visited := 0
	tree.Query(func(b aabox.AABox) bool { return true }, func(i int) { visited++ })
	if visited != 0 {
		t.Errorf("Visited %d elements of an empty tree", visited)
	}
}

func TestNoSplitForCoincidentElements(t *testing.T) {
	b := aabox.AABox{X: ray.Span{Lo: 0, Hi: 1}, Y: ray.Span{Lo: 0, Hi: 1}, Z: ray.Span{Lo: 0, Hi: 1}}
	tree := NewKDTree([]KDElement{{Ref: 0, Bounds: b}, {Ref: 1, Bounds: b}, {Ref: 2, Bounds: b}})
	tree.RefineViaSurfaceAreaHeuristic(1.0, 0.9)

	if tree.Root.LoChild != nil || tree.Root.HiChild != nil {
		t.Errorf("Split a node whose elements cannot be separated")
	}
	if len(tree.Root.Elements) != 3 {
		t.Errorf("Root holds %d elements, want 3", len(tree.Root.Elements))
	}
}
