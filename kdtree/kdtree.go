// Package kdtree is a bounding-volume hierarchy over scene elements, refined
// with the surface area heuristic.
package kdtree

import (
	"math"
	"math/rand"

	"lumen/aabox"
)

type KDElement struct {
	// A handle back into some other storage array.
	Ref int

	// The bounds of this element.
	Bounds aabox.AABox
}

type KDNode struct {
	Bounds aabox.AABox

	Elements []KDElement

	LoChild *KDNode
	HiChild *KDNode
}

// trialsPerAxis is the number of random cut positions tried on each axis.
const trialsPerAxis = 5

func boundsOf(elements []KDElement) aabox.AABox {
	b := aabox.AccumZeroAABox()
	for _, element := range elements {
		b = aabox.MinContainingAABox(b, element.Bounds)
	}
	return b
}

func (cur *KDNode) refineViaSurfaceAreaHeuristic(splitCost, terminationThreshold float64, rng *rand.Rand) {
	bestObjective := math.Inf(1)
	var bestLo, bestHi []KDElement

	for axis := 0; axis < 3; axis++ {
		for i := 0; i < trialsPerAxis; i++ {
			trialCut := cur.Elements[rng.Intn(len(cur.Elements))].Bounds.Axis(axis).Hi

			precedingElements := []KDElement{}
			succeedingElements := []KDElement{}
			for _, element := range cur.Elements {
				if element.Bounds.Axis(axis).Hi < trialCut {
					precedingElements = append(precedingElements, element)
				} else {
					succeedingElements = append(succeedingElements, element)
				}
			}

			// A split that leaves one side empty makes no progress.
			if len(precedingElements) == 0 || len(succeedingElements) == 0 {
				continue
			}

			objective := float64(len(precedingElements))*boundsOf(precedingElements).SurfaceArea() +
				float64(len(succeedingElements))*boundsOf(succeedingElements).SurfaceArea()
			if objective < bestObjective {
				bestObjective = objective
				bestLo = precedingElements
				bestHi = succeedingElements
			}
		}
	}

	if bestLo == nil {
		return
	}

	// Now we have a pretty good split, but we need to check that it's a
	// good-enough improvement over just not splitting.
	parentObjective := float64(len(cur.Elements)) * cur.Bounds.SurfaceArea()
	if bestObjective+splitCost >= terminationThreshold*parentObjective {
		return
	}

	cur.LoChild = &KDNode{
		Bounds:   boundsOf(bestLo),
		Elements: bestLo,
	}
	cur.HiChild = &KDNode{
		Bounds:   boundsOf(bestHi),
		Elements: bestHi,
	}

	// All of cur's elements have been divided among its children.
	cur.Elements = nil
}

type KDTree struct {
	Root *KDNode
}

func NewKDTree(elements []KDElement) *KDTree {
	return &KDTree{
		Root: &KDNode{
			Bounds:   boundsOf(elements),
			Elements: elements,
		},
	}
}

// RefineViaSurfaceAreaHeuristic splits nodes while doing so lowers the
// expected cost of a query.  threshold scales the parent's cost; values below
// one demand a strict improvement before splitting.
func (t *KDTree) RefineViaSurfaceAreaHeuristic(splitCost, threshold float64) {
	rng := rand.New(rand.NewSource(12345))

	workStack := []*KDNode{t.Root}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if len(cur.Elements) < 2 {
			continue
		}

		cur.refineViaSurfaceAreaHeuristic(splitCost, threshold, rng)

		if cur.LoChild != nil {
			workStack = append(workStack, cur.LoChild)
		}
		if cur.HiChild != nil {
			workStack = append(workStack, cur.HiChild)
		}
	}
}

type KDSelector func(b aabox.AABox) bool
type KDVisitor func(i int)

// Query calls visitor for every element whose bounds pass selector, and
// whose ancestors' bounds all pass it too.  selector is re-evaluated as the
// walk proceeds, so it may tighten in response to the visitor.
func (t *KDTree) Query(selector KDSelector, visitor KDVisitor) {
	workStack := []*KDNode{t.Root}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if !selector(cur.Bounds) {
			continue
		}

		for i := range cur.Elements {
			if !selector(cur.Elements[i].Bounds) {
				continue
			}
			visitor(cur.Elements[i].Ref)
		}

		if cur.LoChild != nil {
			workStack = append(workStack, cur.LoChild)
		}
		if cur.HiChild != nil {
			workStack = append(workStack, cur.HiChild)
		}
	}
}
