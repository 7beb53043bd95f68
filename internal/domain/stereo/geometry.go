package stereo

import (
	"math"
	"sort"

	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// Geometry produces rubric tuples.  Implementations must return a non-nil
// slice for every call.
type Geometry interface {
	AtomRubric(g molecule.Graph, atom int, c Category) []int
	SideRubric(g molecule.Graph, bond int) []int
}

// PlanarGeometry derives rubrics from 2-D depiction coordinates.
//
// Atom rubrics list the neighbours counter-clockwise starting from the lowest
// index, followed by a 0 for every implicit hydrogen.  A tetrahedral centre
// whose outgoing declined wedges outnumber its inclined ones has the tail of
// its rubric reversed, so mirror images differ.
//
// Side rubrics are (ref, from, to, trans) where ref is the lowest-index
// neighbour of the from atom and trans the neighbour of the to atom on the
// opposite side of the bond axis, or 0 when that position is an implicit
// hydrogen.
type PlanarGeometry struct{}

var _ Geometry = PlanarGeometry{}

func (PlanarGeometry) AtomRubric(g molecule.Graph, a int, c Category) []int {
	cx, cy, _ := g.AtomPos(a)
	nbrs := g.AtomAdjAtoms(a)
	angle := make(map[int]float64, len(nbrs))
	for _, n := range nbrs {
		x, y, _ := g.AtomPos(n)
		angle[n] = math.Atan2(y-cy, x-cx)
	}
	sort.Slice(nbrs, func(i, j int) bool {
		if angle[nbrs[i]] != angle[nbrs[j]] {
			return angle[nbrs[i]] < angle[nbrs[j]]
		}
		return nbrs[i] < nbrs[j]
	})
	nbrs = rotateToMin(nbrs)

	if c == Tetrahedral && len(nbrs) > 2 && outgoingWedgeBias(g, a) < 0 {
		tail := nbrs[1:]
		for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
			tail[i], tail[j] = tail[j], tail[i]
		}
	}

	rubric := make([]int, 0, len(nbrs)+g.AtomHydrogens(a))
	rubric = append(rubric, nbrs...)
	for i := 0; i < g.AtomHydrogens(a); i++ {
		rubric = append(rubric, 0)
	}
	return rubric
}

func (PlanarGeometry) SideRubric(g molecule.Graph, b int) []int {
	from, to := g.BondFrom(b), g.BondTo(b)
	fx, fy, _ := g.AtomPos(from)
	tx, ty, _ := g.AtomPos(to)
	side := func(n int) float64 {
		x, y, _ := g.AtomPos(n)
		return (tx-fx)*(y-fy) - (ty-fy)*(x-fx)
	}

	ref := 0
	for _, n := range g.AtomAdjAtoms(from) {
		if n != to && (ref == 0 || n < ref) {
			ref = n
		}
	}
	trans := 0
	if ref != 0 {
		refSide := side(ref)
		for _, n := range g.AtomAdjAtoms(to) {
			if n == from {
				continue
			}
			if s := side(n); s*refSide < 0 && (trans == 0 || n < trans) {
				trans = n
			}
		}
	}
	return []int{ref, from, to, trans}
}

// outgoingWedgeBias is the number of inclined minus declined wedges whose
// narrow end is atom a.
func outgoingWedgeBias(g molecule.Graph, a int) int {
	bias := 0
	for _, b := range g.AtomAdjBonds(a) {
		if g.BondFrom(b) != a {
			continue
		}
		switch g.BondType(b) {
		case molecule.StyleInclined:
			bias++
		case molecule.StyleDeclined:
			bias--
		}
	}
	return bias
}

func rotateToMin(s []int) []int {
	if len(s) == 0 {
		return s
	}
	m := 0
	for i := range s {
		if s[i] < s[m] {
			m = i
		}
	}
	return append(append([]int(nil), s[m:]...), s[:m]...)
}

//Personal.AI order the ending
