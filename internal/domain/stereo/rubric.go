// Package stereo classifies atoms and double bonds as stereocenter
// candidates and records the neighbour-order rubrics produced by a Geometry.
package stereo

import (
	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// Category is a coordination geometry class.
type Category int

const (
	Tetrahedral Category = iota
	SquarePlanar
	TrigonalBipyramidal
	Octahedral
	DoubleBondSide
)

func (c Category) String() string {
	switch c {
	case Tetrahedral:
		return "tetrahedral"
	case SquarePlanar:
		return "square_planar"
	case TrigonalBipyramidal:
		return "trigonal_bipyramidal"
	case Octahedral:
		return "octahedral"
	case DoubleBondSide:
		return "double_bond_side"
	default:
		return "unknown"
	}
}

// AtomCategories lists the per-atom categories in assignment order.
var AtomCategories = []Category{Tetrahedral, SquarePlanar, TrigonalBipyramidal, Octahedral}

// Rubrics holds one rubric per qualifying atom or bond and nil elsewhere.
// Atom categories are indexed by atom-1; Sides by bond-1.
type Rubrics struct {
	Tetrahedral         [][]int
	SquarePlanar        [][]int
	TrigonalBipyramidal [][]int
	Octahedral          [][]int
	Sides               [][]int
}

// ForCategory returns the rubric slice of c.
func (r *Rubrics) ForCategory(c Category) [][]int {
	switch c {
	case Tetrahedral:
		return r.Tetrahedral
	case SquarePlanar:
		return r.SquarePlanar
	case TrigonalBipyramidal:
		return r.TrigonalBipyramidal
	case Octahedral:
		return r.Octahedral
	case DoubleBondSide:
		return r.Sides
	default:
		return nil
	}
}

// Count returns the number of qualifying entries of c.
func (r *Rubrics) Count(c Category) int {
	n := 0
	for _, v := range r.ForCategory(c) {
		if v != nil {
			n++
		}
	}
	return n
}

// Candidates returns the 1-based indices qualifying for c.
func (r *Rubrics) Candidates(c Category) []int {
	var out []int
	for i, v := range r.ForCategory(c) {
		if v != nil {
			out = append(out, i+1)
		}
	}
	return out
}

// Assign classifies every atom and bond of g.  When arom is non-nil aromatic
// bonds never receive a side rubric, so aromaticity must be classified first.
// A nil geom selects PlanarGeometry.
func Assign(g molecule.Graph, arom *aromaticity.Flags, geom Geometry) *Rubrics {
	if geom == nil {
		geom = PlanarGeometry{}
	}
	na, nb := g.NumAtoms(), g.NumBonds()
	r := &Rubrics{
		Tetrahedral:         make([][]int, na),
		SquarePlanar:        make([][]int, na),
		TrigonalBipyramidal: make([][]int, na),
		Octahedral:          make([][]int, na),
		Sides:               make([][]int, nb),
	}
	for a := 1; a <= na; a++ {
		for _, c := range AtomCategories {
			if AtomEligible(g, a, c) {
				r.ForCategory(c)[a-1] = geom.AtomRubric(g, a, c)
			}
		}
	}
	for b := 1; b <= nb; b++ {
		if arom != nil && arom.BondAromatic(b) {
			continue
		}
		if SideEligible(g, b) {
			r.Sides[b-1] = geom.SideRubric(g, b)
		}
	}
	return r
}

// AtomEligible reports whether atom a qualifies for category c.  Each
// category is decided independently.
func AtomEligible(g molecule.Graph, a int, c Category) bool {
	block := molecule.ElementBlock(g.AtomElement(a))
	heavy := block == molecule.BlockD || block == molecule.BlockF
	n := g.AtomAdjCount(a)
	h := g.AtomHydrogens(a)

	switch c {
	case Tetrahedral:
		if block == molecule.BlockP && n+h == 4 && h <= 1 {
			return true
		}
		if heavy && n == 4 {
			inclined, declined := wedgeCounts(g, a)
			return inclined == 1 && declined == 1
		}
		return false
	case SquarePlanar:
		return heavy && n == 4 && h == 0
	case TrigonalBipyramidal:
		return heavy && (n == 4 || n == 5) && h == 0
	case Octahedral:
		return h == 0 && ((heavy && (n == 5 || n == 6)) || (block == molecule.BlockP && n == 6))
	default:
		return false
	}
}

// SideEligible reports whether bond b qualifies for a double-bond side
// rubric, ignoring aromaticity.
func SideEligible(g molecule.Graph, b int) bool {
	if g.BondOrder(b) != 2 || g.BondType(b) == molecule.StyleUnknown {
		return false
	}
	for _, end := range []int{g.BondFrom(b), g.BondTo(b)} {
		if molecule.ElementBlock(g.AtomElement(end)) != molecule.BlockP {
			return false
		}
		h := g.AtomHydrogens(end)
		if g.AtomAdjCount(end)+h != 3 || h > 1 {
			return false
		}
	}
	return true
}

// wedgeCounts counts inclined and declined bonds touching atom a at either
// end.
func wedgeCounts(g molecule.Graph, a int) (inclined, declined int) {
	for _, b := range g.AtomAdjBonds(a) {
		switch g.BondType(b) {
		case molecule.StyleInclined:
			inclined++
		case molecule.StyleDeclined:
			declined++
		}
	}
	return inclined, declined
}

//Personal.AI order the ending
