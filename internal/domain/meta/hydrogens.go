package meta

import (
	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/domain/stereo"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// renumbering maps old 1-based indices to new ones; 0 marks a deleted entry.
type renumbering struct {
	atoms []int
	bonds []int
}

func (r renumbering) atom(old int) int {
	if old < 1 || old > len(r.atoms) {
		return 0
	}
	return r.atoms[old-1]
}

// IsPlainHydrogen reports whether atom a is a hydrogen that carries no
// information beyond the hydrogen count of its single neighbour.
func IsPlainHydrogen(g molecule.Graph, a int) bool {
	if g.AtomElement(a) != "H" || g.AtomIsotope(a) != 0 || g.AtomCharge(a) != 0 ||
		g.AtomUnpaired(a) != 0 || g.AtomMapNum(a) != 0 {
		return false
	}
	if g.AtomAdjCount(a) != 1 {
		return false
	}
	b := g.AtomAdjBonds(a)[0]
	if g.BondOrder(b) != 1 {
		return false
	}
	if s := g.BondType(b); s == molecule.StyleInclined || s == molecule.StyleDeclined {
		return false
	}
	return g.AtomElement(g.AtomAdjAtoms(a)[0]) != "H"
}

// RemoveHydrogens deletes plain hydrogens, folding each into the hydrogen
// count of its neighbour, and returns how many were removed.  Aromaticity and
// stereo caches are remapped to the new numbering, the skeleton hash and
// element set are cleared, and the heavy hash is kept.
func (m *Meta) RemoveHydrogens() (int, error) {
	g := m.mol
	var doomed []int
	for a := 1; a <= g.NumAtoms(); a++ {
		if IsPlainHydrogen(g, a) {
			doomed = append(doomed, a)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	plan := planRemoval(g, doomed)

	// Hydrogen totals of the surviving neighbours, keyed by new index.
	targets := make(map[int]int)
	for _, h := range doomed {
		nb := g.AtomAdjAtoms(h)[0]
		if _, ok := targets[plan.atom(nb)]; !ok {
			targets[plan.atom(nb)] = g.AtomHydrogens(nb)
		}
		targets[plan.atom(nb)]++
	}

	for i := len(doomed) - 1; i >= 0; i-- {
		if err := g.DeleteAtomAndBonds(doomed[i]); err != nil {
			m.Invalidate()
			return 0, errors.Wrap(err, errors.ErrCodeInternal, "hydrogen removal failed")
		}
	}
	for a, want := range targets {
		if g.AtomHydrogens(a) != want {
			if err := g.SetAtomHExplicit(a, want); err != nil {
				m.Invalidate()
				return 0, errors.Wrap(err, errors.ErrCodeInternal, "hydrogen removal failed")
			}
		}
	}

	m.arom = remapAromaticity(m.arom, plan)
	m.rubrics = remapRubrics(m.rubrics, plan)
	m.skeletonHash = nil
	m.uniqueElements = nil
	return len(doomed), nil
}

func planRemoval(g molecule.Graph, doomed []int) renumbering {
	gone := make(map[int]bool, len(doomed))
	for _, a := range doomed {
		gone[a] = true
	}
	r := renumbering{atoms: make([]int, g.NumAtoms()), bonds: make([]int, g.NumBonds())}
	next := 1
	for a := 1; a <= g.NumAtoms(); a++ {
		if !gone[a] {
			r.atoms[a-1] = next
			next++
		}
	}
	next = 1
	for b := 1; b <= g.NumBonds(); b++ {
		if !gone[g.BondFrom(b)] && !gone[g.BondTo(b)] {
			r.bonds[b-1] = next
			next++
		}
	}
	return r
}

func remapAromaticity(f *aromaticity.Flags, r renumbering) *aromaticity.Flags {
	if f == nil {
		return nil
	}
	out := &aromaticity.Flags{
		Atoms: keepFlags(f.Atoms, r.atoms),
		Bonds: keepFlags(f.Bonds, r.bonds),
	}
	for _, ring := range f.Rings {
		mapped := make([]int, 0, len(ring))
		for _, a := range ring {
			if n := r.atom(a); n != 0 {
				mapped = append(mapped, n)
			}
		}
		if len(mapped) == len(ring) {
			out.Rings = append(out.Rings, mapped)
		}
	}
	return out
}

func keepFlags(flags []bool, table []int) []bool {
	out := make([]bool, 0, len(flags))
	for i, v := range flags {
		if table[i] != 0 {
			out = append(out, v)
		}
	}
	return out
}

// remapRubrics moves every rubric to its new slot and renumbers the
// neighbours inside it.  A removed neighbour becomes an implicit hydrogen
// slot (0).
func remapRubrics(rb *stereo.Rubrics, r renumbering) *stereo.Rubrics {
	if rb == nil {
		return nil
	}
	return &stereo.Rubrics{
		Tetrahedral:         remapSlots(rb.Tetrahedral, r.atoms, r),
		SquarePlanar:        remapSlots(rb.SquarePlanar, r.atoms, r),
		TrigonalBipyramidal: remapSlots(rb.TrigonalBipyramidal, r.atoms, r),
		Octahedral:          remapSlots(rb.Octahedral, r.atoms, r),
		Sides:               remapSlots(rb.Sides, r.bonds, r),
	}
}

func remapSlots(slots [][]int, table []int, r renumbering) [][]int {
	out := make([][]int, 0, len(slots))
	for i, rubric := range slots {
		if table[i] == 0 {
			continue
		}
		if rubric == nil {
			out = append(out, nil)
			continue
		}
		mapped := make([]int, len(rubric))
		for k, a := range rubric {
			mapped[k] = r.atom(a)
		}
		out = append(out, mapped)
	}
	return out
}

//Personal.AI order the ending
