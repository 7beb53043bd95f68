package aromaticity

import "github.com/turtacn/keyip-molkit/internal/domain/molecule"

const (
	minRelaxedRing = 3
	maxRelaxedRing = 7
)

// Relaxed accepts rings of three to seven atoms whose pi electron count
// satisfies the Hückel rule: six electrons for any size, or two for a
// three-membered ring.
func Relaxed(g molecule.Graph) *Flags {
	pi := piAtoms(g)
	var work []ring
	for size := minRelaxedRing; size <= maxRelaxedRing; size++ {
		work = append(work, perceive(g, size)...)
	}
	return fixpoint(g, work, func(r ring, f *Flags) bool {
		total, ok := ringElectrons(g, r, f, pi)
		if !ok {
			return false
		}
		return total == 6 || (total == 2 && len(r.atoms) == 3)
	})
}

// ringElectrons sums per-atom contributions.  It reports false when a ring
// bond has an unsupported order or an atom cannot take part in the pi system.
func ringElectrons(g molecule.Graph, r ring, f *Flags, pi []bool) (int, bool) {
	inRing := make(map[int]bool, len(r.bonds))
	for _, b := range r.bonds {
		if o := g.BondOrder(b); o != 1 && o != 2 && !f.Bonds[b-1] {
			return 0, false
		}
		inRing[b] = true
	}
	total := 0
	for _, a := range r.atoms {
		e, ok := atomElectrons(g, a, inRing, f, pi[a-1])
		if !ok {
			return 0, false
		}
		total += e
	}
	return total, true
}

// atomElectrons returns the pi electrons atom a donates to the ring:
//
//	in-ring double bond               1
//	exocyclic double, already aromatic 1
//	exocyclic double otherwise        0
//	p-block lone pair                 2
//	empty orbital                     0
func atomElectrons(g molecule.Graph, a int, inRing map[int]bool, f *Flags, isPi bool) (int, bool) {
	if isPi {
		var doubles []int
		for _, b := range g.AtomAdjBonds(a) {
			if g.BondOrder(b) == 2 {
				doubles = append(doubles, b)
			}
		}
		if len(doubles) > 1 {
			return 0, false
		}
		d := doubles[0]
		switch {
		case inRing[d]:
			return 1, true
		case f.Bonds[d-1]:
			return 1, true
		default:
			return 0, true
		}
	}

	el := g.AtomElement(a)
	if molecule.ElementBlock(el) != molecule.BlockP {
		return 0, false
	}
	bonded := 0
	for _, b := range g.AtomAdjBonds(a) {
		bonded += g.BondOrder(b)
	}
	bonded += g.AtomHydrogens(a)
	free := molecule.ValenceElectrons(el) - g.AtomCharge(a) - bonded - g.AtomUnpaired(a)
	switch {
	case free >= 2:
		return 2, true
	case free == 0 && 2*bonded+g.AtomUnpaired(a) < 8:
		return 0, true
	default:
		return 0, false
	}
}

//Personal.AI order the ending
