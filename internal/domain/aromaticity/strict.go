package aromaticity

import "github.com/turtacn/keyip-molkit/internal/domain/molecule"

// Strict accepts six-membered rings of pi atoms whose bonds alternate single
// and double in either phase.  Bonds already accepted through a fused ring
// match both phases.
func Strict(g molecule.Graph) *Flags {
	pi := piAtoms(g)
	var work []ring
	for _, r := range perceive(g, 6) {
		if strictCandidate(g, r, pi) {
			work = append(work, r)
		}
	}
	return fixpoint(g, work, func(r ring, f *Flags) bool {
		return alternates(g, r, f, 0) || alternates(g, r, f, 1)
	})
}

func strictCandidate(g molecule.Graph, r ring, pi []bool) bool {
	for _, a := range r.atoms {
		if !pi[a-1] {
			return false
		}
	}
	for _, b := range r.bonds {
		if o := g.BondOrder(b); o != 1 && o != 2 {
			return false
		}
	}
	return true
}

// alternates checks the ring against the pattern starting with a single bond
// (phase 0) or a double bond (phase 1).
func alternates(g molecule.Graph, r ring, f *Flags, phase int) bool {
	for k, b := range r.bonds {
		if f.Bonds[b-1] {
			continue
		}
		want := 1
		if (k+phase)%2 == 1 {
			want = 2
		}
		if g.BondOrder(b) != want {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
