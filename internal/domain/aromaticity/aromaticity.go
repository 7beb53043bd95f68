// Package aromaticity marks aromatic atoms and bonds by ring perception and a
// worklist fixpoint.  Strict mode accepts alternating six-membered rings only;
// relaxed mode counts pi electrons over rings of three to seven atoms.
package aromaticity

import (
	"fmt"

	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// Mode selects the classification algorithm.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeRelaxed Mode = "relaxed"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeRelaxed:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown aromaticity mode %q", s)
	}
}

// Flags holds the classification.  Slices are indexed by atom or bond index
// minus one.
type Flags struct {
	Atoms []bool
	Bonds []bool
	// Rings lists the accepted rings in acceptance order.
	Rings [][]int
}

func newFlags(g molecule.Graph) *Flags {
	return &Flags{
		Atoms: make([]bool, g.NumAtoms()),
		Bonds: make([]bool, g.NumBonds()),
	}
}

// AtomAromatic reports the flag of a 1-based atom index.
func (f *Flags) AtomAromatic(atom int) bool { return f.Atoms[atom-1] }

// BondAromatic reports the flag of a 1-based bond index.
func (f *Flags) BondAromatic(bond int) bool { return f.Bonds[bond-1] }

// AromaticAtoms returns the 1-based indices of aromatic atoms.
func (f *Flags) AromaticAtoms() []int { return setIndices(f.Atoms) }

// AromaticBonds returns the 1-based indices of aromatic bonds.
func (f *Flags) AromaticBonds() []int { return setIndices(f.Bonds) }

func setIndices(flags []bool) []int {
	var out []int
	for i, v := range flags {
		if v {
			out = append(out, i+1)
		}
	}
	return out
}

// Classify runs the algorithm selected by mode.
func Classify(g molecule.Graph, mode Mode) *Flags {
	if mode == ModeRelaxed {
		return Relaxed(g)
	}
	return Strict(g)
}

// ring is a worklist entry: member atoms in traversal order and the bond
// between atoms[k] and atoms[k+1].
type ring struct {
	atoms []int
	bonds []int
}

func perceive(g molecule.Graph, size int) []ring {
	var out []ring
	for _, atoms := range g.FindRingsOfSize(size) {
		r := ring{atoms: atoms, bonds: make([]int, len(atoms))}
		for k := range atoms {
			r.bonds[k] = g.FindBond(atoms[k], atoms[(k+1)%len(atoms)])
		}
		out = append(out, r)
	}
	return out
}

// piAtoms marks atoms touching a double bond.
func piAtoms(g molecule.Graph) []bool {
	pi := make([]bool, g.NumAtoms())
	for b := 1; b <= g.NumBonds(); b++ {
		if g.BondOrder(b) == 2 {
			pi[g.BondFrom(b)-1] = true
			pi[g.BondTo(b)-1] = true
		}
	}
	return pi
}

// fixpoint repeatedly offers the worklist to accept until a pass accepts
// nothing.  Accepted rings leave the worklist and have their bonds marked.
func fixpoint(g molecule.Graph, work []ring, accept func(r ring, f *Flags) bool) *Flags {
	f := newFlags(g)
	for {
		progressed := false
		remaining := work[:0]
		for _, r := range work {
			if !accept(r, f) {
				remaining = append(remaining, r)
				continue
			}
			progressed = true
			for _, b := range r.bonds {
				f.Bonds[b-1] = true
			}
			f.Rings = append(f.Rings, append([]int(nil), r.atoms...))
		}
		work = remaining
		if !progressed || len(work) == 0 {
			break
		}
	}
	for b, arom := range f.Bonds {
		if arom {
			f.Atoms[g.BondFrom(b+1)-1] = true
			f.Atoms[g.BondTo(b+1)-1] = true
		}
	}
	return f
}

//Personal.AI order the ending
