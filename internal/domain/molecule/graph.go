// Package molecule provides the molecule graph contract consumed by the molfile
// reader and the annotation passes, together with the in-memory reference
// implementation.  Atoms and bonds are addressed by 1-based indices that stay
// stable until an explicit deletion.
package molecule

import (
	"fmt"

	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// BondStyle is the display style of a bond.
type BondStyle int

const (
	StyleNormal BondStyle = iota
	StyleInclined
	StyleDeclined
	StyleUnknown
)

func (s BondStyle) String() string {
	switch s {
	case StyleInclined:
		return "inclined"
	case StyleDeclined:
		return "declined"
	case StyleUnknown:
		return "unknown"
	default:
		return "normal"
	}
}

// Graph is the read side of the molecule contract.
type Graph interface {
	Name() string
	NumAtoms() int
	NumBonds() int

	AtomElement(atom int) string
	AtomCharge(atom int) int
	AtomIsotope(atom int) int
	AtomUnpaired(atom int) int
	AtomMapNum(atom int) int
	AtomParity(atom int) int
	AtomPos(atom int) (x, y, z float64)
	// AtomHExplicit returns the explicit hydrogen count and whether it is set.
	AtomHExplicit(atom int) (int, bool)
	// AtomHydrogens returns the explicit count when set, otherwise the
	// implicit count.
	AtomHydrogens(atom int) int
	AtomImplicitH(atom int) int
	AtomAdjCount(atom int) int
	AtomAdjBonds(atom int) []int
	AtomAdjAtoms(atom int) []int
	// AtomRingBlock returns a positive ring-system id, or 0 for acyclic atoms.
	AtomRingBlock(atom int) int

	BondFrom(bond int) int
	BondTo(bond int) int
	BondOrder(bond int) int
	BondType(bond int) BondStyle
	// FindBond returns the bond joining a1 and a2, or 0.
	FindBond(a1, a2 int) int

	FindRingsOfSize(n int) [][]int
}

// MutableGraph extends Graph with the editing operations used by the reader
// and by structural rewrites.
type MutableGraph interface {
	Graph

	SetName(name string)
	AddAtom(element string, x, y, z float64, charge, unpaired int) int
	AddBond(from, to, order int, style BondStyle) (int, error)

	SetAtomElement(atom int, element string) error
	SetAtomCharge(atom, charge int) error
	SetAtomIsotope(atom, isotope int) error
	SetAtomUnpaired(atom, unpaired int) error
	SetAtomMapNum(atom, mapNum int) error
	SetAtomParity(atom, parity int) error
	SetAtomHExplicit(atom, count int) error
	SetAtomPos(atom int, x, y, z float64) error
	SetBondOrder(bond, order int) error
	SetBondType(bond int, style BondStyle) error

	// DeleteAtomAndBonds removes the atom and its incident bonds. Remaining
	// atoms and bonds keep their relative order and are renumbered densely.
	DeleteAtomAndBonds(atom int) error
	Clone() MutableGraph
	Equals(other Graph) bool
}

// Atom is a single atom record.
type Atom struct {
	Element   string
	X, Y, Z   float64
	Charge    int
	Unpaired  int
	Isotope   int
	MapNum    int
	Parity    int
	HExplicit int // HUnset when never assigned
}

// HUnset marks an atom whose explicit hydrogen count was never assigned.
const HUnset = -1

// Bond is a single bond record. Endpoints are 1-based atom indices.
type Bond struct {
	From, To int
	Order    int
	Style    BondStyle
}

// Molecule is the in-memory MutableGraph.  It is not safe for concurrent
// mutation.
type Molecule struct {
	name  string
	atoms []Atom
	bonds []Bond
	adj   [][]int // per atom (0-based), incident bond indices (1-based)

	blocks []int // lazily computed ring block per atom, nil when stale
}

// New returns an empty molecule.
func New() *Molecule {
	return &Molecule{}
}

var _ MutableGraph = (*Molecule)(nil)

func (m *Molecule) Name() string { return m.name }
func (m *Molecule) SetName(name string) { m.name = name }
func (m *Molecule) NumAtoms() int { return len(m.atoms) }
func (m *Molecule) NumBonds() int { return len(m.bonds) }

// AddAtom appends an atom with unset explicit hydrogens and returns its index.
func (m *Molecule) AddAtom(element string, x, y, z float64, charge, unpaired int) int {
	m.atoms = append(m.atoms, Atom{
		Element:   element,
		X:         x,
		Y:         y,
		Z:         z,
		Charge:    charge,
		Unpaired:  unpaired,
		HExplicit: HUnset,
	})
	m.adj = append(m.adj, nil)
	m.blocks = nil
	return len(m.atoms)
}

// AddBond appends a bond between two distinct existing atoms.
func (m *Molecule) AddBond(from, to, order int, style BondStyle) (int, error) {
	if !m.validAtom(from) || !m.validAtom(to) {
		return 0, errors.InvalidParam(fmt.Sprintf("bond endpoint out of range: %d-%d of %d atoms", from, to, len(m.atoms)))
	}
	if from == to {
		return 0, errors.InvalidParam(fmt.Sprintf("bond endpoints must differ: %d", from))
	}
	m.bonds = append(m.bonds, Bond{From: from, To: to, Order: order, Style: style})
	idx := len(m.bonds)
	m.adj[from-1] = append(m.adj[from-1], idx)
	m.adj[to-1] = append(m.adj[to-1], idx)
	m.blocks = nil
	return idx, nil
}

func (m *Molecule) validAtom(i int) bool { return i >= 1 && i <= len(m.atoms) }
func (m *Molecule) validBond(i int) bool { return i >= 1 && i <= len(m.bonds) }

func (m *Molecule) atom(i int) *Atom { return &m.atoms[i-1] }
func (m *Molecule) bond(i int) *Bond { return &m.bonds[i-1] }

func (m *Molecule) atomErr(i int) error {
	return errors.InvalidParam(fmt.Sprintf("atom index %d out of range 1..%d", i, len(m.atoms)))
}

func (m *Molecule) bondErr(i int) error {
	return errors.InvalidParam(fmt.Sprintf("bond index %d out of range 1..%d", i, len(m.bonds)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom accessors
// ─────────────────────────────────────────────────────────────────────────────

func (m *Molecule) AtomElement(i int) string { return m.atom(i).Element }
func (m *Molecule) AtomCharge(i int) int { return m.atom(i).Charge }
func (m *Molecule) AtomIsotope(i int) int { return m.atom(i).Isotope }
func (m *Molecule) AtomUnpaired(i int) int { return m.atom(i).Unpaired }
func (m *Molecule) AtomMapNum(i int) int { return m.atom(i).MapNum }
func (m *Molecule) AtomParity(i int) int { return m.atom(i).Parity }

func (m *Molecule) AtomPos(i int) (float64, float64, float64) {
	a := m.atom(i)
	return a.X, a.Y, a.Z
}

func (m *Molecule) AtomHExplicit(i int) (int, bool) {
	h := m.atom(i).HExplicit
	return h, h != HUnset
}

func (m *Molecule) AtomHydrogens(i int) int {
	if h, ok := m.AtomHExplicit(i); ok {
		return h
	}
	return m.AtomImplicitH(i)
}

// AtomImplicitH derives the hydrogen count from the default valence of the
// element, ignoring any explicit assignment.
func (m *Molecule) AtomImplicitH(i int) int {
	a := m.atom(i)
	sum := 0
	for _, b := range m.adj[i-1] {
		sum += m.bond(b).Order
	}
	return implicitHydrogens(a.Element, a.Charge, a.Unpaired, sum)
}

func (m *Molecule) AtomAdjCount(i int) int { return len(m.adj[i-1]) }

func (m *Molecule) AtomAdjBonds(i int) []int {
	out := make([]int, len(m.adj[i-1]))
	copy(out, m.adj[i-1])
	return out
}

func (m *Molecule) AtomAdjAtoms(i int) []int {
	out := make([]int, 0, len(m.adj[i-1]))
	for _, b := range m.adj[i-1] {
		out = append(out, m.otherEnd(b, i))
	}
	return out
}

func (m *Molecule) otherEnd(b, a int) int {
	bd := m.bond(b)
	if bd.From == a {
		return bd.To
	}
	return bd.From
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond accessors
// ─────────────────────────────────────────────────────────────────────────────

func (m *Molecule) BondFrom(b int) int { return m.bond(b).From }
func (m *Molecule) BondTo(b int) int { return m.bond(b).To }
func (m *Molecule) BondOrder(b int) int { return m.bond(b).Order }
func (m *Molecule) BondType(b int) BondStyle { return m.bond(b).Style }

func (m *Molecule) FindBond(a1, a2 int) int {
	if !m.validAtom(a1) || !m.validAtom(a2) {
		return 0
	}
	for _, b := range m.adj[a1-1] {
		if m.otherEnd(b, a1) == a2 {
			return b
		}
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutators
// ─────────────────────────────────────────────────────────────────────────────

func (m *Molecule) SetAtomElement(i int, element string) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).Element = element
	return nil
}

func (m *Molecule) SetAtomCharge(i, charge int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).Charge = charge
	return nil
}

func (m *Molecule) SetAtomIsotope(i, isotope int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).Isotope = isotope
	return nil
}

func (m *Molecule) SetAtomUnpaired(i, unpaired int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).Unpaired = unpaired
	return nil
}

func (m *Molecule) SetAtomMapNum(i, mapNum int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).MapNum = mapNum
	return nil
}

func (m *Molecule) SetAtomParity(i, parity int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	m.atom(i).Parity = parity
	return nil
}

// SetAtomHExplicit assigns the explicit hydrogen count. HUnset clears it.
func (m *Molecule) SetAtomHExplicit(i, count int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	if count < HUnset {
		return errors.InvalidParam(fmt.Sprintf("negative hydrogen count %d on atom %d", count, i))
	}
	m.atom(i).HExplicit = count
	return nil
}

func (m *Molecule) SetAtomPos(i int, x, y, z float64) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	a := m.atom(i)
	a.X, a.Y, a.Z = x, y, z
	return nil
}

func (m *Molecule) SetBondOrder(b, order int) error {
	if !m.validBond(b) {
		return m.bondErr(b)
	}
	m.bond(b).Order = order
	return nil
}

func (m *Molecule) SetBondType(b int, style BondStyle) error {
	if !m.validBond(b) {
		return m.bondErr(b)
	}
	m.bond(b).Style = style
	return nil
}

func (m *Molecule) DeleteAtomAndBonds(i int) error {
	if !m.validAtom(i) {
		return m.atomErr(i)
	}
	drop := make(map[int]bool, len(m.adj[i-1]))
	for _, b := range m.adj[i-1] {
		drop[b] = true
	}
	bonds := make([]Bond, 0, len(m.bonds)-len(drop))
	for bi, bd := range m.bonds {
		if drop[bi+1] {
			continue
		}
		if bd.From > i {
			bd.From--
		}
		if bd.To > i {
			bd.To--
		}
		bonds = append(bonds, bd)
	}
	m.atoms = append(m.atoms[:i-1], m.atoms[i:]...)
	m.bonds = bonds
	m.rebuildAdjacency()
	return nil
}

func (m *Molecule) rebuildAdjacency() {
	m.adj = make([][]int, len(m.atoms))
	for bi, bd := range m.bonds {
		m.adj[bd.From-1] = append(m.adj[bd.From-1], bi+1)
		m.adj[bd.To-1] = append(m.adj[bd.To-1], bi+1)
	}
	m.blocks = nil
}

// Clone returns a deep copy.
func (m *Molecule) Clone() MutableGraph {
	c := &Molecule{
		name:  m.name,
		atoms: make([]Atom, len(m.atoms)),
		bonds: make([]Bond, len(m.bonds)),
	}
	copy(c.atoms, m.atoms)
	copy(c.bonds, m.bonds)
	c.rebuildAdjacency()
	return c
}

// Equals reports exact index-by-index structural equality: elements, charges,
// isotopes, radicals, hydrogen counts, bond endpoints and orders.
func (m *Molecule) Equals(other Graph) bool {
	if other == nil || m.NumAtoms() != other.NumAtoms() || m.NumBonds() != other.NumBonds() {
		return false
	}
	for i := 1; i <= m.NumAtoms(); i++ {
		if m.AtomElement(i) != other.AtomElement(i) ||
			m.AtomCharge(i) != other.AtomCharge(i) ||
			m.AtomIsotope(i) != other.AtomIsotope(i) ||
			m.AtomUnpaired(i) != other.AtomUnpaired(i) ||
			m.AtomHydrogens(i) != other.AtomHydrogens(i) {
			return false
		}
	}
	for b := 1; b <= m.NumBonds(); b++ {
		f, t := m.BondFrom(b), m.BondTo(b)
		of, ot := other.BondFrom(b), other.BondTo(b)
		sameEnds := (f == of && t == ot) || (f == ot && t == of)
		if !sameEnds || m.BondOrder(b) != other.BondOrder(b) {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
