// Package compliance accumulates the format features observed while reading a
// molfile into a leveled report.  A report's level only ever rises and once a
// feature from the invalid set is recorded the report stays invalid.
package compliance

import (
	"slices"
	"sort"

	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// Level is the minimum format revision a feature requires.
type Level int

const (
	LevelV2000 Level = iota
	LevelV2000Extended
	LevelV3000
)

func (l Level) String() string {
	switch l {
	case LevelV2000Extended:
		return "V2000-extended"
	case LevelV3000:
		return "V3000"
	default:
		return "V2000"
	}
}

// Kind identifies an observed feature.
type Kind int

const (
	KindV3000Format Kind = iota + 1
	KindOversizedCounts
	KindHydrogenBlock
	KindZeroOrderBond
	KindZeroCharge
	KindIsotopeSymbol
	KindNonstandardName
	KindAtomAlias
	KindRGroupLabel
	KindAromaticBond
	KindQueryBond
	KindQueryHydrogenCount
)

type kindInfo struct {
	name    string
	level   Level
	invalid bool
}

var kinds = map[Kind]kindInfo{
	KindV3000Format:        {"v3000_format", LevelV3000, false},
	KindOversizedCounts:    {"oversized_counts", LevelV3000, false},
	KindHydrogenBlock:      {"hydrogen_block", LevelV2000Extended, false},
	KindZeroOrderBond:      {"zero_order_bond", LevelV2000Extended, false},
	KindZeroCharge:         {"zero_charge", LevelV2000Extended, false},
	KindIsotopeSymbol:      {"isotope_symbol", LevelV2000Extended, false},
	KindNonstandardName:    {"nonstandard_name", LevelV2000Extended, false},
	KindAtomAlias:          {"atom_alias", LevelV2000, false},
	KindRGroupLabel:        {"rgroup_label", LevelV2000, false},
	KindAromaticBond:       {"aromatic_bond", LevelV2000, true},
	KindQueryBond:          {"query_bond", LevelV2000, true},
	KindQueryHydrogenCount: {"query_hydrogen_count", LevelV2000, true},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Level returns the minimum level the feature requires.
func (k Kind) Level() Level { return kinds[k].level }

// Invalid reports whether the feature is never allowed in a valid file.
func (k Kind) Invalid() bool { return kinds[k].invalid }

// MaxCount is the largest atom or bond count a V2000 counts line can carry.
const MaxCount = 999

// Span locates a note in the source text. Row is 1-based, Col 0-based.
type Span struct {
	Row int
	Col int
	Len int
}

// Note is a single feature observation.
type Note struct {
	Kind   Kind
	Atoms  []int
	Bonds  []int
	Source *Span
}

// Report is the ordered set of notes for one parse.
type Report struct {
	notes   []Note
	first   map[Kind]int
	joined  map[int]struct{} // notes whose index lists need sorting
	level   Level
	invalid bool
}

// NewReport returns an empty V2000-level report.
func NewReport() *Report {
	return &Report{level: LevelV2000, first: map[Kind]int{}, joined: map[int]struct{}{}}
}

// Level returns the highest level of any note so far.
func (r *Report) Level() Level { return r.level }

// Invalid reports whether an invalid-set feature was ever recorded.
func (r *Report) Invalid() bool { return r.invalid }

// Len returns the number of notes.
func (r *Report) Len() int { return len(r.notes) }

// Notes returns a copy of the notes in insertion order.
func (r *Report) Notes() []Note {
	r.normalize()
	out := make([]Note, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.clone()
	}
	return out
}

// Has reports whether a note of the given kind exists.
func (r *Report) Has(kind Kind) bool {
	return r.find(kind) >= 0
}

// AddNote appends a new note. Index slices are copied.
func (r *Report) AddNote(kind Kind, atoms, bonds []int, source *Span) {
	n := Note{Kind: kind, Atoms: copyInts(atoms), Bonds: copyInts(bonds)}
	if source != nil {
		s := *source
		n.Source = &s
	}
	if _, ok := r.first[kind]; !ok {
		r.first[kind] = len(r.notes)
	}
	r.notes = append(r.notes, n)
	r.raise(kind)
}

// AddOrJoinNote merges the indices into the existing note of the same kind,
// or appends a new note when none exists. Merged index lists stay sorted and
// free of duplicates; the first note's source span is kept.
func (r *Report) AddOrJoinNote(kind Kind, atoms, bonds []int, source *Span) {
	i := r.find(kind)
	if i < 0 {
		r.AddNote(kind, atoms, bonds, source)
		return
	}
	n := &r.notes[i]
	if len(atoms) > 0 || len(bonds) > 0 {
		n.Atoms = append(n.Atoms, atoms...)
		n.Bonds = append(n.Bonds, bonds...)
		r.joined[i] = struct{}{}
	}
	if n.Source == nil && source != nil {
		s := *source
		n.Source = &s
	}
	r.raise(kind)
}

// DeriveFromGraph records features visible only on the finished graph.
func (r *Report) DeriveFromGraph(g molecule.Graph) {
	if g.NumAtoms() > MaxCount || g.NumBonds() > MaxCount {
		r.AddOrJoinNote(KindOversizedCounts, nil, nil, nil)
	}
}

func (r *Report) raise(kind Kind) {
	if l := kind.Level(); l > r.level {
		r.level = l
	}
	if kind.Invalid() {
		r.invalid = true
	}
}

func (r *Report) find(kind Kind) int {
	if i, ok := r.first[kind]; ok {
		return i
	}
	return -1
}

func (r *Report) normalize() {
	for i := range r.joined {
		n := &r.notes[i]
		n.Atoms = sortedUnique(n.Atoms)
		n.Bonds = sortedUnique(n.Bonds)
	}
	clear(r.joined)
}

func (n Note) clone() Note {
	c := Note{Kind: n.Kind, Atoms: copyInts(n.Atoms), Bonds: copyInts(n.Bonds)}
	if n.Source != nil {
		s := *n.Source
		c.Source = &s
	}
	return c
}

func copyInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func sortedUnique(in []int) []int {
	sort.Ints(in)
	return slices.Compact(in)
}

//Personal.AI order the ending
