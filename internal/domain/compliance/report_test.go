package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

func TestKindTables(t *testing.T) {
	tests := []struct {
		kind    Kind
		level   Level
		invalid bool
	}{
		{KindV3000Format, LevelV3000, false},
		{KindOversizedCounts, LevelV3000, false},
		{KindHydrogenBlock, LevelV2000Extended, false},
		{KindZeroOrderBond, LevelV2000Extended, false},
		{KindZeroCharge, LevelV2000Extended, false},
		{KindIsotopeSymbol, LevelV2000Extended, false},
		{KindNonstandardName, LevelV2000Extended, false},
		{KindAtomAlias, LevelV2000, false},
		{KindRGroupLabel, LevelV2000, false},
		{KindAromaticBond, LevelV2000, true},
		{KindQueryBond, LevelV2000, true},
		{KindQueryHydrogenCount, LevelV2000, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.level, tt.kind.Level())
			assert.Equal(t, tt.invalid, tt.kind.Invalid())
		})
	}
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestReport_LevelIsMonotonic(t *testing.T) {
	r := NewReport()
	assert.Equal(t, LevelV2000, r.Level())

	sequence := []Kind{
		KindAtomAlias, KindZeroCharge, KindRGroupLabel, KindV3000Format, KindHydrogenBlock,
	}
	prev := r.Level()
	maxSeen := LevelV2000
	for _, k := range sequence {
		r.AddNote(k, nil, nil, nil)
		if k.Level() > maxSeen {
			maxSeen = k.Level()
		}
		assert.GreaterOrEqual(t, r.Level(), prev)
		assert.Equal(t, maxSeen, r.Level())
		prev = r.Level()
	}
	assert.Equal(t, LevelV3000, r.Level())
	assert.False(t, r.Invalid())
}

func TestReport_InvalidIsPermanent(t *testing.T) {
	r := NewReport()
	r.AddNote(KindQueryHydrogenCount, []int{3}, nil, &Span{Row: 6, Col: 42, Len: 3})
	assert.True(t, r.Invalid())

	r.AddNote(KindAtomAlias, []int{1}, nil, nil)
	r.AddOrJoinNote(KindZeroCharge, []int{2}, nil, nil)
	assert.True(t, r.Invalid())
	assert.Equal(t, LevelV2000Extended, r.Level())
}

func TestReport_AddOrJoinNoteMerges(t *testing.T) {
	r := NewReport()
	r.AddOrJoinNote(KindAromaticBond, nil, []int{4}, &Span{Row: 10, Col: 6, Len: 3})
	r.AddOrJoinNote(KindAromaticBond, nil, []int{2, 4}, &Span{Row: 8, Col: 6, Len: 3})
	r.AddOrJoinNote(KindAtomAlias, []int{1}, nil, nil)

	notes := r.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, KindAromaticBond, notes[0].Kind)
	assert.Equal(t, []int{2, 4}, notes[0].Bonds)
	require.NotNil(t, notes[0].Source)
	assert.Equal(t, 10, notes[0].Source.Row)
	assert.True(t, r.Has(KindAtomAlias))
	assert.False(t, r.Has(KindQueryBond))
}

func TestReport_AddOrJoinNoteManyBonds(t *testing.T) {
	const n = 50000
	r := NewReport()
	for b := n; b >= 1; b-- {
		r.AddOrJoinNote(KindAromaticBond, nil, []int{b, (b % 7) + 1}, nil)
	}

	notes := r.Notes()
	require.Len(t, notes, 1)
	require.Len(t, notes[0].Bonds, n)
	assert.Equal(t, 1, notes[0].Bonds[0])
	assert.Equal(t, n, notes[0].Bonds[n-1])

	r.AddOrJoinNote(KindAromaticBond, nil, []int{n + 1, 3}, nil)
	bonds := r.Notes()[0].Bonds
	assert.Len(t, bonds, n+1)
	assert.Equal(t, n+1, bonds[n])
}

func TestReport_AddNoteAppends(t *testing.T) {
	r := NewReport()
	r.AddNote(KindAtomAlias, []int{1}, nil, nil)
	r.AddNote(KindAtomAlias, []int{2}, nil, nil)
	assert.Equal(t, 2, r.Len())
}

func TestReport_NotesAreCopies(t *testing.T) {
	atoms := []int{1}
	r := NewReport()
	r.AddNote(KindAtomAlias, atoms, nil, nil)
	atoms[0] = 9

	notes := r.Notes()
	notes[0].Atoms[0] = 7
	assert.Equal(t, []int{1}, r.Notes()[0].Atoms)
}

func TestReport_DeriveFromGraph(t *testing.T) {
	small := molecule.New()
	small.AddAtom("C", 0, 0, 0, 0, 0)
	r := NewReport()
	r.DeriveFromGraph(small)
	assert.Equal(t, 0, r.Len())

	big := molecule.New()
	for i := 0; i < MaxCount+1; i++ {
		big.AddAtom("C", 0, 0, 0, 0, 0)
	}
	r.DeriveFromGraph(big)
	r.DeriveFromGraph(big)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Has(KindOversizedCounts))
	assert.Equal(t, LevelV3000, r.Level())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "V2000", LevelV2000.String())
	assert.Equal(t, "V2000-extended", LevelV2000Extended.String())
	assert.Equal(t, "V3000", LevelV3000.String())
}

//Personal.AI order the ending
