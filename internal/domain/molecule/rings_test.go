package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naphthalene returns the ten-carbon fused bicycle with atoms 1 and 6 fused.
func naphthalene(t *testing.T) *Molecule {
	t.Helper()
	m := New()
	for i := 0; i < 10; i++ {
		m.AddAtom("C", 0, 0, 0, 0, 0)
	}
	pairs := [][3]int{
		{1, 2, 2}, {2, 3, 1}, {3, 4, 2}, {4, 5, 1}, {5, 6, 2}, {6, 1, 1},
		{6, 7, 1}, {7, 8, 2}, {8, 9, 1}, {9, 10, 2}, {10, 1, 1},
	}
	for _, p := range pairs {
		_, err := m.AddBond(p[0], p[1], p[2], StyleNormal)
		require.NoError(t, err)
	}
	return m
}

func TestRingBlock(t *testing.T) {
	m := ring(t, 1, 1, 1, 1, 1, 1)
	tail := m.AddAtom("C", 0, 0, 0, 0, 0)
	_, err := m.AddBond(1, tail, 1, StyleNormal)
	require.NoError(t, err)

	for i := 1; i <= 6; i++ {
		assert.Equal(t, 1, m.AtomRingBlock(i))
	}
	assert.Equal(t, 0, m.AtomRingBlock(tail))
}

func TestRingBlock_SeparateSystems(t *testing.T) {
	m := ring(t, 1, 1, 1)
	base := m.NumAtoms()
	for i := 0; i < 3; i++ {
		m.AddAtom("C", 0, 0, 0, 0, 0)
	}
	_, _ = m.AddBond(base+1, base+2, 1, StyleNormal)
	_, _ = m.AddBond(base+2, base+3, 1, StyleNormal)
	_, _ = m.AddBond(base+3, base+1, 1, StyleNormal)
	_, _ = m.AddBond(3, base+1, 1, StyleNormal)

	assert.Equal(t, 1, m.AtomRingBlock(1))
	assert.Equal(t, 2, m.AtomRingBlock(base+1))
}

func TestRingBonds(t *testing.T) {
	m := naphthalene(t)
	tail := m.AddAtom("O", 0, 0, 0, 0, 0)
	bridge, err := m.AddBond(3, tail, 1, StyleNormal)
	require.NoError(t, err)

	ring := m.ringBonds()
	require.Len(t, ring, 12)
	for b := 1; b <= 11; b++ {
		assert.True(t, ring[b-1], "bond %d", b)
	}
	assert.False(t, ring[bridge-1])
}

func TestRingBlock_LongChain(t *testing.T) {
	const n = 20000
	m := New()
	for i := 0; i < n; i++ {
		m.AddAtom("C", 0, 0, 0, 0, 0)
		if i > 0 {
			_, err := m.AddBond(i, i+1, 1, StyleNormal)
			require.NoError(t, err)
		}
	}
	// close a cyclopropane at the far end
	_, err := m.AddBond(n-2, n, 1, StyleNormal)
	require.NoError(t, err)

	assert.Equal(t, 0, m.AtomRingBlock(1))
	assert.Equal(t, 0, m.AtomRingBlock(n-3))
	assert.Equal(t, 1, m.AtomRingBlock(n))
	assert.Len(t, m.FindRingsOfSize(3), 1)
	assert.Empty(t, m.FindRingsOfSize(6))
}

func TestFindRingsOfSize_Benzene(t *testing.T) {
	m := ring(t, 2, 1, 2, 1, 2, 1)

	rings := m.FindRingsOfSize(6)
	require.Len(t, rings, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, rings[0])
	assert.Empty(t, m.FindRingsOfSize(5))
	assert.Nil(t, m.FindRingsOfSize(2))
}

func TestFindRingsOfSize_FusedSkipsEnvelope(t *testing.T) {
	m := naphthalene(t)

	assert.Len(t, m.FindRingsOfSize(6), 2)
	assert.Empty(t, m.FindRingsOfSize(10), "the perimeter has a chord")
}

func TestFindRingsOfSize_Acyclic(t *testing.T) {
	m := chain(t, "C", "C", "C")
	assert.Empty(t, m.FindRingsOfSize(3))
}

func TestFindRingsOfSize_InvalidatedByEdits(t *testing.T) {
	m := chain(t, "C", "C", "C")
	assert.Empty(t, m.FindRingsOfSize(3))

	_, err := m.AddBond(3, 1, 1, StyleNormal)
	require.NoError(t, err)
	assert.Len(t, m.FindRingsOfSize(3), 1)

	require.NoError(t, m.DeleteAtomAndBonds(2))
	assert.Empty(t, m.FindRingsOfSize(3))
	assert.Equal(t, 0, m.AtomRingBlock(1))
}

func TestLookupElement(t *testing.T) {
	tests := []struct {
		sym   string
		block Block
		group int
		z     int
	}{
		{"H", BlockS, 1, 1},
		{"C", BlockP, 14, 6},
		{"N", BlockP, 15, 7},
		{"Cl", BlockP, 17, 17},
		{"Fe", BlockD, 8, 26},
		{"Pt", BlockD, 10, 78},
		{"Ce", BlockF, 0, 58},
		{"Bi", BlockP, 15, 83},
	}
	for _, tt := range tests {
		info, ok := LookupElement(tt.sym)
		require.True(t, ok, tt.sym)
		assert.Equal(t, tt.block, info.Block, tt.sym)
		assert.Equal(t, tt.group, info.Group, tt.sym)
		assert.Equal(t, tt.z, info.AtomicNumber, tt.sym)
	}
	_, ok := LookupElement("R#")
	assert.False(t, ok)
	assert.Equal(t, BlockNone, ElementBlock("A"))
}

func TestValenceElectrons(t *testing.T) {
	assert.Equal(t, 4, ValenceElectrons("C"))
	assert.Equal(t, 5, ValenceElectrons("N"))
	assert.Equal(t, 6, ValenceElectrons("S"))
	assert.Equal(t, 1, ValenceElectrons("Na"))
	assert.Equal(t, 0, ValenceElectrons("Fe"))
	assert.Equal(t, 0, ValenceElectrons("R"))
}

//Personal.AI order the ending
