package meta

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// hookStub counts hook invocations.
type hookStub struct {
	hashCalls  int
	matchCalls int
	hash       func(g molecule.Graph) string
	result     bool
	err        error
}

func (s *hookStub) hooks() Hooks {
	return Hooks{
		Hash: func(g molecule.Graph) string {
			s.hashCalls++
			if s.hash != nil {
				return s.hash(g)
			}
			return fmt.Sprintf("%d/%d", g.NumAtoms(), g.NumBonds())
		},
		Match: func(a, b *Meta, timeout time.Duration) (bool, error) {
			s.matchCalls++
			return s.result, s.err
		},
	}
}

// chain builds a linear molecule from element symbols joined by single bonds.
func chain(t *testing.T, elements ...string) *molecule.Molecule {
	t.Helper()
	m := molecule.New()
	for i, el := range elements {
		m.AddAtom(el, float64(i), 0, 0, 0, 0)
		if i > 0 {
			_, err := m.AddBond(i, i+1, 1, molecule.StyleNormal)
			require.NoError(t, err)
		}
	}
	return m
}

func TestEquivalentTo_AtomCountMismatchSkipsHooks(t *testing.T) {
	stub := &hookStub{result: true}
	a := New(chain(t, "C", "O"), stub.hooks())
	b := New(chain(t, "C", "O", "C"), stub.hooks())

	ok, err := a.EquivalentTo(b, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, stub.matchCalls)
	assert.Zero(t, stub.hashCalls)
}

func TestEquivalentTo_ScreeningOrder(t *testing.T) {
	constant := func(molecule.Graph) string { return "same" }
	byElements := func(g molecule.Graph) string {
		s := ""
		for i := 1; i <= g.NumAtoms(); i++ {
			s += g.AtomElement(i)
		}
		return s
	}

	tests := []struct {
		name       string
		a, b       []string
		hash       func(molecule.Graph) string
		matchValue bool
		want       bool
		wantMatch  int
	}{
		{"hash mismatch", []string{"C", "O"}, []string{"C", "N"}, byElements, true, false, 0},
		{"exact equality", []string{"C", "O"}, []string{"C", "O"}, constant, false, true, 0},
		{"element sets differ", []string{"C", "O"}, []string{"C", "N"}, constant, true, false, 0},
		{"matcher decides true", []string{"C", "O", "C"}, []string{"O", "C", "C"}, constant, true, true, 1},
		{"matcher decides false", []string{"C", "O", "C"}, []string{"O", "C", "C"}, constant, false, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &hookStub{hash: tt.hash, result: tt.matchValue}
			a := New(chain(t, tt.a...), stub.hooks())
			b := New(chain(t, tt.b...), stub.hooks())

			ok, err := a.EquivalentTo(b, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.wantMatch, stub.matchCalls)
		})
	}
}

func TestEquivalentTo_MissingHooks(t *testing.T) {
	a := New(chain(t, "C", "O"), Hooks{})
	b := New(chain(t, "O", "C"), Hooks{})

	_, err := a.EquivalentTo(b, time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "hash")

	hashOnly := Hooks{Hash: func(molecule.Graph) string { return "x" }}
	a = New(chain(t, "C", "O"), hashOnly)
	b = New(chain(t, "O", "C"), hashOnly)
	_, err = a.EquivalentTo(b, time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeHookNotConfigured))
	assert.Contains(t, err.Error(), "match")

	// Paths that never reach a hook succeed without one.
	ok, err := New(chain(t, "C"), Hooks{}).EquivalentTo(New(chain(t, "C", "C"), Hooks{}), time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEquivalentTo_MatcherErrorIsWrapped(t *testing.T) {
	stub := &hookStub{hash: func(molecule.Graph) string { return "h" }, err: fmt.Errorf("deadline exceeded")}
	a := New(chain(t, "C", "O", "C"), stub.hooks())
	b := New(chain(t, "O", "C", "C"), stub.hooks())

	_, err := a.EquivalentTo(b, time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEquivalenceFailed))
}

func TestEquivalentTo_NilOther(t *testing.T) {
	ok, err := New(chain(t, "C"), Hooks{}).EquivalentTo(nil, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSkeletonHash_Memoised(t *testing.T) {
	stub := &hookStub{}
	m := New(chain(t, "C", "C"), stub.hooks())

	h1, err := m.SkeletonHash()
	require.NoError(t, err)
	h2, err := m.SkeletonHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, stub.hashCalls)
}

func TestUniqueElements(t *testing.T) {
	m := New(chain(t, "O", "C", "N", "C"), Hooks{})
	got := m.UniqueElements()
	assert.Equal(t, []string{"C", "N", "O"}, got)

	got[0] = "X"
	assert.Equal(t, []string{"C", "N", "O"}, m.UniqueElements())
}

func TestAromaticity_ModeChangeDropsRubrics(t *testing.T) {
	m := New(chain(t, "C", "C"), Hooks{})
	strict := m.Aromaticity(aromaticity.ModeStrict)
	assert.Same(t, strict, m.Aromaticity(aromaticity.ModeStrict))

	require.NotNil(t, m.Stereo(nil))
	m.Aromaticity(aromaticity.ModeRelaxed)
	assert.Nil(t, m.CachedStereo())
}

func TestInvalidate(t *testing.T) {
	m := New(chain(t, "C", "C"), (&hookStub{}).hooks())
	m.Aromaticity(aromaticity.ModeStrict)
	m.Stereo(nil)
	_, err := m.SkeletonHash()
	require.NoError(t, err)

	m.Invalidate()
	assert.Nil(t, m.CachedAromaticity())
	assert.Nil(t, m.CachedStereo())
}
