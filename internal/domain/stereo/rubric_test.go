package stereo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/domain/molfile"
)

type placed struct {
	el   string
	x, y float64
}

type edge struct {
	from, to, order int
	style           molecule.BondStyle
}

func build(t *testing.T, atoms []placed, bonds []edge) *molecule.Molecule {
	t.Helper()
	m := molecule.New()
	for _, a := range atoms {
		m.AddAtom(a.el, a.x, a.y, 0, 0, 0)
	}
	for _, b := range bonds {
		_, err := m.AddBond(b.from, b.to, b.order, b.style)
		require.NoError(t, err)
	}
	return m
}

// halomethane is C1 bonded to F (east), Cl (north), Br (west) and C (south).
func halomethane(t *testing.T, brStyle molecule.BondStyle) *molecule.Molecule {
	return build(t,
		[]placed{{"C", 0, 0}, {"F", 1, 0}, {"Cl", 0, 1}, {"Br", -1, 0}, {"C", 0, -1}},
		[]edge{{1, 2, 1, molecule.StyleNormal}, {1, 3, 1, molecule.StyleNormal}, {1, 4, 1, brStyle}, {1, 5, 1, molecule.StyleNormal}})
}

// metalComplex is a d-block centre with n chloride ligands on a circle.
func metalComplex(t *testing.T, metal string, n int, styles ...molecule.BondStyle) *molecule.Molecule {
	atoms := []placed{{metal, 0, 0}}
	offsets := [][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {0.7, 0.7}, {-0.7, -0.7}}
	var bonds []edge
	for i := 0; i < n; i++ {
		atoms = append(atoms, placed{"Cl", offsets[i][0], offsets[i][1]})
		style := molecule.StyleNormal
		if i < len(styles) {
			style = styles[i]
		}
		bonds = append(bonds, edge{1, i + 2, 1, style})
	}
	return build(t, atoms, bonds)
}

func butene(t *testing.T, c4y float64, style molecule.BondStyle) *molecule.Molecule {
	return build(t,
		[]placed{{"C", -1, 1}, {"C", 0, 0}, {"C", 1.5, 0}, {"C", 2.5, c4y}},
		[]edge{{1, 2, 1, molecule.StyleNormal}, {2, 3, 2, style}, {3, 4, 1, molecule.StyleNormal}})
}

func TestAssign_TetrahedralCarbon(t *testing.T) {
	m := halomethane(t, molecule.StyleNormal)
	r := Assign(m, nil, nil)

	assert.Equal(t, []int{1}, r.Candidates(Tetrahedral))
	assert.Equal(t, []int{2, 3, 4, 5}, r.Tetrahedral[0])
	for _, c := range []Category{SquarePlanar, TrigonalBipyramidal, Octahedral, DoubleBondSide} {
		assert.Zero(t, r.Count(c), c.String())
	}
}

func TestAssign_DeclinedWedgeMirrorsRubric(t *testing.T) {
	up := Assign(halomethane(t, molecule.StyleInclined), nil, nil)
	down := Assign(halomethane(t, molecule.StyleDeclined), nil, nil)

	assert.Equal(t, []int{2, 3, 4, 5}, up.Tetrahedral[0])
	assert.Equal(t, []int{2, 5, 4, 3}, down.Tetrahedral[0])
}

func TestAssign_ImplicitHydrogenSlot(t *testing.T) {
	m := build(t,
		[]placed{{"C", 0, 0}, {"F", 1, 0}, {"Cl", -0.5, 0.8}, {"Br", -0.5, -0.8}},
		[]edge{{1, 2, 1, molecule.StyleNormal}, {1, 3, 1, molecule.StyleNormal}, {1, 4, 1, molecule.StyleNormal}})
	r := Assign(m, nil, nil)

	require.Equal(t, []int{1}, r.Candidates(Tetrahedral))
	assert.Equal(t, []int{2, 3, 4, 0}, r.Tetrahedral[0])
}

func TestAtomEligible_Table(t *testing.T) {
	tests := []struct {
		name string
		mol  func(t *testing.T) *molecule.Molecule
		want map[Category]bool
	}{
		{
			name: "methylene has two hydrogens",
			mol: func(t *testing.T) *molecule.Molecule {
				return build(t, []placed{{"C", 0, 0}, {"F", 1, 0}, {"Cl", -1, 0}},
					[]edge{{1, 2, 1, molecule.StyleNormal}, {1, 3, 1, molecule.StyleNormal}})
			},
			want: map[Category]bool{},
		},
		{
			name: "square planar platinum",
			mol:  func(t *testing.T) *molecule.Molecule { return metalComplex(t, "Pt", 4) },
			want: map[Category]bool{SquarePlanar: true, TrigonalBipyramidal: true},
		},
		{
			name: "wedged platinum is also tetrahedral",
			mol: func(t *testing.T) *molecule.Molecule {
				return metalComplex(t, "Pt", 4, molecule.StyleInclined, molecule.StyleDeclined)
			},
			want: map[Category]bool{Tetrahedral: true, SquarePlanar: true, TrigonalBipyramidal: true},
		},
		{
			name: "two inclined wedges do not make a tetrahedral metal",
			mol: func(t *testing.T) *molecule.Molecule {
				return metalComplex(t, "Pt", 4, molecule.StyleInclined, molecule.StyleInclined)
			},
			want: map[Category]bool{SquarePlanar: true, TrigonalBipyramidal: true},
		},
		{
			name: "five coordinate iron",
			mol:  func(t *testing.T) *molecule.Molecule { return metalComplex(t, "Fe", 5) },
			want: map[Category]bool{TrigonalBipyramidal: true, Octahedral: true},
		},
		{
			name: "six coordinate cobalt",
			mol:  func(t *testing.T) *molecule.Molecule { return metalComplex(t, "Co", 6) },
			want: map[Category]bool{Octahedral: true},
		},
		{
			name: "f-block centre",
			mol:  func(t *testing.T) *molecule.Molecule { return metalComplex(t, "U", 6) },
			want: map[Category]bool{Octahedral: true},
		},
		{
			name: "sulfur hexafluoride",
			mol: func(t *testing.T) *molecule.Molecule {
				atoms := []placed{{"S", 0, 0}}
				var bonds []edge
				for i := 0; i < 6; i++ {
					atoms = append(atoms, placed{"F", float64(i), 1})
					bonds = append(bonds, edge{1, i + 2, 1, molecule.StyleNormal})
				}
				return build(t, atoms, bonds)
			},
			want: map[Category]bool{Octahedral: true},
		},
		{
			name: "s-block centre never qualifies",
			mol:  func(t *testing.T) *molecule.Molecule { return metalComplex(t, "Mg", 4) },
			want: map[Category]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mol(t)
			for _, c := range AtomCategories {
				assert.Equal(t, tt.want[c], AtomEligible(m, 1, c), c.String())
			}
		})
	}
}

func TestAssign_DoubleBondSides(t *testing.T) {
	tests := []struct {
		name  string
		c4y   float64
		style molecule.BondStyle
		want  []int
	}{
		{"trans", -1, molecule.StyleNormal, []int{1, 2, 3, 4}},
		{"cis", 1, molecule.StyleNormal, []int{1, 2, 3, 0}},
		{"either style is not a stereo bond", -1, molecule.StyleUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Assign(butene(t, tt.c4y, tt.style), nil, nil)
			require.Len(t, r.Sides, 3)
			assert.Nil(t, r.Sides[0])
			assert.Equal(t, tt.want, r.Sides[1])
			assert.Nil(t, r.Sides[2])
		})
	}
}

func TestSideEligible_TerminalAlkene(t *testing.T) {
	m := build(t, []placed{{"C", 0, 0}, {"C", 1, 0}}, []edge{{1, 2, 2, molecule.StyleNormal}})
	assert.False(t, SideEligible(m, 1))
}

func TestAssign_AromaticBondsExcluded(t *testing.T) {
	m := molecule.New()
	for i := 0; i < 6; i++ {
		m.AddAtom("C", float64(i), 0, 0, 0, 0)
	}
	for i := 1; i <= 6; i++ {
		order := 1
		if i%2 == 1 {
			order = 2
		}
		_, err := m.AddBond(i, i%6+1, order, molecule.StyleNormal)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, Assign(m, nil, nil).Count(DoubleBondSide))
	assert.Zero(t, Assign(m, aromaticity.Strict(m), nil).Count(DoubleBondSide))
}

type recordingGeometry struct {
	atoms []int
	bonds []int
}

func (g *recordingGeometry) AtomRubric(_ molecule.Graph, atom int, _ Category) []int {
	g.atoms = append(g.atoms, atom)
	return []int{atom}
}

func (g *recordingGeometry) SideRubric(_ molecule.Graph, bond int) []int {
	g.bonds = append(g.bonds, bond)
	return []int{-bond}
}

func TestAssign_InjectedGeometry(t *testing.T) {
	geom := &recordingGeometry{}
	r := Assign(metalComplex(t, "Pt", 4), nil, geom)

	assert.Equal(t, []int{1, 1}, geom.atoms)
	assert.Empty(t, geom.bonds)
	assert.Equal(t, []int{1}, r.SquarePlanar[0])
	assert.Equal(t, []int{1}, r.TrigonalBipyramidal[0])
}

func TestAssign_ScenarioHasNoCandidates(t *testing.T) {
	res, err := molfile.Parse("\n\n\n  2  1  0  0  0  0  0  0  0  0999 V2000\n"+
		"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n"+
		"    1.5000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0\n"+
		"  1  2  1  0\nM  END\n", molfile.DefaultOptions())
	require.NoError(t, err)

	r := Assign(res.Molecule, aromaticity.Strict(res.Molecule), nil)
	for _, c := range append(AtomCategories, DoubleBondSide) {
		assert.Zero(t, r.Count(c), c.String())
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "octahedral", Octahedral.String())
	assert.Equal(t, "unknown", Category(42).String())
}
