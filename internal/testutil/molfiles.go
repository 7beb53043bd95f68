package testutil

import (
	"fmt"
	"math"
	"strings"
)

// Atom is a 2-D atom of a fixture molfile.
type Atom struct {
	El   string
	X, Y float64
}

// Bond is a (from, to, order) triple of a fixture molfile.
type Bond [3]int

// V2000 renders a V2000 molfile with the given name line.
func V2000(name string, atoms []Atom, bonds []Bond) string {
	var sb strings.Builder
	sb.WriteString(name + "\n  molkit\n\n")
	fmt.Fprintf(&sb, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(atoms), len(bonds))
	for _, a := range atoms {
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", a.X, a.Y, 0.0, a.El)
	}
	for _, b := range bonds {
		fmt.Fprintf(&sb, "%3d%3d%3d  0\n", b[0], b[1], b[2])
	}
	sb.WriteString("M  END\n")
	return sb.String()
}

// EthanolMolfile is C-C-O without explicit hydrogens.
func EthanolMolfile() string {
	return V2000("ethanol",
		[]Atom{{"C", 0, 0}, {"C", 1.5, 0}, {"O", 3, 0}},
		[]Bond{{1, 2, 1}, {2, 3, 1}})
}

// EthanolReorderedMolfile lists the ethanol atoms as O, C, C.
func EthanolReorderedMolfile() string {
	return V2000("ethanol-reordered",
		[]Atom{{"O", 3, 0}, {"C", 1.5, 0}, {"C", 0, 0}},
		[]Bond{{3, 2, 1}, {1, 2, 1}})
}

// ring places n atoms of element el on a regular polygon with 1.5 Å edges.
func ring(el string, n int) []Atom {
	r := 1.5 / (2 * math.Sin(math.Pi/float64(n)))
	atoms := make([]Atom, n)
	for i := range atoms {
		theta := 2 * math.Pi * float64(i) / float64(n)
		atoms[i] = Atom{el, r * math.Cos(theta), r * math.Sin(theta)}
	}
	return atoms
}

// BenzeneMolfile is a Kekulé benzene.
func BenzeneMolfile() string {
	return V2000("benzene", ring("C", 6),
		[]Bond{{1, 2, 2}, {2, 3, 1}, {3, 4, 2}, {4, 5, 1}, {5, 6, 2}, {6, 1, 1}})
}

// CyclohexaneMolfile is a saturated six-ring.
func CyclohexaneMolfile() string {
	return V2000("cyclohexane", ring("C", 6),
		[]Bond{{1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 6, 1}, {6, 1, 1}})
}

// TransButeneMolfile is trans-2-butene drawn in the plane.
func TransButeneMolfile() string {
	return V2000("trans-2-butene",
		[]Atom{{"C", 0, 0}, {"C", 1.3, 0.75}, {"C", 2.6, 0}, {"C", 3.9, 0.75}},
		[]Bond{{1, 2, 1}, {2, 3, 2}, {3, 4, 1}})
}

// SDF joins molfiles into an SD file.
func SDF(molfiles ...string) string {
	var sb strings.Builder
	for _, m := range molfiles {
		sb.WriteString(m)
		sb.WriteString("$$$$\n")
	}
	return sb.String()
}

//Personal.AI order the ending
