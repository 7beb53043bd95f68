package molfile

import (
	"math"
	"sort"

	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
)

// CanonicalBondLength is the target median bond length used by Rescale.
const CanonicalBondLength = 1.5

// rescaleTolerance is the relative deviation that triggers rescaling.
const rescaleTolerance = 0.1

var isotopeSymbols = map[string]int{"D": 2, "T": 3}

var halogens = map[string]bool{"F": true, "Cl": true, "Br": true, "I": true}

// postFix rewrites isotope pseudo-elements, pins the lone hydrogen of free
// halogens, applies explicit hydrogen overrides and optionally rescales.
func (c *parseContext) postFix() error {
	m := c.mol
	for i := 1; i <= m.NumAtoms(); i++ {
		if mass, ok := isotopeSymbols[m.AtomElement(i)]; ok {
			_ = m.SetAtomElement(i, "H")
			_ = m.SetAtomIsotope(i, mass)
			c.report.AddOrJoinNote(compliance.KindIsotopeSymbol, []int{i}, nil, nil)
		}
	}

	for i := 1; i <= m.NumAtoms(); i++ {
		if !halogens[m.AtomElement(i)] || m.AtomCharge(i) != 0 || m.AtomAdjCount(i) != 0 {
			continue
		}
		if _, set := m.AtomHExplicit(i); set || c.override(i) != molecule.HUnset {
			continue
		}
		_ = m.SetAtomHExplicit(i, 1)
	}

	for i := 1; i <= m.NumAtoms(); i++ {
		if h := c.override(i); h != molecule.HUnset {
			if err := m.SetAtomHExplicit(i, h); err != nil {
				return err
			}
		}
	}

	if c.opts.Rescale {
		if factor, ok := rescaleFactor(m); ok {
			for i := 1; i <= m.NumAtoms(); i++ {
				x, y, z := m.AtomPos(i)
				_ = m.SetAtomPos(i, x*factor, y*factor, z*factor)
			}
			c.log.Debug("rescaled coordinates", logging.Float64("factor", factor))
		}
	}
	return nil
}

func (c *parseContext) override(i int) int {
	if i-1 < len(c.hOverride) {
		return c.hOverride[i-1]
	}
	return molecule.HUnset
}

// rescaleFactor returns the coordinate scale bringing the median bond length
// to CanonicalBondLength.  It reports false when no rescale is needed.
func rescaleFactor(g molecule.Graph) (float64, bool) {
	n := g.NumBonds()
	if n == 0 {
		return 1, false
	}
	lengths := make([]float64, 0, n)
	for b := 1; b <= n; b++ {
		x1, y1, z1 := g.AtomPos(g.BondFrom(b))
		x2, y2, z2 := g.AtomPos(g.BondTo(b))
		lengths = append(lengths, math.Sqrt((x2-x1)*(x2-x1)+(y2-y1)*(y2-y1)+(z2-z1)*(z2-z1)))
	}
	sort.Float64s(lengths)
	median := lengths[n/2]
	if n%2 == 0 {
		median = (lengths[n/2-1] + lengths[n/2]) / 2
	}
	if median == 0 || math.Abs(median-CanonicalBondLength)/CanonicalBondLength <= rescaleTolerance {
		return 1, false
	}
	return CanonicalBondLength / median, true
}

//Personal.AI order the ending
