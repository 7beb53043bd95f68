package molfile

import (
	"fmt"
	"strings"

	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

const (
	minAtomRecord = 39
	minBondRecord = 12
)

// atomRecord is one decoded V2000 atom line.
type atomRecord struct {
	x, y, z  float64
	element  string
	charge   int
	unpaired int
	parity   int
	hQuery   int
	mapNum   int
}

// bondRecord is one decoded V2000 bond line.
type bondRecord struct {
	from, to  int
	order     int
	style     molecule.BondStyle
	resonance bool
	query     bool
}

func (c *parseContext) readV2000(numAtoms, numBonds int) error {
	c.hOverride = make([]int, 0, numAtoms)
	for i := 0; i < numAtoms; i++ {
		line, err := c.next()
		if err != nil {
			return err
		}
		rec, err := c.decodeAtom(line)
		if err != nil {
			return err
		}
		idx := c.mol.AddAtom(rec.element, rec.x, rec.y, rec.z, rec.charge, rec.unpaired)
		_ = c.mol.SetAtomParity(idx, rec.parity)
		_ = c.mol.SetAtomMapNum(idx, rec.mapNum)
		c.hOverride = append(c.hOverride, molecule.HUnset)
		if rec.hQuery > 0 {
			c.hOverride[idx-1] = rec.hQuery - 1
			c.report.AddOrJoinNote(compliance.KindQueryHydrogenCount, []int{idx}, nil,
				&compliance.Span{Row: c.pos, Col: 42, Len: 3})
		}
	}

	c.resonance = make([]bool, 0, numBonds)
	for i := 0; i < numBonds; i++ {
		line, err := c.next()
		if err != nil {
			return err
		}
		rec, err := c.decodeBond(line)
		if err != nil {
			return err
		}
		idx, err := c.mol.AddBond(rec.from, rec.to, rec.order, rec.style)
		if err != nil {
			return errors.Formatf(c.pos, "bond %d-%d: invalid endpoints for %d atoms", rec.from, rec.to, c.mol.NumAtoms())
		}
		c.resonance = append(c.resonance, rec.resonance)
		span := &compliance.Span{Row: c.pos, Col: 6, Len: 3}
		if rec.resonance {
			c.report.AddOrJoinNote(compliance.KindAromaticBond, nil, []int{idx}, span)
		}
		if rec.query {
			c.report.AddOrJoinNote(compliance.KindQueryBond, nil, []int{idx}, span)
		}
	}

	return c.readMBlock()
}

func (c *parseContext) decodeAtom(line string) (atomRecord, error) {
	var rec atomRecord
	if len(line) < minAtomRecord {
		return rec, errors.Formatf(c.pos, "atom record too short (%d < %d bytes)", len(line), minAtomRecord)
	}
	var err error
	if rec.x, err = c.floatField(line, 0, 10); err != nil {
		return rec, err
	}
	if rec.y, err = c.floatField(line, 10, 20); err != nil {
		return rec, err
	}
	if rec.z, err = c.floatField(line, 20, 30); err != nil {
		return rec, err
	}
	rec.element = field(line, 31, 34)
	if rec.element == "" {
		return rec, errors.Format(c.pos, "missing element symbol")
	}
	code, err := c.intField(line, 36, 39)
	if err != nil {
		return rec, err
	}
	rec.charge, rec.unpaired = decodeChargeCode(code)
	if rec.parity, err = c.intField(line, 39, 42); err != nil {
		return rec, err
	}
	if rec.hQuery, err = c.intField(line, 42, 45); err != nil {
		return rec, err
	}
	if rec.mapNum, err = c.intField(line, 60, 63); err != nil {
		return rec, err
	}
	return rec, nil
}

// decodeChargeCode maps the V2000 ccc field: 1-3 and 5-7 encode 4-code, 4 a
// radical with two unpaired electrons, anything else neutral.
func decodeChargeCode(code int) (charge, unpaired int) {
	switch {
	case code >= 1 && code <= 3, code >= 5 && code <= 7:
		return 4 - code, 0
	case code == 4:
		return 0, 2
	default:
		return 0, 0
	}
}

func (c *parseContext) decodeBond(line string) (bondRecord, error) {
	var rec bondRecord
	if len(line) < minBondRecord {
		return rec, errors.Formatf(c.pos, "bond record too short (%d < %d bytes)", len(line), minBondRecord)
	}
	var err error
	if rec.from, err = c.intField(line, 0, 3); err != nil {
		return rec, err
	}
	if rec.to, err = c.intField(line, 3, 6); err != nil {
		return rec, err
	}
	order, err := c.intField(line, 6, 9)
	if err != nil {
		return rec, err
	}
	rec.order, rec.resonance, rec.query = decodeBondOrder(order)
	stereo, err := c.intField(line, 9, 12)
	if err != nil {
		return rec, err
	}
	switch stereo {
	case 1:
		rec.style = molecule.StyleInclined
	case 6:
		rec.style = molecule.StyleDeclined
	case 4:
		rec.style = molecule.StyleUnknown
	default:
		rec.style = molecule.StyleNormal
	}
	return rec, nil
}

// decodeBondOrder keeps orders 1-3.  Order 4 is read as a single bond flagged
// for resonance, 5-8 are query types read as single bonds, anything else is 1.
func decodeBondOrder(order int) (kept int, resonance, query bool) {
	switch {
	case order >= 1 && order <= 3:
		return order, false, false
	case order == 4:
		return 1, true, false
	case order >= 5 && order <= 8:
		return 1, false, true
	default:
		return 1, false, false
	}
}

// readMBlock applies property lines until the M  END terminator.
func (c *parseContext) readMBlock() error {
	for {
		if c.atEOF() {
			if c.opts.Relaxed {
				c.log.Debug("missing M  END, accepting", logging.Line(c.pos))
				return nil
			}
			return errors.Format(c.pos+1, "premature end of input: missing M  END")
		}
		line, err := c.next()
		if err != nil {
			return err
		}
		trimmed := strings.TrimRight(line, " ")
		if trimmed == endMarker {
			return nil
		}

		switch {
		case strings.HasPrefix(line, "M  CHG"):
			err = c.applyPairs(line, false, func(idx, val int) error {
				return c.mol.SetAtomCharge(idx, val)
			})
		case strings.HasPrefix(line, "M  RAD"):
			err = c.applyPairs(line, false, func(idx, val int) error {
				return c.mol.SetAtomUnpaired(idx, radicalElectrons(val))
			})
		case strings.HasPrefix(line, "M  ISO"):
			err = c.applyPairs(line, false, func(idx, val int) error {
				return c.mol.SetAtomIsotope(idx, val)
			})
		case strings.HasPrefix(line, "M  RGP"):
			err = c.applyPairs(line, false, func(idx, val int) error {
				c.report.AddOrJoinNote(compliance.KindRGroupLabel, []int{idx}, nil, nil)
				return c.mol.SetAtomElement(idx, fmt.Sprintf("R%d", val))
			})
		case strings.HasPrefix(line, "M  HYD") && c.opts.Extended:
			err = c.applyPairs(line, false, func(idx, val int) error {
				if val < 0 {
					return fmt.Errorf("negative hydrogen count %d on atom %d", val, idx)
				}
				c.report.AddOrJoinNote(compliance.KindHydrogenBlock, []int{idx}, nil, nil)
				c.hOverride[idx-1] = val
				return nil
			})
		case strings.HasPrefix(line, "M  ZCH") && c.opts.Extended:
			err = c.applyPairs(line, false, func(idx, val int) error {
				c.report.AddOrJoinNote(compliance.KindZeroCharge, []int{idx}, nil, nil)
				return c.mol.SetAtomCharge(idx, val)
			})
		case strings.HasPrefix(line, "M  ZBO") && c.opts.Extended:
			err = c.applyPairs(line, true, func(idx, val int) error {
				if val < 0 || val > 3 {
					return fmt.Errorf("bond order %d on bond %d out of range 0..3", val, idx)
				}
				c.report.AddOrJoinNote(compliance.KindZeroOrderBond, nil, []int{idx}, nil)
				return c.mol.SetBondOrder(idx, val)
			})
		case strings.HasPrefix(line, "A  "):
			err = c.applyAlias(line)
		default:
			c.log.Debug("skipping property line", logging.Line(c.pos), logging.String("prefix", prefix(line)))
		}
		if err != nil {
			return err
		}
	}
}

// applyPairs walks the count at columns 6-9 and the 8-byte (index, value)
// pairs that follow.  Indices address bonds when onBonds is set.
func (c *parseContext) applyPairs(line string, onBonds bool, apply func(idx, val int) error) error {
	count, err := c.intField(line, 6, 9)
	if err != nil {
		return err
	}
	for n := 0; n < count; n++ {
		lo := 9 + 8*n
		idx, err := c.intField(line, lo, lo+4)
		if err != nil {
			return err
		}
		val, err := c.intField(line, lo+4, lo+8)
		if err != nil {
			return err
		}
		inRange := c.atomInRange(idx)
		kind := "atom"
		if onBonds {
			inRange, kind = c.bondInRange(idx), "bond"
		}
		if !inRange {
			return errors.Formatf(c.pos, "%s %s index %d out of range", prefix(line), kind, idx)
		}
		if err := apply(idx, val); err != nil {
			return errors.Formatf(c.pos, "%s: %v", prefix(line), err)
		}
	}
	return nil
}

// applyAlias replaces the element label of the aliased atom with the text of
// the following line.
func (c *parseContext) applyAlias(line string) error {
	idx, err := c.intField(line, 3, 6)
	if err != nil {
		return err
	}
	if !c.atomInRange(idx) {
		return errors.Formatf(c.pos, "alias atom index %d out of range", idx)
	}
	label, err := c.next()
	if err != nil {
		return err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	c.report.AddOrJoinNote(compliance.KindAtomAlias, []int{idx}, nil, &compliance.Span{Row: c.pos, Col: 0, Len: len(label)})
	return c.mol.SetAtomElement(idx, label)
}

// radicalElectrons maps RAD values (1 singlet, 2 doublet, 3 triplet) to the
// number of unpaired electrons.
func radicalElectrons(v int) int {
	switch v {
	case 2:
		return 1
	case 1, 3:
		return 2
	default:
		return 0
	}
}

func prefix(line string) string {
	if len(line) > 6 {
		return strings.TrimSpace(line[:6])
	}
	return strings.TrimSpace(line)
}

//Personal.AI order the ending
