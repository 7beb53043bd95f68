package molfile

import (
	"strconv"
	"strings"

	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

const v30Prefix = "M  V30 "

type v3000Section int

const (
	sectionNone v3000Section = iota
	sectionAtom
	sectionBond
)

// v3000Bond is a bond declaration held until every atom is known.
type v3000Bond struct {
	row      int
	from, to int
	order    int
	style    molecule.BondStyle
	reso     bool
	query    bool
	declared bool
}

// v3000Reader is the tagged-record sub-parser.  It shares the parse context
// only for line access and graph mutation.
type v3000Reader struct {
	c *parseContext

	section      v3000Section
	counted      bool
	atomDeclared []bool
	bonds        []v3000Bond
}

func (c *parseContext) readV3000() error {
	r := &v3000Reader{c: c}
	if err := r.scan(); err != nil {
		return err
	}
	return r.finish()
}

func (r *v3000Reader) scan() error {
	c := r.c
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
		if strings.TrimRight(line, " ") == endMarker {
			return nil
		}
		if !strings.HasPrefix(line, v30Prefix) {
			c.log.Debug("skipping non-V30 line", logging.Line(c.pos), logging.String("prefix", prefix(line)))
			continue
		}
		row := c.pos
		content, err := r.joinContinuations(line[len(v30Prefix):])
		if err != nil {
			return err
		}
		tokens := strings.Fields(content)
		if len(tokens) == 0 {
			continue
		}
		if err := r.dispatch(row, tokens); err != nil {
			return err
		}
	}
}

// joinContinuations appends following V30 lines while the content ends with
// the "-" continuation marker.
func (r *v3000Reader) joinContinuations(content string) (string, error) {
	c := r.c
	var sb strings.Builder
	for {
		trimmed := strings.TrimRight(content, " ")
		if !strings.HasSuffix(trimmed, "-") {
			sb.WriteString(content)
			return sb.String(), nil
		}
		sb.WriteString(strings.TrimSuffix(trimmed, "-"))
		next, err := c.next()
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(next, v30Prefix) {
			return "", errors.Format(c.pos, "continuation line lacks M  V30 prefix")
		}
		content = next[len(v30Prefix):]
	}
}

func (r *v3000Reader) dispatch(row int, tokens []string) error {
	c := r.c
	switch strings.ToUpper(tokens[0]) {
	case "BEGIN":
		if len(tokens) < 2 {
			return errors.Format(row, "BEGIN without block name")
		}
		switch strings.ToUpper(tokens[1]) {
		case "CTAB":
		case "ATOM":
			if !r.counted {
				return errors.Format(row, "ATOM block before COUNTS")
			}
			r.section = sectionAtom
		case "BOND":
			if !r.counted {
				return errors.Format(row, "BOND block before COUNTS")
			}
			r.section = sectionBond
		default:
			return r.skipBlock(tokens[1])
		}
		return nil
	case "END":
		r.section = sectionNone
		return nil
	case "COUNTS":
		return r.counts(row, tokens)
	}

	switch r.section {
	case sectionAtom:
		return r.atom(row, tokens)
	case sectionBond:
		return r.bond(row, tokens)
	}
	if c.opts.Relaxed {
		c.log.Debug("skipping unknown V30 tag", logging.Line(row), logging.String("tag", tokens[0]))
		return nil
	}
	return errors.Formatf(row, "unknown V3000 tag %q", tokens[0])
}

// skipBlock discards lines through the END matching name, counting nested
// BEGIN/END pairs.
func (r *v3000Reader) skipBlock(name string) error {
	c := r.c
	depth := 1
	for depth > 0 {
		line, err := c.next()
		if err != nil {
			return err
		}
		if !strings.HasPrefix(line, v30Prefix) {
			continue
		}
		tokens := strings.Fields(line[len(v30Prefix):])
		if len(tokens) == 0 {
			continue
		}
		switch strings.ToUpper(tokens[0]) {
		case "BEGIN":
			depth++
		case "END":
			depth--
		}
	}
	c.log.Debug("skipped V3000 block", logging.String("block", name), logging.Line(c.pos))
	return nil
}

func (r *v3000Reader) counts(row int, tokens []string) error {
	if r.counted {
		return errors.Format(row, "duplicate COUNTS")
	}
	if len(tokens) < 3 {
		return errors.Format(row, "COUNTS requires atom and bond counts")
	}
	na, err1 := strconv.Atoi(tokens[1])
	nb, err2 := strconv.Atoi(tokens[2])
	if err1 != nil || err2 != nil || na < 0 || nb < 0 {
		return errors.Formatf(row, "malformed COUNTS %q %q", tokens[1], tokens[2])
	}
	// every declared atom and bond needs at least one line of its own
	if remaining := len(r.c.lines) - r.c.pos; na+nb > remaining {
		return errors.Formatf(row, "COUNTS declares %d atoms and %d bonds but only %d lines remain", na, nb, remaining)
	}
	r.counted = true
	r.atomDeclared = make([]bool, na)
	r.bonds = make([]v3000Bond, nb)
	r.c.hOverride = make([]int, na)
	for i := 0; i < na; i++ {
		r.c.mol.AddAtom("", 0, 0, 0, 0, 0)
		r.c.hOverride[i] = molecule.HUnset
	}
	return nil
}

// declaredIndex validates the leading 1-based index of an atom or bond line.
func declaredIndex(row int, token string, limit int, seen func(int) bool, what string) (int, error) {
	idx, err := strconv.Atoi(token)
	if err != nil {
		return 0, errors.Formatf(row, "malformed %s index %q", what, token)
	}
	if idx < 1 || idx > limit {
		return 0, errors.Formatf(row, "%s index %d out of range 1..%d", what, idx, limit)
	}
	if seen(idx) {
		return 0, errors.Formatf(row, "duplicate %s index %d", what, idx)
	}
	return idx, nil
}

func (r *v3000Reader) atom(row int, tokens []string) error {
	c := r.c
	if len(tokens) < 6 {
		return errors.Format(row, "atom line requires index, element, x, y, z and map number")
	}
	idx, err := declaredIndex(row, tokens[0], len(r.atomDeclared), func(i int) bool { return r.atomDeclared[i-1] }, "atom")
	if err != nil {
		return err
	}
	r.atomDeclared[idx-1] = true

	var pos [3]float64
	for k := 0; k < 3; k++ {
		v, err := strconv.ParseFloat(tokens[2+k], 64)
		if err != nil {
			return errors.Formatf(row, "malformed coordinate %q", tokens[2+k])
		}
		pos[k] = v
	}
	mapNum, err := strconv.Atoi(tokens[5])
	if err != nil {
		return errors.Formatf(row, "malformed atom map %q", tokens[5])
	}
	_ = c.mol.SetAtomElement(idx, tokens[1])
	_ = c.mol.SetAtomPos(idx, pos[0], pos[1], pos[2])
	_ = c.mol.SetAtomMapNum(idx, mapNum)

	for _, kv := range tokens[6:] {
		key, val, ok := splitKeyValue(kv)
		if !ok {
			return errors.Formatf(row, "malformed property %q", kv)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			c.log.Debug("ignoring non-numeric atom property", logging.Line(row), logging.String("key", key))
			continue
		}
		switch key {
		case "CHG":
			_ = c.mol.SetAtomCharge(idx, n)
		case "RAD":
			_ = c.mol.SetAtomUnpaired(idx, radicalElectrons(n))
		case "MASS":
			_ = c.mol.SetAtomIsotope(idx, n)
		case "CFG":
			_ = c.mol.SetAtomParity(idx, n)
		default:
			c.log.Debug("ignoring atom property", logging.Line(row), logging.String("key", key))
		}
	}
	return nil
}

func (r *v3000Reader) bond(row int, tokens []string) error {
	c := r.c
	if len(tokens) < 4 {
		return errors.Format(row, "bond line requires index, type and two atoms")
	}
	idx, err := declaredIndex(row, tokens[0], len(r.bonds), func(i int) bool { return r.bonds[i-1].declared }, "bond")
	if err != nil {
		return err
	}
	vals := make([]int, 3)
	for k := 0; k < 3; k++ {
		v, err := strconv.Atoi(tokens[1+k])
		if err != nil {
			return errors.Formatf(row, "malformed bond field %q", tokens[1+k])
		}
		vals[k] = v
	}
	b := v3000Bond{row: row, from: vals[1], to: vals[2], declared: true}
	b.order, b.reso, b.query = decodeBondOrder(vals[0])

	for _, kv := range tokens[4:] {
		key, val, ok := splitKeyValue(kv)
		if !ok {
			return errors.Formatf(row, "malformed property %q", kv)
		}
		if key != "CFG" {
			c.log.Debug("ignoring bond property", logging.Line(row), logging.String("key", key))
			continue
		}
		switch val {
		case "1":
			b.style = molecule.StyleInclined
		case "2":
			b.style = molecule.StyleUnknown
		case "3":
			b.style = molecule.StyleDeclined
		}
	}
	r.bonds[idx-1] = b
	return nil
}

// finish checks that every declared entity was defined and adds the bonds in
// index order.
func (r *v3000Reader) finish() error {
	c := r.c
	if !r.counted {
		return errors.Format(c.pos, "V3000 connection table without COUNTS")
	}
	for i, ok := range r.atomDeclared {
		if !ok {
			return errors.Formatf(c.pos, "atom %d declared in COUNTS but never defined", i+1)
		}
	}
	c.resonance = make([]bool, len(r.bonds))
	for i, b := range r.bonds {
		if !b.declared {
			return errors.Formatf(c.pos, "bond %d declared in COUNTS but never defined", i+1)
		}
		idx, err := c.mol.AddBond(b.from, b.to, b.order, b.style)
		if err != nil {
			return errors.Formatf(b.row, "bond %d-%d: invalid endpoints for %d atoms", b.from, b.to, c.mol.NumAtoms())
		}
		span := &compliance.Span{Row: b.row, Col: 0, Len: len(v30Prefix)}
		if b.reso {
			c.resonance[idx-1] = true
			c.report.AddOrJoinNote(compliance.KindAromaticBond, nil, []int{idx}, span)
		}
		if b.query {
			c.report.AddOrJoinNote(compliance.KindQueryBond, nil, []int{idx}, span)
		}
	}
	return nil
}

func splitKeyValue(kv string) (string, string, bool) {
	i := strings.IndexByte(kv, '=')
	if i <= 0 {
		return "", "", false
	}
	return strings.ToUpper(kv[:i]), strings.Trim(kv[i+1:], "\""), true
}

//Personal.AI order the ending
