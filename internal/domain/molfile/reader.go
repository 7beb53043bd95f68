package molfile

import (
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

const endMarker = "M  END"

// parseContext is the transient state of one Parse call.
type parseContext struct {
	lines []string
	pos   int // number of lines consumed; equals the 1-based number of the last line read
	opts  Options
	log   logging.Logger

	mol    *molecule.Molecule
	report *compliance.Report

	hOverride []int  // per atom, molecule.HUnset when absent
	resonance []bool // per bond
}

// Parse decodes a single molfile.  Structural violations return an AppError
// with code MOL_101 whose cause is an errors.FormatError carrying the 1-based
// line number.
func Parse(text string, opts Options) (*Result, error) {
	c := newParseContext(text, opts)
	res, err := c.run()
	if err != nil {
		c.log.Debug("molfile rejected", logging.Err(err), logging.Line(c.pos))
		return nil, err
	}
	return res, nil
}

// ParseReader reads r fully and decodes it with Parse.
func ParseReader(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "read molfile")
	}
	return Parse(string(data), opts)
}

func newParseContext(text string, opts Options) *parseContext {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &parseContext{
		lines:  strings.Split(text, "\n"),
		opts:   opts,
		log:    logging.OrNop(opts.Logger).Named("molfile"),
		mol:    molecule.New(),
		report: compliance.NewReport(),
	}
}

func (c *parseContext) run() (*Result, error) {
	res := &Result{Molecule: c.mol, Compliance: c.report}

	if c.opts.ParseHeader {
		if err := c.readHeader(res); err != nil {
			return nil, err
		}
	}

	countsLine, err := c.next()
	if err != nil {
		return nil, err
	}
	countsRow := c.pos
	numAtoms, err := c.intField(countsLine, 0, 3)
	if err != nil {
		return nil, err
	}
	numBonds, err := c.intField(countsLine, 3, 6)
	if err != nil {
		return nil, err
	}

	version := field(countsLine, 34, 39)
	switch version {
	case VersionV3000:
		res.Version = VersionV3000
		c.report.AddNote(compliance.KindV3000Format, nil, nil, &compliance.Span{Row: countsRow, Col: 34, Len: 5})
		err = c.readV3000()
	case VersionV2000:
		res.Version = VersionV2000
		err = c.readV2000(numAtoms, numBonds)
	default:
		if !c.opts.Relaxed {
			return nil, errors.Formatf(countsRow, "unsupported version tag %q", version)
		}
		c.log.Debug("unrecognised version tag, reading as V2000", logging.String(logging.KeyVersion, version), logging.Line(countsRow))
		res.Version = VersionV2000
		err = c.readV2000(numAtoms, numBonds)
	}
	if err != nil {
		return nil, err
	}

	if err := c.postFix(); err != nil {
		return nil, err
	}
	for i, flagged := range c.resonance {
		if flagged {
			res.ResonanceBonds = append(res.ResonanceBonds, i+1)
		}
	}
	c.report.DeriveFromGraph(c.mol)
	c.mol.SetName(res.Name)

	c.log.Debug("molfile parsed",
		logging.String(logging.KeyVersion, res.Version),
		logging.Int(logging.KeyAtoms, c.mol.NumAtoms()),
		logging.Int(logging.KeyBonds, c.mol.NumBonds()))
	return res, nil
}

// readHeader records the name and comment lines.  The program line is ignored.
func (c *parseContext) readHeader(res *Result) error {
	name, err := c.next()
	if err != nil {
		return err
	}
	if _, err := c.next(); err != nil {
		return err
	}
	comment, err := c.next()
	if err != nil {
		return err
	}
	res.Name = strings.TrimSpace(name)
	res.Comment = strings.TrimSpace(comment)
	if res.Name == "" && res.Comment != "" {
		c.report.AddNote(compliance.KindNonstandardName, nil, nil, &compliance.Span{Row: 3, Col: 0, Len: len(comment)})
	}
	return nil
}

// next returns the next raw line with any trailing carriage return removed.
func (c *parseContext) next() (string, error) {
	if c.pos >= len(c.lines) {
		return "", errors.Format(c.pos+1, "premature end of input")
	}
	line := strings.TrimRight(c.lines[c.pos], "\r")
	c.pos++
	return line, nil
}

func (c *parseContext) atEOF() bool {
	return c.pos >= len(c.lines)
}

// field extracts columns [from, to) clipped to the line and trims spaces.
func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// intField decodes a fixed-width integer.  An empty field reads as zero.
func (c *parseContext) intField(line string, from, to int) (int, error) {
	s := field(line, from, to)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Formatf(c.pos, "malformed integer %q at columns %d-%d", s, from, to)
	}
	return v, nil
}

// floatField decodes a fixed-width decimal.  An empty field reads as zero.
func (c *parseContext) floatField(line string, from, to int) (float64, error) {
	s := field(line, from, to)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Formatf(c.pos, "malformed number %q at columns %d-%d", s, from, to)
	}
	return v, nil
}

func (c *parseContext) atomInRange(idx int) bool {
	return idx >= 1 && idx <= c.mol.NumAtoms()
}

func (c *parseContext) bondInRange(idx int) bool {
	return idx >= 1 && idx <= c.mol.NumBonds()
}

//Personal.AI order the ending
