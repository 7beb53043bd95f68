package molfile

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// v3000 wraps V30 body lines (without the "M  V30 " prefix) in a header,
// counts line and M  END.
func v3000(body ...string) string {
	lines := []string{"nitroxyl", "  molkit", "", countsLine(0, 0, VersionV3000)}
	for _, b := range body {
		lines = append(lines, v30Prefix+b)
	}
	lines = append(lines, endMarker)
	return strings.Join(lines, "\n") + "\n"
}

var v3000Body = []string{
	"BEGIN CTAB",
	"COUNTS 3 2 0 0 0",
	"BEGIN ATOM",
	"1 C 0 0 0 0",
	"2 N 1.5 0 0 0 CHG=1 -",
	"MASS=15",
	"3 O 3.0 0 0 2 RAD=2 CFG=1",
	"END ATOM",
	"BEGIN BOND",
	"2 1 2 3 CFG=3",
	"1 2 1 2 CFG=1",
	"END BOND",
	"BEGIN SGROUP",
	"1 SUP 0 ATOMS=(1 1)",
	"END SGROUP",
	"END CTAB",
}

func TestParseV3000(t *testing.T) {
	res, err := Parse(v3000(v3000Body...), DefaultOptions())
	require.NoError(t, err)

	m := res.Molecule
	assert.Equal(t, VersionV3000, res.Version)
	assert.Equal(t, "nitroxyl", res.Name)
	require.Equal(t, 3, m.NumAtoms())
	require.Equal(t, 2, m.NumBonds())

	assert.Equal(t, []string{"C", "N", "O"}, []string{m.AtomElement(1), m.AtomElement(2), m.AtomElement(3)})
	assert.Equal(t, 1, m.AtomCharge(2))
	assert.Equal(t, 15, m.AtomIsotope(2))
	assert.Equal(t, 1, m.AtomUnpaired(3))
	assert.Equal(t, 1, m.AtomParity(3))
	assert.Equal(t, 2, m.AtomMapNum(3))
	x, _, _ := m.AtomPos(3)
	assert.InDelta(t, 3.0, x, 1e-9)

	assert.Equal(t, 1, m.BondFrom(1))
	assert.Equal(t, 2, m.BondTo(1))
	assert.Equal(t, 2, m.BondOrder(1))
	assert.Equal(t, molecule.StyleInclined, m.BondType(1))
	assert.Equal(t, molecule.StyleDeclined, m.BondType(2))

	assert.True(t, res.Compliance.Has(compliance.KindV3000Format))
	assert.Equal(t, compliance.LevelV3000, res.Compliance.Level())
	assert.False(t, res.Compliance.Invalid())
}

func TestParseV3000_AromaticBondType(t *testing.T) {
	res, err := Parse(v3000(
		"BEGIN CTAB",
		"COUNTS 2 1 0 0 0",
		"BEGIN ATOM",
		"1 C 0 0 0 0",
		"2 C 1.5 0 0 0",
		"END ATOM",
		"BEGIN BOND",
		"1 4 1 2 CFG=2",
		"END BOND",
		"END CTAB",
	), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Molecule.BondOrder(1))
	assert.Equal(t, molecule.StyleUnknown, res.Molecule.BondType(1))
	assert.Equal(t, []int{1}, res.ResonanceBonds)
	assert.True(t, res.Compliance.Invalid())
}

func TestParseV3000_Errors(t *testing.T) {
	replace := func(i int, s string) []string {
		body := append([]string(nil), v3000Body...)
		body[i] = s
		return body
	}
	tests := []struct {
		name string
		body []string
		line int
	}{
		{"atoms before counts", []string{"BEGIN CTAB", "BEGIN ATOM"}, 6},
		{"duplicate atom index", replace(6, "1 O 3.0 0 0 0"), 11},
		{"atom index out of range", replace(6, "4 O 3.0 0 0 0"), 11},
		{"short atom line", replace(3, "1 C 0 0"), 8},
		{"bond to missing atom", replace(9, "2 1 2 7"), 14},
		{"malformed counts", replace(1, "COUNTS x 2"), 6},
		{"unknown tag", append([]string{"LINKNODE 1 2 2 1 2"}, v3000Body...), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(v3000(tt.body...), DefaultOptions())
			requireFormatLine(t, err, tt.line)
		})
	}
}

func TestParseV3000_UndeclaredEntities(t *testing.T) {
	t.Run("missing atom", func(t *testing.T) {
		body := append([]string(nil), v3000Body[:6]...)
		body = append(body, v3000Body[7:]...)
		_, err := Parse(v3000(body...), DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "atom 3 declared in COUNTS but never defined")
	})

	t.Run("missing bond", func(t *testing.T) {
		body := append([]string(nil), v3000Body[:10]...)
		body = append(body, v3000Body[11:]...)
		_, err := Parse(v3000(body...), DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bond 1 declared in COUNTS but never defined")
	})

	t.Run("no counts", func(t *testing.T) {
		_, err := Parse(v3000("BEGIN CTAB", "END CTAB"), DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without COUNTS")
	})
}

func TestParseV3000_RelaxedSkipsUnknownTags(t *testing.T) {
	opts := DefaultOptions()
	opts.Relaxed = true
	body := append([]string{"LINKNODE 1 2 2 1 2"}, v3000Body...)

	res, err := Parse(v3000(body...), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Molecule.NumAtoms())
}

func TestParseV3000_CountsExceedInput(t *testing.T) {
	tests := []struct {
		name   string
		counts string
	}{
		{"atoms", "COUNTS 5000000 0 0 0 0"},
		{"bonds", "COUNTS 1 5000000 0 0 0"},
		{"one past the end", "COUNTS 3 2 0 0 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(v3000("BEGIN CTAB", tt.counts), DefaultOptions())
			requireFormatLine(t, err, 6)
			assert.Contains(t, err.Error(), "lines remain")
		})
	}
}

func TestParseV3000_OversizedCounts(t *testing.T) {
	n := compliance.MaxCount + 1
	body := []string{"BEGIN CTAB", fmt.Sprintf("COUNTS %d 0 0 0 0", n), "BEGIN ATOM"}
	for i := 1; i <= n; i++ {
		body = append(body, fmt.Sprintf("%d C %d 0 0 0", i, i))
	}
	body = append(body, "END ATOM", "END CTAB")

	res, err := Parse(v3000(body...), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, n, res.Molecule.NumAtoms())
	assert.True(t, res.Compliance.Has(compliance.KindOversizedCounts))
}

func TestParseSDF(t *testing.T) {
	record := "ethanol" + ethanolV2000 + "> <ID>\nMK-1\n\n"
	text := record + RecordSeparator + "\n" + record + RecordSeparator + "\n"

	results, err := ParseSDF(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, "ethanol", res.Name)
		assert.Equal(t, 2, res.Molecule.NumAtoms())
	}
}

func TestParseSDF_ErrorNamesRecord(t *testing.T) {
	good := ethanolV2000
	bad := strings.Replace(ethanolV2000, "  1  2  1  0", "  1  5  1  0", 1)
	text := good + RecordSeparator + "\n" + bad + RecordSeparator + "\n"

	results, err := ParseSDF(text, DefaultOptions())
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sdf record 2")
	requireFormatLine(t, err, 7)
}

func TestSplitSDF(t *testing.T) {
	assert.Empty(t, SplitSDF(""))
	assert.Len(t, SplitSDF("a\n$$$$\n\n  \n"), 1)
	assert.Len(t, SplitSDF("a\n$$$$\r\nb\n"), 2)
}

//Personal.AI order the ending
