package molecule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyMolfile = "\n\n\n  1  0  0  0  0  0  0  0  0  0999 V2000\n" +
	"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\nM  END\n"

func TestInputFormat_IsValid(t *testing.T) {
	assert.True(t, InputFormat("").IsValid())
	assert.True(t, FormatMolfile.IsValid())
	assert.True(t, FormatSDF.IsValid())
	assert.False(t, InputFormat("smiles").IsValid())
}

func TestMolfileInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      MolfileInput
		wantErr string
	}{
		{"ok", MolfileInput{Molfile: tinyMolfile}, ""},
		{"blank", MolfileInput{Molfile: "  \n"}, "cannot be empty"},
		{"bad format", MolfileInput{Molfile: tinyMolfile, Format: "cdx"}, "unsupported format"},
		{"bad mode", MolfileInput{Molfile: tinyMolfile, Annotate: AnnotateOptionsDTO{Aromaticity: "huckel"}}, "aromaticity mode"},
		{"relaxed mode", MolfileInput{Molfile: tinyMolfile, Annotate: AnnotateOptionsDTO{Aromaticity: "relaxed"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEquivalenceRequest_Validate(t *testing.T) {
	ok := MolfileInput{Molfile: tinyMolfile}
	assert.NoError(t, EquivalenceRequest{A: ok, B: ok}.Validate())

	err := EquivalenceRequest{A: ok}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: ")

	sdf := MolfileInput{Molfile: tinyMolfile, Format: FormatSDF}
	assert.Error(t, EquivalenceRequest{A: sdf, B: ok}.Validate())
	assert.Error(t, EquivalenceRequest{A: ok, B: ok, TimeoutMS: -1}.Validate())
}

func TestIngestMessage_Validate(t *testing.T) {
	assert.NoError(t, IngestMessage{JobID: "j1", ObjectKey: "in/a.mol"}.Validate())
	assert.NoError(t, IngestMessage{JobID: "j1", Input: MolfileInput{Molfile: tinyMolfile}}.Validate())

	assert.Error(t, IngestMessage{ObjectKey: "in/a.mol"}.Validate())
	assert.Error(t, IngestMessage{JobID: "j1"}.Validate())
	assert.Error(t, IngestMessage{JobID: "j1", ObjectKey: "k", Input: MolfileInput{Molfile: tinyMolfile}}.Validate())
}

func TestAnnotationDTO_JSONShape(t *testing.T) {
	dto := AnnotationDTO{
		Version:         "V2000",
		Atoms:           2,
		Bonds:           1,
		Elements:        []string{"C", "O"},
		Compliance:      ComplianceDTO{Level: "V2000"},
		AromaticityMode: "strict",
		AromaticAtoms:   []int{},
		AromaticBonds:   []int{},
	}
	data, err := json.Marshal(dto)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "V2000", raw["version"])
	assert.NotContains(t, raw, "stereo")
	assert.NotContains(t, raw, "skeleton_hash")
	assert.Contains(t, raw, "aromatic_atoms")
}
