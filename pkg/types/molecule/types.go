// Package molecule defines the molfile-domain data transfer objects shared by
// the HTTP API, the CLI and the ingestion worker.  No domain logic lives here,
// only plain data types safe to import from any layer.
package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/keyip-molkit/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Input
// ─────────────────────────────────────────────────────────────────────────────

// InputFormat names the container of a submitted structure.
type InputFormat string

const (
	// FormatMolfile is a single MDL molfile (V2000 or V3000).
	FormatMolfile InputFormat = "molfile"

	// FormatSDF is an SD file of "$$$$"-separated molfile records.
	FormatSDF InputFormat = "sdf"
)

// IsValid reports whether f is a known format.  The empty format is read as
// FormatMolfile.
func (f InputFormat) IsValid() bool {
	switch f {
	case "", FormatMolfile, FormatSDF:
		return true
	}
	return false
}

// ReaderOptionsDTO mirrors the molfile reader switches.  A nil ParseHeader
// means the reader default.
type ReaderOptionsDTO struct {
	Relaxed     bool  `json:"relaxed,omitempty" mapstructure:"relaxed"`
	Extended    bool  `json:"extended,omitempty" mapstructure:"extended"`
	ParseHeader *bool `json:"parse_header,omitempty" mapstructure:"parse_header"`
	Rescale     bool  `json:"rescale,omitempty" mapstructure:"rescale"`
}

// AnnotateOptionsDTO selects the derived annotations to compute.
type AnnotateOptionsDTO struct {
	// Aromaticity is "strict" or "relaxed"; empty selects the service default.
	Aromaticity string `json:"aromaticity,omitempty"`
	Stereo      bool   `json:"stereo,omitempty"`
	Hashes      bool   `json:"hashes,omitempty"`
}

// MolfileInput is a structure submission.
type MolfileInput struct {
	Format   InputFormat        `json:"format,omitempty"`
	Molfile  string             `json:"molfile"`
	Reader   ReaderOptionsDTO   `json:"reader,omitempty"`
	Annotate AnnotateOptionsDTO `json:"annotate,omitempty"`
}

// Validate checks the submission shape; it does not parse the molfile.
func (in MolfileInput) Validate() error {
	if strings.TrimSpace(in.Molfile) == "" {
		return fmt.Errorf("molfile cannot be empty")
	}
	if !in.Format.IsValid() {
		return fmt.Errorf("unsupported format %q", in.Format)
	}
	switch in.Annotate.Aromaticity {
	case "", "strict", "relaxed":
	default:
		return fmt.Errorf("unknown aromaticity mode %q", in.Annotate.Aromaticity)
	}
	return nil
}

// EquivalenceRequest asks whether two structures are the same molecule.
type EquivalenceRequest struct {
	A MolfileInput `json:"a"`
	B MolfileInput `json:"b"`
	// TimeoutMS bounds the isomorphism search; 0 selects the service default.
	TimeoutMS int64 `json:"timeout_ms,omitempty"`
}

func (r EquivalenceRequest) Validate() error {
	if err := r.A.Validate(); err != nil {
		return fmt.Errorf("a: %w", err)
	}
	if err := r.B.Validate(); err != nil {
		return fmt.Errorf("b: %w", err)
	}
	if r.A.Format == FormatSDF || r.B.Format == FormatSDF {
		return fmt.Errorf("equivalence compares single molfiles")
	}
	if r.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be >= 0")
	}
	return nil
}

// IngestMessage is the payload of the ingestion topic.  Exactly one of
// Molfile and ObjectKey is set.
type IngestMessage struct {
	JobID     string       `json:"job_id"`
	ObjectKey string       `json:"object_key,omitempty"`
	Input     MolfileInput `json:"input"`
}

func (m IngestMessage) Validate() error {
	if m.JobID == "" {
		return fmt.Errorf("job_id cannot be empty")
	}
	hasInline := strings.TrimSpace(m.Input.Molfile) != ""
	switch {
	case hasInline && m.ObjectKey != "":
		return fmt.Errorf("object_key and inline molfile are mutually exclusive")
	case !hasInline && m.ObjectKey == "":
		return fmt.Errorf("either object_key or inline molfile is required")
	}
	if hasInline {
		return m.Input.Validate()
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

// SpanDTO locates a note in the source text.  Row is 1-based.
type SpanDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
	Len int `json:"len"`
}

// NoteDTO is one compliance feature note.
type NoteDTO struct {
	Kind    string   `json:"kind"`
	Level   string   `json:"level"`
	Invalid bool     `json:"invalid,omitempty"`
	Atoms   []int    `json:"atoms,omitempty"`
	Bonds   []int    `json:"bonds,omitempty"`
	Source  *SpanDTO `json:"source,omitempty"`
}

// ComplianceDTO summarises the format features a molfile uses.
type ComplianceDTO struct {
	Level   string    `json:"level"`
	Invalid bool      `json:"invalid"`
	Notes   []NoteDTO `json:"notes,omitempty"`
}

// AnnotationDTO is the annotation summary of one molfile.
type AnnotationDTO struct {
	ID       common.ID `json:"id"`
	Digest   string    `json:"digest"`
	Name     string    `json:"name,omitempty"`
	Comment  string    `json:"comment,omitempty"`
	Version  string    `json:"version"`
	Atoms    int       `json:"atoms"`
	Bonds    int       `json:"bonds"`
	Elements []string  `json:"elements"`

	Compliance     ComplianceDTO `json:"compliance"`
	ResonanceBonds []int         `json:"resonance_bonds,omitempty"`

	AromaticityMode string `json:"aromaticity_mode"`
	AromaticAtoms   []int  `json:"aromatic_atoms"`
	AromaticBonds   []int  `json:"aromatic_bonds"`

	// Stereo maps a rubric category to its 1-based candidate indices.
	Stereo map[string][]int `json:"stereo,omitempty"`

	SkeletonHash string `json:"skeleton_hash,omitempty"`
	HeavyHash    string `json:"heavy_hash,omitempty"`

	CreatedAt common.Timestamp `json:"created_at"`
}

// EquivalenceDTO is the outcome of an equivalence request.
type EquivalenceDTO struct {
	Equivalent bool   `json:"equivalent"`
	HashA      string `json:"hash_a"`
	HashB      string `json:"hash_b"`
	DurationMS int64  `json:"duration_ms"`
}

// IngestResult is the payload of the annotated topic.
type IngestResult struct {
	JobID       string              `json:"job_id"`
	ObjectKey   string              `json:"object_key,omitempty"`
	Annotations []AnnotationDTO     `json:"annotations,omitempty"`
	Error       *common.ErrorDetail `json:"error,omitempty"`
	ProcessedAt common.Timestamp    `json:"processed_at"`
}

//Personal.AI order the ending
