// Package molfile decodes MDL molfiles (V2000 fixed-width and V3000 tagged
// records) into molecule graphs and records the dialect features it meets in
// a compliance report.
package molfile

import (
	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
)

// Version tags found at columns 34-39 of the counts line.
const (
	VersionV2000 = "V2000"
	VersionV3000 = "V3000"
)

// Options controls reader leniency.
type Options struct {
	// Relaxed tolerates a missing or unknown version tag, unknown V3000 tags
	// and a missing M  END terminator.
	Relaxed bool
	// Extended enables the M  HYD, M  ZCH and M  ZBO blocks.
	Extended bool
	// ParseHeader reads the three header lines before the counts line.
	ParseHeader bool
	// Rescale renormalises coordinates when the median bond length is far
	// from CanonicalBondLength.
	Rescale bool
	Logger  logging.Logger
}

// DefaultOptions returns strict options with header parsing enabled.
func DefaultOptions() Options {
	return Options{ParseHeader: true}
}

// Result is a decoded molfile.
type Result struct {
	Molecule   *molecule.Molecule
	Compliance *compliance.Report
	Name       string
	Comment    string
	Version    string
	// ResonanceBonds lists bonds read with the aromatic order 4.  They are
	// stored as single bonds; no resonance structure is reconstructed.
	ResonanceBonds []int
}

//Personal.AI order the ending
