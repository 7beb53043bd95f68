// Package meta wraps a molecule graph with its derived annotation caches and
// screens pairs of molecules for structural equivalence.
//
// Every cache is either fully populated for the current graph or absent.
// Structural rewrites go through Meta so that populated caches are remapped
// or cleared in the same call.
package meta

import (
	"sort"
	"time"

	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/internal/domain/stereo"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// HashFunc computes a canonical skeleton fingerprint of a graph.
type HashFunc func(g molecule.Graph) string

// MatchFunc decides isomorphism of two annotated molecules within timeout.
type MatchFunc func(a, b *Meta, timeout time.Duration) (bool, error)

// Hooks are the host-supplied algorithms used by equivalence screening.
// Both molecules of a comparison are expected to share the same hooks.
type Hooks struct {
	Hash  HashFunc
	Match MatchFunc
}

// Meta owns a molecule graph and its derived caches.  It is not safe for
// concurrent use.
type Meta struct {
	mol   molecule.MutableGraph
	hooks Hooks

	arom     *aromaticity.Flags
	aromMode aromaticity.Mode
	rubrics  *stereo.Rubrics

	skeletonHash   *string
	heavyHash      *string
	uniqueElements []string
}

// New wraps g.  The caller gives up ownership of g; later edits must go
// through Meta or be followed by Invalidate.
func New(g molecule.MutableGraph, hooks Hooks) *Meta {
	return &Meta{mol: g, hooks: hooks}
}

// Graph returns the wrapped graph.
func (m *Meta) Graph() molecule.MutableGraph { return m.mol }

// Hooks returns the configured hooks.
func (m *Meta) Hooks() Hooks { return m.hooks }

// Invalidate drops every cache.
func (m *Meta) Invalidate() {
	m.arom = nil
	m.aromMode = ""
	m.rubrics = nil
	m.skeletonHash = nil
	m.heavyHash = nil
	m.uniqueElements = nil
}

// Aromaticity returns the cached classification, computing it in the given
// mode when absent or when a different mode was cached.  Recomputing drops
// stereo rubrics, which depend on aromatic bonds.
func (m *Meta) Aromaticity(mode aromaticity.Mode) *aromaticity.Flags {
	if m.arom != nil && m.aromMode == mode {
		return m.arom
	}
	m.arom = aromaticity.Classify(m.mol, mode)
	m.aromMode = mode
	m.rubrics = nil
	return m.arom
}

// CachedAromaticity returns the aromaticity cache without computing it.
func (m *Meta) CachedAromaticity() *aromaticity.Flags { return m.arom }

// Stereo returns the cached rubrics, assigning them with geom when absent.
// Aromatic bonds are excluded only if aromaticity was computed first.
func (m *Meta) Stereo(geom stereo.Geometry) *stereo.Rubrics {
	if m.rubrics == nil {
		m.rubrics = stereo.Assign(m.mol, m.arom, geom)
	}
	return m.rubrics
}

// CachedStereo returns the rubric cache without computing it.
func (m *Meta) CachedStereo() *stereo.Rubrics { return m.rubrics }

// SkeletonHash returns the memoised hook hash of the graph.
func (m *Meta) SkeletonHash() (string, error) {
	if m.skeletonHash != nil {
		return *m.skeletonHash, nil
	}
	if m.hooks.Hash == nil {
		return "", errors.HookNotConfigured("hash")
	}
	h := m.hooks.Hash(m.mol)
	m.skeletonHash = &h
	return h, nil
}

// HeavyHash returns the memoised hook hash of the graph with plain hydrogens
// removed.  The wrapped graph is not modified.
func (m *Meta) HeavyHash() (string, error) {
	if m.heavyHash != nil {
		return *m.heavyHash, nil
	}
	if m.hooks.Hash == nil {
		return "", errors.HookNotConfigured("hash")
	}
	stripped := New(m.mol.Clone(), Hooks{})
	if _, err := stripped.RemoveHydrogens(); err != nil {
		return "", err
	}
	h := m.hooks.Hash(stripped.mol)
	m.heavyHash = &h
	return h, nil
}

// UniqueElements returns the sorted distinct element symbols.
func (m *Meta) UniqueElements() []string {
	if m.uniqueElements == nil {
		seen := make(map[string]struct{})
		out := make([]string, 0)
		for i := 1; i <= m.mol.NumAtoms(); i++ {
			el := m.mol.AtomElement(i)
			if _, ok := seen[el]; ok {
				continue
			}
			seen[el] = struct{}{}
			out = append(out, el)
		}
		sort.Strings(out)
		m.uniqueElements = out
	}
	return append([]string(nil), m.uniqueElements...)
}

// EquivalentTo screens other for structural equivalence.  The cheap checks
// run in order (counts, skeleton hash, exact equality, element sets) and the
// matcher hook is consulted only when none of them decides.
func (m *Meta) EquivalentTo(other *Meta, timeout time.Duration) (bool, error) {
	if other == nil {
		return false, nil
	}
	if m.mol.NumAtoms() != other.mol.NumAtoms() || m.mol.NumBonds() != other.mol.NumBonds() {
		return false, nil
	}

	h1, err := m.SkeletonHash()
	if err != nil {
		return false, err
	}
	h2, err := other.SkeletonHash()
	if err != nil {
		return false, err
	}
	if h1 != h2 {
		return false, nil
	}

	if m.mol.Equals(other.mol) {
		return true, nil
	}

	if !sameStrings(m.UniqueElements(), other.UniqueElements()) {
		return false, nil
	}

	if m.hooks.Match == nil {
		return false, errors.HookNotConfigured("match")
	}
	ok, err := m.hooks.Match(m, other, timeout)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeEquivalenceFailed, "isomorphism matcher failed")
	}
	return ok, nil
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
