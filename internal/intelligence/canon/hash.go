// Package canon supplies the default host hooks for equivalence screening: a
// refinement-based skeleton hash and a backtracking isomorphism matcher.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/keyip-molkit/internal/domain/meta"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
)

// DefaultHooks returns the hash and matcher hooks backed by this package.
func DefaultHooks() meta.Hooks {
	return meta.Hooks{
		Hash:  SkeletonHash,
		Match: NewMatcher().Match,
	}
}

// SkeletonHash returns a hex SHA-256 digest that is invariant under atom and
// bond renumbering.  Equal digests are necessary but not sufficient for
// isomorphism.
func SkeletonHash(g molecule.Graph) string {
	labels, ranks := classLabels(g)

	parts := make([]string, 0, g.NumAtoms()+g.NumBonds())
	for _, l := range labels {
		parts = append(parts, "a"+l)
	}
	for b := 1; b <= g.NumBonds(); b++ {
		x, y := ranks[g.BondFrom(b)-1], ranks[g.BondTo(b)-1]
		if x > y {
			x, y = y, x
		}
		parts = append(parts, fmt.Sprintf("b%d-%d-%d", x, y, g.BondOrder(b)))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:])
}

// classLabels returns each atom's refined class rank and a label joining that
// rank with the atom's starting invariant.  Ranks are only comparable within
// one graph; labels are comparable across graphs.
func classLabels(g molecule.Graph) ([]string, []int) {
	invariants := make([]string, g.NumAtoms())
	for a := 1; a <= g.NumAtoms(); a++ {
		invariants[a-1] = atomInvariant(g, a)
	}
	ranks := refine(g, invariants)
	labels := make([]string, len(ranks))
	for i, r := range ranks {
		labels[i] = strconv.Itoa(r) + ":" + invariants[i]
	}
	return labels, ranks
}

// atomInvariant is the starting label of an atom.
func atomInvariant(g molecule.Graph, a int) string {
	return fmt.Sprintf("%s|%d|%d|%d|%d|%d",
		g.AtomElement(a), g.AtomCharge(a), g.AtomIsotope(a), g.AtomUnpaired(a),
		g.AtomHydrogens(a), g.AtomAdjCount(a))
}

// refine partitions atoms into classes by their starting invariants and then
// splits classes by the sorted (bond order, neighbour class) pairs of their
// members until the class count stops growing.  Class ranks depend only on
// graph content, never on atom numbering.
func refine(g molecule.Graph, invariants []string) []int {
	n := len(invariants)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return strings.Compare(invariants[a], invariants[b]) })
	ranks := make([]int, n)
	classes := assignRanks(order, ranks, func(a, b int) bool { return invariants[a] == invariants[b] })

	keys := make([][]int, n)
	for round := 0; round < n; round++ {
		for a := 1; a <= n; a++ {
			key := append(keys[a-1][:0], ranks[a-1])
			for _, b := range g.AtomAdjBonds(a) {
				other := g.BondFrom(b)
				if other == a {
					other = g.BondTo(b)
				}
				key = append(key, g.BondOrder(b)*n+ranks[other-1])
			}
			sort.Ints(key[1:])
			keys[a-1] = key
		}
		slices.SortFunc(order, func(a, b int) int { return slices.Compare(keys[a], keys[b]) })
		next := assignRanks(order, ranks, func(a, b int) bool { return slices.Equal(keys[a], keys[b]) })
		if next <= classes {
			break
		}
		classes = next
	}
	return ranks
}

// assignRanks writes dense ranks in sorted order and returns the class count.
func assignRanks(order, ranks []int, same func(a, b int) bool) int {
	classes := 0
	for i, a := range order {
		if i > 0 && !same(order[i-1], a) {
			classes++
		}
		ranks[a] = classes
	}
	if len(order) == 0 {
		return 0
	}
	return classes + 1
}

//Personal.AI order the ending
