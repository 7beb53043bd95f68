package canon

import (
	"time"

	"github.com/turtacn/keyip-molkit/internal/domain/meta"
	"github.com/turtacn/keyip-molkit/internal/domain/molecule"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// deadlineCheckInterval is how many search steps pass between clock reads.
const deadlineCheckInterval = 256

// Matcher is a backtracking isomorphism search over refined atom classes.
type Matcher struct {
	now        func() time.Time
	checkEvery int
}

// NewMatcher returns a matcher using the wall clock.
func NewMatcher() *Matcher {
	return &Matcher{now: time.Now, checkEvery: deadlineCheckInterval}
}

// Match reports whether the graphs of a and b are isomorphic, respecting
// element, charge, isotope, radical and hydrogen count on atoms and order on
// bonds.  A non-positive timeout disables the deadline.
func (mt *Matcher) Match(a, b *meta.Meta, timeout time.Duration) (bool, error) {
	return mt.Isomorphic(a.Graph(), b.Graph(), timeout)
}

// Isomorphic is Match on bare graphs.
func (mt *Matcher) Isomorphic(g, h molecule.Graph, timeout time.Duration) (bool, error) {
	if g.NumAtoms() != h.NumAtoms() || g.NumBonds() != h.NumBonds() {
		return false, nil
	}
	gl, _ := classLabels(g)
	hl, _ := classLabels(h)
	s := &search{
		g: g, h: h,
		gl: gl, hl: hl,
		mapping: make([]int, g.NumAtoms()),
		used:    make([]bool, h.NumAtoms()),
		now:     mt.now,
		every:   mt.checkEvery,
	}
	if s.every <= 0 {
		s.every = deadlineCheckInterval
	}
	if timeout > 0 {
		s.deadline = mt.now().Add(timeout)
	}
	s.order = visitOrder(g)
	return s.extend(0)
}

type search struct {
	g, h     molecule.Graph
	gl, hl   []string
	order    []int
	mapping  []int
	used     []bool
	now      func() time.Time
	deadline time.Time
	every    int
	steps    int
}

func (s *search) extend(depth int) (bool, error) {
	if depth == len(s.order) {
		return true, nil
	}
	s.steps++
	if !s.deadline.IsZero() && s.steps%s.every == 0 && s.now().After(s.deadline) {
		return false, errors.New(errors.ErrCodeTimeout, "isomorphism search timed out")
	}

	a := s.order[depth]
	for c := 1; c <= s.h.NumAtoms(); c++ {
		if s.used[c-1] || s.gl[a-1] != s.hl[c-1] || !s.consistent(a, c) {
			continue
		}
		s.mapping[a-1], s.used[c-1] = c, true
		ok, err := s.extend(depth + 1)
		if err != nil || ok {
			return ok, err
		}
		s.mapping[a-1], s.used[c-1] = 0, false
	}
	return false, nil
}

// consistent checks that every already mapped neighbour of a is bonded to c
// with the same order.
func (s *search) consistent(a, c int) bool {
	for _, b := range s.g.AtomAdjBonds(a) {
		nb := s.g.BondFrom(b)
		if nb == a {
			nb = s.g.BondTo(b)
		}
		img := s.mapping[nb-1]
		if img == 0 {
			continue
		}
		hb := s.h.FindBond(c, img)
		if hb == 0 || s.h.BondOrder(hb) != s.g.BondOrder(b) {
			return false
		}
	}
	return true
}

// visitOrder lists atoms breadth-first per component so each step after the
// first of a component is constrained by a mapped neighbour.
func visitOrder(g molecule.Graph) []int {
	n := g.NumAtoms()
	seen := make([]bool, n)
	order := make([]int, 0, n)
	for start := 1; start <= n; start++ {
		if seen[start-1] {
			continue
		}
		seen[start-1] = true
		queue := []int{start}
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			order = append(order, a)
			for _, nb := range g.AtomAdjAtoms(a) {
				if !seen[nb-1] {
					seen[nb-1] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return order
}

//Personal.AI order the ending
