package molecule

// AtomRingBlock returns the ring-system id of the atom. Atoms joined by ring
// bonds share an id; atoms on no ring bond report 0.
func (m *Molecule) AtomRingBlock(i int) int {
	m.ensureBlocks()
	return m.blocks[i-1]
}

func (m *Molecule) ensureBlocks() {
	if m.blocks != nil && len(m.blocks) == len(m.atoms) {
		return
	}
	parent := make([]int, len(m.atoms))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	inRing := make([]bool, len(m.atoms))
	for b, ring := range m.ringBonds() {
		if !ring {
			continue
		}
		f, t := m.bond(b+1).From-1, m.bond(b+1).To-1
		inRing[f], inRing[t] = true, true
		if rf, rt := find(f), find(t); rf != rt {
			parent[rf] = rt
		}
	}
	blocks := make([]int, len(m.atoms))
	ids := make(map[int]int)
	for i := range m.atoms {
		if !inRing[i] {
			continue
		}
		root := find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids) + 1
			ids[root] = id
		}
		blocks[i] = id
	}
	m.blocks = blocks
}

// ringBonds flags every bond that is not a bridge, indexed by bond-1. One
// iterative DFS computes low-links: a tree bond is a bridge when no back
// edge from the subtree below it reaches its upper atom or above.
func (m *Molecule) ringBonds() []bool {
	n := len(m.atoms)
	ring := make([]bool, len(m.bonds))
	disc := make([]int, n)
	low := make([]int, n)
	via := make([]int, n) // tree bond that reached the atom, 0 for roots

	type frame struct{ atom, next int }
	timer := 0
	for root := 0; root < n; root++ {
		if disc[root] != 0 {
			continue
		}
		timer++
		disc[root], low[root] = timer, timer
		stack := []frame{{atom: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			u := top.atom
			if top.next < len(m.adj[u]) {
				b := m.adj[u][top.next]
				top.next++
				if b == via[u] {
					continue
				}
				v := m.otherEnd(b, u+1) - 1
				if disc[v] == 0 {
					timer++
					disc[v], low[v] = timer, timer
					via[v] = b
					stack = append(stack, frame{atom: v})
					continue
				}
				ring[b-1] = true
				if disc[v] < low[u] {
					low[u] = disc[v]
				}
				continue
			}
			stack = stack[:len(stack)-1]
			if b := via[u]; b != 0 {
				p := m.otherEnd(b, u+1) - 1
				if low[u] < low[p] {
					low[p] = low[u]
				}
				ring[b-1] = low[u] <= disc[p]
			}
		}
	}
	return ring
}

// FindRingsOfSize returns every chordless simple cycle of exactly n atoms.
// Each ring starts at its lowest atom index and is reported once, in
// traversal order.
func (m *Molecule) FindRingsOfSize(n int) [][]int {
	if n < 3 || n > len(m.atoms) {
		return nil
	}
	m.ensureBlocks()
	w := &ringWalker{
		mol:    m,
		size:   n,
		path:   make([]int, 0, n),
		onPath: make([]bool, len(m.atoms)+1),
	}
	for s := 1; s <= len(m.atoms); s++ {
		if m.blocks[s-1] == 0 {
			continue
		}
		w.path = append(w.path[:0], s)
		w.onPath[s] = true
		w.walk()
		w.onPath[s] = false
	}
	return w.rings
}

type ringWalker struct {
	mol    *Molecule
	size   int
	path   []int
	onPath []bool
	rings  [][]int
}

func (w *ringWalker) walk() {
	start, last := w.path[0], w.path[len(w.path)-1]
	if len(w.path) == w.size {
		if w.mol.FindBond(last, start) != 0 && w.path[1] < w.path[w.size-1] {
			ring := make([]int, w.size)
			copy(ring, w.path)
			w.rings = append(w.rings, ring)
		}
		return
	}
	for _, next := range w.mol.AtomAdjAtoms(last) {
		if next <= start || w.onPath[next] || w.mol.blocks[next-1] != w.mol.blocks[start-1] {
			continue
		}
		if w.hasChord(next) {
			continue
		}
		w.path = append(w.path, next)
		w.onPath[next] = true
		w.walk()
		w.onPath[next] = false
		w.path = w.path[:len(w.path)-1]
	}
}

// hasChord reports whether candidate is bonded to a path atom other than the
// path tail. A bond back to the start atom is allowed only when candidate
// completes the ring.
func (w *ringWalker) hasChord(candidate int) bool {
	start, tail := w.path[0], w.path[len(w.path)-1]
	closing := len(w.path)+1 == w.size
	for _, nb := range w.mol.AtomAdjAtoms(candidate) {
		if nb == tail || !w.onPath[nb] {
			continue
		}
		if nb == start && closing {
			continue
		}
		return true
	}
	return false
}

//Personal.AI order the ending
