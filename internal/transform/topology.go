package transform

import "slices"

const noParent = -1

// topology holds the parent pointer and unordered child set of every slot,
// indexed identically to nodeStore, plus the explicit root set.
type topology struct {
	parent   []int32
	children []map[uint32]struct{}
	roots    map[uint32]struct{}
}

func newTopology() topology {
	return topology{roots: make(map[uint32]struct{})}
}

func (t *topology) grow(slot uint32) {
	for int(slot) >= len(t.parent) {
		t.parent = append(t.parent, noParent)
		t.children = append(t.children, nil)
	}
}

// attach links slot under parent, or into the root set when parent < 0.
func (t *topology) attach(slot uint32, parent int32) {
	t.grow(slot)
	t.parent[slot] = parent
	if parent < 0 {
		t.roots[slot] = struct{}{}
		return
	}
	if t.children[parent] == nil {
		t.children[parent] = make(map[uint32]struct{})
	}
	t.children[parent][slot] = struct{}{}
}

// detach unlinks slot from its parent's child set or from the root set.
func (t *topology) detach(slot uint32) {
	p := t.parent[slot]
	if p < 0 {
		delete(t.roots, slot)
	} else {
		delete(t.children[p], slot)
	}
	t.parent[slot] = noParent
}

// clear forgets a released slot. The slot must already be detached and childless.
func (t *topology) clear(slot uint32) {
	t.parent[slot] = noParent
	t.children[slot] = nil
}

func (t *topology) childCount(slot uint32) int {
	return len(t.children[slot])
}

// childSlots returns the children of slot in ascending slot order.
func (t *topology) childSlots(slot uint32) []uint32 {
	return sortedKeys(t.children[slot])
}

func (t *topology) rootSlots() []uint32 {
	return sortedKeys(t.roots)
}

// isAncestor reports whether a is a strict ancestor of b.
func (t *topology) isAncestor(a, b uint32) bool {
	for p := t.parent[b]; p >= 0; p = t.parent[p] {
		if uint32(p) == a {
			return true
		}
	}
	return false
}

// subtree returns slot and all its descendants, children before parents.
func (t *topology) subtree(slot uint32) []uint32 {
	var out []uint32
	var visit func(s uint32)
	visit = func(s uint32) {
		for _, c := range t.childSlots(s) {
			visit(c)
		}
		out = append(out, s)
	}
	visit(slot)
	return out
}

func sortedKeys(set map[uint32]struct{}) []uint32 {
	keys := make([]uint32, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
