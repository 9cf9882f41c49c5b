package transform

import "github.com/Faultbox/midgard-rig/pkg/math"

// node is one slot of the node store. Local state is authoritative; the
// matrices are caches validated by version stamps instead of dirty flags:
//   - localMatrix is current when localMatrixVersion == localVersion.
//   - world is current when worldLocalVersion == localVersion and
//     worldParentStamp equals the parent's current worldStamp (0 for roots).
//
// Every world recompute takes a fresh stamp from the graph, so a change
// anywhere up the chain invalidates all descendants without visiting them.
type node struct {
	gen   uint32
	alive bool

	local        math.Transform
	localVersion uint64

	localMatrix        math.Mat4
	localMatrixVersion uint64

	world             math.Mat4
	worldStamp        uint64
	worldLocalVersion uint64
	worldParentStamp  uint64
}

// nodeStore is a slot table with free-list reuse. Reused slots bump their
// generation so stale NodeRefs stop resolving.
type nodeStore struct {
	items []node
	free  []uint32
}

func (s *nodeStore) alloc(local math.Transform) uint32 {
	var slot uint32
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		slot = uint32(len(s.items))
		s.items = append(s.items, node{})
	}

	gen := s.items[slot].gen + 1
	s.items[slot] = node{
		gen:          gen,
		alive:        true,
		local:        local,
		localVersion: 1,
	}
	return slot
}

func (s *nodeStore) release(slot uint32) {
	gen := s.items[slot].gen
	s.items[slot] = node{gen: gen}
	s.free = append(s.free, slot)
}

func (s *nodeStore) lookup(ref NodeRef) (uint32, bool) {
	if ref.IsZero() || int(ref.slot) >= len(s.items) {
		return 0, false
	}
	n := &s.items[ref.slot]
	if !n.alive || n.gen != ref.gen {
		return 0, false
	}
	return ref.slot, true
}

func (s *nodeStore) ref(slot uint32) NodeRef {
	return NodeRef{slot: slot, gen: s.items[slot].gen}
}

// setLocal replaces the local transform and invalidates both caches.
func (s *nodeStore) setLocal(slot uint32, local math.Transform) {
	n := &s.items[slot]
	n.local = local
	n.localVersion++
}

func (s *nodeStore) localMatrix(slot uint32) math.Mat4 {
	n := &s.items[slot]
	if n.localMatrixVersion != n.localVersion {
		n.localMatrix = n.local.Matrix()
		n.localMatrixVersion = n.localVersion
	}
	return n.localMatrix
}

func (s *nodeStore) live() int {
	return len(s.items) - len(s.free)
}
