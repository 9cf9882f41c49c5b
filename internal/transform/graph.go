// Package transform implements the entity transform graph: a forest of nodes
// holding local position/rotation/scale that compose lazily into world
// matrices.
//
// Invalidation uses version stamps rather than eager dirty-flag fan-out.
// Setters are O(1); a world read walks the ancestor chain (O(depth)) and only
// recomputes links whose inputs changed since they were last cached.
//
// A Graph is owned by a single goroutine. Callers that update subtrees in
// parallel must partition the graph themselves.
package transform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Placement describes a node at registration time.
type Placement struct {
	// Parent is the optional parent node; the zero NodeRef registers a root.
	Parent   NodeRef
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	// WorldSpace interprets Position/Rotation/Scale in world space and
	// converts them into the parent's local space on registration.
	WorldSpace bool
}

// At returns a local-space placement under parent with identity rotation and unit scale.
func At(parent NodeRef, position math.Vec3) Placement {
	return Placement{
		Parent:   parent,
		Position: position,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One(),
	}
}

// NameLookup resolves the display name of a node. Name storage belongs to
// the entity layer, not the graph.
type NameLookup func(NodeRef) (string, bool)

// Graph is the entity transform graph.
type Graph struct {
	nodes nodeStore
	topo  topology
	stamp uint64
	chain []uint32 // scratch for ancestor walks
	log   *zap.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for structural debug events.
func WithLogger(log *zap.Logger) Option {
	return func(g *Graph) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		topo: newTopology(),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	return g.nodes.live()
}

func (g *Graph) resolve(ref NodeRef) (uint32, error) {
	slot, ok := g.nodes.lookup(ref)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidReference, ref)
	}
	return slot, nil
}

// Register creates a node. With WorldSpace set, the placement is converted
// into the parent's local space using the parent's current world matrix.
// As with SetParent, any shear in that conversion is lost.
func (g *Graph) Register(p Placement) (NodeRef, error) {
	parent := int32(noParent)
	if !p.Parent.IsZero() {
		slot, err := g.resolve(p.Parent)
		if err != nil {
			return NodeRef{}, fmt.Errorf("register: parent: %w", err)
		}
		parent = int32(slot)
	}

	local := math.Transform{Position: p.Position, Rotation: p.Rotation, Scale: p.Scale}
	if p.WorldSpace && parent >= 0 {
		toParent := g.worldMatrix(uint32(parent)).Inverse()
		local = math.TransformFromMat4(toParent.Mul(local.Matrix()))
	}

	slot := g.nodes.alloc(local)
	g.topo.attach(slot, parent)
	ref := g.nodes.ref(slot)

	g.log.Debug("node registered", zap.Stringer("node", ref), zap.Stringer("parent", p.Parent))
	return ref, nil
}

// Unregister removes a childless node. Children must be reparented or
// removed first, or use UnregisterTree.
func (g *Graph) Unregister(ref NodeRef) error {
	slot, err := g.resolve(ref)
	if err != nil {
		return err
	}
	if n := g.topo.childCount(slot); n > 0 {
		return fmt.Errorf("%w: %s has %d children", ErrHasChildren, ref, n)
	}
	g.remove(slot)
	g.log.Debug("node unregistered", zap.Stringer("node", ref))
	return nil
}

// UnregisterTree removes ref and every descendant.
func (g *Graph) UnregisterTree(ref NodeRef) error {
	slot, err := g.resolve(ref)
	if err != nil {
		return err
	}
	removed := g.topo.subtree(slot)
	for _, s := range removed {
		g.remove(s)
	}
	g.log.Debug("subtree unregistered", zap.Stringer("node", ref), zap.Int("count", len(removed)))
	return nil
}

func (g *Graph) remove(slot uint32) {
	g.topo.detach(slot)
	g.topo.clear(slot)
	g.nodes.release(slot)
}

// SetParent moves ref under newParent (zero NodeRef makes it a root). The
// node keeps its world pose: the new local transform is derived from the old
// world matrix. Locals are TRS, so shear inherited from a non-uniformly scaled
// ancestor is dropped and the world pose is kept only up to that shear.
// Fails without mutation on invalid refs or cycles.
func (g *Graph) SetParent(ref, newParent NodeRef) error {
	slot, err := g.resolve(ref)
	if err != nil {
		return err
	}

	parent := int32(noParent)
	if !newParent.IsZero() {
		ps, err := g.resolve(newParent)
		if err != nil {
			return fmt.Errorf("set parent: %w", err)
		}
		if ps == slot || g.topo.isAncestor(slot, ps) {
			return fmt.Errorf("%w: %s under %s", ErrCycleDetected, ref, newParent)
		}
		parent = int32(ps)
	}
	if g.topo.parent[slot] == parent {
		return nil
	}

	world := g.worldMatrix(slot)
	if parent >= 0 {
		world = g.worldMatrix(uint32(parent)).Inverse().Mul(world)
	}

	g.nodes.setLocal(slot, math.TransformFromMat4(world))
	g.topo.detach(slot)
	g.topo.attach(slot, parent)

	g.log.Debug("node reparented", zap.Stringer("node", ref), zap.Stringer("parent", newParent))
	return nil
}

// Parent returns the parent of ref, or the zero NodeRef for roots.
func (g *Graph) Parent(ref NodeRef) (NodeRef, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return NodeRef{}, err
	}
	p := g.topo.parent[slot]
	if p < 0 {
		return NodeRef{}, nil
	}
	return g.nodes.ref(uint32(p)), nil
}

// Children returns the direct children of ref. Order is unspecified but stable.
func (g *Graph) Children(ref NodeRef) ([]NodeRef, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return nil, err
	}
	return g.refs(g.topo.childSlots(slot)), nil
}

// Roots returns every node without a parent.
func (g *Graph) Roots() []NodeRef {
	return g.refs(g.topo.rootSlots())
}

// IsDescendant reports whether node lies strictly below ancestor.
func (g *Graph) IsDescendant(node, ancestor NodeRef) (bool, error) {
	n, err := g.resolve(node)
	if err != nil {
		return false, err
	}
	a, err := g.resolve(ancestor)
	if err != nil {
		return false, err
	}
	return g.topo.isAncestor(a, n), nil
}

func (g *Graph) refs(slots []uint32) []NodeRef {
	out := make([]NodeRef, len(slots))
	for i, s := range slots {
		out[i] = g.nodes.ref(s)
	}
	return out
}

// Walk visits every node breadth-first starting from the root set.
// Returning false from fn stops the walk.
func (g *Graph) Walk(fn func(NodeRef) bool) {
	queue := g.topo.rootSlots()
	for len(queue) > 0 {
		slot := queue[0]
		queue = queue[1:]
		if !fn(g.nodes.ref(slot)) {
			return
		}
		queue = append(queue, g.topo.childSlots(slot)...)
	}
}

// FindFirstNamed returns the first direct child of base (or root, when base
// is zero) whose name matches. The search is shallow: grandchildren are not
// visited.
func (g *Graph) FindFirstNamed(base NodeRef, name string, names NameLookup) (NodeRef, bool, error) {
	candidates, err := g.searchSet(base)
	if err != nil {
		return NodeRef{}, false, err
	}
	for _, slot := range candidates {
		ref := g.nodes.ref(slot)
		if n, ok := names(ref); ok && n == name {
			return ref, true, nil
		}
	}
	return NodeRef{}, false, nil
}

// FindAllNamed is FindFirstNamed returning every match.
func (g *Graph) FindAllNamed(base NodeRef, name string, names NameLookup) ([]NodeRef, error) {
	candidates, err := g.searchSet(base)
	if err != nil {
		return nil, err
	}
	var out []NodeRef
	for _, slot := range candidates {
		ref := g.nodes.ref(slot)
		if n, ok := names(ref); ok && n == name {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (g *Graph) searchSet(base NodeRef) ([]uint32, error) {
	if base.IsZero() {
		return g.topo.rootSlots(), nil
	}
	slot, err := g.resolve(base)
	if err != nil {
		return nil, err
	}
	return g.topo.childSlots(slot), nil
}
