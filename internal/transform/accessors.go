package transform

import "github.com/Faultbox/midgard-rig/pkg/math"

func (g *Graph) update(ref NodeRef, fn func(*math.Transform)) error {
	slot, err := g.resolve(ref)
	if err != nil {
		return err
	}
	local := g.nodes.items[slot].local
	fn(&local)
	g.nodes.setLocal(slot, local)
	return nil
}

// SetLocalPosition overwrites the local position.
func (g *Graph) SetLocalPosition(ref NodeRef, v math.Vec3) error {
	return g.update(ref, func(t *math.Transform) { t.Position = v })
}

// SetLocalRotation overwrites the local rotation. The quaternion is not
// renormalized.
func (g *Graph) SetLocalRotation(ref NodeRef, q math.Quat) error {
	return g.update(ref, func(t *math.Transform) { t.Rotation = q })
}

// SetLocalScale overwrites the local scale.
func (g *Graph) SetLocalScale(ref NodeRef, v math.Vec3) error {
	return g.update(ref, func(t *math.Transform) { t.Scale = v })
}

// SetLocal overwrites the whole local transform.
func (g *Graph) SetLocal(ref NodeRef, local math.Transform) error {
	return g.update(ref, func(t *math.Transform) { *t = local })
}

// Move offsets the local position by delta.
func (g *Graph) Move(ref NodeRef, delta math.Vec3) error {
	return g.update(ref, func(t *math.Transform) { t.Position = t.Position.Add(delta) })
}

// Rotate applies q after the current local rotation, in the node's own frame.
func (g *Graph) Rotate(ref NodeRef, q math.Quat) error {
	return g.update(ref, func(t *math.Transform) { t.Rotation = t.Rotation.Mul(q) })
}

// ScaleBy multiplies the local scale component-wise.
func (g *Graph) ScaleBy(ref NodeRef, factor math.Vec3) error {
	return g.update(ref, func(t *math.Transform) { t.Scale = t.Scale.Mul(factor) })
}

// Local returns the local transform values.
func (g *Graph) Local(ref NodeRef) (math.Transform, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return math.Transform{}, err
	}
	return g.nodes.items[slot].local, nil
}

// LocalPosition returns the local position.
func (g *Graph) LocalPosition(ref NodeRef) (math.Vec3, error) {
	t, err := g.Local(ref)
	return t.Position, err
}

// LocalRotation returns the local rotation.
func (g *Graph) LocalRotation(ref NodeRef) (math.Quat, error) {
	t, err := g.Local(ref)
	return t.Rotation, err
}

// LocalScale returns the local scale.
func (g *Graph) LocalScale(ref NodeRef) (math.Vec3, error) {
	t, err := g.Local(ref)
	return t.Scale, err
}

// LocalTransform returns translate(position) * rotate(rotation) * scale(scale).
func (g *Graph) LocalTransform(ref NodeRef) (math.Mat4, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return math.Mat4{}, err
	}
	return g.nodes.localMatrix(slot), nil
}

// WorldTransform returns parentWorld * local, recomputing only stale links
// of the ancestor chain. Roots return their local matrix.
func (g *Graph) WorldTransform(ref NodeRef) (math.Mat4, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return math.Mat4{}, err
	}
	return g.worldMatrix(slot), nil
}

// WorldToLocal returns the inverse of the world matrix.
func (g *Graph) WorldToLocal(ref NodeRef) (math.Mat4, error) {
	w, err := g.WorldTransform(ref)
	if err != nil {
		return math.Mat4{}, err
	}
	return w.Inverse(), nil
}

// WorldDirty reports whether the next WorldTransform(ref) call recomputes
// anything on ref's ancestor chain.
func (g *Graph) WorldDirty(ref NodeRef) (bool, error) {
	slot, err := g.resolve(ref)
	if err != nil {
		return false, err
	}
	chain := g.ancestry(slot)
	dirty := false
	var parentStamp uint64
	for i := len(chain) - 1; i >= 0; i-- {
		n := &g.nodes.items[chain[i]]
		if dirty || !worldCurrent(n, parentStamp) {
			dirty = true
		}
		parentStamp = n.worldStamp
	}
	return dirty, nil
}

func worldCurrent(n *node, parentStamp uint64) bool {
	return n.worldStamp != 0 &&
		n.worldLocalVersion == n.localVersion &&
		n.worldParentStamp == parentStamp
}

// ancestry fills the scratch chain with slot and its ancestors, leaf first.
func (g *Graph) ancestry(slot uint32) []uint32 {
	chain := g.chain[:0]
	for s := int32(slot); s >= 0; s = g.topo.parent[s] {
		chain = append(chain, uint32(s))
	}
	g.chain = chain
	return chain
}

func (g *Graph) worldMatrix(slot uint32) math.Mat4 {
	chain := g.ancestry(slot)

	var parentWorld math.Mat4
	var parentStamp uint64
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		n := &g.nodes.items[s]
		if !worldCurrent(n, parentStamp) {
			local := g.nodes.localMatrix(s)
			if parentStamp == 0 {
				n.world = local
			} else {
				n.world = parentWorld.Mul(local)
			}
			g.stamp++
			n.worldStamp = g.stamp
			n.worldLocalVersion = n.localVersion
			n.worldParentStamp = parentStamp
		}
		parentWorld, parentStamp = n.world, n.worldStamp
	}
	return parentWorld
}

// WorldPosition returns the translation of the world matrix.
func (g *Graph) WorldPosition(ref NodeRef) (math.Vec3, error) {
	w, err := g.WorldTransform(ref)
	return w.Translation(), err
}

// WorldRotation returns the rotation part of the world matrix.
func (g *Graph) WorldRotation(ref NodeRef) (math.Quat, error) {
	w, err := g.WorldTransform(ref)
	if err != nil {
		return math.Quat{}, err
	}
	_, r, _ := w.Decompose()
	return r, nil
}

// WorldScale returns the scale part of the world matrix.
func (g *Graph) WorldScale(ref NodeRef) (math.Vec3, error) {
	w, err := g.WorldTransform(ref)
	if err != nil {
		return math.Vec3{}, err
	}
	_, _, s := w.Decompose()
	return s, nil
}

// Rightward returns the local +X axis.
func (g *Graph) Rightward(ref NodeRef) (math.Vec3, error) {
	return g.localAxis(ref, 0, false)
}

// Upward returns the local +Y axis.
func (g *Graph) Upward(ref NodeRef) (math.Vec3, error) {
	return g.localAxis(ref, 1, false)
}

// Forward returns the local forward axis (-Z).
func (g *Graph) Forward(ref NodeRef) (math.Vec3, error) {
	return g.localAxis(ref, 2, true)
}

// WorldRightward returns the world-space +X axis.
func (g *Graph) WorldRightward(ref NodeRef) (math.Vec3, error) {
	return g.worldAxis(ref, 0, false)
}

// WorldUpward returns the world-space +Y axis.
func (g *Graph) WorldUpward(ref NodeRef) (math.Vec3, error) {
	return g.worldAxis(ref, 1, false)
}

// WorldForward returns the world-space forward axis (-Z).
func (g *Graph) WorldForward(ref NodeRef) (math.Vec3, error) {
	return g.worldAxis(ref, 2, true)
}

func (g *Graph) localAxis(ref NodeRef, col int, negate bool) (math.Vec3, error) {
	r, err := g.LocalRotation(ref)
	if err != nil {
		return math.Vec3{}, err
	}
	return axis(r.ToMat4(), col, negate), nil
}

func (g *Graph) worldAxis(ref NodeRef, col int, negate bool) (math.Vec3, error) {
	w, err := g.WorldTransform(ref)
	if err != nil {
		return math.Vec3{}, err
	}
	return axis(w, col, negate), nil
}

func axis(m math.Mat4, col int, negate bool) math.Vec3 {
	v := m.Column(col).Normalize()
	if negate {
		v = v.Scale(-1)
	}
	return v
}
