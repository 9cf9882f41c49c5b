package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/skeleton"
	"github.com/Faultbox/midgard-rig/internal/transform"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

type binding struct {
	skel   *skeleton.Skeleton
	joints []transform.NodeRef
}

// BindSkeleton mirrors skel into the graph: one node per joint at its rest
// pose, root joints parented to the entity.
func (s *Scene) BindSkeleton(id EntityID, skel *skeleton.Skeleton) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if e.rig != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, id)
	}

	b := &binding{skel: skel, joints: make([]transform.NodeRef, skel.Len())}
	for i := range b.joints {
		if err := s.registerJoint(e, b, i); err != nil {
			s.dropJoints(b)
			return err
		}
	}
	e.rig = b

	s.log.Debug("skeleton bound", zap.String("id", string(id)), zap.Int("joints", skel.Len()))
	return nil
}

// registerJoint registers joint i after its ancestors.
func (s *Scene) registerJoint(e *entity, b *binding, i int) error {
	if !b.joints[i].IsZero() {
		return nil
	}
	j, err := b.skel.Joint(i)
	if err != nil {
		return err
	}
	parent := e.node
	if j.Parent != skeleton.NoParent {
		if err := s.registerJoint(e, b, j.Parent); err != nil {
			return err
		}
		parent = b.joints[j.Parent]
	}
	ref, err := s.graph.Register(transform.Placement{
		Parent:   parent,
		Position: j.Rest.Position,
		Rotation: j.Rest.Rotation,
		Scale:    j.Rest.Scale,
	})
	if err != nil {
		return fmt.Errorf("bind joint %q: %w", j.Name, err)
	}
	b.joints[i] = ref
	return nil
}

func (s *Scene) dropJoints(b *binding) {
	for i, ref := range b.joints {
		if ref.IsZero() {
			continue
		}
		if j, _ := b.skel.Joint(i); j.Parent == skeleton.NoParent {
			_ = s.graph.UnregisterTree(ref)
		}
	}
}

// UnbindSkeleton removes the joint nodes of an entity together with
// anything attached to them.
func (s *Scene) UnbindSkeleton(id EntityID) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if e.rig == nil {
		return fmt.Errorf("%w: %s", ErrNotBound, id)
	}
	s.dropJoints(e.rig)
	e.rig = nil
	s.prune()
	return nil
}

// Skeleton returns the skeleton bound to an entity.
func (s *Scene) Skeleton(id EntityID) (*skeleton.Skeleton, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if e.rig == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, id)
	}
	return e.rig.skel, nil
}

// JointNode returns the graph node mirroring a named joint.
func (s *Scene) JointNode(id EntityID, joint string) (transform.NodeRef, error) {
	e, err := s.lookup(id)
	if err != nil {
		return transform.NodeRef{}, err
	}
	if e.rig == nil {
		return transform.NodeRef{}, fmt.Errorf("%w: %s", ErrNotBound, id)
	}
	i, ok := e.rig.skel.JointIndex(joint)
	if !ok {
		return transform.NodeRef{}, fmt.Errorf("%w: %q", skeleton.ErrInvalidJoint, joint)
	}
	return e.rig.joints[i], nil
}

// SyncJoints copies the skeleton's current joint locals onto the joint
// nodes. Pose matrices are decomposed into translation, rotation and scale.
func (s *Scene) SyncJoints(id EntityID) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if e.rig == nil {
		return fmt.Errorf("%w: %s", ErrNotBound, id)
	}
	for i, ref := range e.rig.joints {
		m, err := e.rig.skel.JointLocal(i)
		if err != nil {
			return err
		}
		if err := s.graph.SetLocal(ref, math.TransformFromMat4(m)); err != nil {
			return fmt.Errorf("sync joint %d: %w", i, err)
		}
	}
	return nil
}

// SyncAll syncs every entity with a bound skeleton.
func (s *Scene) SyncAll() error {
	var errs []error
	for id, e := range s.entities {
		if e.rig == nil {
			continue
		}
		if err := s.SyncJoints(id); err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
