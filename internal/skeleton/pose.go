package skeleton

import (
	"fmt"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// ApplyPose overwrites joint local matrices. poses[i] goes to joint
// mapping[i]; negative mapping entries are skipped. The whole call is
// validated first and fails without mutation.
func (s *Skeleton) ApplyPose(poses []math.Mat4, mapping []int) error {
	if len(poses) != len(mapping) {
		return fmt.Errorf("%w: %d poses for %d mapping entries", ErrInvalidJoint, len(poses), len(mapping))
	}
	for _, j := range mapping {
		if j >= len(s.joints) {
			return fmt.Errorf("%w: mapped to joint %d of %d", ErrInvalidJoint, j, len(s.joints))
		}
	}

	for i, j := range mapping {
		if j < 0 {
			continue
		}
		s.local[j] = poses[i]
		s.dirty = true
	}
	return nil
}

// SetJointLocal overwrites one joint's local matrix.
func (s *Skeleton) SetJointLocal(i int, m math.Mat4) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.local[i] = m
	s.dirty = true
	return nil
}

// JointLocal returns the current local matrix of joint i.
func (s *Skeleton) JointLocal(i int) (math.Mat4, error) {
	if err := s.check(i); err != nil {
		return math.Mat4{}, err
	}
	return s.local[i], nil
}

// ResetPose returns every joint to its rest transform.
func (s *Skeleton) ResetPose() {
	for i, j := range s.joints {
		s.local[i] = j.Rest.Matrix()
	}
	s.dirty = true
}

// Dirty reports whether the next FinalTransforms call recomputes.
func (s *Skeleton) Dirty() bool {
	return s.dirty
}

// FinalTransforms returns the root-relative matrix of every joint. The slice
// is owned by the skeleton and valid until the next pose change.
func (s *Skeleton) FinalTransforms() []math.Mat4 {
	if s.dirty {
		s.compose(s.local, s.final)
		s.dirty = false
	}
	return s.final
}

// SkinningMatrices writes final * inverseBind per joint into dst, growing it
// when too short, and returns it.
func (s *Skeleton) SkinningMatrices(dst []math.Mat4) []math.Mat4 {
	if cap(dst) < len(s.joints) {
		dst = make([]math.Mat4, len(s.joints))
	}
	dst = dst[:len(s.joints)]
	final := s.FinalTransforms()
	for i, j := range s.joints {
		dst[i] = final[i].Mul(j.InverseBind)
	}
	return dst
}

// RestTransforms composes the bind pose hierarchy without touching the
// current pose.
func (s *Skeleton) RestTransforms() []math.Mat4 {
	local := make([]math.Mat4, len(s.joints))
	for i, j := range s.joints {
		local[i] = j.Rest.Matrix()
	}
	out := make([]math.Mat4, len(s.joints))
	s.compose(local, out)
	return out
}

func (s *Skeleton) compose(local, out []math.Mat4) {
	for _, i := range s.order {
		p := s.joints[i].Parent
		if p == NoParent {
			out[i] = local[i]
			continue
		}
		out[i] = out[p].Mul(local[i])
	}
}
