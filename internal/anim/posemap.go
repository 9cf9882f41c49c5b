package anim

import "github.com/Faultbox/midgard-rig/pkg/math"

// NoJoint marks a channel with no matching skeleton joint.
const NoJoint = -1

// JointLookup resolves bone names to joint indices.
type JointLookup interface {
	JointIndex(name string) (int, bool)
}

// RestPoser provides the bind pose of a joint.
type RestPoser interface {
	RestPose(joint int) math.Transform
}

// PoseMap maps a pose source's channels onto skeleton joints. It is built
// once so per-frame pose application does no name lookups.
type PoseMap struct {
	targets  []int
	resolved int
}

// NewPoseMap resolves every channel of src against joints. Channels whose
// bone is unknown map to NoJoint.
func NewPoseMap(src PoseSource, joints JointLookup) *PoseMap {
	bones := src.Bones()
	m := &PoseMap{targets: make([]int, len(bones))}
	for i, bone := range bones {
		idx, ok := joints.JointIndex(bone)
		if !ok {
			m.targets[i] = NoJoint
			continue
		}
		m.targets[i] = idx
		m.resolved++
	}
	return m
}

// Targets returns the joint index per channel, NoJoint when unmapped.
func (m *PoseMap) Targets() []int {
	return m.targets
}

// Len returns the number of channels.
func (m *PoseMap) Len() int {
	return len(m.targets)
}

// Resolved returns how many channels map to a joint.
func (m *PoseMap) Resolved() int {
	return m.resolved
}

// Defaults returns the bind pose of each channel's joint, for use as the
// sampling fallback. Unmapped channels get identity.
func (m *PoseMap) Defaults(rest RestPoser) []math.Transform {
	out := make([]math.Transform, len(m.targets))
	for i, j := range m.targets {
		if j == NoJoint {
			out[i] = math.IdentityTransform()
			continue
		}
		out[i] = rest.RestPose(j)
	}
	return out
}
