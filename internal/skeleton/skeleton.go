// Package skeleton holds a flattened joint hierarchy with inverse bind
// matrices and produces the posed joint matrices consumed by GPU skinning.
package skeleton

import (
	"fmt"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// NoParent marks a root joint.
const NoParent = -1

// Joint is one bone of a skeleton.
type Joint struct {
	Name string
	// Parent is the index of the parent joint, or NoParent.
	Parent      int
	InverseBind math.Mat4
	Rest        math.Transform
}

// Record is a joint description keyed by parent name, as produced by asset
// loaders. An empty ParentName makes a root.
type Record struct {
	Name        string
	ParentName  string
	InverseBind math.Mat4
	Rest        math.Transform
}

// Skeleton is a posed joint hierarchy. World matrices are cached behind a
// single dirty flag: any pose change recomputes every joint on the next read.
type Skeleton struct {
	joints []Joint
	index  map[string]int
	order  []int // parent-first traversal
	root   int

	local []math.Mat4
	final []math.Mat4
	dirty bool
}

// New validates joints and builds a skeleton in its rest pose.
func New(joints []Joint) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, ErrEmpty
	}

	s := &Skeleton{
		joints: make([]Joint, len(joints)),
		index:  make(map[string]int, len(joints)),
		root:   -1,
		local:  make([]math.Mat4, len(joints)),
		final:  make([]math.Mat4, len(joints)),
		dirty:  true,
	}
	copy(s.joints, joints)

	children := make([][]int, len(joints))
	var roots []int
	for i, j := range s.joints {
		if _, dup := s.index[j.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateJoint, j.Name)
		}
		s.index[j.Name] = i

		switch {
		case j.Parent == NoParent:
			roots = append(roots, i)
		case j.Parent < 0 || j.Parent >= len(joints) || j.Parent == i:
			return nil, fmt.Errorf("%w: joint %q has parent %d", ErrInvalidJoint, j.Name, j.Parent)
		default:
			children[j.Parent] = append(children[j.Parent], i)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no root joint", ErrCyclicHierarchy)
	}
	s.root = roots[0]

	s.order = make([]int, 0, len(joints))
	queue := append([]int(nil), roots...)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		s.order = append(s.order, i)
		queue = append(queue, children[i]...)
	}
	if len(s.order) != len(joints) {
		return nil, fmt.Errorf("%w: %d of %d joints unreachable from a root",
			ErrCyclicHierarchy, len(joints)-len(s.order), len(joints))
	}

	s.ResetPose()
	return s, nil
}

// FromRecords resolves parent names and builds a skeleton. Parents may appear
// after their children.
func FromRecords(records []Record) (*Skeleton, error) {
	byName := make(map[string]int, len(records))
	for i, r := range records {
		if _, dup := byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateJoint, r.Name)
		}
		byName[r.Name] = i
	}

	joints := make([]Joint, len(records))
	for i, r := range records {
		parent := NoParent
		if r.ParentName != "" {
			p, ok := byName[r.ParentName]
			if !ok {
				return nil, fmt.Errorf("%w: joint %q references unknown parent %q", ErrInvalidJoint, r.Name, r.ParentName)
			}
			parent = p
		}
		joints[i] = Joint{
			Name:        r.Name,
			Parent:      parent,
			InverseBind: r.InverseBind,
			Rest:        r.Rest,
		}
	}
	return New(joints)
}

// Len returns the number of joints.
func (s *Skeleton) Len() int { return len(s.joints) }

// RootIndex returns the first root joint.
func (s *Skeleton) RootIndex() int { return s.root }

// Joint returns joint i.
func (s *Skeleton) Joint(i int) (Joint, error) {
	if err := s.check(i); err != nil {
		return Joint{}, err
	}
	return s.joints[i], nil
}

// JointIndex resolves a joint name.
func (s *Skeleton) JointIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the joint names in index order.
func (s *Skeleton) Names() []string {
	out := make([]string, len(s.joints))
	for i, j := range s.joints {
		out[i] = j.Name
	}
	return out
}

// RestPose returns the bind-pose local transform of joint i. Out-of-range
// indices return identity.
func (s *Skeleton) RestPose(i int) math.Transform {
	if i < 0 || i >= len(s.joints) {
		return math.IdentityTransform()
	}
	return s.joints[i].Rest
}

func (s *Skeleton) check(i int) error {
	if i < 0 || i >= len(s.joints) {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidJoint, i, len(s.joints))
	}
	return nil
}

// Clone returns an independent copy sharing no pose state, for animating
// several instances of one rig.
func (s *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		joints: s.joints,
		index:  s.index,
		order:  s.order,
		root:   s.root,
		local:  make([]math.Mat4, len(s.local)),
		final:  make([]math.Mat4, len(s.final)),
		dirty:  true,
	}
	copy(c.local, s.local)
	return c
}
