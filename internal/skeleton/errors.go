package skeleton

import "errors"

var (
	// ErrEmpty is returned when a skeleton has no joints.
	ErrEmpty = errors.New("skeleton: no joints")
	// ErrDuplicateJoint is returned when two joints share a name.
	ErrDuplicateJoint = errors.New("skeleton: duplicate joint name")
	// ErrInvalidJoint is returned for out-of-range or unknown joint references.
	ErrInvalidJoint = errors.New("skeleton: invalid joint")
	// ErrCyclicHierarchy is returned when a joint cannot be reached from a root.
	ErrCyclicHierarchy = errors.New("skeleton: cyclic joint hierarchy")
)
