package transform

import "errors"

var (
	// ErrInvalidReference is returned when a NodeRef does not name a live node.
	ErrInvalidReference = errors.New("transform: invalid node reference")
	// ErrCycleDetected is returned when a reparent would make a node its own ancestor.
	ErrCycleDetected = errors.New("transform: reparent would create a cycle")
	// ErrHasChildren is returned when unregistering a node that still has children.
	ErrHasChildren = errors.New("transform: node has children")
)
