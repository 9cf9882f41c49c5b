package scene

import "errors"

var (
	// ErrUnknownEntity is returned for ids that were never spawned or are gone.
	ErrUnknownEntity = errors.New("scene: unknown entity")
	// ErrAlreadyBound is returned when an entity already carries a skeleton.
	ErrAlreadyBound = errors.New("scene: skeleton already bound")
	// ErrNotBound is returned when an entity has no skeleton.
	ErrNotBound = errors.New("scene: no skeleton bound")
)
