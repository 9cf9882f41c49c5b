package anim

import "errors"

var (
	// ErrNotImplemented is returned for linear extrapolation.
	ErrNotImplemented = errors.New("anim: not implemented")
	// ErrInvalidState is returned for requests that have no coherent answer,
	// such as repeating before the first key.
	ErrInvalidState = errors.New("anim: invalid state")
	// ErrChannelMismatch is returned when a pose buffer does not match the
	// source's channel count.
	ErrChannelMismatch = errors.New("anim: channel count mismatch")
)
