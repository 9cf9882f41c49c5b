// Package anim samples keyframe animation: per-channel tracks with
// extrapolation policies, clips of per-bone channels, and the mapping from a
// clip's channels onto skeleton joints.
package anim

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Key is one keyframe: a value at a timestamp in tick space.
type Key[T any] struct {
	Time  float32
	Value T
}

// Interpolator blends a towards b by t in [0, 1].
type Interpolator[T any] func(a, b T, t float32) T

// Track is an immutable, time-ordered keyframe sequence for one channel.
// Duplicate timestamps are not rejected; sampling them is undefined.
type Track[T any] struct {
	keys   []Key[T]
	pre    Extrapolation
	post   Extrapolation
	interp Interpolator[T]
}

// NewTrack copies and sorts keys by time.
func NewTrack[T any](keys []Key[T], pre, post Extrapolation, interp Interpolator[T]) *Track[T] {
	sorted := make([]Key[T], len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Track[T]{keys: sorted, pre: pre, post: post, interp: interp}
}

// NewVec3Track builds a component-wise lerped track (position, scale).
func NewVec3Track(keys []Key[math.Vec3], pre, post Extrapolation) *Track[math.Vec3] {
	return NewTrack(keys, pre, post, math.Vec3.Lerp)
}

// NewQuatTrack builds a slerped rotation track.
func NewQuatTrack(keys []Key[math.Quat], pre, post Extrapolation) *Track[math.Quat] {
	return NewTrack(keys, pre, post, math.Quat.Slerp)
}

// Len returns the number of keys.
func (tr *Track[T]) Len() int {
	return len(tr.keys)
}

// Key returns the i-th key in time order.
func (tr *Track[T]) Key(i int) Key[T] {
	return tr.keys[i]
}

// Pre returns the policy applied before the first key.
func (tr *Track[T]) Pre() Extrapolation {
	return tr.pre
}

// Post returns the policy applied after the last key.
func (tr *Track[T]) Post() Extrapolation {
	return tr.post
}

// Span returns the first and last key times.
func (tr *Track[T]) Span() (first, last float32) {
	if len(tr.keys) == 0 {
		return 0, 0
	}
	return tr.keys[0].Time, tr.keys[len(tr.keys)-1].Time
}

// Sample evaluates the track at time. The boolean is false when the
// applicable extrapolation policy is None (or the track is empty): the
// caller must substitute its own default, typically the bind pose.
func (tr *Track[T]) Sample(time float32) (T, bool, error) {
	var zero T
	n := len(tr.keys)
	if n == 0 {
		return zero, false, nil
	}

	end := sort.Search(n, func(i int) bool { return tr.keys[i].Time >= time })
	if end == n {
		return tr.extrapolateAfter(time)
	}
	if tr.keys[end].Time == time {
		return tr.keys[end].Value, true, nil
	}
	if end == 0 {
		return tr.extrapolateBefore()
	}
	return tr.between(end, time), true, nil
}

// between interpolates keys[end-1] -> keys[end].
func (tr *Track[T]) between(end int, time float32) T {
	start, stop := tr.keys[end-1], tr.keys[end]
	t := (time - start.Time) / (stop.Time - start.Time)
	return tr.interp(start.Value, stop.Value, t)
}

func (tr *Track[T]) extrapolateBefore() (T, bool, error) {
	var zero T
	switch tr.pre {
	case ExtrapolateNone:
		return zero, false, nil
	case ExtrapolateNearest:
		return tr.keys[0].Value, true, nil
	case ExtrapolateLinear:
		return zero, false, fmt.Errorf("%w: linear pre-extrapolation", ErrNotImplemented)
	case ExtrapolateRepeat:
		return zero, false, fmt.Errorf("%w: repeat before the first key", ErrInvalidState)
	default:
		return zero, false, fmt.Errorf("%w: unknown pre-extrapolation %s", ErrInvalidState, tr.pre)
	}
}

func (tr *Track[T]) extrapolateAfter(time float32) (T, bool, error) {
	var zero T
	last := tr.keys[len(tr.keys)-1]
	switch tr.post {
	case ExtrapolateNone:
		return zero, false, nil
	case ExtrapolateNearest:
		return last.Value, true, nil
	case ExtrapolateLinear:
		return zero, false, fmt.Errorf("%w: linear post-extrapolation", ErrNotImplemented)
	case ExtrapolateRepeat:
		return tr.wrap(time), true, nil
	default:
		return zero, false, fmt.Errorf("%w: unknown post-extrapolation %s", ErrInvalidState, tr.post)
	}
}

// wrap loops time back into [first, last], restarting from the first key.
func (tr *Track[T]) wrap(time float32) T {
	first, last := tr.Span()
	span := last - first
	if span <= 0 {
		return tr.keys[0].Value
	}

	wrapped := first + float32(gomath.Mod(float64(time-first), float64(span)))
	if wrapped > last {
		wrapped = last
	}

	end := sort.Search(len(tr.keys), func(i int) bool { return tr.keys[i].Time >= wrapped })
	if end == len(tr.keys) {
		// Non-finite time wraps to NaN; interpolate so it propagates.
		return tr.between(end-1, wrapped)
	}
	if tr.keys[end].Time == wrapped {
		return tr.keys[end].Value
	}
	return tr.between(end, wrapped)
}
