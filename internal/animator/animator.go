// Package animator drives skeletons from pose sources over time, one
// animator per skeleton instance, and updates many instances per tick on a
// worker pool.
package animator

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-rig/internal/anim"
	"github.com/Faultbox/midgard-rig/internal/skeleton"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Animator plays one pose source on one skeleton. It is not safe for
// concurrent use; the Pool hands each animator to a single worker per tick.
type Animator struct {
	source   anim.PoseSource
	skel     *skeleton.Skeleton
	mapping  *anim.PoseMap
	defaults []math.Transform

	local []math.Transform
	poses []math.Mat4

	time   float32
	speed  float32
	paused bool
}

// New binds source to skel. Channels are resolved to joints once, and
// channels without keys for a given time fall back to the joint rest pose.
func New(source anim.PoseSource, skel *skeleton.Skeleton) *Animator {
	mapping := anim.NewPoseMap(source, skel)
	return &Animator{
		source:   source,
		skel:     skel,
		mapping:  mapping,
		defaults: mapping.Defaults(skel),
		local:    make([]math.Transform, mapping.Len()),
		poses:    make([]math.Mat4, mapping.Len()),
		speed:    1,
	}
}

// Skeleton returns the driven skeleton.
func (a *Animator) Skeleton() *skeleton.Skeleton { return a.skel }

// Source returns the pose source.
func (a *Animator) Source() anim.PoseSource { return a.source }

// Mapping returns the channel to joint mapping.
func (a *Animator) Mapping() *anim.PoseMap { return a.mapping }

// Time returns the playback position in seconds.
func (a *Animator) Time() float32 { return a.time }

// Speed returns the playback rate multiplier.
func (a *Animator) Speed() float32 { return a.speed }

// SetSpeed sets the playback rate. Negative speeds play backwards.
func (a *Animator) SetSpeed(speed float32) { a.speed = speed }

// Pause stops time from advancing. Update still reapplies the pose.
func (a *Animator) Pause() { a.paused = true }

// Resume continues playback after Pause.
func (a *Animator) Resume() { a.paused = false }

// Paused reports whether playback is paused.
func (a *Animator) Paused() bool { return a.paused }

// Update advances time by dt scaled by the speed and poses the skeleton.
func (a *Animator) Update(dt float32) error {
	if !a.paused {
		a.time = a.wrap(a.time + dt*a.speed)
	}
	return a.Apply()
}

// Seek jumps to seconds and poses the skeleton.
func (a *Animator) Seek(seconds float32) error {
	a.time = a.wrap(seconds)
	return a.Apply()
}

// Apply samples the source at the current time and writes the pose onto the
// skeleton.
func (a *Animator) Apply() error {
	if err := a.source.SampleLocal(a.time, a.defaults, a.local); err != nil {
		return fmt.Errorf("sample at %.3fs: %w", a.time, err)
	}
	for i := range a.local {
		a.poses[i] = a.local[i].Matrix()
	}
	return a.skel.ApplyPose(a.poses, a.mapping.Targets())
}

// wrap keeps the clock inside one loop so long sessions do not lose float
// precision. Sources without a duration keep the raw time.
func (a *Animator) wrap(t float32) float32 {
	d := a.source.Duration()
	if d <= 0 {
		return t
	}
	t = float32(gomath.Mod(float64(t), float64(d)))
	if t < 0 {
		t += d
	}
	return t
}
