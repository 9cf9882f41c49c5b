package anim

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// DefaultTicksPerSecond is assumed when a clip declares no tick rate.
const DefaultTicksPerSecond = 25

// Channel holds the tracks animating one bone. Any track may be nil.
type Channel struct {
	Bone     string
	Position *Track[math.Vec3]
	Rotation *Track[math.Quat]
	Scale    *Track[math.Vec3]
}

// BonePose is one entry of a sampled pose.
type BonePose struct {
	Bone   string
	Matrix math.Mat4
}

// Clip is a set of per-bone channels played back in tick space.
type Clip struct {
	name           string
	ticksPerSecond float32
	durationTicks  float32
	channels       []Channel
	bones          []string
}

// NewClip builds a clip. Channel order is preserved and defines pose order.
func NewClip(name string, ticksPerSecond, durationTicks float32, channels []Channel) *Clip {
	c := &Clip{
		name:           name,
		ticksPerSecond: ticksPerSecond,
		durationTicks:  durationTicks,
		channels:       make([]Channel, len(channels)),
		bones:          make([]string, len(channels)),
	}
	copy(c.channels, channels)
	for i, ch := range channels {
		c.bones[i] = ch.Bone
	}
	return c
}

// Name returns the clip name.
func (c *Clip) Name() string { return c.name }

// TicksPerSecond returns the declared tick rate, possibly zero.
func (c *Clip) TicksPerSecond() float32 { return c.ticksPerSecond }

// DurationTicks returns the clip length in ticks.
func (c *Clip) DurationTicks() float32 { return c.durationTicks }

// ChannelCount returns the number of channels.
func (c *Clip) ChannelCount() int { return len(c.channels) }

// Channel returns the i-th channel.
func (c *Clip) Channel(i int) Channel { return c.channels[i] }

// Bones returns the channel bone names in pose order.
func (c *Clip) Bones() []string { return c.bones }

// EffectiveTicksPerSecond returns the tick rate, substituting
// DefaultTicksPerSecond for non-positive values.
func (c *Clip) EffectiveTicksPerSecond() float32 {
	if c.ticksPerSecond <= 0 {
		return DefaultTicksPerSecond
	}
	return c.ticksPerSecond
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float32 {
	return c.durationTicks / c.EffectiveTicksPerSecond()
}

// TickTime converts seconds to tick space wrapped into [0, duration).
// Negative times wrap forward. Clips without a duration always sample tick 0.
func (c *Clip) TickTime(seconds float32) float32 {
	if c.durationTicks <= 0 {
		return 0
	}
	t := float32(gomath.Mod(float64(seconds*c.EffectiveTicksPerSecond()), float64(c.durationTicks)))
	if t < 0 {
		t += c.durationTicks
	}
	if t >= c.durationTicks {
		t = 0
	}
	return t
}

// CalculatePose samples every channel at seconds and composes T*R*S.
// Missing channels and None extrapolation fall back to identity.
func (c *Clip) CalculatePose(seconds float32) ([]BonePose, error) {
	tick := c.TickTime(seconds)
	out := make([]BonePose, len(c.channels))
	for i := range c.channels {
		tr, err := c.sampleChannel(i, tick, math.IdentityTransform())
		if err != nil {
			return nil, err
		}
		out[i] = BonePose{Bone: c.channels[i].Bone, Matrix: tr.Matrix()}
	}
	return out, nil
}

// SampleLocal samples every channel into dst as decomposed transforms.
// defaults supplies the per-channel fallback (usually the bind pose); an
// empty slice means identity.
func (c *Clip) SampleLocal(seconds float32, defaults, dst []math.Transform) error {
	if err := c.checkBuffers(len(defaults), len(dst)); err != nil {
		return err
	}
	tick := c.TickTime(seconds)
	for i := range c.channels {
		tr, err := c.sampleChannel(i, tick, defaultAt(defaults, i))
		if err != nil {
			return err
		}
		dst[i] = tr
	}
	return nil
}

// PoseInto is the allocation-free form of CalculatePose writing matrices in
// channel order.
func (c *Clip) PoseInto(seconds float32, defaults []math.Transform, dst []math.Mat4) error {
	if err := c.checkBuffers(len(defaults), len(dst)); err != nil {
		return err
	}
	tick := c.TickTime(seconds)
	for i := range c.channels {
		tr, err := c.sampleChannel(i, tick, defaultAt(defaults, i))
		if err != nil {
			return err
		}
		dst[i] = tr.Matrix()
	}
	return nil
}

func (c *Clip) checkBuffers(defaults, dst int) error {
	if dst != len(c.channels) {
		return fmt.Errorf("%w: clip %q has %d channels, buffer holds %d", ErrChannelMismatch, c.name, len(c.channels), dst)
	}
	if defaults != 0 && defaults != len(c.channels) {
		return fmt.Errorf("%w: clip %q has %d channels, got %d defaults", ErrChannelMismatch, c.name, len(c.channels), defaults)
	}
	return nil
}

func (c *Clip) sampleChannel(i int, tick float32, tr math.Transform) (math.Transform, error) {
	ch := &c.channels[i]
	if ch.Position != nil {
		v, ok, err := ch.Position.Sample(tick)
		if err != nil {
			return tr, fmt.Errorf("clip %q bone %q position: %w", c.name, ch.Bone, err)
		}
		if ok {
			tr.Position = v
		}
	}
	if ch.Rotation != nil {
		q, ok, err := ch.Rotation.Sample(tick)
		if err != nil {
			return tr, fmt.Errorf("clip %q bone %q rotation: %w", c.name, ch.Bone, err)
		}
		if ok {
			tr.Rotation = q
		}
	}
	if ch.Scale != nil {
		v, ok, err := ch.Scale.Sample(tick)
		if err != nil {
			return tr, fmt.Errorf("clip %q bone %q scale: %w", c.name, ch.Bone, err)
		}
		if ok {
			tr.Scale = v
		}
	}
	return tr, nil
}

func defaultAt(defaults []math.Transform, i int) math.Transform {
	if len(defaults) == 0 {
		return math.IdentityTransform()
	}
	return defaults[i]
}
