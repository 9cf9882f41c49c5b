package anim

import (
	"fmt"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// PoseSource produces a local pose per channel at a point in time.
type PoseSource interface {
	// Bones names the channels in output order.
	Bones() []string
	// Duration is the loop length in seconds.
	Duration() float32
	// SampleLocal writes one transform per channel into dst. defaults is
	// either empty (identity fallback) or one transform per channel.
	SampleLocal(seconds float32, defaults, dst []math.Transform) error
}

var (
	_ PoseSource = (*Clip)(nil)
	_ PoseSource = (*Blend)(nil)
)

// Blend cross-fades two pose sources. Output channels follow the first
// source; channels missing from the second keep the first source's value.
// A Blend reuses internal buffers and must not be sampled concurrently.
type Blend struct {
	from, to PoseSource
	weight   float32

	toIndex    []int
	toDefaults []math.Transform
	toPose     []math.Transform
}

// NewBlend creates a blend of from and to at weight (0 = from, 1 = to).
func NewBlend(from, to PoseSource, weight float32) *Blend {
	toBones := to.Bones()
	byName := make(map[string]int, len(toBones))
	for i, b := range toBones {
		if _, dup := byName[b]; !dup {
			byName[b] = i
		}
	}

	fromBones := from.Bones()
	b := &Blend{
		from:       from,
		to:         to,
		toIndex:    make([]int, len(fromBones)),
		toDefaults: make([]math.Transform, len(toBones)),
		toPose:     make([]math.Transform, len(toBones)),
	}
	for i, name := range fromBones {
		idx, ok := byName[name]
		if !ok {
			idx = -1
		}
		b.toIndex[i] = idx
	}
	b.SetWeight(weight)
	return b
}

// SetWeight sets the blend weight, clamped to [0, 1].
func (b *Blend) SetWeight(w float32) {
	switch {
	case w < 0:
		w = 0
	case w > 1:
		w = 1
	}
	b.weight = w
}

// Weight returns the current blend weight.
func (b *Blend) Weight() float32 {
	return b.weight
}

// Bones returns the first source's channel names.
func (b *Blend) Bones() []string {
	return b.from.Bones()
}

// Duration returns the longer of the two loop lengths.
func (b *Blend) Duration() float32 {
	return max(b.from.Duration(), b.to.Duration())
}

// SampleLocal samples both sources and blends matching channels.
func (b *Blend) SampleLocal(seconds float32, defaults, dst []math.Transform) error {
	if err := b.from.SampleLocal(seconds, defaults, dst); err != nil {
		return fmt.Errorf("blend from: %w", err)
	}
	if b.weight == 0 {
		return nil
	}

	for j := range b.toDefaults {
		b.toDefaults[j] = math.IdentityTransform()
	}
	if len(defaults) > 0 {
		for i, j := range b.toIndex {
			if j >= 0 {
				b.toDefaults[j] = defaults[i]
			}
		}
	}
	if err := b.to.SampleLocal(seconds, b.toDefaults, b.toPose); err != nil {
		return fmt.Errorf("blend to: %w", err)
	}

	for i, j := range b.toIndex {
		if j >= 0 {
			dst[i] = dst[i].Blend(b.toPose[j], b.weight)
		}
	}
	return nil
}
