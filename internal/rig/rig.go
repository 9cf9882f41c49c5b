// Package rig loads skeletons and animation clips from YAML rig assets.
package rig

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-rig/internal/anim"
	"github.com/Faultbox/midgard-rig/internal/skeleton"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// ErrInvalidRig is returned for malformed rig assets.
var ErrInvalidRig = errors.New("rig: invalid asset")

// Rig is a loaded skeleton with its clips.
type Rig struct {
	Name     string
	Skeleton *skeleton.Skeleton
	Clips    []*anim.Clip
}

// Clip returns the clip called name.
func (r *Rig) Clip(name string) (*anim.Clip, bool) {
	for _, c := range r.Clips {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Load reads a rig asset from path.
func Load(path string) (*Rig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading rig %s: %w", path, err)
	}
	return r, nil
}

// Decode parses a rig asset. Unknown fields are rejected.
func Decode(r io.Reader) (*Rig, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRig, err)
	}
	return Build(&file)
}

// Build converts a parsed asset into a skeleton and clips.
func Build(file *File) (*Rig, error) {
	skel, err := buildSkeleton(file.Joints)
	if err != nil {
		return nil, err
	}

	out := &Rig{Name: file.Name, Skeleton: skel, Clips: make([]*anim.Clip, 0, len(file.Clips))}
	seen := make(map[string]bool, len(file.Clips))
	for i := range file.Clips {
		spec := &file.Clips[i]
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate clip %q", ErrInvalidRig, spec.Name)
		}
		seen[spec.Name] = true

		clip, err := buildClip(spec)
		if err != nil {
			return nil, err
		}
		out.Clips = append(out.Clips, clip)
	}
	return out, nil
}

func buildSkeleton(specs []JointSpec) (*skeleton.Skeleton, error) {
	records := make([]skeleton.Record, len(specs))
	explicit := make([]bool, len(specs))
	for i, js := range specs {
		rest, err := restTransform(js)
		if err != nil {
			return nil, err
		}
		records[i] = skeleton.Record{Name: js.Name, ParentName: js.Parent, Rest: rest}
		if js.InverseBind != nil {
			m, err := mat4(js.InverseBind)
			if err != nil {
				return nil, fmt.Errorf("%w: joint %q inverse_bind: %v", ErrInvalidRig, js.Name, err)
			}
			records[i].InverseBind = m
			explicit[i] = true
		}
	}

	skel, err := skeleton.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}

	missing := false
	for _, ok := range explicit {
		missing = missing || !ok
	}
	if !missing {
		return skel, nil
	}

	// Rebuild with inverse bind matrices derived from the rest pose.
	rest := skel.RestTransforms()
	for i := range records {
		if !explicit[i] {
			records[i].InverseBind = rest[i].Inverse()
		}
	}
	if skel, err = skeleton.FromRecords(records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}
	return skel, nil
}

func restTransform(js JointSpec) (math.Transform, error) {
	t := math.IdentityTransform()
	var err error
	if js.Position != nil {
		if t.Position, err = vec3(js.Position); err != nil {
			return t, fmt.Errorf("%w: joint %q position: %v", ErrInvalidRig, js.Name, err)
		}
	}
	if js.Rotation != nil {
		if t.Rotation, err = quat(js.Rotation); err != nil {
			return t, fmt.Errorf("%w: joint %q rotation: %v", ErrInvalidRig, js.Name, err)
		}
	}
	if js.Scale != nil {
		if t.Scale, err = vec3(js.Scale); err != nil {
			return t, fmt.Errorf("%w: joint %q scale: %v", ErrInvalidRig, js.Name, err)
		}
	}
	return t, nil
}

type channelKeys struct {
	position []anim.Key[math.Vec3]
	rotation []anim.Key[math.Quat]
	scale    []anim.Key[math.Vec3]
}

// buildClip groups key triples into per-bone tracks. Bones keep the order of
// their first key.
func buildClip(spec *ClipSpec) (*anim.Clip, error) {
	pre, err := anim.ParseExtrapolation(spec.Pre)
	if err != nil {
		return nil, fmt.Errorf("%w: clip %q pre: %w", ErrInvalidRig, spec.Name, err)
	}
	post, err := anim.ParseExtrapolation(spec.Post)
	if err != nil {
		return nil, fmt.Errorf("%w: clip %q post: %w", ErrInvalidRig, spec.Name, err)
	}

	var order []string
	bones := make(map[string]*channelKeys)
	for _, k := range spec.Keys {
		ck, ok := bones[k.Bone]
		if !ok {
			ck = &channelKeys{}
			bones[k.Bone] = ck
			order = append(order, k.Bone)
		}

		switch k.Channel {
		case channelPosition, channelScale:
			v, err := vec3(k.Value)
			if err != nil {
				return nil, keyError(spec, k, err)
			}
			key := anim.Key[math.Vec3]{Time: k.Time, Value: v}
			if k.Channel == channelPosition {
				ck.position = append(ck.position, key)
			} else {
				ck.scale = append(ck.scale, key)
			}
		case channelRotation:
			q, err := quat(k.Value)
			if err != nil {
				return nil, keyError(spec, k, err)
			}
			ck.rotation = append(ck.rotation, anim.Key[math.Quat]{Time: k.Time, Value: q})
		default:
			return nil, keyError(spec, k, fmt.Errorf("unknown channel %q", k.Channel))
		}
	}

	channels := make([]anim.Channel, len(order))
	for i, bone := range order {
		ck := bones[bone]
		ch := anim.Channel{Bone: bone}
		if ck.position != nil {
			ch.Position = anim.NewVec3Track(ck.position, pre, post)
		}
		if ck.rotation != nil {
			ch.Rotation = anim.NewQuatTrack(ck.rotation, pre, post)
		}
		if ck.scale != nil {
			ch.Scale = anim.NewVec3Track(ck.scale, pre, post)
		}
		channels[i] = ch
	}
	return anim.NewClip(spec.Name, spec.TicksPerSecond, spec.Duration, channels), nil
}

func keyError(spec *ClipSpec, k KeySpec, err error) error {
	return fmt.Errorf("%w: clip %q bone %q %s key at %g: %v", ErrInvalidRig, spec.Name, k.Bone, k.Channel, k.Time, err)
}

func vec3(v []float32) (math.Vec3, error) {
	if len(v) != 3 {
		return math.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func quat(v []float32) (math.Quat, error) {
	if len(v) != 4 {
		return math.Quat{}, fmt.Errorf("want 4 components, got %d", len(v))
	}
	return math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
}

func mat4(v []float32) (math.Mat4, error) {
	var m math.Mat4
	if len(v) != len(m) {
		return m, fmt.Errorf("want %d components, got %d", len(m), len(v))
	}
	copy(m[:], v)
	return m, nil
}
