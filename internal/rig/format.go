package rig

// File is the YAML layout of a rig asset.
type File struct {
	Name   string      `yaml:"name"`
	Joints []JointSpec `yaml:"joints"`
	Clips  []ClipSpec  `yaml:"clips"`
}

// JointSpec describes one joint. Rotation is x, y, z, w. A missing
// inverse bind matrix is derived from the rest hierarchy.
type JointSpec struct {
	Name        string    `yaml:"name"`
	Parent      string    `yaml:"parent,omitempty"`
	Position    []float32 `yaml:"position,omitempty"`
	Rotation    []float32 `yaml:"rotation,omitempty"`
	Scale       []float32 `yaml:"scale,omitempty"`
	InverseBind []float32 `yaml:"inverse_bind,omitempty"` // 16 floats, column-major
}

// ClipSpec describes a clip as flat key triples.
type ClipSpec struct {
	Name           string    `yaml:"name"`
	TicksPerSecond float32   `yaml:"ticks_per_second"`
	Duration       float32   `yaml:"duration"`
	Pre            string    `yaml:"pre,omitempty"`
	Post           string    `yaml:"post,omitempty"`
	Keys           []KeySpec `yaml:"keys"`
}

// KeySpec is one (bone, channel, time, value) sample. Channel is one of
// position, rotation or scale.
type KeySpec struct {
	Bone    string    `yaml:"bone"`
	Channel string    `yaml:"channel"`
	Time    float32   `yaml:"time"`
	Value   []float32 `yaml:"value"`
}

const (
	channelPosition = "position"
	channelRotation = "rotation"
	channelScale    = "scale"
)
