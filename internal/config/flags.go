package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config    string
	Debug     bool
	Rig       string
	Clip      string
	Speed     float64
	Workers   int
	Instances int
	Step      time.Duration
	Duration  time.Duration
}

// BindFlags registers the overrides on fs. Call before fs.Parse.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Rig, "rig", "", "Rig asset path")
	fs.StringVar(&f.Clip, "clip", "", "Clip name")
	fs.Float64Var(&f.Speed, "speed", 0, "Playback speed multiplier")
	fs.IntVar(&f.Workers, "workers", 0, "Animator pool workers")
	fs.IntVar(&f.Instances, "instances", 0, "Animated instances")
	fs.DurationVar(&f.Step, "step", 0, "Simulation timestep")
	fs.DurationVar(&f.Duration, "duration", 0, "Simulated playback time")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Rig != "" {
		cfg.Rig.Path = f.Rig
	}
	if f.Clip != "" {
		cfg.Rig.Clip = f.Clip
	}
	if f.Speed != 0 {
		cfg.Playback.Speed = float32(f.Speed)
	}
	if f.Workers > 0 {
		cfg.Workers.Count = f.Workers
	}
	if f.Instances > 0 {
		cfg.Playback.Instances = f.Instances
	}
	if f.Step > 0 {
		cfg.Playback.Step = f.Step
	}
	if f.Duration > 0 {
		cfg.Playback.Duration = f.Duration
	}
}
