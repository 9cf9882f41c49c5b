// Package config handles rig tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all rig tool settings.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Workers  WorkerConfig   `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
	Rig      RigConfig      `yaml:"rig"`
}

// PlaybackConfig holds the fixed-step simulation settings.
type PlaybackConfig struct {
	Step      time.Duration `yaml:"step"`      // Simulation timestep
	Duration  time.Duration `yaml:"duration"`  // Total simulated time for play
	Speed     float32       `yaml:"speed"`     // Playback rate multiplier
	Instances int           `yaml:"instances"` // Animated skeleton copies
}

// WorkerConfig holds animator pool settings.
type WorkerConfig struct {
	Count int `yaml:"count"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// RigConfig names the default rig asset and clip.
type RigConfig struct {
	Path string `yaml:"path"`
	Clip string `yaml:"clip"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Step:      time.Second / 60,
			Duration:  2 * time.Second,
			Speed:     1,
			Instances: 16,
		},
		Workers: WorkerConfig{
			Count: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Playback.Step <= 0:
		return fmt.Errorf("%w: playback.step must be positive, got %v", ErrInvalid, c.Playback.Step)
	case c.Playback.Duration < 0:
		return fmt.Errorf("%w: playback.duration must not be negative, got %v", ErrInvalid, c.Playback.Duration)
	case c.Playback.Instances < 1:
		return fmt.Errorf("%w: playback.instances must be at least 1, got %d", ErrInvalid, c.Playback.Instances)
	case c.Workers.Count < 1:
		return fmt.Errorf("%w: workers.count must be at least 1, got %d", ErrInvalid, c.Workers.Count)
	}
	return nil
}
