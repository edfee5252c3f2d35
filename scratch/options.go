// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"log/slog"
	"time"
)

const (
	DefaultChannels    = 2
	DefaultMaxDuration = 30 * time.Second
)

// Config holds engine construction parameters.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Channels of the live buffer and of interleaved callback blocks.
	Channels int
	// MaxDuration bounds a recording; capacity is sampleRate x MaxDuration.
	MaxDuration time.Duration
	// RampTime is the crossfader smoothing time.
	RampTime time.Duration
	// Slots is the number of sample slots.
	Slots int
	// Gain is the initial crossfader gain.
	Gain float32

	Logger    *slog.Logger
	Observers []Observer
}

// Option is a functional option for configuring an Engine.
type Option func(*Config)

// DefaultConfig returns stereo, 30 second, 10 ms ramp, four slot settings at
// full gain.
func DefaultConfig() Config {
	return Config{
		Channels:    DefaultChannels,
		MaxDuration: DefaultMaxDuration,
		RampTime:    time.Duration(DefaultRampTime * float64(time.Second)),
		Slots:       DefaultSlots,
		Gain:        1,
	}
}

// WithChannels sets the channel count of the live buffer and callbacks.
func WithChannels(n int) Option {
	return func(c *Config) {
		c.Channels = n
	}
}

// WithMaxDuration sets the longest recording the live buffer can hold.
func WithMaxDuration(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDuration = d
	}
}

// WithRampTime sets the gain smoothing time.
func WithRampTime(d time.Duration) Option {
	return func(c *Config) {
		c.RampTime = d
	}
}

// WithSlots sets the number of sample slots.
func WithSlots(n int) Option {
	return func(c *Config) {
		c.Slots = n
	}
}

// WithGain sets the initial crossfader gain.
func WithGain(g float32) Option {
	return func(c *Config) {
		c.Gain = g
	}
}

// WithLogger sets the logger used for control surface operations.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(fn Observer) Option {
	return func(c *Config) {
		c.Observers = append(c.Observers, fn)
	}
}

func (c Config) validate() bool {
	return c.Channels > 0 && c.MaxDuration > 0 && c.RampTime >= 0 && c.Slots >= 0
}
