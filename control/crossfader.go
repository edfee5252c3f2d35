// SPDX-License-Identifier: EPL-2.0

package control

import (
	"math"
	"sync"
)

// DefaultFader is the fader position at construction.
const DefaultFader = 0.5

// Fader receives the gain a crossfader computes.
type Fader interface {
	SetCrossfaderGain(gain float32)
}

type CrossfaderOption func(*Crossfader)

// WithEqualPower maps the fader through a square root curve instead of a
// straight line.
func WithEqualPower() CrossfaderOption {
	return func(c *Crossfader) {
		c.equalPower = true
	}
}

// WithPosition sets the starting fader position.
func WithPosition(v float64) CrossfaderOption {
	return func(c *Crossfader) {
		c.position = clamp01(v)
	}
}

// Crossfader is a fader in [0, 1] with two momentary buttons: CUT silences
// the deck and THRU opens it fully while held. Fader moves made while a
// button is held are remembered and take effect on release. CUT wins when
// both are held.
type Crossfader struct {
	out        Fader
	equalPower bool

	mtx      sync.Mutex
	position float64
	cut      bool
	thru     bool
}

// NewCrossfader creates a crossfader and pushes its starting gain to out.
func NewCrossfader(out Fader, opts ...CrossfaderOption) *Crossfader {
	c := &Crossfader{
		out:      out,
		position: DefaultFader,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.apply()

	return c
}

// Set moves the fader, clamped to [0, 1].
func (c *Crossfader) Set(v float64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.position = clamp01(v)
	c.apply()
}

// Nudge moves the fader by delta.
func (c *Crossfader) Nudge(delta float64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.position = clamp01(c.position + delta)
	c.apply()
}

func (c *Crossfader) Cut(held bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.cut = held
	c.apply()
}

func (c *Crossfader) Thru(held bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.thru = held
	c.apply()
}

// Position is the remembered fader position, whatever the buttons do.
func (c *Crossfader) Position() float64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.position
}

// Gain is the gain currently sent to the deck.
func (c *Crossfader) Gain() float32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.gain()
}

func (c *Crossfader) gain() float32 {
	switch {
	case c.cut:
		return 0
	case c.thru:
		return 1
	case c.equalPower:
		return float32(math.Sqrt(c.position))
	default:
		return float32(c.position)
	}
}

func (c *Crossfader) apply() {
	c.out.SetCrossfaderGain(c.gain())
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return max(0, min(1, v))
}
