// SPDX-License-Identifier: EPL-2.0

package scratch

import "math"

// DefaultRampTime is the gain ramp duration in seconds.
const DefaultRampTime = 0.010

// GainSmoother moves a scalar gain linearly toward its target over a fixed
// number of samples so that abrupt gain changes do not click.
//
// After RampLength() consecutive Advance calls following a target change,
// Current() equals the target exactly. The zero value has a ramp length of
// zero, which makes every target change immediate.
type GainSmoother struct {
	current    float32
	target     float32
	step       float32
	rampLength int
	remaining  int
}

// NewGainSmoother returns a smoother resting at value.
func NewGainSmoother(value float32) *GainSmoother {
	return &GainSmoother{current: value, target: value}
}

// Reset recomputes the ramp length as round(sampleRate * rampTime) and
// snaps the current value to the target, ending any ramp in progress.
func (g *GainSmoother) Reset(sampleRate, rampTime float64) {
	g.SetRampLength(int(math.Round(sampleRate * rampTime)))
}

// SetRampLength sets the ramp length in samples directly. It snaps to the
// target like Reset.
func (g *GainSmoother) SetRampLength(samples int) {
	g.rampLength = max(samples, 0)
	g.current = g.target
	g.remaining = 0
	g.step = 0
}

// SetTarget starts a new linear ramp from the current value. Setting the
// target it already has is a no-op so a ramp in progress is not restarted.
func (g *GainSmoother) SetTarget(value float32) {
	if value == g.target {
		return
	}

	g.target = value
	if g.rampLength == 0 {
		g.current = value
		g.remaining = 0

		return
	}

	g.remaining = g.rampLength
	g.step = (g.target - g.current) / float32(g.rampLength)
}

// Advance returns the current value and then moves one step toward the
// target. The last step lands on the target exactly.
func (g *GainSmoother) Advance() float32 {
	v := g.current
	if g.remaining > 0 {
		g.remaining--
		if g.remaining == 0 {
			g.current = g.target
		} else {
			g.current += g.step
		}
	}

	return v
}

func (g *GainSmoother) Current() float32 { return g.current }
func (g *GainSmoother) Target() float32  { return g.target }
func (g *GainSmoother) RampLength() int  { return g.rampLength }
func (g *GainSmoother) Ramping() bool    { return g.remaining > 0 }
