// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"math"
	"sync/atomic"

	"github.com/ik5/scratchdeck/utils"
)

// PlayerState is either Stopped or Playing.
type PlayerState int32

const (
	Stopped PlayerState = iota
	Playing
)

func (s PlayerState) String() string {
	if s == Playing {
		return "playing"
	}

	return "stopped"
}

// Player reads a Buffer at a continuously variable, signed speed with linear
// interpolation, looping inside the recorded extent, and scales the result
// by a smoothed gain.
//
// Render runs on the audio goroutine and owns the cursor and the smoother.
// Every other method is safe from the control goroutine: speed, gain target,
// seeks and the buffer itself are handed over through atomics and picked up
// at the top of the next block.
type Player struct {
	buf   atomic.Pointer[Buffer]
	state atomic.Int32
	speed atomic.Uint64 // float64 bits
	gain  atomic.Uint32 // float32 bits, smoother target

	seekPending atomic.Bool
	seekTo      atomic.Uint64 // float64 bits
	cursor      atomic.Uint64 // float64 bits, published after each block
	rampRequest atomic.Int64  // ramp length in samples, -1 when none

	// audio goroutine only
	pos      float64
	smoother GainSmoother
}

// NewPlayer returns a stopped player reading buf with the given initial gain.
func NewPlayer(buf *Buffer, gain float32) *Player {
	p := &Player{}
	p.buf.Store(buf)
	p.smoother = GainSmoother{current: gain, target: gain}
	p.gain.Store(math.Float32bits(gain))
	p.rampRequest.Store(-1)

	return p
}

// Buffer returns the buffer currently read by the player.
func (p *Player) Buffer() *Buffer { return p.buf.Load() }

// SetBuffer publishes buf as the buffer to read from the next block on and
// returns the previous one. The previous buffer may still be read by a block
// in flight.
func (p *Player) SetBuffer(buf *Buffer) *Buffer {
	return p.buf.Swap(buf)
}

// Play starts playback at unit forward speed. It refuses, leaving the
// player stopped, when the buffer holds no samples.
func (p *Player) Play() bool {
	buf := p.buf.Load()
	if buf == nil || buf.WritePosition() == 0 {
		return false
	}
	p.SetSpeed(1)
	p.state.Store(int32(Playing))

	return true
}

// Stop halts playback and reports whether the player was playing. The
// cursor keeps its position.
func (p *Player) Stop() bool {
	return p.state.Swap(int32(Stopped)) == int32(Playing)
}

func (p *Player) State() PlayerState { return PlayerState(p.state.Load()) }
func (p *Player) Playing() bool      { return p.State() == Playing }

// SetSpeed sets the signed playback rate: 1 is normal forward speed, 0
// holds the cursor, negative values play backwards. The rate is not
// bounded here. Non-finite rates are ignored.
func (p *Player) SetSpeed(rate float64) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	p.speed.Store(math.Float64bits(rate))
}

func (p *Player) Speed() float64 { return math.Float64frombits(p.speed.Load()) }

// SetGain sets the smoother target. The ramp starts at the next block.
func (p *Player) SetGain(gain float32) {
	p.gain.Store(math.Float32bits(gain))
}

func (p *Player) Gain() float32 { return math.Float32frombits(p.gain.Load()) }

// ResetGain asks the audio goroutine to apply a new ramp length to the
// smoother at the top of the next block.
func (p *Player) ResetGain(rampLength int) {
	p.rampRequest.Store(int64(max(rampLength, 0)))
}

// Seek moves the cursor to the absolute sample position pos at the top of
// the next block.
func (p *Player) Seek(pos float64) {
	p.seekTo.Store(math.Float64bits(pos))
	p.seekPending.Store(true)
	p.cursor.Store(math.Float64bits(pos))
}

// SetPosition maps fraction in [0,1) onto the recorded extent, clamped to
// [0, extent-1]. It does nothing while the buffer is empty.
func (p *Player) SetPosition(fraction float64) {
	buf := p.buf.Load()
	if buf == nil {
		return
	}
	extent := buf.WritePosition()
	if extent == 0 || math.IsNaN(fraction) {
		return
	}
	pos := fraction * float64(extent)
	pos = math.Max(0, math.Min(pos, float64(extent-1)))
	p.Seek(pos)
}

// Position returns the cursor as a fraction of the recorded extent, or 0
// when the buffer is empty.
func (p *Player) Position() float64 {
	buf := p.buf.Load()
	if buf == nil {
		return 0
	}
	extent := buf.WritePosition()
	if extent == 0 {
		return 0
	}

	return p.Cursor() / float64(extent)
}

// Cursor returns the absolute fractional sample position as of the last
// completed block or seek.
func (p *Player) Cursor() float64 { return math.Float64frombits(p.cursor.Load()) }

// Render adds frames interleaved frames of channels channels into out.
//
// The gain smoother advances once per frame whether or not anything is
// audible, so ramps keep moving while the player is stopped. Output
// channels past the buffer's channel count repeat its last channel. Render
// does not allocate, lock or block.
func (p *Player) Render(out []float32, channels, frames int) {
	if req := p.rampRequest.Swap(-1); req >= 0 {
		p.smoother.SetRampLength(int(req))
	}
	p.smoother.SetTarget(p.Gain())
	if p.seekPending.Swap(false) {
		p.pos = math.Float64frombits(p.seekTo.Load())
	}

	if channels > 0 {
		frames = min(frames, len(out)/channels)
	}

	buf := p.buf.Load()
	extent := 0
	if buf != nil && buf.Channels() > 0 {
		extent = buf.WritePosition()
	}

	if p.State() != Playing || extent == 0 || channels <= 0 {
		for range frames {
			p.smoother.Advance()
		}

		return
	}

	speed := p.Speed()
	end := float64(extent)
	pos := p.pos
	// the extent can shrink when a different buffer is published
	if !(pos >= 0 && pos < end) {
		pos = 0
	}

	last := buf.Channels() - 1
	for f := range frames {
		gain := p.smoother.Advance()

		p0 := math.Floor(pos)
		frac := float32(pos - p0)
		i0 := clampIndex(p0, extent)
		i1 := clampIndex(p0+1, extent)

		frame := out[f*channels : f*channels+channels]
		for ch := range frame {
			s := buf.data[min(ch, last)]
			frame[ch] += utils.Lerp(s[i0], s[i1], frac) * gain
		}

		pos += speed
		if pos >= end {
			pos = 0
		} else if pos < 0 {
			pos = end - 1
		}
	}

	p.pos = pos
	p.cursor.Store(math.Float64bits(pos))
}
