// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var ErrInvalidConfig = errors.New("invalid device configuration")

// Engine is what a device drives once per audio block. Blocks are
// interleaved with the engine's channel count.
type Engine interface {
	RecordBlock(in []float32, frames int)
	RenderBlock(out []float32, frames int)
}

// Config describes a stream.
type Config struct {
	SampleRate      float64
	FramesPerBuffer int
	InputChannels   int // 0 for output only
	OutputChannels  int // the engine's channel count
}

func (c Config) validate() error {
	if c.SampleRate <= 0 || c.FramesPerBuffer <= 0 || c.OutputChannels <= 0 || c.InputChannels < 0 {
		return ErrInvalidConfig
	}

	return nil
}

// Stream is a running audio device.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Callback adapts device blocks to an engine. Microphone input with a
// different channel count is mixed to the engine's count the way
// audio.ChannelMixer does it: extra output channels repeat the last input
// channel, extra input channels are averaged in. Nothing allocates after
// construction.
type Callback struct {
	engine    Engine
	in        int
	out       int
	maxFrames int
	scratch   []float32
}

// NewCallback sizes the callback for blocks of up to maxFrames frames.
// Longer blocks are recorded in pieces.
func NewCallback(e Engine, inChannels, outChannels, maxFrames int) *Callback {
	c := &Callback{
		engine:    e,
		in:        inChannels,
		out:       outChannels,
		maxFrames: max(maxFrames, 1),
	}
	if inChannels > 0 && inChannels != outChannels {
		c.scratch = make([]float32, c.maxFrames*outChannels)
	}

	return c
}

// Process is a duplex callback: it clears out, records in, then renders
// into out.
func (c *Callback) Process(in, out []float32) {
	clear(out)

	if c.in > 0 {
		frames := len(in) / c.in
		for start := 0; start < frames; {
			n := min(frames-start, c.maxFrames)
			c.engine.RecordBlock(c.adapt(in[start*c.in:(start+n)*c.in], n), n)
			start += n
		}
	}

	c.engine.RenderBlock(out, len(out)/c.out)
}

// Render is an output only callback.
func (c *Callback) Render(out []float32) {
	clear(out)
	c.engine.RenderBlock(out, len(out)/c.out)
}

func (c *Callback) adapt(in []float32, frames int) []float32 {
	if c.scratch == nil {
		return in
	}

	dst := c.scratch[:frames*c.out]
	for f := range frames {
		src := in[f*c.in : (f+1)*c.in]
		frame := dst[f*c.out : (f+1)*c.out]
		if c.in < c.out {
			for ch := range frame {
				frame[ch] = src[min(ch, c.in-1)]
			}
			continue
		}
		clear(frame)
		for ch, s := range src {
			frame[ch%c.out] += s
		}
		for ch := range frame {
			frame[ch] /= float32((c.in - ch + c.out - 1) / c.out)
		}
	}

	return dst
}
