// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds generated sources and sample helpers shared by
// tests. It implements audio.Source without importing it.
package audiotest

import (
	"io"
	"math"
)

// MockSource generates totalSamples frames from a waveform function.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	// Err, when set, is returned by ReadSamples once FailAfter frames
	// have been produced.
	Err       error
	FailAfter int

	closed bool
}

// NewMockSource creates a generated source of totalSamples frames.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource generates the same sine wave on every channel.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewRampSource yields sample index / totalSamples on channel 0 and its
// negation on every other channel, which makes channel order and frame
// order visible in assertions.
func NewRampSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		v := float32(sample) / float32(totalSamples)
		if channel > 0 {
			return -v
		}
		return v
	})
}

// NewSliceSource plays back interleaved samples.
func NewSliceSource(sampleRate, channels int, interleaved []float32) *MockSource {
	return NewMockSource(sampleRate, channels, len(interleaved)/channels, func(sample int, channel int) float32 {
		return interleaved[sample*channels+channel]
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.Err != nil && m.generated >= m.FailAfter {
		return 0, m.Err
	}
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	if m.Err != nil {
		frames = min(frames, m.FailAfter-m.generated)
	}
	for f := range frames {
		index := m.generated + f
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(index, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalSamples {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}

// Interleave packs per-channel slices into one frame-ordered slice.
func Interleave(channels [][]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for ch, samples := range channels {
		for f, s := range samples[:frames] {
			out[f*len(channels)+ch] = s
		}
	}

	return out
}

// Deinterleave splits frame-ordered samples into per-channel slices.
func Deinterleave(interleaved []float32, channels int) [][]float32 {
	frames := len(interleaved) / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
		for f := range frames {
			out[ch][f] = interleaved[f*channels+ch]
		}
	}

	return out
}

// Near reports whether a and b differ by at most tol.
func Near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}
