// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer changes the channel count of a Source.
//
// Down-mixing averages source channel i into output channel i % out, so a
// mono target averages every channel. Up-mixing copies source channels in
// order and repeats the last one, so mono becomes dual mono.
type ChannelMixer struct {
	src Source
	out int
	in  int
	tmp []float32
}

// NewChannelMixer wraps src so that it yields channels channels.
func NewChannelMixer(src Source, channels int) (*ChannelMixer, error) {
	if channels <= 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("mix %d to %d channels: %w", src.Channels(), channels, ErrInvalidChannels)
	}

	return &ChannelMixer{
		src: src,
		out: channels,
		in:  src.Channels(),
		tmp: make([]float32, 4096),
	}, nil
}

// NewMonoMixer is NewChannelMixer with a single output channel.
func NewMonoMixer(src Source) *ChannelMixer {
	m, _ := NewChannelMixer(src, 1)
	return m
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("close mixer source: %w", err)
	}

	return nil
}

// ReadSamples fills dst with whole output frames. dst length must be a
// multiple of the output channel count.
func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}
	if m.in == m.out {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) / m.out * m.in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 8192))
	}
	tmp := m.tmp[:need]

	n, err := m.src.ReadSamples(tmp)
	frames := n / m.in
	if frames == 0 {
		return 0, err
	}

	switch {
	case m.out == 1 && m.in == 2:
		for f := range frames {
			dst[f] = (tmp[2*f] + tmp[2*f+1]) * 0.5
		}
	case m.in < m.out:
		m.upmix(dst, tmp, frames)
	default:
		m.downmix(dst, tmp, frames)
	}

	return frames * m.out, err
}

func (m *ChannelMixer) upmix(dst, src []float32, frames int) {
	last := m.in - 1
	for f := range frames {
		in := src[f*m.in : (f+1)*m.in]
		out := dst[f*m.out : (f+1)*m.out]
		for c := range out {
			out[c] = in[min(c, last)]
		}
	}
}

func (m *ChannelMixer) downmix(dst, src []float32, frames int) {
	for f := range frames {
		in := src[f*m.in : (f+1)*m.in]
		out := dst[f*m.out : (f+1)*m.out]
		clear(out)
		for c, s := range in {
			out[c%m.out] += s
		}
		for c := range out {
			// channels folding into c: c, c+out, c+2*out...
			out[c] /= float32((m.in - c + m.out - 1) / m.out)
		}
	}
}
