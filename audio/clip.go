// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Clip is a fully decoded piece of audio stored one slice per channel.
type Clip struct {
	Channels   [][]float32
	Frames     int
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}

	return float64(c.Frames) / float64(c.SampleRate)
}

// ReadClip drains src into a Clip, de-interleaving as it goes. bufferSize is
// the read size in samples and is rounded down to whole frames; zero or
// less uses src.BufSize(). src is not closed.
func ReadClip(src Source, bufferSize int) (Clip, error) {
	channels := src.Channels()
	if channels <= 0 {
		return Clip{}, fmt.Errorf("read clip: %w", ErrInvalidChannels)
	}
	if src.SampleRate() <= 0 {
		return Clip{}, fmt.Errorf("read clip: %w", ErrInvalidRate)
	}

	if bufferSize <= 0 {
		bufferSize = src.BufSize()
	}
	bufferSize = max(bufferSize/channels, 1) * channels

	clip := Clip{
		Channels:   make([][]float32, channels),
		SampleRate: src.SampleRate(),
	}
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		frames := n / channels
		for f := range frames {
			for ch := range channels {
				clip.Channels[ch] = append(clip.Channels[ch], buf[f*channels+ch])
			}
		}
		clip.Frames += frames

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Clip{}, fmt.Errorf("read clip: %w", err)
		}
		if n == 0 {
			// no data and no EOF
			return Clip{}, fmt.Errorf("read clip: %w", io.ErrNoProgress)
		}
	}

	if clip.Frames == 0 {
		return Clip{}, fmt.Errorf("read clip: %w", ErrEmptySource)
	}

	return clip, nil
}
