// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/scratchdeck/utils"
)

// encodeChunk is the number of frames converted per encoder write.
const encodeChunk = 4096

// Encode writes channels as an integer PCM WAV file. Each slice holds one
// channel; the shortest one sets the frame count. Samples are clamped to
// [-1, 1] before conversion.
func Encode(w io.WriteSeeker, sampleRate, bitDepth int, channels [][]float32) error {
	if len(channels) == 0 {
		return ErrNoChannels
	}
	if !supportedDepth(bitDepth) {
		return fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	numChans := len(channels)
	enc := wav.NewEncoder(w, sampleRate, bitDepth, numChans, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:           make([]int, min(frames, encodeChunk)*numChans),
		SourceBitDepth: bitDepth,
	}

	// an empty write still opens the data chunk
	start := 0
	for {
		n := min(frames-start, encodeChunk)
		buf.Data = buf.Data[:n*numChans]
		for f := range n {
			for c, samples := range channels {
				v := utils.Float32ToPCM(samples[start+f], bitDepth)
				if bitDepth == 8 {
					v += 128
				}
				buf.Data[f*numChans+c] = v
			}
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav write: %w", err)
		}

		start += n
		if start >= frames {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}

	return nil
}
