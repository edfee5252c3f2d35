// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"math"
)

const bytesPerSample = 4

// pcmReader renders an engine as a little-endian float32 byte stream for
// pull-style players. It only ever renders whole frames; when the caller
// asks for less than a frame the rest is kept for the next Read.
type pcmReader struct {
	cb      *Callback
	out     int
	buf     []float32
	frame   []byte
	pending []byte
}

func newPCMReader(cb *Callback, channels, maxFrames int) *pcmReader {
	return &pcmReader{
		cb:    cb,
		out:   channels,
		buf:   make([]float32, max(maxFrames, 1)*channels),
		frame: make([]byte, channels*bytesPerSample),
	}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	frameBytes := r.out * bytesPerSample
	frames := min(len(p)/frameBytes, len(r.buf)/r.out)
	if frames == 0 {
		r.render(r.frame, r.buf[:r.out])
		n := copy(p, r.frame)
		r.pending = r.frame[n:]
		return n, nil
	}

	r.render(p, r.buf[:frames*r.out])

	return frames * frameBytes, nil
}

func (r *pcmReader) render(p []byte, samples []float32) {
	r.cb.Render(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
}
