// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/scratchdeck/utils"
)

// Resampler converts a Source to another sample rate with cubic
// interpolation. It works on interleaved frames and keeps the channel count.
// When the rates already match it reads straight through. Downsampling runs
// a one-pole low-pass ahead of the interpolator.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// four frame window: t-1, t0, t+1, t+2; real marks frames that came
	// from the source rather than edge padding
	window [4][]float32
	real   [4]bool
	primed bool

	// position between window[1] and window[2], in source frames
	pos float64

	frame []float32
	eof   bool

	lowpass []float32
	alpha   float32
}

// NewResampler wraps src so that it produces dstRate frames per second.
func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		frame:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	if ratio > 1 {
		// cutoff follows the destination Nyquist frequency
		r.alpha = max(float32(1/ratio), 0.1)
		r.lowpass = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Passthrough reports whether source and destination rates are equal.
func (r *Resampler) Passthrough() bool { return r.ratio == 1 }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}

	return nil
}

// readFrame reads one source frame into r.frame, filtered when
// downsampling. It reports false once the source is exhausted.
func (r *Resampler) readFrame(first bool) (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frame)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("resampler read: %w", err)
	}
	if n < r.channels {
		r.eof = true
		return false, nil
	}

	if r.lowpass != nil {
		if first {
			copy(r.lowpass, r.frame)
		}
		for c, x := range r.frame {
			y := r.alpha*x + (1-r.alpha)*r.lowpass[c]
			r.lowpass[c] = y
			r.frame[c] = y
		}
	}

	return true, nil
}

// prime fills the window with the first frame doubled as t-1, then the
// next two frames. Missing frames repeat the last one read.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(true)
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.frame)
	copy(r.window[1], r.frame)
	r.real[1] = true

	for i := 2; i < len(r.window); i++ {
		if err := r.fill(i); err != nil {
			return err
		}
	}
	r.primed = true

	return nil
}

// fill reads the next source frame into window slot i, or pads it with the
// previous slot once the source is exhausted.
func (r *Resampler) fill(i int) error {
	ok, err := r.readFrame(false)
	if err != nil {
		return err
	}
	if ok {
		copy(r.window[i], r.frame)
	} else {
		copy(r.window[i], r.window[i-1])
	}
	r.real[i] = ok

	return nil
}

// shift drops the oldest frame of the window and appends the next one.
func (r *Resampler) shift() error {
	oldest := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.real[:3], r.real[1:])
	r.window[3] = oldest

	return r.fill(3)
}

// ReadSamples produces interleaved samples at the destination rate. dst
// length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.Passthrough() {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1 {
			// nothing real left to move toward
			if !r.real[2] {
				return written * r.channels, io.EOF
			}
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.real[2] && r.pos > 0 {
			return written * r.channels, io.EOF
		}

		t := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], t)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
