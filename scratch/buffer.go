// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"math"
	"sync/atomic"

	"github.com/ik5/scratchdeck/utils"
)

// Buffer is a fixed capacity, multi-channel sample store with a write cursor.
//
// Samples are kept per channel in contiguous float32 slices. The write
// position counts valid samples per channel and always satisfies
// 0 <= WritePosition() <= Capacity(). Content past the write position is
// zeroed but never read out of bounds.
//
// A Buffer has a single writer. The write position is published atomically
// so that other goroutines can observe the recorded extent without locking.
type Buffer struct {
	data     [][]float32
	capacity int
	written  atomic.Int64
}

// NewBuffer allocates a zeroed buffer of channels x capacity samples.
func NewBuffer(channels, capacity int) *Buffer {
	b := &Buffer{}
	b.Resize(channels, capacity)

	return b
}

// Resize reallocates storage. No data is preserved and the write position
// returns to zero. Negative arguments are treated as zero.
func (b *Buffer) Resize(channels, capacity int) {
	channels = max(channels, 0)
	capacity = max(capacity, 0)

	// one backing array keeps channels close together in memory
	backing := make([]float32, channels*capacity)
	b.data = make([][]float32, channels)
	for ch := range channels {
		b.data[ch] = backing[ch*capacity : (ch+1)*capacity : (ch+1)*capacity]
	}
	b.capacity = capacity
	b.written.Store(0)
}

func (b *Buffer) Channels() int { return len(b.data) }
func (b *Buffer) Capacity() int { return b.capacity }

// WritePosition is the number of valid samples per channel (the extent).
func (b *Buffer) WritePosition() int { return int(b.written.Load()) }

// Remaining is the number of samples per channel that can still be appended.
func (b *Buffer) Remaining() int { return b.capacity - b.WritePosition() }

// Clear zeroes every sample and resets the write position.
func (b *Buffer) Clear() {
	for _, ch := range b.data {
		clear(ch)
	}
	b.written.Store(0)
}

// Channel returns the full storage of channel ch, including the unwritten
// tail. The slice aliases the buffer.
func (b *Buffer) Channel(ch int) []float32 {
	return b.data[ch]
}

// Sample returns the stored sample at index n of channel ch.
func (b *Buffer) Sample(ch, n int) float32 {
	return b.data[ch][n]
}

// AppendFrom copies n samples per channel from src, starting at the write
// position. When src has fewer channels than the buffer the last source
// channel is repeated, so a mono block fills every channel.
//
// It fails without touching the buffer when n samples would not fit, or when
// src is shorter than n.
func (b *Buffer) AppendFrom(src [][]float32, n int) bool {
	if n < 0 || len(src) == 0 {
		return false
	}
	wp := b.WritePosition()
	if wp+n > b.capacity {
		return false
	}
	for _, s := range src {
		if len(s) < n {
			return false
		}
	}

	last := len(src) - 1
	for ch, dst := range b.data {
		copy(dst[wp:wp+n], src[min(ch, last)][:n])
	}
	b.written.Store(int64(wp + n))

	return true
}

// AppendInterleaved is AppendFrom for a block of interleaved frames, which
// is how audio callbacks deliver input. frames is the frame count, channels
// the interleave stride of src.
func (b *Buffer) AppendInterleaved(src []float32, channels, frames int) bool {
	if channels <= 0 || frames < 0 || len(src) < channels*frames {
		return false
	}
	wp := b.WritePosition()
	if wp+frames > b.capacity {
		return false
	}

	last := channels - 1
	for ch, dst := range b.data {
		srcCh := min(ch, last)
		dst = dst[wp : wp+frames]
		for f := range dst {
			dst[f] = src[f*channels+srcCh]
		}
	}
	b.written.Store(int64(wp + frames))

	return true
}

// ReadInterpolated returns the linear interpolation between the two samples
// surrounding the fractional index position. Both indices are clamped into
// [0, WritePosition()-1]; an empty buffer reads as silence.
func (b *Buffer) ReadInterpolated(position float64, ch int) float32 {
	extent := b.WritePosition()
	if extent == 0 {
		return 0
	}

	p0 := math.Floor(position)
	frac := float32(position - p0)
	i0 := clampIndex(p0, extent)
	i1 := clampIndex(p0+1, extent)

	samples := b.data[ch]

	return utils.Lerp(samples[i0], samples[i1], frac)
}

// CopyFrom makes b a deep copy of other: channel count, capacity, content
// and write position. Storage is reused when the shape already matches.
func (b *Buffer) CopyFrom(other *Buffer) {
	if b.Channels() != other.Channels() || b.capacity != other.capacity {
		b.Resize(other.Channels(), other.capacity)
	}
	for ch := range b.data {
		copy(b.data[ch], other.data[ch])
	}
	b.written.Store(int64(other.WritePosition()))
}

// Fill replaces the content with n samples per channel from src and sets the
// write position to n. The buffer is resized to exactly channels x n first
// unless it already has that shape.
func (b *Buffer) Fill(src [][]float32, n int) {
	if b.Channels() != len(src) || b.capacity != n {
		b.Resize(len(src), n)
	}
	for ch := range b.data {
		copy(b.data[ch], src[ch][:n])
	}
	b.written.Store(int64(n))
}

func clampIndex(p float64, extent int) int {
	switch {
	case p < 0:
		return 0
	case p > float64(extent-1):
		return extent - 1
	default:
		return int(p)
	}
}
