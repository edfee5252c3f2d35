// SPDX-License-Identifier: EPL-2.0

package scratch

import "sync/atomic"

// RecorderState is either Idle or Recording.
type RecorderState int32

const (
	Idle RecorderState = iota
	Recording
)

func (s RecorderState) String() string {
	if s == Recording {
		return "recording"
	}

	return "idle"
}

// Recorder appends input blocks to a Buffer while it is recording.
//
// Start and Stop run on the control goroutine, ProcessBlock on the audio
// goroutine. The take buffer and the recording state are one atomic value,
// so the audio goroutine never appends a new take to an old buffer. When a
// block does not fit in the remaining capacity the recorder stops by itself
// and raises an overflow flag that the control side collects with
// TakeOverflow. The buffer never grows from the audio goroutine.
type Recorder struct {
	take       atomic.Pointer[Buffer] // nil while idle
	overflowed atomic.Bool
}

// Start clears buf and begins recording into it. It may be called while
// already recording to restart the take.
func (r *Recorder) Start(buf *Buffer) {
	r.take.Store(nil)
	buf.Clear()
	r.overflowed.Store(false)
	r.take.Store(buf)
}

// Stop ends recording and reports whether the recorder was recording.
func (r *Recorder) Stop() bool {
	return r.take.Swap(nil) != nil
}

func (r *Recorder) State() RecorderState {
	if r.take.Load() == nil {
		return Idle
	}

	return Recording
}

func (r *Recorder) Recording() bool { return r.State() == Recording }

// ProcessBlock appends frames interleaved frames of channels channels from
// in to the take buffer. It is a no-op unless recording. It reports whether
// the block was stored. A malformed block is dropped; a block that would
// overflow the take switches the recorder to Idle.
func (r *Recorder) ProcessBlock(in []float32, channels, frames int) bool {
	buf := r.take.Load()
	if buf == nil {
		return false
	}
	if channels <= 0 || frames < 0 || len(in) < channels*frames {
		return false
	}
	if buf.AppendInterleaved(in, channels, frames) {
		return true
	}

	// a restart may have replaced the take meanwhile
	if r.take.CompareAndSwap(buf, nil) {
		r.overflowed.Store(true)
	}

	return false
}

// TakeOverflow reports whether recording stopped at capacity since the last
// call, and resets the flag.
func (r *Recorder) TakeOverflow() bool {
	return r.overflowed.Swap(false)
}
