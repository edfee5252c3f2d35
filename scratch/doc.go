// SPDX-License-Identifier: EPL-2.0

// Package scratch implements the real-time core of a scratch instrument:
// recording microphone blocks into memory and playing them back at any
// signed, continuously variable speed, the way a DJ drags a record.
//
// The building blocks are:
//   - Buffer: fixed capacity per-channel float32 store with a write cursor
//   - GainSmoother: linear ramp toward a target gain, removing clicks
//   - Recorder: appends input blocks, stops by itself when the buffer is full
//   - Player: linear-interpolating reader with wrap-around looping
//   - SlotBank: independently loaded buffers that can be copied into the live one
//   - Engine: the façade used by the host audio callback and the UI
//
// # Threads
//
// The host calls Engine.RecordBlock and then Engine.RenderBlock once per
// audio block from one goroutine. These never allocate, lock or block:
//
//	func callback(in, out []float32) {
//	    clear(out)
//	    engine.RecordBlock(in, len(in)/2)
//	    engine.RenderBlock(out, len(out)/2)
//	}
//
// Everything else is the control surface. Control calls may allocate and
// are serialized internally. Speed and gain are single atomic words and can
// be set from anywhere.
//
// # Events
//
// Observers registered with Subscribe are told about recording, playback,
// slot and configuration changes. They run on the control goroutine that
// made the change. A recording that fills the buffer stops on the audio
// goroutine; the matching events are delivered by Poll (or Watch).
//
// # Sample Format
//
// Callback blocks are interleaved float32 frames in [-1.0, 1.0] with the
// channel count given by WithChannels (stereo by default). Mono sources are
// expected to be up-mixed by the caller; a mono slot plays on every output
// channel.
package scratch
