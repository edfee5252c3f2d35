// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/scratchdeck/internal/log"
)

// Engine ties a Recorder, a Player with its gain smoother and a SlotBank
// around one live Buffer.
//
// RecordBlock and RenderBlock form the audio side and must be called from a
// single goroutine, record first, once per block. Every other method is the
// control side: it may allocate and is serialized by an internal mutex that
// the audio side never takes. Changes of buffer identity are made on a spare
// buffer and published atomically, so the audio side only ever sees fully
// prepared buffers.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	recorder Recorder
	player   *Player

	// audio side epoch, bumped after each callback
	blocks atomic.Uint64

	ctl        sync.Mutex
	slots      *SlotBank
	spare      *Buffer
	spareEpoch uint64
	sampleRate float64
	blockSize  int
	configured bool
	liveName   string

	observers observers
}

// Take is a copy of the recorded part of the live buffer, ready for a
// writer.
type Take struct {
	Channels   [][]float32
	Samples    int
	SampleRate int
	Name       string
}

// New creates an engine. Configure must be called before any block is
// processed.
func New(opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.validate() {
		return nil, fmt.Errorf("%w: channels=%d max=%v ramp=%v slots=%d",
			ErrInvalidConfig, cfg.Channels, cfg.MaxDuration, cfg.RampTime, cfg.Slots)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.L()
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger.With("component", "scratch"),
		player: NewPlayer(NewBuffer(cfg.Channels, 0), cfg.Gain),
		slots:  NewSlotBank(cfg.Slots),
	}
	for _, fn := range cfg.Observers {
		e.observers.add(fn)
	}

	return e, nil
}

// Subscribe registers an observer and returns a function removing it.
func (e *Engine) Subscribe(fn Observer) (cancel func()) {
	return e.observers.add(fn)
}

// Configure sizes the live buffer for sampleRate x MaxDuration samples and
// recomputes the gain ramp. It stops recording and playback, drops the live
// content and forgets the active slot. Call it before processing and again
// whenever the device sample rate changes.
func (e *Engine) Configure(sampleRate float64, maxBlockSize int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || maxBlockSize < 0 {
		return fmt.Errorf("configure rate=%v block=%d: %w", sampleRate, maxBlockSize, ErrInvalidConfig)
	}

	e.ctl.Lock()
	events := make([]Event, 0, 3)
	if e.recorder.Stop() {
		events = append(events, Event{Kind: RecordingStopped, Slot: NoSlot})
	}
	if e.player.Stop() {
		events = append(events, Event{Kind: PlaybackStopped, Slot: NoSlot})
	}

	e.sampleRate = sampleRate
	e.blockSize = maxBlockSize
	e.configured = true
	e.liveName = ""

	// capacity changed, so the old spare shape is useless
	e.spare = nil
	e.player.SetBuffer(NewBuffer(e.cfg.Channels, e.capacity()))
	e.player.Seek(0)
	e.player.ResetGain(int(math.Round(sampleRate * e.cfg.RampTime.Seconds())))
	e.slots.Deactivate()
	e.ctl.Unlock()

	e.logger.Debug("configured", "rate", sampleRate, "block", maxBlockSize)
	events = append(events, Event{Kind: Configured, Slot: NoSlot})
	e.observers.emit(events...)

	return nil
}

func (e *Engine) capacity() int {
	return int(e.sampleRate * e.cfg.MaxDuration.Seconds())
}

// spareBuffer returns a buffer the audio side cannot be reading: the
// retired buffer once a block has completed since it was retired, or a new
// allocation. ctl must be held.
func (e *Engine) spareBuffer() *Buffer {
	if e.spare != nil && e.blocks.Load() > e.spareEpoch {
		b := e.spare
		e.spare = nil

		return b
	}

	return &Buffer{}
}

// publish makes buf the live buffer and retires the previous one. ctl must
// be held.
func (e *Engine) publish(buf *Buffer) {
	old := e.player.SetBuffer(buf)
	e.spare = old
	e.spareEpoch = e.blocks.Load()
}

// RecordBlock stores one interleaved input block while recording. Audio
// goroutine only.
func (e *Engine) RecordBlock(in []float32, frames int) {
	e.recorder.ProcessBlock(in, e.cfg.Channels, frames)
	e.blocks.Add(1)
}

// RenderBlock adds one interleaved block of scratch playback into out. It
// must run every block, even while stopped, so gain ramps keep moving.
// Audio goroutine only.
func (e *Engine) RenderBlock(out []float32, frames int) {
	e.player.Render(out, e.cfg.Channels, frames)
	e.blocks.Add(1)
}

// Process runs RecordBlock then RenderBlock for one duplex block.
func (e *Engine) Process(in, out []float32, frames int) {
	e.RecordBlock(in, frames)
	e.RenderBlock(out, frames)
}

// StartRecording clears the live buffer and starts a new take. Playback is
// forced off and the active slot is forgotten.
func (e *Engine) StartRecording() error {
	e.ctl.Lock()
	if !e.configured {
		e.ctl.Unlock()
		return fmt.Errorf("start recording: %w", ErrNotConfigured)
	}

	events := make([]Event, 0, 2)
	if e.player.Stop() {
		events = append(events, Event{Kind: PlaybackStopped, Slot: NoSlot})
	}

	// the audio goroutine must not append to the outgoing buffer
	e.recorder.Stop()

	buf := e.spareBuffer()
	if buf.Channels() != e.cfg.Channels || buf.Capacity() != e.capacity() {
		buf.Resize(e.cfg.Channels, e.capacity())
	}
	e.publish(buf)
	e.player.Seek(0)
	e.recorder.Start(buf)
	e.slots.Deactivate()
	e.liveName = ""
	e.ctl.Unlock()

	e.logger.Debug("recording started", "capacity", buf.Capacity())
	events = append(events, Event{Kind: RecordingStarted, Slot: NoSlot})
	e.observers.emit(events...)

	return nil
}

// StopRecording ends the take and rewinds the cursor. Stopping an idle
// recorder does nothing.
func (e *Engine) StopRecording() {
	e.ctl.Lock()
	stopped := e.recorder.Stop()
	if stopped {
		e.player.Seek(0)
	}
	e.ctl.Unlock()

	if stopped {
		e.logger.Debug("recording stopped", "samples", e.RecordedSamples())
		e.observers.emit(Event{Kind: RecordingStopped, Slot: NoSlot})
	}
}

// Poll turns conditions raised by the audio side into events. Call it from
// the control goroutine, for example on a UI timer. It reports whether
// anything was emitted.
func (e *Engine) Poll() bool {
	if !e.recorder.TakeOverflow() {
		return false
	}

	e.ctl.Lock()
	e.player.Seek(0)
	e.ctl.Unlock()

	e.logger.Info("recording stopped at capacity", "samples", e.RecordedSamples())
	e.observers.emit(
		Event{Kind: RecordingFull, Slot: NoSlot},
		Event{Kind: RecordingStopped, Slot: NoSlot},
	)

	return true
}

// Watch calls Poll every interval until ctx is done.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Poll()
		}
	}
}

// Play starts scratch playback of the live buffer at unit speed.
func (e *Engine) Play() error {
	e.ctl.Lock()
	if e.recorder.Recording() {
		e.ctl.Unlock()
		return fmt.Errorf("play: %w", ErrRecording)
	}
	wasPlaying := e.player.Playing()
	ok := e.player.Play()
	e.ctl.Unlock()

	if !ok {
		return fmt.Errorf("play: %w", ErrNoAudio)
	}
	if !wasPlaying {
		e.observers.emit(Event{Kind: PlaybackStarted, Slot: NoSlot})
	}

	return nil
}

// Stop halts playback without moving the cursor.
func (e *Engine) Stop() {
	if e.player.Stop() {
		e.observers.emit(Event{Kind: PlaybackStopped, Slot: NoSlot})
	}
}

// SetScratchSpeed sets the signed playback rate. Safe from any goroutine.
func (e *Engine) SetScratchSpeed(rate float64) { e.player.SetSpeed(rate) }

// SetCrossfaderGain sets the gain target, reached over the ramp time. Safe
// from any goroutine.
func (e *Engine) SetCrossfaderGain(gain float32) { e.player.SetGain(gain) }

// SetPlaybackPosition moves the cursor to fraction of the recorded extent.
func (e *Engine) SetPlaybackPosition(fraction float64) { e.player.SetPosition(fraction) }

// PlaybackPosition returns the cursor as a fraction of the recorded extent.
func (e *Engine) PlaybackPosition() float64 { return e.player.Position() }

// LoadSlot stores decoded audio in slot index. data holds one slice per
// channel with at least n samples each and must already be at the engine
// sample rate. Loading the active slot mirrors it into the live buffer
// immediately.
func (e *Engine) LoadSlot(index int, data [][]float32, n int, name string) error {
	e.ctl.Lock()
	active, err := e.slots.Load(index, data, n, name)
	if err != nil {
		e.ctl.Unlock()
		return err
	}

	events := []Event{{Kind: SlotLoaded, Slot: index}}
	if active {
		events = append(events, e.activateLocked(index)...)
	}
	e.ctl.Unlock()

	e.logger.Debug("slot loaded", "slot", e.slots.Label(index), "name", name, "samples", n)
	e.observers.emit(events...)

	return nil
}

// ActivateSlot copies slot index into the live buffer and rewinds the
// cursor. An invalid or empty slot changes nothing. Recording stops first.
func (e *Engine) ActivateSlot(index int) error {
	e.ctl.Lock()
	if err := e.slots.ready(index); err != nil {
		e.ctl.Unlock()
		return fmt.Errorf("activate slot %d: %w", index, err)
	}
	events := e.activateLocked(index)
	e.ctl.Unlock()

	e.logger.Debug("slot activated", "slot", e.slots.Label(index))
	e.observers.emit(events...)

	return nil
}

// activateLocked mirrors a loaded slot into a fresh live buffer. ctl must be
// held and the slot must be loaded.
func (e *Engine) activateLocked(index int) []Event {
	var events []Event
	if e.recorder.Stop() {
		events = append(events, Event{Kind: RecordingStopped, Slot: NoSlot})
	}

	buf := e.spareBuffer()
	if err := e.slots.Activate(index, buf); err != nil {
		return events
	}
	e.publish(buf)
	e.player.Seek(0)
	e.liveName = e.slots.DisplayName(index)

	return append(events, Event{Kind: SlotActivated, Slot: index})
}

// LoadBuffer replaces the live buffer with decoded audio, bypassing the
// slots. Recording stops and the cursor rewinds.
func (e *Engine) LoadBuffer(data [][]float32, n int, name string) error {
	if err := validateClip(data, n); err != nil {
		return fmt.Errorf("load buffer: %w", err)
	}

	e.ctl.Lock()
	var events []Event
	if e.recorder.Stop() {
		events = append(events, Event{Kind: RecordingStopped, Slot: NoSlot})
	}
	buf := e.spareBuffer()
	buf.Fill(data, n)
	e.publish(buf)
	e.player.Seek(0)
	e.slots.Deactivate()
	e.liveName = name
	e.ctl.Unlock()

	e.logger.Debug("buffer loaded", "name", name, "samples", n)
	e.observers.emit(append(events, Event{Kind: BufferLoaded, Slot: NoSlot})...)

	return nil
}

// Take copies the recorded part of the live buffer. It fails while
// recording and when nothing was recorded.
func (e *Engine) Take() (Take, error) {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.recorder.Recording() {
		return Take{}, fmt.Errorf("take: %w", ErrRecording)
	}
	buf := e.player.Buffer()
	n := buf.WritePosition()
	if n == 0 {
		return Take{}, fmt.Errorf("take: %w", ErrNoAudio)
	}

	channels := make([][]float32, buf.Channels())
	for ch := range channels {
		channels[ch] = append([]float32(nil), buf.Channel(ch)[:n]...)
	}

	return Take{
		Channels:   channels,
		Samples:    n,
		SampleRate: int(math.Round(e.sampleRate)),
		Name:       e.liveName,
	}, nil
}

func (e *Engine) Recording() bool         { return e.recorder.Recording() }
func (e *Engine) Playing() bool           { return e.player.Playing() }
func (e *Engine) ScratchSpeed() float64   { return e.player.Speed() }
func (e *Engine) CrossfaderGain() float32 { return e.player.Gain() }
func (e *Engine) Channels() int           { return e.cfg.Channels }

// RecordedSamples is the extent of the live buffer.
func (e *Engine) RecordedSamples() int { return e.player.Buffer().WritePosition() }

// Live returns the live buffer for read-only visualization. Its content may
// change underneath the caller while recording.
func (e *Engine) Live() *Buffer { return e.player.Buffer() }

func (e *Engine) SampleRate() float64 {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.sampleRate
}

func (e *Engine) BlockSize() int {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.blockSize
}

func (e *Engine) SlotCount() int { return e.slots.Len() }

func (e *Engine) IsSlotLoaded(index int) bool {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.slots.IsLoaded(index)
}

func (e *Engine) SlotName(index int) string {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.slots.DisplayName(index)
}

func (e *Engine) SlotLabel(index int) string { return e.slots.Label(index) }

// ActiveSlot returns the slot mirrored in the live buffer, or NoSlot.
func (e *Engine) ActiveSlot() int {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.slots.ActiveIndex()
}
