// SPDX-License-Identifier: EPL-2.0

package scratch

import "sync"

// EventKind identifies a discrete engine state transition.
type EventKind int

const (
	RecordingStarted EventKind = iota + 1
	RecordingStopped
	// RecordingFull precedes RecordingStopped when a take ran out of capacity.
	RecordingFull
	PlaybackStarted
	PlaybackStopped
	SlotLoaded
	SlotActivated
	BufferLoaded
	Configured
)

var eventNames = map[EventKind]string{
	RecordingStarted: "recording-started",
	RecordingStopped: "recording-stopped",
	RecordingFull:    "recording-full",
	PlaybackStarted:  "playback-started",
	PlaybackStopped:  "playback-stopped",
	SlotLoaded:       "slot-loaded",
	SlotActivated:    "slot-activated",
	BufferLoaded:     "buffer-loaded",
	Configured:       "configured",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}

	return "unknown"
}

// Event is delivered to observers after a state change. Slot is the slot
// index for slot events and NoSlot otherwise.
type Event struct {
	Kind EventKind
	Slot int
}

// Observer receives engine events. Observers run on the goroutine that
// caused the change, never on the audio goroutine.
type Observer func(Event)

type observerEntry struct {
	id int
	fn Observer
}

type observers struct {
	mtx     sync.Mutex
	nextID  int
	entries []observerEntry
}

func (o *observers) add(fn Observer) func() {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.nextID++
	id := o.nextID
	o.entries = append(o.entries, observerEntry{id: id, fn: fn})

	return func() {
		o.mtx.Lock()
		defer o.mtx.Unlock()

		for i, e := range o.entries {
			if e.id == id {
				o.entries = append(o.entries[:i:i], o.entries[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	o.mtx.Lock()
	fns := make([]Observer, len(o.entries))
	for i, e := range o.entries {
		fns[i] = e.fn
	}
	o.mtx.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
