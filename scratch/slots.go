// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"fmt"
	"strconv"
)

// DefaultSlots is the number of slots in a bank, labelled A to D.
const DefaultSlots = 4

// NoSlot is the active index when no slot is mirrored into the live buffer.
const NoSlot = -1

// Slot is one independently loaded sample buffer.
type Slot struct {
	Label string
	Name  string

	buf *Buffer
}

// Loaded reports whether the slot holds any samples.
func (s *Slot) Loaded() bool { return s.buf != nil && s.buf.WritePosition() > 0 }

// SampleCount is the number of samples per channel held by the slot.
func (s *Slot) SampleCount() int {
	if s.buf == nil {
		return 0
	}

	return s.buf.WritePosition()
}

// SlotBank owns a fixed, ordered set of slots and remembers which of them is
// mirrored into the live buffer.
//
// A SlotBank is not safe for concurrent use; the Engine serializes access.
type SlotBank struct {
	slots  []Slot
	active int
}

// NewSlotBank creates n empty slots labelled A, B, C... Slots past Z are
// labelled by number.
func NewSlotBank(n int) *SlotBank {
	b := &SlotBank{slots: make([]Slot, max(n, 0)), active: NoSlot}
	for i := range b.slots {
		b.slots[i].Label = slotLabel(i)
	}

	return b
}

func slotLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}

	return strconv.Itoa(i + 1)
}

func (b *SlotBank) Len() int { return len(b.slots) }

func (b *SlotBank) valid(index int) bool { return index >= 0 && index < len(b.slots) }

// Load replaces the content of slot index with n samples of each channel of
// data. It reports whether the slot is the active one, in which case the
// caller is expected to mirror it into the live buffer again.
func (b *SlotBank) Load(index int, data [][]float32, n int, name string) (bool, error) {
	if !b.valid(index) {
		return false, fmt.Errorf("load slot %d: %w", index, ErrInvalidSlot)
	}
	if err := validateClip(data, n); err != nil {
		return false, fmt.Errorf("load slot %d: %w", index, err)
	}

	s := &b.slots[index]
	if s.buf == nil {
		s.buf = &Buffer{}
	}
	s.buf.Fill(data, n)
	s.Name = name

	return index == b.active, nil
}

// Activate copies slot index into live and marks it active. An out of range
// or empty slot leaves both the bank and live untouched.
func (b *SlotBank) Activate(index int, live *Buffer) error {
	if err := b.ready(index); err != nil {
		return fmt.Errorf("activate slot %d: %w", index, err)
	}

	live.CopyFrom(b.slots[index].buf)
	b.active = index

	return nil
}

func (b *SlotBank) ready(index int) error {
	if !b.valid(index) {
		return ErrInvalidSlot
	}
	if !b.slots[index].Loaded() {
		return ErrSlotEmpty
	}

	return nil
}

// Deactivate forgets the active slot, used when the live buffer stops
// mirroring it.
func (b *SlotBank) Deactivate() { b.active = NoSlot }

// ActiveIndex returns the active slot or NoSlot.
func (b *SlotBank) ActiveIndex() int { return b.active }

func (b *SlotBank) IsLoaded(index int) bool {
	return b.valid(index) && b.slots[index].Loaded()
}

// DisplayName returns the name given at load time, or "" for an empty or
// invalid slot.
func (b *SlotBank) DisplayName(index int) string {
	if !b.IsLoaded(index) {
		return ""
	}

	return b.slots[index].Name
}

func (b *SlotBank) Label(index int) string {
	if !b.valid(index) {
		return ""
	}

	return b.slots[index].Label
}

func (b *SlotBank) SampleCount(index int) int {
	if !b.valid(index) {
		return 0
	}

	return b.slots[index].SampleCount()
}

// Buffer exposes the stored buffer of a slot for read-only inspection.
func (b *SlotBank) Buffer(index int) *Buffer {
	if !b.valid(index) {
		return nil
	}

	return b.slots[index].buf
}

func validateClip(data [][]float32, n int) error {
	if n <= 0 || len(data) == 0 {
		return ErrEmptyClip
	}
	for ch, samples := range data {
		if len(samples) < n {
			return fmt.Errorf("channel %d has %d samples, want %d: %w", ch, len(samples), n, ErrShortChannel)
		}
	}

	return nil
}
