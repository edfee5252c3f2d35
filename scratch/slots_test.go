// SPDX-License-Identifier: EPL-2.0

package scratch

import (
	"errors"
	"testing"
)

func TestSlotBank_Labels(t *testing.T) {
	t.Parallel()

	b := NewSlotBank(DefaultSlots)
	want := []string{"A", "B", "C", "D"}

	if b.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(want))
	}
	for i, w := range want {
		if got := b.Label(i); got != w {
			t.Errorf("Label(%d) = %q, want %q", i, got, w)
		}
	}
	if b.Label(4) != "" {
		t.Errorf("Label(4) = %q, want empty", b.Label(4))
	}

	big := NewSlotBank(28)
	if got := big.Label(26); got != "27" {
		t.Errorf("Label(26) = %q, want %q", got, "27")
	}
}

func TestSlotBank_InitialState(t *testing.T) {
	t.Parallel()

	b := NewSlotBank(DefaultSlots)

	if b.ActiveIndex() != NoSlot {
		t.Errorf("ActiveIndex() = %d, want NoSlot", b.ActiveIndex())
	}
	for i := range b.Len() {
		if b.IsLoaded(i) {
			t.Errorf("IsLoaded(%d) = true, want false", i)
		}
		if b.DisplayName(i) != "" {
			t.Errorf("DisplayName(%d) = %q, want empty", i, b.DisplayName(i))
		}
	}
}

func TestSlotBank_Load(t *testing.T) {
	t.Parallel()

	b := NewSlotBank(DefaultSlots)

	active, err := b.Load(1, [][]float32{{1, 2, 3}, {4, 5, 6}}, 3, "kick.wav")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if active {
		t.Error("Load() active = true, want false")
	}
	if !b.IsLoaded(1) {
		t.Error("IsLoaded(1) = false, want true")
	}
	if b.DisplayName(1) != "kick.wav" {
		t.Errorf("DisplayName(1) = %q, want %q", b.DisplayName(1), "kick.wav")
	}
	if b.SampleCount(1) != 3 {
		t.Errorf("SampleCount(1) = %d, want 3", b.SampleCount(1))
	}
	if b.Buffer(1).Channels() != 2 {
		t.Errorf("Buffer(1).Channels() = %d, want 2", b.Buffer(1).Channels())
	}

	if _, err := b.Load(1, [][]float32{{7}}, 1, "hat.wav"); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if b.SampleCount(1) != 1 || b.DisplayName(1) != "hat.wav" {
		t.Errorf("after reload: %d samples named %q", b.SampleCount(1), b.DisplayName(1))
	}
}

func TestSlotBank_LoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		index int
		data  [][]float32
		n     int
		want  error
	}{
		{name: "negative index", index: -1, data: [][]float32{{1}}, n: 1, want: ErrInvalidSlot},
		{name: "index past end", index: 4, data: [][]float32{{1}}, n: 1, want: ErrInvalidSlot},
		{name: "zero samples", index: 0, data: [][]float32{{1}}, n: 0, want: ErrEmptyClip},
		{name: "no channels", index: 0, data: nil, n: 1, want: ErrEmptyClip},
		{name: "short channel", index: 0, data: [][]float32{{1, 2}, {1}}, n: 2, want: ErrShortChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewSlotBank(DefaultSlots)
			_, err := b.Load(tt.index, tt.data, tt.n, "x")
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
			if b.IsLoaded(0) {
				t.Error("failed Load() left slot 0 loaded")
			}
		})
	}
}

func TestSlotBank_Activate(t *testing.T) {
	t.Parallel()

	b := NewSlotBank(DefaultSlots)
	b.Load(2, [][]float32{{0.1, 0.2, 0.3}}, 3, "vox")

	live := NewBuffer(2, 10)
	if err := b.Activate(2, live); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if b.ActiveIndex() != 2 {
		t.Errorf("ActiveIndex() = %d, want 2", b.ActiveIndex())
	}
	if live.WritePosition() != 3 || live.Channels() != 1 {
		t.Fatalf("live shape = %d channels extent %d, want 1 channel extent 3",
			live.Channels(), live.WritePosition())
	}

	live.Channel(0)[0] = 42
	if got := b.Buffer(2).Sample(0, 0); got != 0.1 {
		t.Errorf("slot sample after live write = %v, want 0.1", got)
	}

	active, _ := b.Load(2, [][]float32{{1}}, 1, "vox2")
	if !active {
		t.Error("Load() into the active slot reported inactive")
	}
}

func TestSlotBank_ActivateRejects(t *testing.T) {
	t.Parallel()

	b := NewSlotBank(DefaultSlots)
	b.Load(0, [][]float32{{1, 2}}, 2, "a")
	live := NewBuffer(1, 4)
	if err := b.Activate(0, live); err != nil {
		t.Fatalf("Activate(0) error = %v", err)
	}

	tests := []struct {
		index int
		want  error
	}{
		{index: 1, want: ErrSlotEmpty},
		{index: 7, want: ErrInvalidSlot},
		{index: NoSlot, want: ErrInvalidSlot},
	}

	for _, tt := range tests {
		if err := b.Activate(tt.index, live); !errors.Is(err, tt.want) {
			t.Errorf("Activate(%d) error = %v, want %v", tt.index, err, tt.want)
		}
	}

	if b.ActiveIndex() != 0 {
		t.Errorf("ActiveIndex() = %d, want 0", b.ActiveIndex())
	}
	if live.WritePosition() != 2 {
		t.Errorf("live WritePosition() = %d, want 2", live.WritePosition())
	}
}
