// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// mockAiffReader serves integer samples the way aiff.Decoder does.
type mockAiffReader struct {
	samples []int
	err     error
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.samples)
	m.samples = m.samples[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := map[string][]byte{
		"empty":   nil,
		"garbage": []byte("This is not AIFF data"),
		"wav":     []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want %v", err, ErrNotAiffFile)
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{}, 44100, 2, 16)

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() != defaultBufSize {
		t.Errorf("BufSize() = %d, want %d", src.BufSize(), defaultBufSize)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{samples: []int{0, 16384, -16384, 32767, -32768}}, 44100, 1, 16)

	buf := make([]float32, 3)
	n, err := src.ReadSamples(buf)
	if n != 3 || err != nil {
		t.Fatalf("first read = (%d, %v), want (3, nil)", n, err)
	}
	n, err = src.ReadSamples(buf)
	if n != 2 || err != nil {
		t.Fatalf("second read = (%d, %v), want (2, nil)", n, err)
	}
	if buf[0] != 1 || buf[1] != -1 {
		t.Errorf("second read = %v, want [1 -1]", buf[:2])
	}
	n, err = src.ReadSamples(buf)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("read at end = (%d, %v), want (0, EOF)", n, err)
	}
	if _, err := src.ReadSamples(buf); !errors.Is(err, io.EOF) {
		t.Errorf("read after end error = %v, want EOF", err)
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{samples: []int{1}}, 8000, 1, 16)
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{err: io.ErrUnexpectedEOF}, 8000, 1, 16)
	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestSource_ReadSamples_GrowsBuffer(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{samples: make([]int, defaultBufSize*2)}, 8000, 1, 16)
	n, _ := src.ReadSamples(make([]float32, defaultBufSize*2))
	if n != defaultBufSize*2 {
		t.Errorf("ReadSamples() = %d, want %d", n, defaultBufSize*2)
	}
	if src.BufSize() != defaultBufSize*2 {
		t.Errorf("BufSize() = %d, want %d", src.BufSize(), defaultBufSize*2)
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		input    int
		expected float32
	}{
		{"8-bit max", 8, 127, 1},
		{"8-bit min", 8, -128, -1},
		{"8-bit half", 8, 64, 64.0 / 127},
		{"16-bit max", 16, 32767, 1},
		{"16-bit min", 16, -32768, -1},
		{"24-bit half", 24, 4194304, 0.5},
		{"32-bit max", 32, math.MaxInt32, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockAiffReader{samples: []int{tt.input}}, 44100, 1, tt.bitDepth)

			dst := make([]float32, 1)
			if n, _ := src.ReadSamples(dst); n != 1 {
				t.Fatalf("ReadSamples() n = %d, want 1", n)
			}
			if math.Abs(float64(dst[0]-tt.expected)) > 1e-3 {
				t.Errorf("ReadSamples() dst[0] = %f, want ~%f", dst[0], tt.expected)
			}
		})
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 44100)
	buf := make([]float32, 1024)

	for b.Loop() {
		src := newSource(&mockAiffReader{samples: samples}, 44100, 1, 16)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
