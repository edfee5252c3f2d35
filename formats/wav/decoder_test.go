// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// createWAVFile builds a canonical 44 byte header file around raw PCM data.
func createWAVFile(sampleRate, channels, bitsPerSample, formatTag int, data []byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(formatTag))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

// pcmBytes lays out integer samples little-endian at the given depth.
func pcmBytes(bits int, values ...int) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		switch bits {
		case 8:
			buf.WriteByte(byte(v))
		case 16:
			binary.Write(buf, binary.LittleEndian, int16(v))
		case 24:
			buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16)})
		case 32:
			binary.Write(buf, binary.LittleEndian, int32(v))
		}
	}

	return buf.Bytes()
}

func readAll(t *testing.T, data []byte) []float32 {
	t.Helper()

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var out []float32
	buf := make([]float32, 3)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, 1, pcmBytes(16, 0, 100, -100, 200))

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}
	if src.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", src.Channels())
	}
	if src.BufSize() != defaultBufSize {
		t.Errorf("BufSize() = %d, want %d", src.BufSize(), defaultBufSize)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDecoder_StereoKeepsInterleaving(t *testing.T) {
	t.Parallel()

	data := createWAVFile(44100, 2, 16, 1, pcmBytes(16, 32767, -32767, 0, 16384))
	got := readAll(t, data)

	want := []float32{1, -1, 0, 0.5}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecoder_BitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bits   int
		values []int
		want   []float32
	}{
		{"8-bit unsigned", 8, []int{128, 255, 0, 192}, []float32{0, 1, -1, 0.5039}},
		{"16-bit", 16, []int{0, 32767, -32768, 16384}, []float32{0, 1, -1, 0.5}},
		{"24-bit", 24, []int{0, 8388607, -8388608, 4194304}, []float32{0, 1, -1, 0.5}},
		{"32-bit", 32, []int{0, math.MaxInt32, math.MinInt32, 1 << 30}, []float32{0, 1, -1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := readAll(t, createWAVFile(22050, 1, tt.bits, 1, pcmBytes(tt.bits, tt.values...)))
			if len(got) != len(tt.want) {
				t.Fatalf("read %d samples, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-3 {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("this is definitely not a wav file at all, just text"), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"float format", createWAVFile(8000, 1, 32, 3, pcmBytes(32, 0, 0)), ErrUnsupportedEncoding},
		{"12-bit", createWAVFile(8000, 1, 12, 1, []byte{0, 0, 0, 0}), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, 1, pcmBytes(16, 1, 2, 3))
	src, err := Decoder{}.Decode(struct{ io.Reader }{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 8)
	n, _ := src.ReadSamples(buf)
	if n != 3 {
		t.Errorf("ReadSamples() = %d, want 3", n)
	}
}

func TestSource_ReadSamples_EOFIsSticky(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, 1, pcmBytes(16, 1, 2))
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 2)
	if n, err := src.ReadSamples(buf); n != 2 || err != nil {
		t.Fatalf("first read = (%d, %v), want (2, nil)", n, err)
	}
	for range 2 {
		if n, err := src.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
			t.Errorf("read after end = (%d, %v), want (0, EOF)", n, err)
		}
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, 1, pcmBytes(16, 1))
	src, _ := Decoder{}.Decode(bytes.NewReader(data))

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_ReadSamples_GrowsBuffer(t *testing.T) {
	t.Parallel()

	values := make([]int, defaultBufSize*2)
	for i := range values {
		values[i] = i % 1000
	}
	data := createWAVFile(8000, 1, 16, 1, pcmBytes(16, values...))
	src, _ := Decoder{}.Decode(bytes.NewReader(data))

	buf := make([]float32, len(values))
	n, err := src.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(values) {
		t.Errorf("ReadSamples() = %d, want %d", n, len(values))
	}
	if src.BufSize() < len(values) {
		t.Errorf("BufSize() = %d, want at least %d", src.BufSize(), len(values))
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	values := make([]int, 44100)
	for i := range values {
		values[i] = int(16000 * math.Sin(float64(i)/10))
	}
	data := createWAVFile(44100, 1, 16, 1, pcmBytes(16, values...))
	buf := make([]float32, 1024)

	for b.Loop() {
		src, _ := Decoder{}.Decode(bytes.NewReader(data))
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
