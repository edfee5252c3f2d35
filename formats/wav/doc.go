// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// Decoder accepts 8, 16, 24 and 32 bit files with any channel count and
// sample rate, and yields interleaved float32 samples in [-1, 1]. Chunks
// other than fmt and data are skipped. Inputs that cannot seek are read
// into memory first.
//
// Encode writes one slice per channel:
//
//	f, _ := os.Create("take.wav")
//	defer f.Close()
//	err := wav.Encode(f, 48000, 16, [][]float32{left, right})
//
// Compressed and IEEE float WAV files are rejected with
// ErrUnsupportedEncoding.
package wav
