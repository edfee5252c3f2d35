// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo at the stream's sample rate;
// mono files come out as dual mono. Samples are float32 in [-1, 1].
//
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
