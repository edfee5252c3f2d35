// SPDX-License-Identifier: EPL-2.0

package scratchdeck

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/scratchdeck/audio"
	"github.com/ik5/scratchdeck/formats/aiff"
	"github.com/ik5/scratchdeck/formats/mp3"
	"github.com/ik5/scratchdeck/formats/vorbis"
	"github.com/ik5/scratchdeck/formats/wav"
)

// DefaultRegistry returns a registry holding every bundled decoder, keyed by
// format name and file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, ".wav", ".wave")
	reg.Register("mp3", mp3.Decoder{}, ".mp3")
	reg.Register("ogg", vorbis.Decoder{}, ".ogg", ".oga")
	reg.Register("aiff", aiff.Decoder{}, ".aiff", ".aif")

	return reg
}

// Decode converts src to sampleRate and channels and collects it into a
// Clip with one slice per channel. The pipeline is:
//
//	src -> Resampler (when rates differ) -> ChannelMixer -> ReadClip
//
// src is closed when Decode returns.
func Decode(src audio.Source, sampleRate, channels int) (audio.Clip, error) {
	if sampleRate <= 0 {
		src.Close()
		return audio.Clip{}, fmt.Errorf("decode to %d Hz: %w", sampleRate, audio.ErrInvalidRate)
	}

	var stage audio.Source = src
	if src.SampleRate() != sampleRate {
		stage = audio.NewResampler(stage, sampleRate)
	}

	mixer, err := audio.NewChannelMixer(stage, channels)
	if err != nil {
		src.Close()
		return audio.Clip{}, err
	}
	defer mixer.Close()

	return audio.ReadClip(mixer, 0)
}

// DecodeReader decodes r with the decoder registered under format.
func DecodeReader(reg *audio.Registry, r io.Reader, format string, sampleRate, channels int) (audio.Clip, error) {
	dec, ok := reg.Get(format)
	if !ok {
		return audio.Clip{}, fmt.Errorf("format %q: %w", format, audio.ErrUnknownFormat)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("decode %s: %w", format, err)
	}

	return Decode(src, sampleRate, channels)
}

// LoadFile decodes the file at path, choosing the decoder from its
// extension, and converts it to sampleRate and channels.
func LoadFile(reg *audio.Registry, path string, sampleRate, channels int) (audio.Clip, error) {
	format, _, ok := reg.ForPath(path)
	if !ok {
		return audio.Clip{}, fmt.Errorf("load %s: %w", path, audio.ErrUnknownFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("load: %w", err)
	}
	defer f.Close()

	clip, err := DecodeReader(reg, f, format, sampleRate, channels)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("load %s: %w", path, err)
	}

	return clip, nil
}
