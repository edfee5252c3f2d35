// SPDX-License-Identifier: EPL-2.0

// Package scratchdeck is a scratch instrument: record your voice, then play
// it back at any signed speed the way a DJ drags a record, and blend it
// through a crossfader.
//
// The real-time core lives in the scratch package. This package ties the
// file side together: DefaultRegistry knows every bundled format, and
// LoadFile decodes a file, resamples it to the engine rate and matches the
// engine channel count, ready for scratch.Engine.LoadSlot:
//
//	reg := scratchdeck.DefaultRegistry()
//	clip, err := scratchdeck.LoadFile(reg, "break.wav", 48000, 2)
//	if err != nil {
//	    return err
//	}
//	err = engine.LoadSlot(0, clip.Channels, clip.Frames, "break")
//
// # Packages
//
//   - scratch: buffers, gain smoothing, recorder, player, slots, engine
//   - audio: Source and Decoder interfaces, resampler, channel mixer
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//   - library: recordings folder on disk
//   - control: turntable and crossfader input mapping
//   - device: PortAudio and oto callbacks around an engine
package scratchdeck
