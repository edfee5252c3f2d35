// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives used to bring audio files
// into the scratch engine.
//
// The package contains:
//   - Source interface for interleaved PCM streams
//   - Resampler for sample rate conversion
//   - ChannelMixer for matching the engine channel count
//   - ReadClip for collecting a stream into per-channel slices
//   - Registry for looking decoders up by format or file extension
//
// # Source Interface
//
// Every decoder and processor implements Source, so they chain:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// # Loading a File
//
// A slot wants samples at the engine rate, with the engine channel count,
// one slice per channel:
//
//	src, _ := decoder.Decode(file)
//	resampled := audio.NewResampler(src, 48000)
//	mixed, _ := audio.NewChannelMixer(resampled, 2)
//	clip, err := audio.ReadClip(mixed, 4096)
//	if err != nil {
//	    return err
//	}
//	engine.LoadSlot(0, clip.Channels, clip.Frames, "loop.wav")
//
// The Resampler uses Catmull-Rom cubic interpolation and reads straight
// through when the rates already match.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, ".wav", ".wave")
//	format, decoder, ok := registry.ForPath("take.WAV")
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. 0.0 is silence.
//
// # Error Handling
//
// ReadSamples returns io.EOF, possibly together with the last samples, when
// the stream is finished:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // use buf[:n] first
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
