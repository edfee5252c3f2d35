// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile indicates the input has no RIFF/WAVE header or no
	// usable fmt chunk.
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedEncoding indicates a compressed or floating point WAV.
	ErrUnsupportedEncoding = errors.New("only integer PCM WAV is supported")

	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrNoChannels          = errors.New("no channels to encode")
)
