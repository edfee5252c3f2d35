// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with
// github.com/jfreymuth/oggvorbis.
//
// Samples come out interleaved in the stream's own channel order, already
// float32 in [-1, 1]. Reads are trimmed to whole frames.
package vorbis
