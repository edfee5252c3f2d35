// SPDX-License-Identifier: EPL-2.0

package scratch

import "errors"

var (
	ErrInvalidSlot   = errors.New("slot index out of range")
	ErrSlotEmpty     = errors.New("slot has no audio loaded")
	ErrNoAudio       = errors.New("live buffer has no recorded audio")
	ErrRecording     = errors.New("operation not allowed while recording")
	ErrNotConfigured = errors.New("engine is not configured")
	ErrEmptyClip     = errors.New("clip has no samples")
	ErrInvalidConfig = errors.New("invalid engine configuration")
	ErrShortChannel  = errors.New("channel shorter than sample count")
)
