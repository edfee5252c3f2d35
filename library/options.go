// SPDX-License-Identifier: EPL-2.0

package library

import (
	"log/slog"
	"time"

	"github.com/ik5/scratchdeck/audio"
)

// Option configures a Library.
type Option func(*Library)

// WithRegistry sets the decoders used by List and Load.
func WithRegistry(reg *audio.Registry) Option {
	return func(l *Library) {
		l.reg = reg
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.log = logger
	}
}

// WithClock replaces time.Now when naming recordings.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}
