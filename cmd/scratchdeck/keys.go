// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ik5/scratchdeck/control"
	"github.com/ik5/scratchdeck/library"
	"github.com/ik5/scratchdeck/scratch"
)

const (
	spinStep  = math.Pi / 16
	faderStep = 0.1

	keyCtrlC = 0x03
)

const help = `keys:
  r        record on/off        space  play/stop
  1-4      activate slot        s      save recording
  j / l    scratch back/forward k      let go of the record
  [ / ]    crossfader down/up   z / c  CUT / THRU on/off
  q        quit
`

// deck is the instrument the keyboard plays.
type deck struct {
	engine    *scratch.Engine
	turntable *control.Turntable
	fader     *control.Crossfader
	lib       *library.Library
	log       *slog.Logger

	cut  bool
	thru bool
}

// handleKey applies one key press and reports whether to quit. Failures
// are logged, not returned: a key that cannot act does nothing.
func (d *deck) handleKey(k byte) bool {
	var err error

	switch k {
	case 'q', keyCtrlC:
		return true
	case 'r':
		if d.engine.Recording() {
			d.engine.StopRecording()
		} else {
			err = d.engine.StartRecording()
		}
	case ' ':
		if d.engine.Playing() {
			d.engine.Stop()
		} else {
			err = d.engine.Play()
		}
	case '1', '2', '3', '4':
		err = d.engine.ActivateSlot(int(k - '1'))
	case 'j':
		d.turntable.Spin(-spinStep)
	case 'l':
		d.turntable.Spin(spinStep)
	case 'k':
		d.turntable.Release()
	case '[':
		d.fader.Nudge(-faderStep)
	case ']':
		d.fader.Nudge(faderStep)
	case 'z':
		d.cut = !d.cut
		d.fader.Cut(d.cut)
	case 'c':
		d.thru = !d.thru
		d.fader.Thru(d.thru)
	case 's':
		err = d.save()
	}

	if err != nil {
		d.log.Warn("key ignored", "key", string(k), "error", err)
	}

	return false
}

func (d *deck) save() error {
	take, err := d.engine.Take()
	if err != nil {
		return err
	}
	if d.lib == nil {
		return errors.New("no library")
	}
	if _, err := d.lib.Save(take); err != nil {
		return fmt.Errorf("save take: %w", err)
	}

	return nil
}

// status is the one-line summary shown under the key help.
func (d *deck) status() string {
	state := "stop"
	switch {
	case d.engine.Recording():
		state = "REC "
	case d.engine.Playing():
		state = "play"
	}

	slot := "-"
	if i := d.engine.ActiveSlot(); i != scratch.NoSlot {
		slot = d.engine.SlotLabel(i)
	}

	return fmt.Sprintf("%s  speed %+5.2f  fader %.2f  pos %.2f  slot %s  %5.1fs",
		state,
		d.engine.ScratchSpeed(),
		d.fader.Gain(),
		d.engine.PlaybackPosition(),
		slot,
		float64(d.engine.RecordedSamples())/max(d.engine.SampleRate(), 1))
}
