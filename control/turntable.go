// SPDX-License-Identifier: EPL-2.0

package control

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultSensitivity = 8.0
	DefaultMaxSpeed    = 4.0
	DefaultIdleSpin    = 0.05 // radians per Tick
)

// Deck is the part of the engine a turntable drives.
type Deck interface {
	SetScratchSpeed(rate float64)
	Playing() bool
}

// TurntableOption configures a Turntable.
type TurntableOption func(*Turntable)

// WithSensitivity sets the speed produced by half a turn per event.
func WithSensitivity(s float64) TurntableOption {
	return func(t *Turntable) {
		t.sensitivity = s
	}
}

// WithMaxSpeed bounds the scratch speed in both directions.
func WithMaxSpeed(s float64) TurntableOption {
	return func(t *Turntable) {
		t.maxSpeed = math.Abs(s)
	}
}

func WithIdleSpin(radians float64) TurntableOption {
	return func(t *Turntable) {
		t.idleSpin = radians
	}
}

// Turntable turns platter gestures into scratch speeds. Grabbing the
// platter holds the record still, moving it sets a speed proportional to
// the angle travelled since the previous event, and letting go hands the
// record back to the motor.
//
// The speed clamp lives here; the deck accepts any finite speed.
type Turntable struct {
	deck        Deck
	sensitivity float64
	maxSpeed    float64
	idleSpin    float64

	mtx       sync.Mutex
	dragging  bool
	lastAngle float64
	lastTime  time.Time
	rotation  float64
	speed     float64
}

func NewTurntable(deck Deck, opts ...TurntableOption) *Turntable {
	t := &Turntable{
		deck:        deck,
		sensitivity: DefaultSensitivity,
		maxSpeed:    DefaultMaxSpeed,
		idleSpin:    DefaultIdleSpin,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Press grabs the platter at angle and stops the record.
func (t *Turntable) Press(angle float64, at time.Time) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.dragging = true
	t.lastAngle = angle
	t.lastTime = at
	t.apply(0)
}

// Drag moves the grabbed platter to angle and returns the speed in effect.
// The speed only changes when at is later than the previous event.
func (t *Turntable) Drag(angle float64, at time.Time) float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if !t.dragging {
		return t.speed
	}

	diff := wrapAngle(angle - t.lastAngle)
	t.rotation += diff
	if at.After(t.lastTime) {
		t.apply(t.speedFor(diff))
	}
	t.lastAngle = angle
	t.lastTime = at

	return t.speed
}

// Spin is a drag of delta radians without a grab, for keyboard control. It
// holds until Release.
func (t *Turntable) Spin(delta float64) float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.dragging = true
	t.rotation += delta
	t.apply(t.speedFor(wrapAngle(delta)))

	return t.speed
}

// Release lets go: normal speed when the deck is playing, still otherwise.
func (t *Turntable) Release() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.dragging = false
	if t.deck.Playing() {
		t.apply(1)
	} else {
		t.apply(0)
	}
}

// Tick advances the idle rotation. Call it at the display rate.
func (t *Turntable) Tick() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if !t.dragging && t.deck.Playing() {
		t.rotation += t.idleSpin
	}
}

// Rotation is the platter angle in radians, unbounded.
func (t *Turntable) Rotation() float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.rotation
}

func (t *Turntable) Dragging() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.dragging
}

// Speed is the last speed sent to the deck.
func (t *Turntable) Speed() float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.speed
}

func (t *Turntable) speedFor(diff float64) float64 {
	s := diff / math.Pi * t.sensitivity

	return max(-t.maxSpeed, min(t.maxSpeed, s))
}

func (t *Turntable) apply(speed float64) {
	t.speed = speed
	t.deck.SetScratchSpeed(speed)
}

// wrapAngle folds a into [-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	switch {
	case a > math.Pi:
		a -= 2 * math.Pi
	case a < -math.Pi:
		a += 2 * math.Pi
	}

	return a
}
