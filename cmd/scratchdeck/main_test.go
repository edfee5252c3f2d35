// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/scratchdeck/control"
	"github.com/ik5/scratchdeck/internal/log"
	"github.com/ik5/scratchdeck/library"
	"github.com/ik5/scratchdeck/scratch"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig(nil, envMap(nil), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.sampleRate != 48000 || cfg.block != 256 || cfg.channels != 2 || cfg.input != 1 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.backend != backendPortAudio || cfg.logLevel != "info" || cfg.library != "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.maxDuration != 30*time.Second {
		t.Errorf("maxDuration = %v", cfg.maxDuration)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Parallel()

	env := envMap(map[string]string{
		"SCRATCHDECK_RATE":      "44100",
		"SCRATCHDECK_BLOCK":     "not a number",
		"SCRATCHDECK_LIBRARY":   "/tmp/takes",
		"SCRATCHDECK_LOG_LEVEL": "debug",
	})

	cfg, err := parseConfig([]string{"-block", "128", "-max", "5s", "a.wav", "b.mp3"}, env, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.sampleRate != 44100 {
		t.Errorf("sampleRate = %v, want 44100 from env", cfg.sampleRate)
	}
	if cfg.block != 128 {
		t.Errorf("block = %d, want flag value 128", cfg.block)
	}
	if cfg.library != "/tmp/takes" || cfg.logLevel != "debug" {
		t.Errorf("env strings not applied: %+v", cfg)
	}
	if cfg.maxDuration != 5*time.Second {
		t.Errorf("maxDuration = %v", cfg.maxDuration)
	}
	if len(cfg.slots) != 2 || cfg.slots[0] != "a.wav" || cfg.slots[1] != "b.mp3" {
		t.Errorf("slots = %v", cfg.slots)
	}
}

func TestParseConfigOtoDisablesInput(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]string{"-backend", "oto"}, envMap(nil), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.input != 0 {
		t.Errorf("input = %d, want 0 for oto", cfg.input)
	}
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown backend", []string{"-backend", "jack"}},
		{"zero rate", []string{"-rate", "0"}},
		{"negative block", []string{"-block", "-1"}},
		{"negative input", []string{"-input", "-2"}},
		{"zero max", []string{"-max", "0s"}},
		{"bad flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := parseConfig(tt.args, envMap(nil), &bytes.Buffer{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := parseConfig([]string{"-h"}, envMap(nil), &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("-backend")) {
		t.Errorf("usage does not list -backend:\n%s", out.String())
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "SCRATCHDECK_TEST_LOAD_ENV"

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=oto\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := loadEnv(path); err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	if got := os.Getenv(key); got != "oto" {
		t.Errorf("%s = %q, want oto", key, got)
	}

	if err := loadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file: %v", err)
	}
	if err := loadEnv(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"loops/break.wav":  "break",
		"vox.take.mp3":     "vox.take",
		"/abs/path/no_ext": "no_ext",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestDeck(t *testing.T) *deck {
	t.Helper()

	engine, err := scratch.New(
		scratch.WithChannels(1),
		scratch.WithMaxDuration(time.Second),
		scratch.WithLogger(log.Discard()),
	)
	if err != nil {
		t.Fatalf("scratch.New: %v", err)
	}
	if err := engine.Configure(1000, 64); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	lib, err := library.New(t.TempDir(), library.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}

	return &deck{
		engine:    engine,
		turntable: control.NewTurntable(engine),
		fader:     control.NewCrossfader(engine),
		lib:       lib,
		log:       log.Discard(),
	}
}

func TestHandleKeyQuit(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)
	for _, k := range []byte{'q', keyCtrlC} {
		if !d.handleKey(k) {
			t.Errorf("key %q did not quit", k)
		}
	}
	if d.handleKey('x') {
		t.Error("unbound key quit")
	}
}

func TestHandleKeyRecordPlaySave(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)

	// nothing recorded yet
	d.handleKey(' ')
	if d.engine.Playing() {
		t.Fatal("playing an empty buffer")
	}

	d.handleKey('r')
	if !d.engine.Recording() {
		t.Fatal("r did not start recording")
	}
	in := make([]float32, 64)
	for i := range in {
		in[i] = 0.25
	}
	d.engine.RecordBlock(in, len(in))
	d.handleKey('r')
	if d.engine.Recording() {
		t.Fatal("r did not stop recording")
	}
	if got := d.engine.RecordedSamples(); got != 64 {
		t.Fatalf("RecordedSamples = %d, want 64", got)
	}

	d.handleKey(' ')
	if !d.engine.Playing() {
		t.Error("space did not start playback")
	}
	d.handleKey(' ')
	if d.engine.Playing() {
		t.Error("space did not stop playback")
	}

	d.handleKey('s')
	entries, err := d.lib.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("library has %d entries after save, want 1", len(entries))
	}
}

func TestHandleKeySlots(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)

	d.handleKey('2')
	if got := d.engine.ActiveSlot(); got != scratch.NoSlot {
		t.Fatalf("empty slot activated: %d", got)
	}

	data := [][]float32{make([]float32, 100)}
	if err := d.engine.LoadSlot(1, data, 100, "beat"); err != nil {
		t.Fatalf("LoadSlot: %v", err)
	}
	d.handleKey('2')
	if got := d.engine.ActiveSlot(); got != 1 {
		t.Errorf("ActiveSlot = %d, want 1", got)
	}
	if got := d.engine.RecordedSamples(); got != 100 {
		t.Errorf("RecordedSamples = %d, want 100", got)
	}
}

func TestHandleKeyTurntable(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)

	d.handleKey('l')
	want := spinStep / math.Pi * control.DefaultSensitivity
	if got := d.engine.ScratchSpeed(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("speed after l = %v, want %v", got, want)
	}
	if !d.turntable.Dragging() {
		t.Error("spin should hold the platter")
	}

	d.handleKey('j')
	if got := d.engine.ScratchSpeed(); got >= 0 {
		t.Errorf("speed after j = %v, want negative", got)
	}

	d.handleKey('k')
	if d.turntable.Dragging() {
		t.Error("k did not release")
	}
	if got := d.engine.ScratchSpeed(); got != 0 {
		t.Errorf("speed after release while stopped = %v, want 0", got)
	}
}

func TestHandleKeyCrossfader(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)

	d.handleKey(']')
	if got := d.fader.Position(); got < 0.6-1e-9 || got > 0.6+1e-9 {
		t.Errorf("position after ] = %v, want 0.6", got)
	}
	d.handleKey('[')
	d.handleKey('[')
	if got := d.fader.Position(); got < 0.4-1e-9 || got > 0.4+1e-9 {
		t.Errorf("position after [[ = %v, want 0.4", got)
	}

	d.handleKey('z')
	if got := d.engine.CrossfaderGain(); got != 0 {
		t.Errorf("gain with CUT = %v, want 0", got)
	}
	d.handleKey('c')
	if got := d.engine.CrossfaderGain(); got != 0 {
		t.Errorf("CUT must win over THRU, gain = %v", got)
	}
	d.handleKey('z')
	if got := d.engine.CrossfaderGain(); got != 1 {
		t.Errorf("gain with THRU = %v, want 1", got)
	}
	d.handleKey('c')
	if got := d.engine.CrossfaderGain(); got < 0.4-1e-6 || got > 0.4+1e-6 {
		t.Errorf("gain after release = %v, want 0.4", got)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t)
	if got := d.status(); !bytes.Contains([]byte(got), []byte("stop")) {
		t.Errorf("status = %q, want stop state", got)
	}

	d.handleKey('r')
	if got := d.status(); !bytes.Contains([]byte(got), []byte("REC")) {
		t.Errorf("status = %q, want REC state", got)
	}
}
