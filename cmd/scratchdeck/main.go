// SPDX-License-Identifier: EPL-2.0

// Command scratchdeck records the microphone and lets you scratch the take
// from the keyboard.
//
//	scratchdeck [flags] [slot files...]
//
// Flags default to SCRATCHDECK_RATE, SCRATCHDECK_BLOCK, SCRATCHDECK_LIBRARY,
// SCRATCHDECK_LOG_LEVEL and SCRATCHDECK_BACKEND, read from the environment
// or from a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ik5/scratchdeck/control"
	"github.com/ik5/scratchdeck/device"
	"github.com/ik5/scratchdeck/internal/log"
	"github.com/ik5/scratchdeck/library"
	"github.com/ik5/scratchdeck/scratch"
)

const (
	pollInterval   = 20 * time.Millisecond
	statusInterval = 100 * time.Millisecond
)

type stream interface {
	device.Stream
	SampleRate() float64
}

func main() {
	if err := loadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log.Init(cfg.logLevel)

	if err := run(cfg); err != nil {
		log.Error("scratchdeck failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	logger := log.L()

	out := newConsole(os.Stdout)
	engine, err := scratch.New(
		scratch.WithChannels(cfg.channels),
		scratch.WithMaxDuration(cfg.maxDuration),
		scratch.WithLogger(logger),
		scratch.WithObserver(func(ev scratch.Event) {
			out.event(ev)
		}),
	)
	if err != nil {
		return err
	}

	lib, err := library.New(cfg.library, library.WithLogger(logger))
	if err != nil {
		return err
	}

	devCfg := device.Config{
		SampleRate:      cfg.sampleRate,
		FramesPerBuffer: cfg.block,
		InputChannels:   cfg.input,
		OutputChannels:  cfg.channels,
	}
	var dev stream
	switch cfg.backend {
	case backendOto:
		dev, err = device.OpenOutput(engine, devCfg, logger)
	default:
		dev, err = device.OpenDuplex(engine, devCfg, logger)
	}
	if err != nil {
		return err
	}
	defer dev.Close()

	// the device may not run at the requested rate
	if err := engine.Configure(dev.SampleRate(), cfg.block); err != nil {
		return err
	}
	rate := int(engine.SampleRate())
	loadFiles(engine, lib, cfg, rate)

	d := &deck{
		engine:    engine,
		turntable: control.NewTurntable(engine),
		fader:     control.NewCrossfader(engine),
		lib:       lib,
		log:       logger,
	}

	if err := dev.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go engine.Watch(ctx, pollInterval)
	go out.statusLoop(ctx, d)

	return readKeys(ctx, d, out)
}

// loadFiles fills the live buffer and the slots from the command line.
// Files that fail to load are logged and skipped.
func loadFiles(engine *scratch.Engine, lib *library.Library, cfg config, rate int) {
	if cfg.load != "" {
		clip, err := lib.Load(absPath(cfg.load), rate, cfg.channels)
		if err == nil {
			err = engine.LoadBuffer(clip.Channels, clip.Frames, displayName(cfg.load))
		}
		if err != nil {
			log.Warn("live buffer not loaded", "path", cfg.load, "error", err)
		}
	}

	for i, path := range cfg.slots {
		if i >= engine.SlotCount() {
			log.Warn("more files than slots", "ignored", cfg.slots[i:])
			break
		}
		clip, err := lib.Load(absPath(path), rate, cfg.channels)
		if err == nil {
			err = engine.LoadSlot(i, clip.Channels, clip.Frames, displayName(path))
		}
		if err != nil {
			log.Warn("slot not loaded", "slot", engine.SlotLabel(i), "path", path, "error", err)
		}
	}
}

// absPath keeps command line paths relative to the working directory
// rather than the library folder.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

func displayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readKeys puts the terminal in raw mode and feeds key presses to d until
// quit or ctx is done.
func readKeys(ctx context.Context, d *deck, out *console) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		out.println("stdin is not a terminal, running until interrupted")
		<-ctx.Done()
		return nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw terminal: %w", err)
	}
	defer term.Restore(fd, old)

	out.print(strings.ReplaceAll(help, "\n", "\r\n"))

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok || d.handleKey(k) {
				out.print("\r\n")
				return nil
			}
		}
	}
}

// console serializes writes from the key loop, the status ticker and
// engine observers.
type console struct {
	mtx sync.Mutex
	w   *os.File
}

func newConsole(w *os.File) *console { return &console{w: w} }

func (c *console) print(s string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	fmt.Fprint(c.w, s)
}

func (c *console) println(s string) { c.print(s + "\r\n") }

func (c *console) event(ev scratch.Event) {
	c.println("\r\033[K* " + ev.Kind.String())
}

func (c *console) statusLoop(ctx context.Context, d *deck) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.turntable.Tick()
			c.print("\r\033[K" + d.status())
		}
	}
}
