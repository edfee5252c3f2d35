// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Duplex is a PortAudio stream on the default input and output devices.
type Duplex struct {
	stream *portaudio.Stream
	cb     *Callback
	log    *slog.Logger

	mtx     sync.Mutex
	started bool
	closed  bool
}

// OpenDuplex opens the default devices and wires them to e. With
// InputChannels 0 the stream is output only.
func OpenDuplex(e Engine, cfg Config, logger *slog.Logger) (*Duplex, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	cb := NewCallback(e, cfg.InputChannels, cfg.OutputChannels, cfg.FramesPerBuffer)

	var stream *portaudio.Stream
	var err error
	if cfg.InputChannels > 0 {
		stream, err = portaudio.OpenDefaultStream(cfg.InputChannels, cfg.OutputChannels,
			cfg.SampleRate, cfg.FramesPerBuffer, cb.Process)
	} else {
		stream, err = portaudio.OpenDefaultStream(0, cfg.OutputChannels,
			cfg.SampleRate, cfg.FramesPerBuffer, cb.Render)
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open portaudio stream: %w", err)
	}

	d := &Duplex{stream: stream, cb: cb, log: logger}
	if info := stream.Info(); info != nil {
		logger.Info("portaudio stream open",
			"sample_rate", info.SampleRate,
			"input_latency", info.InputLatency,
			"output_latency", info.OutputLatency,
			"frames", cfg.FramesPerBuffer)
	}

	return d, nil
}

// SampleRate is the rate the device actually runs at.
func (d *Duplex) SampleRate() float64 {
	if info := d.stream.Info(); info != nil {
		return info.SampleRate
	}

	return 0
}

func (d *Duplex) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.started {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("start portaudio stream: %w", err)
	}
	d.started = true

	return nil
}

func (d *Duplex) Stop() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if !d.started {
		return nil
	}
	d.started = false
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("stop portaudio stream: %w", err)
	}

	return nil
}

// Close stops the stream and shuts PortAudio down.
func (d *Duplex) Close() error {
	if err := d.Stop(); err != nil {
		d.log.Warn("stopping stream before close", "error", err)
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.stream.Close(); err != nil {
		portaudio.Terminate()
		return fmt.Errorf("close portaudio stream: %w", err)
	}

	return portaudio.Terminate()
}
