// SPDX-License-Identifier: EPL-2.0

//go:build headless

package device

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Duplex drives the engine from a ticker with silent input, for machines
// without audio hardware.
type Duplex struct {
	cb     *Callback
	cfg    Config
	log    *slog.Logger
	in     []float32
	out    []float32
	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func OpenDuplex(e Engine, cfg Config, logger *slog.Logger) (*Duplex, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger.Info("headless stream open", "sample_rate", cfg.SampleRate, "frames", cfg.FramesPerBuffer)

	return &Duplex{
		cb:  NewCallback(e, cfg.InputChannels, cfg.OutputChannels, cfg.FramesPerBuffer),
		cfg: cfg,
		log: logger,
		in:  make([]float32, cfg.FramesPerBuffer*cfg.InputChannels),
		out: make([]float32, cfg.FramesPerBuffer*cfg.OutputChannels),
	}, nil
}

// OpenOutput is OpenDuplex without input.
func OpenOutput(e Engine, cfg Config, logger *slog.Logger) (*Duplex, error) {
	cfg.InputChannels = 0
	return OpenDuplex(e, cfg, logger)
}

func (d *Duplex) SampleRate() float64 { return d.cfg.SampleRate }

func (d *Duplex) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	period := time.Duration(float64(d.cfg.FramesPerBuffer) / d.cfg.SampleRate * float64(time.Second))

	go func() {
		defer close(d.done)

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.cb.Process(d.in, d.out)
			}
		}
	}()

	return nil
}

func (d *Duplex) Stop() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.cancel == nil {
		return nil
	}
	d.cancel()
	<-d.done
	d.cancel = nil

	return nil
}

func (d *Duplex) Close() error { return d.Stop() }
