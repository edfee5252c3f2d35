// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output plays an engine through oto. oto has no capture side, so the
// engine can scratch loaded slots but not record.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	pcm    *pcmReader
	rate   float64
	log    *slog.Logger

	mtx     sync.Mutex
	started bool
}

// OpenOutput creates the oto context. Only one can exist per process.
func OpenOutput(e Engine, cfg Config, logger *slog.Logger) (*Output, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	latency := time.Duration(float64(cfg.FramesPerBuffer) / cfg.SampleRate * float64(time.Second))
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(math.Round(cfg.SampleRate)),
		ChannelCount: cfg.OutputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	cb := NewCallback(e, 0, cfg.OutputChannels, cfg.FramesPerBuffer)
	o := &Output{
		ctx:  ctx,
		pcm:  newPCMReader(cb, cfg.OutputChannels, cfg.FramesPerBuffer),
		rate: cfg.SampleRate,
		log:  logger,
	}
	o.player = ctx.NewPlayer(o)
	logger.Info("oto output open",
		"sample_rate", cfg.SampleRate,
		"channels", cfg.OutputChannels,
		"buffer", latency)

	return o, nil
}

func (o *Output) SampleRate() float64 { return o.rate }

// Read feeds oto's audio goroutine.
func (o *Output) Read(p []byte) (int, error) { return o.pcm.Read(p) }

func (o *Output) Start() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if !o.started {
		o.player.Play()
		o.started = true
	}

	return o.player.Err()
}

func (o *Output) Stop() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.started {
		o.player.Pause()
		o.started = false
	}

	return nil
}

func (o *Output) Close() error {
	if err := o.Stop(); err != nil {
		return err
	}

	if err := o.player.Close(); err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}

	return nil
}
