// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	backendPortAudio = "portaudio"
	backendOto       = "oto"
)

type config struct {
	sampleRate  float64
	block       int
	channels    int
	input       int
	maxDuration time.Duration
	library     string
	logLevel    string
	backend     string
	load        string
	slots       []string
}

// loadEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// parseConfig reads flags from args. Flag defaults come from SCRATCHDECK_*
// variables looked up through getenv. Positional arguments are files for
// slots A, B and on.
func parseConfig(args []string, getenv func(string) string, out io.Writer) (config, error) {
	var cfg config

	flags := flag.NewFlagSet("scratchdeck", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Float64Var(&cfg.sampleRate, "rate", envFloat(getenv, "SCRATCHDECK_RATE", 48000), "device sample rate in Hz")
	flags.IntVar(&cfg.block, "block", envInt(getenv, "SCRATCHDECK_BLOCK", 256), "frames per audio callback")
	flags.IntVar(&cfg.channels, "channels", 2, "engine and output channels")
	flags.IntVar(&cfg.input, "input", 1, "microphone channels, 0 to disable recording")
	flags.DurationVar(&cfg.maxDuration, "max", 30*time.Second, "longest recording")
	flags.StringVar(&cfg.library, "library", getenv("SCRATCHDECK_LIBRARY"), "recordings folder (default: user config dir)")
	flags.StringVar(&cfg.logLevel, "log-level", envString(getenv, "SCRATCHDECK_LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.StringVar(&cfg.backend, "backend", envString(getenv, "SCRATCHDECK_BACKEND", backendPortAudio), "portaudio or oto")
	flags.StringVar(&cfg.load, "load", "", "file to load into the live buffer")

	if err := flags.Parse(args); err != nil {
		return config{}, err
	}
	cfg.slots = flags.Args()

	switch {
	case cfg.backend != backendPortAudio && cfg.backend != backendOto:
		return config{}, fmt.Errorf("unknown backend %q", cfg.backend)
	case cfg.sampleRate <= 0 || cfg.block <= 0 || cfg.channels <= 0 || cfg.input < 0:
		return config{}, errors.New("rate, block and channels must be positive")
	case cfg.maxDuration <= 0:
		return config{}, errors.New("max must be positive")
	}
	if cfg.backend == backendOto {
		// oto cannot capture
		cfg.input = 0
	}

	return cfg, nil
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}

	return def
}

func envInt(getenv func(string) string, key string, def int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}

	return def
}

func envFloat(getenv func(string) string, key string, def float64) float64 {
	if v, err := strconv.ParseFloat(getenv(key), 64); err == nil {
		return v
	}

	return def
}
