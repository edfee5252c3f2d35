// SPDX-License-Identifier: EPL-2.0

package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/scratchdeck"
	"github.com/ik5/scratchdeck/audio"
	"github.com/ik5/scratchdeck/formats/wav"
	"github.com/ik5/scratchdeck/internal/log"
	"github.com/ik5/scratchdeck/scratch"
)

const (
	appDir     = "ScratchMyVoice"
	libraryDir = "Library"

	// recordings are written as 16-bit PCM
	bitDepth = 16

	namePrefix = "Recording_"
	nameLayout = "20060102_150405"
)

// Library is a folder of audio files: saved recordings plus anything the
// user drops in that a registered decoder can read.
type Library struct {
	dir string
	reg *audio.Registry
	log *slog.Logger
	now func() time.Time
}

// Entry is one audio file in the library.
type Entry struct {
	Name     string // file name without extension
	Path     string
	Size     int64
	Modified time.Time
}

// DefaultDir returns <user config dir>/ScratchMyVoice/Library.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("library dir: %w", err)
	}

	return filepath.Join(base, appDir, libraryDir), nil
}

// New opens the library at dir, creating it when missing. An empty dir
// means DefaultDir.
func New(dir string, opts ...Option) (*Library, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library: %w", err)
	}

	l := &Library{
		dir: dir,
		log: log.L(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.reg == nil {
		l.reg = scratchdeck.DefaultRegistry()
	}
	l.log = l.log.With("library", dir)

	return l, nil
}

func (l *Library) Dir() string { return l.dir }

// Save writes take as a 16-bit WAV named Recording_YYYYMMDD_HHMMSS.wav. When
// that name is taken, a short random suffix is added. It returns the path.
func (l *Library) Save(take scratch.Take) (string, error) {
	if take.Samples <= 0 || len(take.Channels) == 0 {
		return "", ErrEmptyTake
	}

	channels := make([][]float32, len(take.Channels))
	for ch, samples := range take.Channels {
		channels[ch] = samples[:min(take.Samples, len(samples))]
	}

	f, path, err := l.create(namePrefix + l.now().Format(nameLayout))
	if err != nil {
		return "", err
	}

	if err := wav.Encode(f, take.SampleRate, bitDepth, channels); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	l.log.Info("recording saved",
		"path", path,
		"samples", take.Samples,
		"channels", len(channels),
		"sample_rate", take.SampleRate)

	return path, nil
}

// create opens a new file for base, falling back to base_<suffix> when
// base.wav already exists.
func (l *Library) create(base string) (*os.File, string, error) {
	path := filepath.Join(l.dir, base+".wav")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		return f, path, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return nil, "", fmt.Errorf("save: %w", err)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	path = filepath.Join(l.dir, base+"_"+suffix+".wav")
	l.log.Debug("recording name taken", "base", base, "path", path)

	f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("save: %w", err)
	}

	return f, path, nil
}

// List returns the library's audio files sorted by file name. Files no
// registered decoder claims are skipped, as are directories.
func (l *Library) List() ([]Entry, error) {
	dirents, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() || !l.supported(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entries = append(entries, Entry{
			Name:     strings.TrimSuffix(de.Name(), filepath.Ext(de.Name())),
			Path:     filepath.Join(l.dir, de.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(filepath.Base(a.Path), filepath.Base(b.Path))
	})

	return entries, nil
}

func (l *Library) supported(name string) bool {
	_, _, ok := l.reg.ForPath(name)
	return ok
}

// Load decodes path and converts it to sampleRate and channels. A relative
// path is taken from the library folder.
func (l *Library) Load(path string, sampleRate, channels int) (audio.Clip, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	if !l.supported(path) {
		return audio.Clip{}, fmt.Errorf("load %s: %w", path, ErrNotInLibrary)
	}

	clip, err := scratchdeck.LoadFile(l.reg, path, sampleRate, channels)
	if err != nil {
		return audio.Clip{}, err
	}

	l.log.Debug("file loaded",
		"path", path,
		"frames", clip.Frames,
		"seconds", clip.Duration())

	return clip, nil
}
