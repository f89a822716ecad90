package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrTrackStarted is returned when a track is started a second time.
var ErrTrackStarted = errors.New("audio track already started")

// Track is the mixed narration exposed to the encoder as a WAV file.
// It can be started exactly once.
type Track struct {
	mu      sync.Mutex
	mix     *Buffer
	dir     string
	path    string
	started bool
}

func NewTrack(mix *Buffer, dir string) *Track {
	return &Track{mix: mix, dir: dir}
}

// Start writes the mix to a temporary WAV file and returns its path.
func (t *Track) Start() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return "", ErrTrackStarted
	}
	t.started = true

	f, err := os.CreateTemp(t.dir, "picreel-mix-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating track file: %w", err)
	}
	if err := WriteWAV(f, t.mix); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing track file: %w", err)
	}
	t.path = f.Name()
	return t.path, nil
}

// Path returns the WAV file path once started.
func (t *Track) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// DurationMs is the length of the mix.
func (t *Track) DurationMs() int {
	return t.mix.DurationMs()
}

// Stop removes the temporary file. Safe to call more than once.
func (t *Track) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path == "" {
		return nil
	}
	err := os.Remove(t.path)
	t.path = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
