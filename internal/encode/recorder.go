package encode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/bilgisen/picreel/internal/audio"
)

// ErrEmptyRecording means the encoder finished without producing any bytes.
var ErrEmptyRecording = errors.New("recording produced no data, generation failed, retry")

// State is the recorder lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateDraining
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateDraining:
		return "draining"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Blob is the finished recording.
type Blob struct {
	Data     []byte
	MimeType string
	Format   Format
}

// Recorder moves Idle -> Recording -> Draining -> Finalized, or to Failed
// from any non-terminal state. It is the frame sink of the render surface.
type Recorder struct {
	mu      sync.Mutex
	state   State
	backend Backend
	format  Format
	profile Profile
	track   *audio.Track
	drain   time.Duration

	stream Stream
	chunks [][]byte
	size   int
}

func NewRecorder(backend Backend, format Format, profile Profile, track *audio.Track, drain time.Duration) *Recorder {
	return &Recorder{
		backend: backend,
		format:  format,
		profile: profile,
		track:   track,
		drain:   drain,
	}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) transition(from, to State) error {
	if r.state != from {
		return fmt.Errorf("recorder: cannot move to %s from %s", to, r.state)
	}
	r.state = to
	return nil
}

func (r *Recorder) onChunk(chunk []byte) {
	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.size += len(chunk)
	r.mu.Unlock()
}

// Start begins the audio track (once) and opens the encoder.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if err := r.transition(StateIdle, StateRecording); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	session := Session{Format: r.format, Profile: r.profile, OnChunk: r.onChunk}
	if r.format.HasAudio() && r.track != nil {
		path, err := r.track.Start()
		if err != nil {
			r.fail()
			return fmt.Errorf("starting audio track: %w", err)
		}
		session.AudioPath = path
	}

	stream, err := r.backend.Open(ctx, session)
	if err != nil {
		r.fail()
		return fmt.Errorf("opening %s encoder: %w", r.backend.Name(), err)
	}

	r.mu.Lock()
	r.stream = stream
	r.mu.Unlock()
	return nil
}

// WriteFrame forwards frames to the encoder while recording.
func (r *Recorder) WriteFrame(img *image.RGBA, repeat int) error {
	r.mu.Lock()
	state, stream := r.state, r.stream
	r.mu.Unlock()

	if state != StateRecording || stream == nil {
		return fmt.Errorf("recorder: frame written while %s", state)
	}
	return stream.WriteFrame(img, repeat)
}

// Stop waits the drain delay, flushes the encoder and assembles the Blob.
func (r *Recorder) Stop(ctx context.Context) (*Blob, error) {
	r.mu.Lock()
	if err := r.transition(StateRecording, StateDraining); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	stream := r.stream
	r.mu.Unlock()

	if r.drain > 0 {
		timer := time.NewTimer(r.drain)
		select {
		case <-ctx.Done():
			timer.Stop()
			stream.Abort()
			r.fail()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err := stream.Close(); err != nil {
		r.fail()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		r.state = StateFailed
		return nil, ErrEmptyRecording
	}

	data := make([]byte, 0, r.size)
	for _, c := range r.chunks {
		data = append(data, c...)
	}
	r.chunks = nil
	r.state = StateFinalized
	return &Blob{Data: data, MimeType: r.format.MimeType, Format: r.format}, nil
}

// Abort stops a recording without producing output.
func (r *Recorder) Abort() {
	r.mu.Lock()
	stream := r.stream
	terminal := r.state == StateFinalized || r.state == StateFailed
	r.mu.Unlock()

	if terminal {
		return
	}
	if stream != nil {
		stream.Abort()
	}
	r.fail()
}

func (r *Recorder) fail() {
	r.mu.Lock()
	r.state = StateFailed
	r.chunks = nil
	r.mu.Unlock()
}
