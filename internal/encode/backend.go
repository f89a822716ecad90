package encode

import (
	"context"
	"fmt"

	"github.com/bilgisen/picreel/internal/render"
)

// Session describes one recording.
type Session struct {
	Format  Format
	Profile Profile
	// AudioPath is the WAV file of the mixed track, empty for silent formats.
	AudioPath string
	// OnChunk receives encoded output as it is produced.
	OnChunk func(chunk []byte)
}

// Stream accepts frames until Close, which flushes all remaining output.
type Stream interface {
	render.FrameSink
	Close() error
	// Abort stops the encoder without flushing.
	Abort()
}

// Backend produces encoded output for the formats it supports.
type Backend interface {
	Name() string
	Supports(f Format) bool
	Open(ctx context.Context, s Session) (Stream, error)
}

// Router dispatches to the first backend that supports a format.
type Router struct {
	backends []Backend
}

func NewRouter(backends ...Backend) *Router {
	return &Router{backends: backends}
}

func (r *Router) Name() string {
	return "router"
}

func (r *Router) Supports(f Format) bool {
	return r.pick(f) != nil
}

func (r *Router) Open(ctx context.Context, s Session) (Stream, error) {
	b := r.pick(s.Format)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Format.Name)
	}
	return b.Open(ctx, s)
}

func (r *Router) pick(f Format) Backend {
	for _, b := range r.backends {
		if b.Supports(f) {
			return b
		}
	}
	return nil
}
