package encode

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/audio"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/render"
)

// Capturer is a surface whose frames can be routed to a sink.
type Capturer interface {
	CaptureStream(sink render.FrameSink)
}

// Pipeline records one rendered sequence into a Blob.
type Pipeline struct {
	backend    Backend
	prefs      []Format
	capability CapabilityFunc
	drain      time.Duration
	log        zerolog.Logger
}

type PipelineOption func(*Pipeline)

// WithCapability replaces the backend's own support check.
func WithCapability(fn CapabilityFunc) PipelineOption {
	return func(p *Pipeline) { p.capability = fn }
}

// WithPreferences replaces the default format order.
func WithPreferences(prefs []Format) PipelineOption {
	return func(p *Pipeline) { p.prefs = prefs }
}

func WithDrain(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.drain = d }
}

func NewPipeline(backend Backend, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		backend: backend,
		prefs:   Preferences,
		drain:   500 * time.Millisecond,
		log:     logger.For("encode"),
	}
	p.capability = backend.Supports
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Negotiate picks the output format without doing any work.
func (p *Pipeline) Negotiate() (Format, error) {
	return Negotiate(p.prefs, p.capability)
}

// Encode negotiates a format, starts the recorder, runs render and finalizes.
// The format is chosen before render is called, so an unsupported host fails
// without drawing a single frame. The track is stopped on every path.
func (p *Pipeline) Encode(ctx context.Context, profile Profile, surface Capturer, track *audio.Track, render func(ctx context.Context) error) (*Blob, error) {
	if track != nil {
		defer func() {
			if err := track.Stop(); err != nil {
				p.log.Warn().Err(err).Msg("removing track file")
			}
		}()
	}

	format, err := p.Negotiate()
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("format", format.Name).Int("width", profile.Width).Int("height", profile.Height).Msg("recording")

	rec := NewRecorder(p.backend, format, profile, track, p.drain)
	surface.CaptureStream(rec)
	defer surface.CaptureStream(nil)

	if err := rec.Start(ctx); err != nil {
		return nil, err
	}
	if err := render(ctx); err != nil {
		rec.Abort()
		return nil, err
	}

	blob, err := rec.Stop(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("format", format.Name).Int("bytes", len(blob.Data)).Msg("recording finalized")
	return blob, nil
}
