// Package speech turns captions into narration clips of known duration.
package speech

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/audio"
	"github.com/bilgisen/picreel/internal/cache"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/utils"
)

const (
	// DisabledHoldMs is the clip length used for every item when narration is off.
	DisabledHoldMs = 5000
	// SilenceMs is used for empty captions and failed synthesis.
	SilenceMs = 3000
	// MinClipMs is the shortest duration reported for synthesized speech.
	MinClipMs = 3000
)

// Clip is the narration for one item.
type Clip struct {
	Buffer     *audio.Buffer
	DurationMs int
	Silent     bool
	// Err is set when the clip is a substitute for failed synthesis.
	Err error
}

// Options configures the synthesizer.
type Options struct {
	Enabled      bool
	VoiceID      string
	Engine       string
	LanguageCode string
	SampleRate   int
	RequestDelay time.Duration
}

type Synthesizer struct {
	provider Provider
	clips    *cache.ClipStore
	opts     Options
	log      zerolog.Logger
}

// New returns a synthesizer. clips may be nil to disable reuse.
func New(provider Provider, clips *cache.ClipStore, opts Options) *Synthesizer {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	return &Synthesizer{
		provider: provider,
		clips:    clips,
		opts:     opts,
		log:      logger.For("speech"),
	}
}

func (s *Synthesizer) Enabled() bool {
	return s.opts.Enabled
}

func (s *Synthesizer) SampleRate() int {
	return s.opts.SampleRate
}

// Validate fails with ErrProviderUnconfigured when narration is on but cannot run.
func (s *Synthesizer) Validate() error {
	if !s.opts.Enabled {
		return nil
	}
	if s.provider == nil || !s.provider.Configured() {
		return ErrProviderUnconfigured
	}
	return nil
}

func (s *Synthesizer) silence(ms int) *Clip {
	return &Clip{Buffer: audio.Silence(ms, s.opts.SampleRate), DurationMs: ms, Silent: true}
}

// Synthesize returns the clip for text. Errors are *SynthesisError,
// ErrProviderUnconfigured or a context error.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Clip, error) {
	if !s.opts.Enabled {
		return s.silence(DisabledHoldMs), nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	text = CleanText(text)
	if text == "" {
		return s.silence(SilenceMs), nil
	}

	key := utils.HashParts(s.opts.VoiceID, s.opts.Engine, strconv.Itoa(s.opts.SampleRate), text)
	var pcm []byte
	if s.clips != nil {
		cached, ok, err := s.clips.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("clip cache lookup failed")
		} else if ok {
			pcm = cached
		}
	}

	if pcm == nil {
		var err error
		pcm, err = s.provider.Synthesize(ctx, Request{
			Text:         text,
			VoiceID:      s.opts.VoiceID,
			Engine:       s.opts.Engine,
			LanguageCode: s.opts.LanguageCode,
			SampleRate:   s.opts.SampleRate,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &SynthesisError{Text: text, Err: err}
		}
	}

	buf, err := audio.DecodePCM16LE(pcm, s.opts.SampleRate)
	if err != nil {
		return nil, &SynthesisError{Text: text, Err: err}
	}
	if s.clips != nil {
		if err := s.clips.Put(ctx, key, pcm); err != nil {
			s.log.Warn().Err(err).Msg("clip cache store failed")
		}
	}

	ms := buf.DurationMs()
	if ms < MinClipMs {
		ms = MinClipMs
	}
	return &Clip{Buffer: buf, DurationMs: ms}, nil
}

// SynthesizeAll narrates texts in order, one request at a time with the
// configured delay between requests. Failed items become silence clips; only
// cancellation and an unconfigured provider abort the batch.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, texts []string, onProgress func(done, total int)) ([]*Clip, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	clips := make([]*Clip, len(texts))
	for i, text := range texts {
		if i > 0 && s.opts.Enabled && s.opts.RequestDelay > 0 {
			if err := sleep(ctx, s.opts.RequestDelay); err != nil {
				return nil, err
			}
		}

		clip, err := s.Synthesize(ctx, text)
		if err != nil {
			var synthErr *SynthesisError
			if !errors.As(err, &synthErr) {
				return nil, err
			}
			s.log.Warn().Err(err).Int("index", i).Msg("narration failed, using silence")
			clip = s.silence(SilenceMs)
			clip.Err = err
		}
		clips[i] = clip

		if onProgress != nil {
			onProgress(i+1, len(texts))
		}
	}
	return clips, nil
}

// Texts is a convenience for callers holding captions in other structures.
func Texts[T any](items []T, caption func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.TrimSpace(caption(it))
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
