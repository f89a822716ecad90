package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/models"
	"github.com/bilgisen/picreel/internal/timeline"
)

const rate = 16000

func tone(ms int, v float32) *Buffer {
	b := NewBuffer(rate, 1, FramesForMs(ms, rate))
	for i := range b.Samples {
		b.Samples[i] = v
	}
	return b
}

func buildTimeline(t *testing.T, clips []*Buffer) *timeline.Timeline {
	t.Helper()
	imgs := make([]*models.ImageRecord, len(clips))
	ms := make([]int, len(clips))
	for i, c := range clips {
		imgs[i] = &models.ImageRecord{ID: "img"}
		ms[i] = c.DurationMs()
	}
	tl, err := timeline.Build(imgs, ms, timeline.Options{GapMs: 500, TransitionMs: 1000, MinHoldMs: 1000})
	require.NoError(t, err)
	return tl
}

func TestMixDurationWithBackground(t *testing.T) {
	clips := []*Buffer{tone(4000, 0.5), tone(6000, 0.5)}
	tl := buildTimeline(t, clips)
	bg := tone(1000, 0.4)

	out, err := NewMixer(rate, DefaultBackgroundGain).Mix(tl, clips, bg)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Channels)
	assert.Equal(t, 12000, out.DurationMs())
	assert.Equal(t, 12000, tl.TotalMs)
}

func TestMixPlacesClipsAfterGap(t *testing.T) {
	clips := []*Buffer{tone(3000, 0.5), tone(3000, -0.5)}
	tl := buildTimeline(t, clips)

	out, err := NewMixer(rate, DefaultBackgroundGain).Mix(tl, clips, nil)
	require.NoError(t, err)

	at := func(ms int) float32 { return out.At(FramesForMs(ms, rate), 0) }
	assert.Zero(t, at(100))
	assert.InDelta(t, 0.5, at(600), 1e-6)
	assert.Zero(t, at(3700))
	assert.InDelta(t, -0.5, at(4600), 1e-6)
	// mono is broadcast to both channels
	f := FramesForMs(600, rate)
	assert.Equal(t, out.At(f, 0), out.At(f, 1))
}

func TestMixLoopsBackgroundAtGain(t *testing.T) {
	clips := []*Buffer{tone(3000, 0)}
	tl := buildTimeline(t, clips)

	bg := NewBuffer(rate, 1, 4)
	bg.Samples = []float32{1, 0, -1, 0}

	out, err := NewMixer(rate, 0.15).Mix(tl, clips, bg)
	require.NoError(t, err)

	for f := 0; f < 12; f++ {
		assert.InDelta(t, bg.Samples[f%4]*0.15, out.At(f, 0), 1e-6)
	}
}

func TestMixAddsAndClips(t *testing.T) {
	clips := []*Buffer{tone(3000, 0.95)}
	tl := buildTimeline(t, clips)

	out, err := NewMixer(rate, 1).Mix(tl, clips, tone(100, 0.5))
	require.NoError(t, err)
	assert.Equal(t, float32(1), out.At(FramesForMs(1000, rate), 0))
}

func TestMixResamplesByNearestIndex(t *testing.T) {
	clip := NewBuffer(8000, 1, FramesForMs(3000, 8000))
	for i := range clip.Samples {
		clip.Samples[i] = 0.25
	}
	tl := buildTimeline(t, []*Buffer{clip})

	out, err := NewMixer(rate, 0).Mix(tl, []*Buffer{clip}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out.At(FramesForMs(3400, rate), 1), 1e-6)
	assert.Zero(t, out.At(FramesForMs(3600, rate), 1))
}

func TestMixIsIdempotent(t *testing.T) {
	clips := []*Buffer{tone(3500, 0.3), tone(4200, -0.2)}
	tl := buildTimeline(t, clips)
	bg := tone(700, 0.6)
	m := NewMixer(rate, DefaultBackgroundGain)

	a, err := m.Mix(tl, clips, bg)
	require.NoError(t, err)
	b, err := m.Mix(tl, clips, bg)
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)
}

func TestMixRejectsMismatch(t *testing.T) {
	clips := []*Buffer{tone(3000, 0)}
	tl := buildTimeline(t, clips)
	_, err := NewMixer(rate, 0).Mix(tl, nil, nil)
	assert.Error(t, err)
}
