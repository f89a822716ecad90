package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TTS_ENABLED", "")
	t.Setenv("NARRATION_GAP", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.TTSEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.NarrationGap)
	assert.Equal(t, time.Second, cfg.TransitionDuration)
	assert.Equal(t, 16000, cfg.PollySampleRate)
	assert.InDelta(t, 0.15, cfg.BackgroundGain, 1e-9)
	assert.Equal(t, "landscape", cfg.DefaultOrientation)
	assert.False(t, cfg.R2Enabled())
	assert.False(t, cfg.AirtableEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TTS_ENABLED", "true")
	t.Setenv("NARRATION_GAP", "250ms")
	t.Setenv("DEFAULT_ORIENTATION", "portrait")
	t.Setenv("AIRTABLE_TOKEN", "tok")
	t.Setenv("AIRTABLE_BASE_ID", "app123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.TTSEnabled)
	assert.Equal(t, 250*time.Millisecond, cfg.NarrationGap)
	assert.Equal(t, "portrait", cfg.DefaultOrientation)
	assert.True(t, cfg.AirtableEnabled())
}

func TestInvalidValueFallsBackToDefault(t *testing.T) {
	t.Setenv("CLIP_CACHE_SIZE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.ClipCacheSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("DEFAULT_ORIENTATION", "square")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DEFAULT_ORIENTATION", "landscape")
	t.Setenv("POLLY_SAMPLE_RATE", "44100")
	_, err = Load()
	require.Error(t, err)
}
