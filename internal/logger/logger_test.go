package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := logger
	logger = zerolog.New(&buf)
	defer func() { logger = prev }()

	log := For("speech")
	log.Info().Msg("hello")
	Warn().Msg("plain")

	out := buf.String()
	assert.Contains(t, out, `"component":"speech"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestOpenOutput(t *testing.T) {
	w, err := openOutput("stderr")
	assert.NoError(t, err)
	assert.NotNil(t, w)

	w, err = openOutput(t.TempDir() + "/app.log")
	assert.NoError(t, err)
	assert.NotNil(t, w)
}
