package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	m.RunStarted()
	m.RunFinished("video", "succeeded")
	m.IncSynthesisFailure()
	m.IncSynthesisFailure()
	m.AddExportBytes("mp4-h264-aac", 1024)
	m.ObservePhase("render", 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("video", "succeeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.synthesisFailures))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.exportBytes.WithLabelValues("mp4-h264-aac")))

	m.RunDone()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.runsActive))
}

func TestMustNewReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := MustNew(reg)
	b := MustNew(reg)
	require.NotNil(t, b)

	a.IncDecodeFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(b.decodeFailures))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RunStarted()
		m.IncDecodeFailure()
		m.ObservePhase("mix", time.Second)
	})
}
