// Package metrics exposes Prometheus collectors for generation runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors updated by the generator.
type Metrics struct {
	runs              *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	synthesisFailures prometheus.Counter
	decodeFailures    prometheus.Counter
	exportBytes       *prometheus.CounterVec
	runsActive        prometheus.Gauge
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers the collectors on reg. Collectors already registered under
// the same name are reused; any other registration error panics.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "picreel",
			Subsystem: "generate",
			Name:      "runs_total",
			Help:      "Generation runs by kind and outcome.",
		}, []string{"kind", "status"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "picreel",
			Subsystem: "generate",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each generation phase.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600},
		}, []string{"phase"}),
		synthesisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "picreel",
			Subsystem: "speech",
			Name:      "synthesis_failures_total",
			Help:      "Captions replaced by silence after a narration failure.",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "picreel",
			Subsystem: "render",
			Name:      "decode_failures_total",
			Help:      "Images replaced by a placeholder frame.",
		}),
		exportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "picreel",
			Subsystem: "export",
			Name:      "bytes_total",
			Help:      "Bytes of generated artifacts by format.",
		}, []string{"format"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "picreel",
			Subsystem: "generate",
			Name:      "runs_active",
			Help:      "Generation runs currently in flight.",
		}),
	}

	m.runs = register(reg, m.runs)
	m.phaseDuration = register(reg, m.phaseDuration)
	m.synthesisFailures = register(reg, m.synthesisFailures)
	m.decodeFailures = register(reg, m.decodeFailures)
	m.exportBytes = register(reg, m.exportBytes)
	m.runsActive = register(reg, m.runsActive)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) RunFinished(kind, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) IncSynthesisFailure() {
	if m == nil {
		return
	}
	m.synthesisFailures.Inc()
}

func (m *Metrics) IncDecodeFailure() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

func (m *Metrics) AddExportBytes(format string, n int) {
	if m == nil {
		return
	}
	m.exportBytes.WithLabelValues(format).Add(float64(n))
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runsActive.Inc()
}

func (m *Metrics) RunDone() {
	if m == nil {
		return
	}
	m.runsActive.Dec()
}
