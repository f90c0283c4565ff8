package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of the exports.
type Metrics struct {
	frames   prometheus.Counter
	exports  *prometheus.CounterVec
	duration prometheus.Histogram
	cleanups prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vexport_frames_total",
			Help: "The number of exported frames.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vexport_exports_total",
			Help: "The number of finished exports by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vexport_export_duration_seconds",
			Help:    "The duration of the exports.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		cleanups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vexport_cleanup_errors_total",
			Help: "The number of swallowed resource release errors.",
		}),
	}
	reg.MustRegister(m.frames, m.exports, m.duration, m.cleanups)
	return m
}

func (m *Metrics) FrameDone()     { m.frames.Inc() }
func (m *Metrics) CleanupFailed() { m.cleanups.Inc() }

func (m *Metrics) ExportDone(err error, seconds float64) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.exports.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
}
