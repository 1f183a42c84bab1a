package renderer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathtracer_samples_rendered",
		Help: "The number of pixel samples traced.",
	})

	renderSampleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathtracer_render_sample_seconds",
		Help:    "The time to add one sample to every pixel of an image.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	})

	passesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathtracer_passes_completed",
		Help: "The number of progressive passes completed.",
	})

	activeRenders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathtracer_active_renders",
		Help: "The number of progressive renders in flight.",
	})
)
