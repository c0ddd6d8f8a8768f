package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Uploads           *prometheus.CounterVec
	Viewers           prometheus.Gauge
	BroadcastFailures prometheus.Counter
	ThumbnailSeconds  prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photoshare",
			Name:      "uploads_total",
			Help:      "Upload attempts by result.",
		}, []string{"result"}),
		Viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "photoshare",
			Name:      "viewers",
			Help:      "Currently connected live-update channels.",
		}),
		BroadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "photoshare",
			Name:      "broadcast_failures_total",
			Help:      "Event sends that failed and pruned a channel.",
		}),
		ThumbnailSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "photoshare",
			Name:      "thumbnail_seconds",
			Help:      "Time spent decoding, resizing and writing thumbnails.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
	reg.MustRegister(
		m.Uploads,
		m.Viewers,
		m.BroadcastFailures,
		m.ThumbnailSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
