package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the assistant.
type Metrics struct {
	Intents           *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	BrainLatency      prometheus.Histogram
	BrainErrors       prometheus.Counter
	MemoryExtractions *prometheus.CounterVec
	QueueDrops        prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Intents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Processed messages by routed intent.",
		}, []string{"intent"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_hits_total",
			Help:      "Response cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_misses_total",
			Help:      "Response cache misses.",
		}),
		BrainLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "brain_request_seconds",
			Help:      "LLM completion latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		BrainErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brain_errors_total",
			Help:      "LLM completion failures.",
		}),
		MemoryExtractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_extractions_total",
			Help:      "Background memory extraction outcomes.",
		}, []string{"outcome"}),
		QueueDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_queue_drops_total",
			Help:      "Background tasks dropped because the queue was full.",
		}),
	}
}

func (m *Metrics) ObserveBrainLatency(d time.Duration) {
	m.BrainLatency.Observe(d.Seconds())
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
