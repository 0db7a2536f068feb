package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsRegisterAndServe(t *testing.T) {
	m := NewMetrics("secondbrain_test")

	m.Intents.WithLabelValues("conversation").Inc()
	m.CacheHits.Inc()
	m.CacheMisses.Inc()
	m.BrainErrors.Inc()
	m.MemoryExtractions.WithLabelValues("saved").Inc()
	m.QueueDrops.Inc()
	m.ObserveBrainLatency(120 * time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"secondbrain_test_intents_total",
		"secondbrain_test_response_cache_hits_total",
		"secondbrain_test_brain_request_seconds",
		"secondbrain_test_background_queue_drops_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}
