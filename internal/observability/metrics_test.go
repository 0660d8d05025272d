package observability

import (
	"strings"
	"testing"
	"time"
)

func TestCounterVecExposition(t *testing.T) {
	cv := NewCounterVec("test_ops_total", "Test ops.", []string{"op", "status"})
	cv.Inc("add", "success")
	cv.Inc("add", "success")
	cv.Add(3, "remove", "error")

	var b strings.Builder
	if err := cv.WritePrometheus(&b); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "# TYPE test_ops_total counter") {
		t.Fatalf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `test_ops_total{op="add",status="success"} 2`) {
		t.Fatalf("missing add counter:\n%s", out)
	}
	if !strings.Contains(out, `test_ops_total{op="remove",status="error"} 3`) {
		t.Fatalf("missing remove counter:\n%s", out)
	}
}

func TestHistogramVecBuckets(t *testing.T) {
	hv := NewHistogramVec("test_latency_seconds", "Test latency.", []string{"op"}, []float64{0.1, 1})
	hv.Observe(0.05, "add")
	hv.Observe(0.5, "add")
	hv.Observe(5, "add")

	var b strings.Builder
	if err := hv.WritePrometheus(&b); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, `test_latency_seconds_bucket{op="add",le="0.1"} 1`) {
		t.Fatalf("le=0.1 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `test_latency_seconds_bucket{op="add",le="1"} 2`) {
		t.Fatalf("le=1 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `test_latency_seconds_bucket{op="add",le="+Inf"} 3`) {
		t.Fatalf("+Inf bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `test_latency_seconds_count{op="add"} 3`) {
		t.Fatalf("count wrong:\n%s", out)
	}
}

func TestLabelEscaping(t *testing.T) {
	cv := NewCounterVec("test_escape_total", "Test escape.", []string{"name"})
	cv.Inc(`with"quote`)

	var b strings.Builder
	if err := cv.WritePrometheus(&b); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(b.String(), `name="with\"quote"`) {
		t.Fatalf("quote not escaped:\n%s", b.String())
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/cart", "200", time.Millisecond)
	m.ObserveAggregateOperation("cart.add_item", "success", time.Millisecond)
	m.IncAggregateConflict("cart.add_item")
	m.IncAggregateRetry("cart.add_item")
	m.IncCacheHit("cart")
	m.IncCacheMiss("cart")
	m.ObserveRenewalBatch(3, 2, 1, time.Second)
	if err := m.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
}
