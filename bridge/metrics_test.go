package bridge

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/transport"
)

func TestMetrics_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		if h.call.URL == "http://example.com/fail" {
			h.complete(transport.Outcome{StatusCode: 500})
			return
		}
		h.complete(jsonOutcome(200, `{}`))
	}}
	c := New(ft, WithMetrics(m))
	ctx := context.Background()

	if _, err := c.Get(ctx, "http://example.com/ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(ctx, "http://example.com/ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(ctx, "http://example.com/fail"); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(m.dispatches.WithLabelValues("GET", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dispatches.WithLabelValues("GET", "network")); got != 1 {
		t.Errorf("network count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)
	if a.dispatches != b.dispatches || a.inFlight != b.inFlight {
		t.Error("second registration created new collectors")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.start()
	m.finish(request.MethodGet, nil, 0)
}
