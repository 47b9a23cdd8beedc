package bridge

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/request"
)

// Metrics records dispatch counts, latency and concurrency.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
}

// NewMetrics registers the dispatch metrics with reg. Registering twice on
// the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		dispatches: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synchttp_dispatches_total",
			Help: "Synchronous dispatches by method and outcome",
		}, []string{"method", "outcome"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "synchttp_dispatch_duration_seconds",
			Help:    "Time callers spent blocked in dispatch",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"method"})),
		inFlight: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "synchttp_dispatches_in_flight",
			Help: "Callers currently blocked in dispatch",
		})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) start() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) finish(method request.Method, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	outcome := "success"
	if err != nil {
		outcome = errors.KindOf(err).String()
	}
	m.dispatches.WithLabelValues(method.String(), outcome).Inc()
	m.duration.WithLabelValues(method.String()).Observe(d.Seconds())
}
