package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dvlottery"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
	codesIssued        prometheus.Counter
	emailFailures      *prometheus.CounterVec
	paymentsReconciled *prometheus.CounterVec
	paymentDuplicates  prometheus.Counter
	checkoutsCancelled prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_codes_issued_total",
			Help:      "Total number of verification codes issued.",
		}),
		emailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_delivery_failures_total",
			Help:      "Total number of failed email deliveries by kind.",
		}, []string{"kind"}),
		paymentsReconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_reconciled_total",
			Help:      "Total number of completed payments by package.",
		}, []string{"package"}),
		paymentDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_duplicate_confirmations_total",
			Help:      "Total number of payment confirmations that were already applied.",
		}),
		checkoutsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_cancelled_total",
			Help:      "Total number of cancelled or expired checkouts.",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.codesIssued,
		m.emailFailures,
		m.paymentsReconciled,
		m.paymentDuplicates,
		m.checkoutsCancelled,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (m *Metrics) CodeIssued() {
	if m == nil {
		return
	}
	m.codesIssued.Inc()
}

func (m *Metrics) EmailFailed(kind string) {
	if m == nil {
		return
	}
	m.emailFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) PaymentReconciled(pkg string, duplicate bool) {
	if m == nil {
		return
	}
	if duplicate {
		m.paymentDuplicates.Inc()
		return
	}
	m.paymentsReconciled.WithLabelValues(pkg).Inc()
}

func (m *Metrics) CheckoutCancelled() {
	if m == nil {
		return
	}
	m.checkoutsCancelled.Inc()
}
