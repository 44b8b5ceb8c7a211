package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "avilegal"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	paymentInitializations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_initializations_total",
		Help:      "Payment initialization attempts by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	paymentVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verification attempts by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	applicationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transitions_total",
		Help:      "Application status transitions by target status.",
	}, []string{"status"})

	emailsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_dispatched_total",
		Help:      "Transactional emails by template and outcome.",
	}, []string{"template", "outcome"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		paymentInitializations,
		paymentVerifications,
		applicationTransitions,
		emailsDispatched,
	)
}

// Registry exposes the collector registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func PaymentInitialized(gateway, outcome string) {
	paymentInitializations.WithLabelValues(gateway, outcome).Inc()
}

func PaymentVerified(gateway, outcome string) {
	paymentVerifications.WithLabelValues(gateway, outcome).Inc()
}

func ApplicationTransitioned(status string) {
	applicationTransitions.WithLabelValues(status).Inc()
}

func EmailDispatched(template, outcome string) {
	emailsDispatched.WithLabelValues(template, outcome).Inc()
}
