package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gold_ledger"

// Metrics holds the HTTP and ledger collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cycleTransitions   *prometheus.CounterVec
	monthlyDataCreated prometheus.Counter
	paymentPlaceholder prometheus.Counter
	paymentsRecorded   *prometheus.CounterVec
	winnersRecorded    prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		cycleTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "cycle_transitions_total",
			Help:      "Cycles started or ended.",
		}, []string{"action"}),
		monthlyDataCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "monthly_data_created_total",
			Help:      "Monthly buckets opened.",
		}),
		paymentPlaceholder: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payment_placeholders_total",
			Help:      "Unpaid payments seeded when a monthly bucket is opened.",
		}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payments_recorded_total",
			Help:      "Payment states written, by paid status.",
		}, []string{"status"}),
		winnersRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "winners_recorded_total",
			Help:      "Winners recorded against monthly buckets.",
		}),
	}

	reg.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.cycleTransitions,
		m.monthlyDataCreated,
		m.paymentPlaceholder,
		m.paymentsRecorded,
		m.winnersRecorded,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns the func that
// records the finished request.
func (m *Metrics) RequestStarted() func(method, path string, status int, seconds float64) {
	m.httpInFlight.Inc()

	return func(method, path string, status int, seconds float64) {
		m.httpInFlight.Dec()
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(seconds)
	}
}

func (m *Metrics) ObserveCycleTransition(action string) {
	m.cycleTransitions.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveMonthlyData(roster int) {
	m.monthlyDataCreated.Inc()
	m.paymentPlaceholder.Add(float64(roster))
}

func (m *Metrics) ObservePayments(paid, unpaid int) {
	m.paymentsRecorded.WithLabelValues("paid").Add(float64(paid))
	m.paymentsRecorded.WithLabelValues("unpaid").Add(float64(unpaid))
}

func (m *Metrics) ObserveWinners(count int) {
	m.winnersRecorded.Add(float64(count))
}
