package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Stack metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swarm_nodes_total",
			Help: "Number of stack nodes by placement (internal, external)",
		},
		[]string{"placement"},
	)

	ContainersRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swarm_containers_total",
			Help: "Number of containers labelled with the current project",
		},
	)

	ContainersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swarm_containers_created_total",
			Help: "Total number of containers created",
		},
	)

	ContainersRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swarm_containers_removed_total",
			Help: "Total number of containers stopped and removed",
		},
	)

	// Command metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarm_commands_total",
			Help: "Total number of dispatched commands by type and result",
		},
		[]string{"type", "result"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarm_command_duration_seconds",
			Help:    "Command dispatch duration in seconds, lock wait included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// Log stream metrics
	LogSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swarm_log_subscribers",
			Help: "Number of active log stream subscriptions",
		},
	)

	LogLagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swarm_log_lagged_total",
			Help: "Total number of lag notices delivered to slow log subscribers",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarm_api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarm_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(ContainersRunning)
	prometheus.MustRegister(ContainersCreated)
	prometheus.MustRegister(ContainersRemoved)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(LogSubscribers)
	prometheus.MustRegister(LogLagged)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in a histogram
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time in a histogram vec
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
