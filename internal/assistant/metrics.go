package assistant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/docket/internal/prompts"
)

// Metrics records model calls per stage.
type Metrics struct {
	calls   *prometheus.CounterVec
	retries *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics creates the assistant metrics under namespace and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "model_calls_total",
				Help:      "Model calls by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "model_retries_total",
				Help:      "Model call retries by stage.",
			},
			[]string{"stage"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "model_call_duration_seconds",
				Help:      "Model call latency including retries.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"stage"},
		),
	}
	reg.MustRegister(m.calls, m.retries, m.latency)
	return m
}

func (m *Metrics) observe(stage prompts.Stage, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.calls.WithLabelValues(string(stage), outcome).Inc()
	m.latency.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (m *Metrics) retried(stage prompts.Stage) {
	m.retries.WithLabelValues(string(stage)).Inc()
}
