// Package telemetry exposes evaluation instrumentation as Prometheus metrics
// on a private registry.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

const namespace = "appraise"

// Metrics implements evaluator.Observer.
type Metrics struct {
	registry *prometheus.Registry

	metricLatency *prometheus.HistogramVec
	netScore      prometheus.Histogram
	buildDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		metricLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metric_latency_milliseconds",
			Help:      "Reported latency per sub-metric.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"metric"}),
		netScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "net_score",
			Help:      "Distribution of net scores.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "context_build_duration_seconds",
			Help:      "Time spent assembling evaluation contexts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Evaluation outcomes by kind.",
		}, []string{"kind"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evaluations_in_flight",
			Help:      "Evaluations currently running.",
		}),
	}

	m.registry.MustRegister(
		m.metricLatency,
		m.netScore,
		m.buildDuration,
		m.outcomes,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is the gatherer to expose over HTTP.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) WorkerStarted()  { m.inFlight.Inc() }
func (m *Metrics) WorkerFinished() { m.inFlight.Dec() }

func (m *Metrics) ContextBuilt(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.buildDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) OutcomeRecorded(o evaluator.Outcome) {
	m.outcomes.WithLabelValues(string(o.Kind)).Inc()
	if o.Record == nil {
		return
	}
	m.netScore.Observe(o.Record.NetScore)
	for _, metric := range modelctx.AllMetrics {
		m.metricLatency.WithLabelValues(string(metric)).Observe(float64(o.Record.Metric(metric).LatencyMs))
	}
}
