package metrics

import (
	"context"
	"net/http"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is a run-summary sink that feeds prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	nodesTotal   *prometheus.CounterVec
	runDuration  prometheus.Histogram
	nodeDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	recorder := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentflow_runs_total",
			Help: "Completed workflow runs by terminal status.",
		}, []string{"status"}),
		nodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentflow_nodes_total",
			Help: "Executed workflow nodes by terminal status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentflow_run_duration_seconds",
			Help:    "Wall-clock duration of workflow runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		nodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentflow_node_duration_seconds",
			Help:    "Wall-clock duration of node executions.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	registry.MustRegister(recorder.runsTotal, recorder.nodesTotal, recorder.runDuration, recorder.nodeDuration)

	return recorder
}

func (r *Recorder) HandleRunSummary(ctx context.Context, summary domain.RunSummary) error {
	r.runsTotal.WithLabelValues(string(summary.Status)).Inc()
	r.runDuration.Observe(float64(summary.DurationMS) / 1000)

	for _, node := range summary.Nodes {
		r.nodesTotal.WithLabelValues(string(node.Status)).Inc()
		r.nodeDuration.Observe(float64(node.DurationMS) / 1000)
	}

	return nil
}

// Handler exposes the collectors in prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
