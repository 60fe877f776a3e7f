package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsFinishedTotal, jobStageTransitions, pipelineDurationSec) }

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_jobs_finished_total",
		Help: "Pipeline invocations by outcome: completed, paused, failed, skipped.",
	},
	[]string{"outcome"},
)

var jobStageTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_stage_transitions_total",
		Help: "Job status transitions performed by the pipeline.",
	},
	[]string{"status"},
)

var pipelineDurationSec = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pipeline_run_duration_seconds",
		Help:    "Wall time of one pipeline invocation.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	},
)

func IncJobOutcome(outcome string) {
	jobsFinishedTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncStageTransition(status string) {
	jobStageTransitions.WithLabelValues(norm(status)).Inc()
}

func ObservePipelineDuration(d time.Duration) {
	pipelineDurationSec.Observe(d.Seconds())
}
