package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(queueBatchJobs, queueBatchRuns) }

var queueBatchJobs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_batch_jobs_total",
		Help: "Jobs seen by the queue runner, by result (processed, failed, skipped).",
	},
	[]string{"result"},
)

var queueBatchRuns = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "queue_batch_runs_total",
		Help: "Total queue-runner batch invocations.",
	},
)

func IncQueueJob(result string) { queueBatchJobs.WithLabelValues(norm(result)).Inc() }
func IncQueueRun()              { queueBatchRuns.Inc() }
