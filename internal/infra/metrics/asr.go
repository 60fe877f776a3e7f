package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(asrSubmitsTotal, asrPollsTotal, asrTranscribeSec) }

var asrSubmitsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "asr_submits_total",
		Help: "ASR task submissions by result (ok, rejected).",
	},
	[]string{"result"},
)

var asrPollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "asr_polls_total",
		Help: "ASR poll responses by normalized status (running, completed, failed).",
	},
	[]string{"status"},
)

var asrTranscribeSec = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "asr_transcribe_duration_seconds",
		Help:    "Submit-to-completion time of vendor transcription tasks.",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
	},
)

func IncASRSubmit(result string)  { asrSubmitsTotal.WithLabelValues(norm(result)).Inc() }
func IncASRPoll(status string)    { asrPollsTotal.WithLabelValues(norm(status)).Inc() }
func ObserveASRDuration(d time.Duration) { asrTranscribeSec.Observe(d.Seconds()) }
