package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(llmCallsLatencyMs, llmOutputChars, llmPromptTruncations) }

var llmCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "llm_calls_latency_ms",
		Help:    "LLM call latency distribution in milliseconds.",
		Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 60000, 120000},
	},
	[]string{"provider", "kind", "success"},
)

var llmOutputChars = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "llm_output_chars_total",
		Help: "Sum of generated characters per provider/kind.",
	},
	[]string{"provider", "kind"},
)

var llmPromptTruncations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "llm_prompt_truncations_total",
		Help: "Count of prompts truncated to fit the token budget.",
	},
	[]string{"provider"},
)

func ObserveLLMCall(provider, kind string, latencyMs int, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	llmCallsLatencyMs.WithLabelValues(norm(provider), norm(kind), s).Observe(float64(latencyMs))
}

func AddLLMOutputChars(provider, kind string, n int) {
	llmOutputChars.WithLabelValues(norm(provider), norm(kind)).Add(float64(n))
}

func IncPromptTruncation(provider string) {
	llmPromptTruncations.WithLabelValues(norm(provider)).Inc()
}
