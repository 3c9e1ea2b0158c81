package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(coachTokensTotal, coachLatencyMs)
}

var (
	coachTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_tokens_total",
			Help: "Sum of prompt tokens sent to the coach model, per provider/model.",
		},
		[]string{"provider", "model"},
	)

	coachLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coach_calls_latency_ms",
			Help:    "Coach call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "model", "success"},
	)
)

func ObserveCoachCall(provider, model string, tokens int, latencyMs float64, success bool) {
	coachTokensTotal.WithLabelValues(norm(provider), norm(model)).Add(float64(tokens))
	coachLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).Observe(latencyMs)
}
