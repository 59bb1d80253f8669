// Package metrics exposes prometheus instrumentation for the aggregation
// pipeline. The /metrics endpoint is mounted by cmd/server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revive_searches_total",
			Help: "Total SERP searches executed, by site filter and outcome",
		},
		[]string{"site", "status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revive_search_duration_seconds",
			Help:    "Duration of SERP searches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"site"},
	)

	BotChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revive_bot_challenges_total",
			Help: "SERP responses identified as bot challenges, by protection source",
		},
		[]string{"source"},
	)

	SourceCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revive_source_candidates_total",
			Help: "Project candidates collected, by source platform",
		},
		[]string{"platform"},
	)

	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revive_llm_calls_total",
			Help: "LLM generator calls, by generator and outcome",
		},
		[]string{"generator", "status"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revive_llm_call_duration_seconds",
			Help:    "Duration of LLM generator calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"generator"},
	)

	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revive_pipeline_runs_total",
			Help: "Pipeline runs, by outcome",
		},
		[]string{"status"},
	)

	RecommendationCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revive_recommendations_per_run",
			Help:    "Recommendations delivered per pipeline run",
			Buckets: []float64{0, 1, 3, 5, 10, 15, 20},
		},
	)
)

// RecordSearch updates the search metrics for a single SERP query.
func RecordSearch(site string, results int, challenged bool, challengeSrc string, took time.Duration) {
	if site == "" {
		site = "none"
	}
	status := "ok"
	switch {
	case challenged:
		status = "challenged"
		BotChallengesTotal.WithLabelValues(challengeSrc).Inc()
	case results == 0:
		status = "empty"
	}
	SearchesTotal.WithLabelValues(site, status).Inc()
	SearchDuration.WithLabelValues(site).Observe(took.Seconds())
}

// RecordLLMCall updates the generator metrics for one LLM round trip.
func RecordLLMCall(generator string, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMCallsTotal.WithLabelValues(generator, status).Inc()
	LLMCallDuration.WithLabelValues(generator).Observe(took.Seconds())
}
