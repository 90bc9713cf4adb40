package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, exposed alongside the HTTP metrics on /metrics.
var (
	WorkflowRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Total number of workflow executions",
		},
		[]string{"workflow_type", "outcome"},
	)

	ScrapingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraping_runs_total",
			Help: "Total number of scraping job executions",
		},
		[]string{"source", "outcome"},
	)

	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Times an AI-backed path degraded to its deterministic fallback",
		},
		[]string{"component"},
	)
)

// RecordWorkflowRun counts one workflow execution
func RecordWorkflowRun(workflowType, outcome string) {
	WorkflowRuns.WithLabelValues(workflowType, outcome).Inc()
}

// RecordScrapingRun counts one scraping job execution
func RecordScrapingRun(source, outcome string) {
	ScrapingRuns.WithLabelValues(source, outcome).Inc()
}

// RecordAIFallback counts one deterministic-fallback event
func RecordAIFallback(component string) {
	AIFallbacks.WithLabelValues(component).Inc()
}
