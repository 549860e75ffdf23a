package logic

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_analysis_requests_total",
			Help: "Total number of analyze-entry requests by outcome",
		},
		[]string{"outcome"},
	)
	llmLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "journal_llm_request_duration_seconds",
			Help:    "Latency of LLM analysis calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(analysisRequests)
	prometheus.MustRegister(llmLatency)
}

// countAnalysis records the outcome of an analyze-entry call, including calls
// rejected by Authenticate before the handler runs.
func countAnalysis(c *gin.Context) {
	c.Next()
	var err error
	if last := c.Errors.Last(); last != nil {
		err = last.Err
	}
	analysisRequests.WithLabelValues(outcomeLabel(err)).Inc()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstreamAnalysis):
		return "upstream_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
