package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_requests_total",
		Help: "Outbound calls to scheduling providers.",
	}, []string{"provider", "operation", "outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_request_duration_seconds",
		Help:    "Latency of outbound calls to scheduling providers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})

	pipelineOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_pipeline_outcomes_total",
		Help: "Booking requests by terminal pipeline state.",
	}, []string{"pipeline", "state"})

	pipelineCandidates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_pipeline_candidates",
		Help:    "Candidates surviving each pipeline stage.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"stage"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"method", "route", "status"})

	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_job_runs_total",
		Help: "Scheduled job executions.",
	}, []string{"job", "outcome"})
)

func ObserveProviderCall(provider, operation string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	providerRequests.WithLabelValues(provider, operation, outcome).Inc()
	providerLatency.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

func RecordPipelineOutcome(pipeline, state string) {
	pipelineOutcomes.WithLabelValues(pipeline, state).Inc()
}

func RecordStageCandidates(stage string, n int) {
	pipelineCandidates.WithLabelValues(stage).Observe(float64(n))
}

func RecordHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

func RecordJobRun(job string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	jobRuns.WithLabelValues(job, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
