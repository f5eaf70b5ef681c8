// Package metrics registers the Prometheus instruments for the analysis
// pipeline and the retention sweep. The registry is exposed on /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics captures pipeline health signals.
type AnalysisMetrics struct {
	jobsQueued    prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsRequeued  prometheus.Counter
	jobDuration   prometheus.Histogram
	claimRaces    prometheus.Counter

	sttCalls    *prometheus.CounterVec
	sttDuration *prometheus.HistogramVec

	retentionRemoved prometheus.Counter
	retentionBytes   prometheus.Counter
	retentionErrors  prometheus.Counter
}

var (
	analysisMetricsOnce sync.Once
	analysisMetrics     *AnalysisMetrics
)

// Analysis returns the singleton analysis metrics registry.
func Analysis() *AnalysisMetrics {
	analysisMetricsOnce.Do(func() {
		analysisMetrics = newAnalysisMetrics(prometheus.DefaultRegisterer)
	})
	return analysisMetrics
}

func newAnalysisMetrics(registerer prometheus.Registerer) *AnalysisMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	jobsQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_analysis_jobs_queued_total",
		Help: "Analysis jobs accepted by the submission gate.",
	})
	jobsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_analysis_jobs_completed_total",
		Help: "Analysis jobs finished with a persisted result.",
	})
	jobsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_analysis_jobs_failed_total",
		Help: "Analysis jobs that exhausted all attempts.",
	})
	jobsRequeued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_analysis_jobs_requeued_total",
		Help: "Failed jobs sent back to the queue by reprocess requests.",
	})
	jobDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "itqan_analysis_job_duration_seconds",
		Help:    "End-to-end analysis time from claim to terminal state.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600},
	})
	claimRaces := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_analysis_claim_races_total",
		Help: "Claims lost to another worker.",
	})
	sttCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itqan_stt_calls_total",
		Help: "Speech-to-text calls by provider and outcome.",
	}, []string{"provider", "outcome"})
	sttDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itqan_stt_call_duration_seconds",
		Help:    "Speech-to-text call latency by provider.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"provider"})
	retentionRemoved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_retention_objects_removed_total",
		Help: "Audio objects removed by the retention sweep.",
	})
	retentionBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_retention_bytes_reclaimed_total",
		Help: "Bytes reclaimed by the retention sweep.",
	})
	retentionErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itqan_retention_errors_total",
		Help: "Per-object failures during the retention sweep.",
	})

	registerer.MustRegister(
		jobsQueued,
		jobsCompleted,
		jobsFailed,
		jobsRequeued,
		jobDuration,
		claimRaces,
		sttCalls,
		sttDuration,
		retentionRemoved,
		retentionBytes,
		retentionErrors,
	)

	return &AnalysisMetrics{
		jobsQueued:       jobsQueued,
		jobsCompleted:    jobsCompleted,
		jobsFailed:       jobsFailed,
		jobsRequeued:     jobsRequeued,
		jobDuration:      jobDuration,
		claimRaces:       claimRaces,
		sttCalls:         sttCalls,
		sttDuration:      sttDuration,
		retentionRemoved: retentionRemoved,
		retentionBytes:   retentionBytes,
		retentionErrors:  retentionErrors,
	}
}

// IncJobQueued increments the queued job counter.
func (m *AnalysisMetrics) IncJobQueued() {
	if m == nil {
		return
	}
	m.jobsQueued.Inc()
}

// IncJobCompleted increments the completed job counter.
func (m *AnalysisMetrics) IncJobCompleted() {
	if m == nil {
		return
	}
	m.jobsCompleted.Inc()
}

// IncJobFailed increments the failed job counter.
func (m *AnalysisMetrics) IncJobFailed() {
	if m == nil {
		return
	}
	m.jobsFailed.Inc()
}

// IncJobRequeued increments the requeue counter.
func (m *AnalysisMetrics) IncJobRequeued() {
	if m == nil {
		return
	}
	m.jobsRequeued.Inc()
}

// ObserveJobDuration records claim-to-terminal latency.
func (m *AnalysisMetrics) ObserveJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.Observe(d.Seconds())
}

// IncClaimRace increments the lost-claim counter.
func (m *AnalysisMetrics) IncClaimRace() {
	if m == nil {
		return
	}
	m.claimRaces.Inc()
}

// ObserveSTTCall records one speech-to-text call.
func (m *AnalysisMetrics) ObserveSTTCall(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.sttCalls.WithLabelValues(provider, outcome).Inc()
	m.sttDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// AddRetentionRemoved records objects removed and bytes reclaimed.
func (m *AnalysisMetrics) AddRetentionRemoved(count int, bytes int64) {
	if m == nil || count <= 0 {
		return
	}
	m.retentionRemoved.Add(float64(count))
	if bytes > 0 {
		m.retentionBytes.Add(float64(bytes))
	}
}

// IncRetentionError increments the per-object failure counter.
func (m *AnalysisMetrics) IncRetentionError() {
	if m == nil {
		return
	}
	m.retentionErrors.Inc()
}
