package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"task_type"},
	)

	DiagnosisGrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnosis_grade_total",
			Help: "Diagnoses produced, by variant and grade",
		},
		[]string{"variant", "grade"},
	)

	DiagnosisLoanLimit = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diagnosis_loan_limit_won",
			Help:    "Computed maximum loan limit",
			Buckets: []float64{3e7, 5e7, 1e8, 2e8, 3e8, 5e8, 1e9, 2e9},
		},
		[]string{"variant"},
	)

	FundEligible = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_eligible_total",
			Help: "Times a fund was returned as eligible",
		},
		[]string{"fund"},
	)

	CatalogueReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_reloads_total",
			Help: "Fund catalogue reload attempts",
		},
		[]string{"result"},
	)

	DiagnosisCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnosis_cache_total",
			Help: "Diagnosis cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveJob records the outcome of one job. errorCode is empty on success.
func ObserveJob(taskType, errorCode string, seconds float64) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
