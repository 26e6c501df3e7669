package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	JobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrier_jobs_enqueued_total",
		Help: "The total number of retry jobs written to the job store, by attempt number",
	}, []string{"attempt"})

	EnqueueErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_enqueue_errors_total",
		Help: "The total number of job store writes that failed",
	})

	RetriesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_retries_executed_total",
		Help: "The total number of claimed jobs driven through the executor",
	})

	JobsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_jobs_succeeded_total",
		Help: "The total number of jobs whose provisioning attempt succeeded",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_jobs_failed_total",
		Help: "The total number of jobs whose provisioning attempt failed",
	})

	MaxAttemptsReached = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_max_attempts_reached_total",
		Help: "Number of jobs abandoned after exhausting the attempt budget",
	})

	PoisonJobs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_poison_jobs_total",
		Help: "Number of claimed jobs that could not be decoded and were dead-lettered",
	})

	ClaimErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_claim_errors_total",
		Help: "The total number of poll ticks whose claim against the job store failed",
	})

	AuditErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_audit_errors_total",
		Help: "The total number of audit records that could not be written",
	})

	InvariantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrier_invariant_violations_total",
		Help: "Number of enqueue calls past the attempt cap, which indicates a caller bug",
	})

	TicksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrier_ticks_skipped_total",
		Help: "Number of poll ticks skipped, by reason",
	}, []string{"reason"})

	QueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retrier_queue_size",
		Help: "Current number of pending jobs in the job store",
	})

	ExecutionTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "retrier_execution_seconds",
		Help:    "Time taken by one provisioning attempt",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
	})
)
