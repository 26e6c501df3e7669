package retrier

import (
	"context"
	"time"

	"github.com/provisionhq/provision-retrier/pkg/metrics"
	"github.com/provisionhq/provision-retrier/pkg/models"
)

// tick claims one bounded batch of due jobs and dispatches each on its own
// goroutine. Errors are logged and the loop keeps its schedule; a broken tick
// must never take the poller down.
func (s *Service) tick(ctx context.Context) {
	if s.breaker.IsOpen() {
		metrics.TicksSkipped.WithLabelValues("circuit_open").Inc()
		s.logger.Notice("Circuit breaker open, skipping tick; due jobs stay pending")
		return
	}

	now := s.now()
	jobs, poisoned, err := s.store.ClaimDue(ctx, now.Unix(), s.cfg.BatchSize)
	if err != nil {
		metrics.ClaimErrors.Inc()
		s.logger.Error("Failed to claim due jobs: %v", err)
		return
	}

	for _, key := range poisoned {
		s.deadLetter(ctx, key, now)
	}

	if size, err := s.store.Size(ctx); err == nil {
		metrics.QueueSize.Set(float64(size))
	}

	if len(jobs) == 0 {
		s.logger.Debug("No due jobs this tick")
		return
	}
	s.logger.Info("Claimed %d due jobs", len(jobs))

	// Jobs are independent once claimed, so the batch executes concurrently.
	for _, job := range jobs {
		s.wg.Add(1)
		go s.processJob(ctx, job)
	}
}

// processJob drives one claimed job through the executor and routes the
// outcome: discard on success, re-enqueue with an incremented attempt on
// failure, or abandon with a terminal audit record at the attempt cap.
func (s *Service) processJob(ctx context.Context, job models.RetryJob) {
	defer s.wg.Done()

	s.logger.Info("Executing attempt %d for %s", job.Attempt, job.LogicalKey)

	// Detached from the poller's cancellation so an in-flight attempt can
	// finish during shutdown; the timeout still bounds a hung downstream.
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ExecTimeout)
	start := time.Now()
	err := s.exec.Execute(execCtx, job.Payload)
	cancel()
	metrics.ExecutionTime.Observe(time.Since(start).Seconds())
	metrics.RetriesExecuted.Inc()

	outcomeCtx := context.WithoutCancel(ctx)
	if err == nil {
		s.handleSuccess(outcomeCtx, job)
		return
	}
	s.handleFailure(outcomeCtx, job, err)
}

func (s *Service) handleSuccess(ctx context.Context, job models.RetryJob) {
	metrics.JobsSucceeded.Inc()
	s.breaker.RecordSuccess()
	s.logger.Info("Attempt %d for %s succeeded", job.Attempt, job.LogicalKey)
	s.recordAudit(ctx, models.AuditRecord{
		LogicalKey: job.LogicalKey,
		Attempt:    job.Attempt,
		Status:     models.AuditSuccess,
		Timestamp:  s.now(),
	})
}

func (s *Service) handleFailure(ctx context.Context, job models.RetryJob, execErr error) {
	metrics.JobsFailed.Inc()
	s.breaker.RecordFailure()

	if job.Attempt >= s.cfg.MaxAttempts {
		metrics.MaxAttemptsReached.Inc()
		s.logger.Notice("Max attempts reached for %s, giving up: %v", job.LogicalKey, execErr)
		// The permanently_failed record is the only external signal that
		// automatic recovery has given up.
		s.recordAudit(ctx, models.AuditRecord{
			LogicalKey: job.LogicalKey,
			Attempt:    job.Attempt,
			Status:     models.AuditPermanentlyFailed,
			Error:      execErr.Error(),
			Timestamp:  s.now(),
		})
		return
	}

	s.logger.Info("Attempt %d for %s failed: %v", job.Attempt, job.LogicalKey, execErr)
	s.recordAudit(ctx, models.AuditRecord{
		LogicalKey: job.LogicalKey,
		Attempt:    job.Attempt,
		Status:     models.AuditFailed,
		Error:      execErr.Error(),
		Timestamp:  s.now(),
	})

	if err := s.Enqueue(ctx, job.LogicalKey, job.Payload, job.Attempt, execErr.Error()); err != nil {
		// The job is already out of the store; all that is left is to make
		// the loss visible.
		s.logger.Error("Failed to re-enqueue %s after attempt %d: %v", job.LogicalKey, job.Attempt, err)
	}
}

// deadLetter terminally records a claimed job whose body could not be
// decoded. Without this a poison job would be reclaimed and fail forever,
// occupying a batch slot on every tick.
func (s *Service) deadLetter(ctx context.Context, logicalKey string, now time.Time) {
	metrics.PoisonJobs.Inc()
	s.logger.Error("Dead-lettering unreadable job %s", logicalKey)
	s.recordAudit(ctx, models.AuditRecord{
		LogicalKey: logicalKey,
		Status:     models.AuditPermanentlyFailed,
		Error:      "job payload could not be decoded",
		Timestamp:  now,
	})
}

// recordAudit pushes one record to the audit sink. Sink failures are an
// observability loss, never a job failure.
func (s *Service) recordAudit(ctx context.Context, rec models.AuditRecord) {
	if err := s.sink.Record(ctx, rec); err != nil {
		metrics.AuditErrors.Inc()
		s.logger.Error("Failed to write audit record for %s: %v", rec.LogicalKey, err)
	}
}
