// Package retrier implements the delayed-retry scheduler for failed
// provisioning operations: jobs are registered on the failure path, parked in
// a due-time ordered store, and driven through the executor by a background
// poller until they succeed or exhaust their attempt budget.
package retrier

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/provisionhq/provision-retrier/pkg/audit"
	"github.com/provisionhq/provision-retrier/pkg/backoff"
	"github.com/provisionhq/provision-retrier/pkg/circuitbreaker"
	"github.com/provisionhq/provision-retrier/pkg/config"
	"github.com/provisionhq/provision-retrier/pkg/executor"
	"github.com/provisionhq/provision-retrier/pkg/health"
	"github.com/provisionhq/provision-retrier/pkg/logger"
	"github.com/provisionhq/provision-retrier/pkg/metrics"
	"github.com/provisionhq/provision-retrier/pkg/models"
	"github.com/provisionhq/provision-retrier/pkg/store"
)

// Service owns the retry lifecycle: the Enqueue failure-path entry point, the
// poll loop, and the outcome handling for every claimed job. All collaborators
// are constructor-injected so the service can be unit-tested in isolation and
// run multiple times in tests.
type Service struct {
	cfg     *config.Config
	store   store.JobStore
	sink    audit.Sink
	exec    executor.Executor
	policy  backoff.Policy
	breaker *circuitbreaker.CircuitBreaker
	logger  logger.Logger
	wg      sync.WaitGroup

	// now is swapped out in tests to pin scheduling arithmetic.
	now func() time.Time
}

// NewService creates a new retrier service
func NewService(cfg *config.Config, st store.JobStore, sink audit.Sink, exec executor.Executor, l logger.Logger) *Service {
	if l == nil {
		l = &logger.EmptyLogger{}
	}
	return &Service{
		cfg:   cfg,
		store: st,
		sink:  sink,
		exec:  exec,
		policy: &backoff.Schedule{
			Steps:    cfg.BackoffSchedule,
			Fallback: cfg.BackoffFallback,
		},
		breaker: circuitbreaker.NewCircuitBreaker(
			cfg.CircuitBreaker.Enabled,
			cfg.CircuitBreaker.Threshold,
			cfg.CircuitBreaker.WindowDuration,
			cfg.CircuitBreaker.ResetTimeout,
			l,
		),
		logger: l,
		now:    time.Now,
	}
}

// Breaker exposes the executor circuit breaker for status reporting.
func (s *Service) Breaker() *circuitbreaker.CircuitBreaker {
	return s.breaker
}

// Start runs the poller loop until ctx is cancelled. Shutdown stops new ticks
// and waits for in-flight executions from the current tick to finish.
func (s *Service) Start(ctx context.Context) {
	healthServer := health.NewServer(s.cfg.MetricsPort, s.store, s.breaker, s.logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil {
			s.logger.Error("Health server stopped: %v", err)
		}
	}()

	s.logger.Info("Starting retrier with poll interval %v, batch size %d, max attempts %d",
		s.cfg.PollInterval, s.cfg.BatchSize, s.cfg.MaxAttempts)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Notice("Context cancelled, shutting down retrier")
			s.wg.Wait() // Wait for in-flight executions to finish
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Enqueue registers the next attempt for a failed provisioning operation. The
// stored job carries attempt+1, the number it will execute, and becomes due
// after the backoff delay for that attempt. Calling past the attempt cap is a
// caller bug: the stop decision belongs to the outcome handler, so the call is
// rejected, counted and logged instead of panicking.
func (s *Service) Enqueue(ctx context.Context, logicalKey string, payload []byte, attempt int, lastError string) error {
	next := attempt + 1
	if next > s.cfg.MaxAttempts {
		metrics.InvariantViolations.Inc()
		return fmt.Errorf("refusing to enqueue attempt %d for %s: past the cap of %d", next, logicalKey, s.cfg.MaxAttempts)
	}

	now := s.now()
	delay := s.policy.Delay(next)
	job := models.RetryJob{
		LogicalKey: logicalKey,
		Payload:    payload,
		Attempt:    next,
		LastError:  lastError,
		EnqueuedAt: now.Unix(),
		ExecuteAt:  now.Add(delay).Unix(),
	}

	if err := s.store.Add(ctx, job); err != nil {
		metrics.EnqueueErrors.Inc()
		return fmt.Errorf("failed to enqueue attempt %d for %s: %w", next, logicalKey, err)
	}
	metrics.JobsEnqueued.WithLabelValues(strconv.Itoa(next)).Inc()

	s.logger.Info("Scheduled attempt %d for %s in %v", next, logicalKey, delay)
	s.recordAudit(ctx, models.AuditRecord{
		LogicalKey: logicalKey,
		Attempt:    next,
		Status:     models.AuditPending,
		Error:      lastError,
		Timestamp:  now,
	})
	return nil
}

// RegisterFailure is the entry point for the triggering operation's failure
// path. Losing a retry registration must not turn into a second user-visible
// failure, so store errors are logged and swallowed here.
func (s *Service) RegisterFailure(ctx context.Context, logicalKey string, payload []byte, lastError string) {
	if err := s.Enqueue(ctx, logicalKey, payload, 0, lastError); err != nil {
		s.logger.Error("Failed to register retry for %s: %v", logicalKey, err)
	}
}
