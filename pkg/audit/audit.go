// Package audit defines the append-only attempt trail the retrier writes to.
// The trail's storage and query surface belong to whoever consumes it; the
// retrier only pushes records and never reads them back.
package audit

import (
	"context"
	"sync"

	"github.com/provisionhq/provision-retrier/pkg/logger"
	"github.com/provisionhq/provision-retrier/pkg/models"
)

// Sink receives one record per provisioning attempt. Implementations must be
// safe for concurrent use. Sink errors are observability losses, not job
// failures: callers log them and move on.
type Sink interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

// LoggerSink writes audit records to the process log. It is the fallback
// sink when no durable audit backend is configured.
type LoggerSink struct {
	logger logger.Logger
}

var _ Sink = (*LoggerSink)(nil)

func NewLoggerSink(l logger.Logger) *LoggerSink {
	return &LoggerSink{logger: l}
}

func (s *LoggerSink) Record(_ context.Context, rec models.AuditRecord) error {
	if rec.Error != "" {
		s.logger.Notice("audit: key=%s attempt=%d status=%s error=%q", rec.LogicalKey, rec.Attempt, rec.Status, rec.Error)
	} else {
		s.logger.Notice("audit: key=%s attempt=%d status=%s", rec.LogicalKey, rec.Attempt, rec.Status)
	}
	return nil
}

// MemorySink collects records in memory for inspection in tests.
type MemorySink struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

var _ Sink = (*MemorySink)(nil)

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(_ context.Context, rec models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (s *MemorySink) Records() []models.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ByStatus returns the recorded entries with the given status.
func (s *MemorySink) ByStatus(status models.AuditStatus) []models.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AuditRecord
	for _, rec := range s.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
