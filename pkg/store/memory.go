package store

import (
	"context"
	"sort"
	"sync"

	"github.com/provisionhq/provision-retrier/pkg/models"
)

// MemoryStore is an in-process JobStore for tests and single-process
// deployments. It mirrors the Redis store semantics: upsert by logical key,
// atomic claim of due jobs ordered by ExecuteAt.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]models.RetryJob
}

var _ JobStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]models.RetryJob),
	}
}

func (m *MemoryStore) Add(_ context.Context, job models.RetryJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.LogicalKey] = job
	return nil
}

func (m *MemoryStore) ClaimDue(_ context.Context, now int64, limit int) ([]models.RetryJob, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []models.RetryJob
	for _, job := range m.jobs {
		if job.ExecuteAt <= now {
			due = append(due, job)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ExecuteAt < due[j].ExecuteAt
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for _, job := range due {
		delete(m.jobs, job.LogicalKey)
	}
	return due, nil, nil
}

func (m *MemoryStore) Size(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.jobs)), nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
