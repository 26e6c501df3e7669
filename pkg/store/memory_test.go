package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisionhq/provision-retrier/pkg/models"
)

func testJob(key string, attempt int, executeAt int64) models.RetryJob {
	return models.RetryJob{
		LogicalKey: key,
		Payload:    json.RawMessage(`{"resource":"` + key + `"}`),
		Attempt:    attempt,
		EnqueuedAt: executeAt - 60,
		ExecuteAt:  executeAt,
	}
}

func TestMemoryStoreDueTimeRespected(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Job due at t0+60: invisible one second early, claimable exactly on time.
	const t0 = int64(1000)
	require.NoError(t, s.Add(ctx, testJob("res-1", 1, t0+60)))

	jobs, poisoned, err := s.ClaimDue(ctx, t0+59, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs, "job must not be claimable before its due time")
	assert.Empty(t, poisoned)

	jobs, _, err = s.ClaimDue(ctx, t0+60, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "res-1", jobs[0].LogicalKey)
	assert.Equal(t, 1, jobs[0].Attempt)
}

func TestMemoryStoreClaimRemovesJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, testJob("res-1", 1, 100)))

	jobs, _, err := s.ClaimDue(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// A claimed job is gone; a second claim sees nothing.
	jobs, _, err = s.ClaimDue(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	size, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestMemoryStoreBatchLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i, key := range []string{"res-c", "res-a", "res-b"} {
		require.NoError(t, s.Add(ctx, testJob(key, 1, int64(300-i*100))))
	}

	jobs, _, err := s.ClaimDue(ctx, 300, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	// Earliest due first.
	assert.Equal(t, "res-b", jobs[0].LogicalKey)
	assert.Equal(t, "res-a", jobs[1].LogicalKey)

	size, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestMemoryStoreCoalescesByLogicalKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, testJob("res-1", 1, 100)))
	require.NoError(t, s.Add(ctx, testJob("res-1", 2, 400)))

	size, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size, "re-adding the same logical key must replace the pending job")

	// The earlier due time was replaced along with the job.
	jobs, _, err := s.ClaimDue(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, _, err = s.ClaimDue(ctx, 400, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Attempt)
}

func TestMemoryStoreExclusiveClaim(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, testJob("res-1", 1, 100)))

	// Two simulated pollers race for a single due job: exactly one wins.
	const claimers = 2
	results := make([][]models.RetryJob, claimers)
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(claimers)
	for i := 0; i < claimers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			jobs, _, err := s.ClaimDue(ctx, 100, 10)
			assert.NoError(t, err)
			results[i] = jobs
		}(i)
	}
	start.Done()
	done.Wait()

	total := 0
	for _, jobs := range results {
		total += len(jobs)
	}
	assert.Equal(t, 1, total, "exactly one claimer must receive the job")
}
