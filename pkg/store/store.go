// Package store holds the job store contract and its implementations. The
// scheduler depends only on the JobStore interface; due-ness is determined
// solely by the ExecuteAt score.
package store

import (
	"context"

	"github.com/provisionhq/provision-retrier/pkg/models"
)

// JobStore is a shared, concurrently-accessible structure ordered by due time.
//
// Add upserts a job keyed by its LogicalKey and scored by ExecuteAt, so a
// second registration for the same resource replaces the pending job instead
// of duplicating it.
//
// ClaimDue atomically removes and returns up to limit jobs whose ExecuteAt is
// at or before now (epoch seconds). Atomicity is required: a job returned to
// one claimer must never be returned to a concurrent one. Bodies that cannot
// be decoded into a RetryJob are still removed and come back in the second
// return value so the caller can dead-letter them instead of reclaiming them
// forever.
type JobStore interface {
	Add(ctx context.Context, job models.RetryJob) error
	ClaimDue(ctx context.Context, now int64, limit int) (jobs []models.RetryJob, poisoned []string, err error)
	Size(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
