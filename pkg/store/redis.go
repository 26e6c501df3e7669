package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/provisionhq/provision-retrier/pkg/models"
)

// claimScript atomically pops due jobs: it reads the members of the schedule
// ZSET with score <= now, removes them and their bodies, and returns
// member/body pairs. Running it as a single Lua script guarantees that two
// concurrent pollers never receive the same job.
var claimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local out = {}
for _, member in ipairs(due) do
    redis.call('ZREM', KEYS[1], member)
    local body = redis.call('HGET', KEYS[2], member)
    redis.call('HDEL', KEYS[2], member)
    out[#out+1] = member
    out[#out+1] = body or ''
end
return out
`)

// RedisStore implements JobStore on a Redis sorted set. The ZSET member is
// the job's logical key scored by ExecuteAt (epoch seconds), which makes Add
// a coalescing upsert: re-registering a resource replaces its pending job.
// Job bodies live in a companion hash keyed by the same member.
type RedisStore struct {
	client   *redis.Client
	queueKey string
	bodyKey  string
}

var _ JobStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and returns a store rooted at queueKey.
// A failed initial ping is logged by the caller via Ping; construction does
// not fail so the process can start while Redis is still coming up.
func NewRedisStore(addr, password string, db int, queueKey string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{
		client:   rdb,
		queueKey: queueKey,
		bodyKey:  queueKey + ":jobs",
	}
}

func (s *RedisStore) Add(ctx context.Context, job models.RetryJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.LogicalKey, err)
	}

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, s.queueKey, redis.Z{Score: float64(job.ExecuteAt), Member: job.LogicalKey})
	pipe.HSet(ctx, s.bodyKey, job.LogicalKey, body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write job %s: %w", job.LogicalKey, err)
	}
	return nil
}

func (s *RedisStore) ClaimDue(ctx context.Context, now int64, limit int) ([]models.RetryJob, []string, error) {
	res, err := claimScript.Run(ctx, s.client,
		[]string{s.queueKey, s.bodyKey},
		now, limit,
	).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("claim script failed: %w", err)
	}

	pairs, ok := res.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("unexpected claim script result type %T", res)
	}

	var jobs []models.RetryJob
	var poisoned []string
	for i := 0; i+1 < len(pairs); i += 2 {
		member, _ := pairs[i].(string)
		body, _ := pairs[i+1].(string)
		if body == "" {
			// Member without a body: the hash entry is gone. Dead-letter it.
			poisoned = append(poisoned, member)
			continue
		}
		var job models.RetryJob
		if err := json.Unmarshal([]byte(body), &job); err != nil {
			poisoned = append(poisoned, member)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, poisoned, nil
}

func (s *RedisStore) Size(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, s.queueKey).Result()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client so collaborators (such as the
// audit stream sink) can share the connection pool.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
