package audit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/provisionhq/provision-retrier/pkg/models"
)

// maxStreamLen caps the audit stream with approximate trimming so an
// unattended deployment cannot grow it without bound.
const maxStreamLen = 100000

// RedisStreamSink appends audit records to a Redis stream via XADD. Each
// record becomes one stream entry; consumers read the trail with XRANGE or
// consumer groups, which is outside this package's concern.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

var _ Sink = (*RedisStreamSink)(nil)

func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{
		client: client,
		stream: stream,
	}
}

func (s *RedisStreamSink) Record(ctx context.Context, rec models.AuditRecord) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"logical_key": rec.LogicalKey,
			"attempt":     rec.Attempt,
			"status":      string(rec.Status),
			"error":       rec.Error,
			"timestamp":   rec.Timestamp.Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append audit record for %s: %w", rec.LogicalKey, err)
	}
	return nil
}
