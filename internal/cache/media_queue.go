package cache

import "context"

const mediaPendingDeleteKey = "media:pending-delete"

// MediaQueue holds media URLs whose deletion from object storage failed and
// must be retried by the cleanup worker.
type MediaQueue struct {
	redis *RedisClient
}

// NewMediaQueue creates a new MediaQueue.
func NewMediaQueue(redis *RedisClient) *MediaQueue {
	return &MediaQueue{redis: redis}
}

// Push enqueues URLs for deletion. Duplicates collapse.
func (q *MediaQueue) Push(ctx context.Context, urls ...string) error {
	return q.redis.SAdd(ctx, mediaPendingDeleteKey, urls...)
}

// Pop removes and returns up to n pending URLs.
func (q *MediaQueue) Pop(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return q.redis.SPopN(ctx, mediaPendingDeleteKey, int64(n))
}

// Len returns the number of pending URLs.
func (q *MediaQueue) Len(ctx context.Context) (int64, error) {
	return q.redis.SCard(ctx, mediaPendingDeleteKey)
}
