package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/cache"
)

type recordingDeleter struct {
	deleted []string
	err     error
}

func (d *recordingDeleter) Delete(_ context.Context, urls []string) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, urls...)
	return nil
}

func newQueue(t *testing.T) *cache.MediaQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewMediaQueue(cache.WrapRedisClient(client))
}

func TestMediaCleanupDrainsInBatches(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	require.NoError(t, queue.Push(ctx, "u1", "u2", "u3"))
	deleter := &recordingDeleter{}
	w := NewMediaCleanupWorker(queue, deleter, time.Minute, 2)

	assert.Equal(t, 2, w.run(ctx))
	assert.Equal(t, 1, w.run(ctx))
	assert.Equal(t, 0, w.run(ctx))
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, deleter.deleted)
}

func TestMediaCleanupRequeuesOnFailure(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	require.NoError(t, queue.Push(ctx, "u1", "u2"))
	deleter := &recordingDeleter{err: errors.New("s3 down")}
	w := NewMediaCleanupWorker(queue, deleter, time.Minute, 10)

	assert.Equal(t, 0, w.run(ctx))
	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	deleter.err = nil
	assert.Equal(t, 2, w.run(ctx))
}

func TestMediaCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewMediaCleanupWorker(newQueue(t), &recordingDeleter{}, 10*time.Millisecond, 1)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
