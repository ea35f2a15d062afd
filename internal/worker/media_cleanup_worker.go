package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PendingMedia is the queue of media URLs whose delete must be retried.
type PendingMedia interface {
	Push(ctx context.Context, urls ...string) error
	Pop(ctx context.Context, n int) ([]string, error)
}

// MediaDeleter deletes media objects by URL.
type MediaDeleter interface {
	Delete(ctx context.Context, urls []string) error
}

// MediaCleanupWorker retries media deletes that failed during product writes.
type MediaCleanupWorker struct {
	queue    PendingMedia
	media    MediaDeleter
	interval time.Duration
	batch    int
}

// NewMediaCleanupWorker constructs a MediaCleanupWorker.
func NewMediaCleanupWorker(queue PendingMedia, media MediaDeleter, interval time.Duration, batch int) *MediaCleanupWorker {
	if batch <= 0 {
		batch = 50
	}
	return &MediaCleanupWorker{
		queue:    queue,
		media:    media,
		interval: interval,
		batch:    batch,
	}
}

// Start begins the periodic cleanup loop until context is canceled.
func (w *MediaCleanupWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Int("batch", w.batch).Msg("Starting media cleanup worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Media cleanup worker stopped")
			return
		}
	}
}

// run drains one batch. A batch that fails to delete goes back on the queue.
func (w *MediaCleanupWorker) run(ctx context.Context) int {
	urls, err := w.queue.Pop(ctx, w.batch)
	if err != nil {
		log.Error().Err(err).Msg("Failed to pop pending media")
		return 0
	}
	if len(urls) == 0 {
		return 0
	}

	if err := w.media.Delete(ctx, urls); err != nil {
		log.Warn().Err(err).Int("count", len(urls)).Msg("Media cleanup failed, requeueing")
		// Requeue with a fresh context so shutdown does not drop the batch.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if qerr := w.queue.Push(rctx, urls...); qerr != nil {
			log.Error().Err(qerr).Strs("urls", urls).Msg("Failed to requeue media")
		}
		return 0
	}

	log.Info().Int("count", len(urls)).Msg("Pending media deleted")
	return len(urls)
}
