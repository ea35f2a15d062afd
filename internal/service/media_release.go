package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StagedMediaError reports a failed write after media had already been
// uploaded. Refs lists what was staged; the service has already tried to
// release it.
type StagedMediaError struct {
	Refs []string
	Err  error
}

func (e *StagedMediaError) Error() string {
	return fmt.Sprintf("%v (staged media: %d)", e.Err, len(e.Refs))
}

func (e *StagedMediaError) Unwrap() error { return e.Err }

// mediaReleaser deletes media and falls back to the cleanup queue when the
// store is unavailable.
type mediaReleaser struct {
	media MediaStore
	queue MediaQueue
}

// release deletes urls. Deletes that fail are queued; only a failing queue
// is logged as lost.
func (r mediaReleaser) release(ctx context.Context, urls []string) {
	if len(urls) == 0 || r.media == nil {
		return
	}
	err := r.media.Delete(ctx, urls)
	if err == nil {
		return
	}
	log.Warn().Err(err).Strs("urls", urls).Msg("Media delete failed, queueing for cleanup")
	if r.queue == nil {
		return
	}
	if qerr := r.queue.Push(ctx, urls...); qerr != nil {
		log.Error().Err(qerr).Strs("urls", urls).Msg("Failed to queue media for cleanup")
	}
}
