package viewcount

import (
	"context"
	"time"

	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"
)

// FlushInterval is how often accumulated deltas are written behind to the
// durable store.
const FlushInterval = 10 * time.Second

// Flusher periodically drains the accumulator into the store. A failed
// batch is merged back so deltas are never silently dropped.
type Flusher struct {
	logger    logger.Logger
	videoRepo videos.Repository
	acc       *Accumulator
	interval  time.Duration
}

func NewFlusher(log logger.Logger, videoRepo videos.Repository, acc *Accumulator) *Flusher {
	return &Flusher{
		logger:    log,
		videoRepo: videoRepo,
		acc:       acc,
		interval:  FlushInterval,
	}
}

// Run flushes on a fixed interval until ctx is cancelled, then makes one
// final attempt to drain what is pending.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.Flush(context.Background())
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

func (f *Flusher) Flush(ctx context.Context) {
	counts := f.acc.Swap()
	if len(counts) == 0 {
		return
	}

	affected, err := f.videoRepo.IncrementViewCounts(ctx, counts)
	if err != nil || affected == 0 {
		f.logger.Warnf("view count flush failed (%d videos, affected=%d): %v", len(counts), affected, err)
		f.acc.MergeBack(counts)
		return
	}
	f.logger.Debugf("flushed view counts for %d videos", len(counts))
}
