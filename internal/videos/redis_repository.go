package videos

import (
	"context"
	"time"

	"github.com/vrsio/video-backend/internal/models"

	"github.com/google/uuid"
)

const (
	TranscodeQueueKey  = "video:transcode:queue"
	TranscodeLockKey   = "video:transcode:lock:"
	ProcessStreamKey   = "video:process:stream"
	ProcessGroup       = "video-process-group"
	ConsumerPrefix     = "consumer-"
	ViewCountKey       = "video:view:count:"
	ViewLockKey        = "video:view:lock:"
	ViewDedupKey       = "video:view:msg:"
	TranscodeLockLease = 30 * time.Second
)

// RedisRepository carries the transcode work queue, the stage-completion
// event log, the per-file lease lock and the view counter cache.
type RedisRepository interface {
	EnqueueTranscode(ctx context.Context, req *models.TranscodeRequest) error

	// DequeueTranscode blocks up to timeout; a nil request with nil error
	// means the queue stayed empty.
	DequeueTranscode(ctx context.Context, timeout time.Duration) (*models.TranscodeRequest, error)

	// TryLock acquires a leased lock, waiting up to wait. It reports false
	// without error when another holder owns the key.
	TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error)

	// Unlock is a no-op when the key is not held.
	Unlock(ctx context.Context, key string) error

	AppendStageEvent(ctx context.Context, event *models.TranscodeCompleteEvent) (string, error)

	// EnsureStageGroup creates the stream and consumer group; both already
	// existing is not an error.
	EnsureStageGroup(ctx context.Context) error

	// ReadStageEvents returns the next undelivered records for this consumer,
	// blocking up to block when the stream is drained. Each process reads
	// under a fresh consumer name, so records a crashed process left
	// unacknowledged are not auto-claimed by survivors; recovery for those
	// goes through the operator requeue path, which re-appends the event.
	ReadStageEvents(ctx context.Context, consumer string, count int64, block time.Duration) ([]*models.StageEvent, error)

	AckStageEvent(ctx context.Context, id string) error

	GetCachedViewCount(ctx context.Context, videoID uuid.UUID) (int64, bool, error)
	SeedViewCount(ctx context.Context, videoID uuid.UUID, count int64) error
	IncrViewCount(ctx context.Context, videoID uuid.UUID) (int64, error)

	// SetDedupMarker reports true when the marker was newly set, false when
	// the message id was already seen inside the ttl window.
	SetDedupMarker(ctx context.Context, messageID string, ttl time.Duration) (bool, error)
}
