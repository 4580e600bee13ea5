package videos

import (
	"context"
	"errors"

	"github.com/vrsio/video-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced video or file row does not
// exist. Workers treat it as unrecoverable and drop the message.
var ErrNotFound = errors.New("video not found")

// Repository is the durable status store for videos and their files.
type Repository interface {
	GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	GetVideoFileByID(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error)

	// UpdateStatus moves the video row and its file row to the given status.
	UpdateStatus(ctx context.Context, videoID, fileID uuid.UUID, status models.VideoStatus) error

	// SetTranscodeResult persists the transcode output and moves both rows
	// to PENDING_UPLOAD in one call.
	SetTranscodeResult(ctx context.Context, videoID, fileID uuid.UUID, outputDir, resolution string, duration int64) error

	// MarkPublished records the remote URLs and moves both rows to PUBLISHED.
	MarkPublished(ctx context.Context, videoID, fileID uuid.UUID, fileURL, thumbnailURL string) error

	// ResetFileStatus is the operator-driven re-enqueue hook; the pipeline
	// itself never calls it.
	ResetFileStatus(ctx context.Context, fileID uuid.UUID, status models.VideoStatus) error

	GetViewCount(ctx context.Context, videoID uuid.UUID) (int64, error)

	// IncrementViewCounts applies a batch of pending deltas and reports how
	// many rows were touched.
	IncrementViewCounts(ctx context.Context, deltas map[uuid.UUID]int64) (int64, error)
}
