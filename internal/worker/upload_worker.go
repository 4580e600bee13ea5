package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	readBatchSize = 10
	readBlock     = 5 * time.Second
)

// UploadWorker consumes transcode-complete events from the processing
// stream through a consumer group and publishes the output directory to
// object storage, moving the file from PENDING_UPLOAD to PUBLISHED or
// UPLOAD_FAILED.
type UploadWorker struct {
	cfg       *config.Config
	logger    logger.Logger
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	awsRepo   videos.AWSRepository
	consumer  string
}

func NewUploadWorker(
	cfg *config.Config,
	logger logger.Logger,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	awsRepo videos.AWSRepository,
) *UploadWorker {
	return &UploadWorker{
		cfg:       cfg,
		logger:    logger,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		awsRepo:   awsRepo,
		// Random suffix so horizontally scaled instances never collide
		// inside the shared group.
		consumer: videos.ConsumerPrefix + uuid.NewString(),
	}
}

// Run blocks until ctx is cancelled.
func (w *UploadWorker) Run(ctx context.Context) error {
	if err := w.redisRepo.EnsureStageGroup(ctx); err != nil {
		return errors.Wrap(err, "ensure consumer group")
	}
	w.logger.Infof("upload worker %s consuming %s", w.consumer, videos.ProcessStreamKey)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		events, err := w.redisRepo.ReadStageEvents(ctx, w.consumer, readBatchSize, readBlock)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Errorf("failed to read stage events: %v", err)
			time.Sleep(time.Second)
			continue
		}

		for _, event := range events {
			if err := w.Handle(ctx, event); err != nil {
				w.logger.Errorf("upload handler error for record %s: %v", event.ID, err)
			}
		}
	}
}

// Handle processes one stage event. Records that fail mid-upload are left
// unacknowledged so the group redelivers them; the status guard turns that
// redelivery into a no-op until an operator resets the file.
func (w *UploadWorker) Handle(ctx context.Context, event *models.StageEvent) error {
	if event.Type != models.EventTranscodeComplete || event.TranscodeComplete == nil {
		// Unknown event kinds are fine, future producers may add more.
		return w.ack(ctx, event.ID)
	}
	e := event.TranscodeComplete

	file, err := w.videoRepo.GetVideoFileByID(ctx, e.VideoFileID)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			w.logger.Errorf("video file not found, dropping event %s", event.ID)
			return w.ack(ctx, event.ID)
		}
		return errors.Wrap(err, "reload video file")
	}

	if file.Status != models.StatusPendingUpload {
		w.logger.Infof("skip uploading file %s, status is %s", e.VideoFileID, file.Status)
		return w.ack(ctx, event.ID)
	}

	video, err := w.videoRepo.GetVideoByID(ctx, e.VideoID)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			w.logger.Errorf("video not found, dropping event %s", event.ID)
			return w.ack(ctx, event.ID)
		}
		return errors.Wrap(err, "reload video")
	}

	if err := w.videoRepo.UpdateStatus(ctx, e.VideoID, e.VideoFileID, models.StatusUploading); err != nil {
		return errors.Wrap(err, "mark uploading")
	}

	fileURL, err := w.awsRepo.UploadDirectory(ctx, e.OutputDir, e.TargetDirectory)
	if err != nil {
		w.logger.Errorf("upload failed for file %s: %v", e.VideoFileID, err)
		w.markFailed(ctx, e)
		return nil
	}

	thumbnailURL := video.ThumbnailURL
	if thumbnailURL != "" && !isRemoteURL(thumbnailURL) {
		key := "covers/" + filepath.Base(thumbnailURL)
		thumbnailURL, err = w.awsRepo.UploadFile(ctx, video.ThumbnailURL, key)
		if err != nil {
			w.logger.Errorf("thumbnail upload failed for video %s: %v", e.VideoID, err)
			w.markFailed(ctx, e)
			return nil
		}
	}

	if err := w.videoRepo.MarkPublished(ctx, e.VideoID, e.VideoFileID, fileURL, thumbnailURL); err != nil {
		w.logger.Errorf("failed to mark file %s published: %v", e.VideoFileID, err)
		w.markFailed(ctx, e)
		return nil
	}

	if err := os.RemoveAll(e.OutputDir); err != nil {
		w.logger.Warnf("failed to remove local output %s: %v", e.OutputDir, err)
	}

	w.logger.Infof("published file %s at %s", e.VideoFileID, fileURL)
	return w.ack(ctx, event.ID)
}

func (w *UploadWorker) ack(ctx context.Context, id string) error {
	if err := w.redisRepo.AckStageEvent(ctx, id); err != nil {
		return errors.Wrapf(err, "ack record %s", id)
	}
	return nil
}

func (w *UploadWorker) markFailed(ctx context.Context, e *models.TranscodeCompleteEvent) {
	if err := w.videoRepo.UpdateStatus(ctx, e.VideoID, e.VideoFileID, models.StatusUploadFailed); err != nil {
		w.logger.Errorf("failed to mark file %s upload_failed: %v", e.VideoFileID, err)
	}
}

func isRemoteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
