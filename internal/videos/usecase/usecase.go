package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"
	"github.com/vrsio/video-backend/pkg/utils"

	"github.com/google/uuid"
)

type videoUC struct {
	cfg       *config.Config
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	logger    logger.Logger
}

func NewVideoUseCase(
	cfg *config.Config,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	log logger.Logger,
) videos.UseCase {
	return &videoUC{
		cfg:       cfg,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		logger:    log,
	}
}

func (v *videoUC) EnqueueTranscode(ctx context.Context, req *models.TranscodeRequest) error {
	if err := utils.ValidateStruct(ctx, req); err != nil {
		v.logger.Errorf("EnqueueTranscode - ValidateStruct error: %v", err)
		return fmt.Errorf("invalid transcode request: %w", err)
	}
	if err := v.redisRepo.EnqueueTranscode(ctx, req); err != nil {
		v.logger.Errorf("EnqueueTranscode - EnqueueTranscode error: %v", err)
		return err
	}
	v.logger.Infof("enqueued transcode request for file %s", req.VideoFileID)
	return nil
}

func (v *videoUC) RequeueFailedFile(ctx context.Context, fileID uuid.UUID) error {
	file, err := v.videoRepo.GetVideoFileByID(ctx, fileID)
	if err != nil {
		return err
	}

	switch file.Status {
	case models.StatusTranscodeFailed:
		// file_path still holds the source upload, so the retry restarts
		// from the transcode stage.
		if err := v.videoRepo.ResetFileStatus(ctx, fileID, models.StatusPendingTranscode); err != nil {
			return err
		}
		req := &models.TranscodeRequest{
			VideoID:        file.VideoID,
			VideoFileID:    file.FileID,
			SourceFilePath: file.FilePath,
			UserID:         file.UserID,
			FileName:       file.FileName,
		}
		return v.EnqueueTranscode(ctx, req)

	case models.StatusUploadFailed:
		// The transcode already succeeded and file_path was rewritten to
		// the HLS output directory, which is still on disk because cleanup
		// only runs after a successful publish. Re-enter at the upload
		// stage instead of feeding that directory back to the transcoder.
		if err := v.videoRepo.ResetFileStatus(ctx, fileID, models.StatusPendingUpload); err != nil {
			return err
		}
		event := &models.TranscodeCompleteEvent{
			VideoID:         file.VideoID,
			VideoFileID:     file.FileID,
			OutputDir:       file.FilePath,
			Resolution:      file.Resolution,
			Duration:        file.Duration,
			UserID:          file.UserID,
			TargetDirectory: "videos/" + file.FileID.String(),
			Timestamp:       time.Now().UnixMilli(),
		}
		if _, err := v.redisRepo.AppendStageEvent(ctx, event); err != nil {
			v.logger.Errorf("RequeueFailedFile - AppendStageEvent error: %v", err)
			return err
		}
		v.logger.Infof("requeued upload for file %s", fileID)
		return nil

	default:
		return fmt.Errorf("file %s is not in a failed status: %s", fileID, file.Status)
	}
}

func (v *videoUC) GetVideo(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	return v.videoRepo.GetVideoByID(ctx, videoID)
}

func (v *videoUC) GetVideoFile(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error) {
	return v.videoRepo.GetVideoFileByID(ctx, fileID)
}
