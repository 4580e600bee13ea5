package worker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/transcoder"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"
	"github.com/vrsio/video-backend/pkg/utils"

	"github.com/pkg/errors"
)

const (
	dequeueTimeout  = 5 * time.Second
	cpuIdleInterval = 10 * time.Second
	lockWait        = 3 * time.Second
)

// TranscodeWorker pulls transcode requests off the work queue and drives
// a file from PENDING_TRANSCODE to PENDING_UPLOAD or TRANSCODE_FAILED.
type TranscodeWorker struct {
	cfg        *config.Config
	logger     logger.Logger
	videoRepo  videos.Repository
	redisRepo  videos.RedisRepository
	transcoder transcoder.Transcoder
	wg         sync.WaitGroup
}

func NewTranscodeWorker(
	cfg *config.Config,
	logger logger.Logger,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	transcoder transcoder.Transcoder,
) *TranscodeWorker {
	return &TranscodeWorker{
		cfg:        cfg,
		logger:     logger,
		videoRepo:  videoRepo,
		redisRepo:  redisRepo,
		transcoder: transcoder,
	}
}

// Start launches the configured number of worker goroutines. They stop
// when ctx is cancelled; Wait blocks until the last one exits.
func (w *TranscodeWorker) Start(ctx context.Context) {
	w.logger.Infof("starting %d transcode workers", w.cfg.Worker.WorkerCount)
	for i := 0; i < w.cfg.Worker.WorkerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

func (w *TranscodeWorker) Wait() {
	w.wg.Wait()
}

func (w *TranscodeWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if canAcceptJob, usage := utils.CheckCPUUsage(w.cfg.Worker.MaxCPUUsage); !canAcceptJob {
			w.logger.Infof("CPU usage %.2f%% too high, waiting", usage)
			select {
			case <-ctx.Done():
				return
			case <-time.After(cpuIdleInterval):
			}
			continue
		}

		req, err := w.redisRepo.DequeueTranscode(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Errorf("failed to dequeue transcode request: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if req == nil {
			continue
		}

		if err := w.Handle(ctx, req); err != nil {
			w.logger.Errorf("transcode handler error for file %s: %v", req.VideoFileID, err)
		}
	}
}

// Handle processes one transcode request. Stale, duplicate and contended
// requests are benign no-ops; only infrastructure failures are returned.
func (w *TranscodeWorker) Handle(ctx context.Context, req *models.TranscodeRequest) error {
	if err := utils.ValidateStruct(ctx, req); err != nil {
		w.logger.Errorf("dropping invalid transcode request: %v", err)
		return nil
	}

	file, err := w.videoRepo.GetVideoFileByID(ctx, req.VideoFileID)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			w.logger.Errorf("video file not found, dropping request: %s", req.VideoFileID)
			return nil
		}
		return errors.Wrap(err, "reload video file")
	}

	if file.Status != models.StatusPendingTranscode {
		w.logger.Infof("skip transcoding file %s, status is %s", req.VideoFileID, file.Status)
		return nil
	}

	lockKey := videos.TranscodeLockKey + req.VideoFileID.String()
	acquired, err := w.redisRepo.TryLock(ctx, lockKey, lockWait, videos.TranscodeLockLease)
	if err != nil {
		return errors.Wrap(err, "acquire transcode lock")
	}
	if !acquired {
		w.logger.Infof("skip file %s, another worker holds the lock", req.VideoFileID)
		return nil
	}
	// Release on every exit path; the lease covers a crashed holder.
	defer func() {
		if err := w.redisRepo.Unlock(context.Background(), lockKey); err != nil {
			w.logger.Errorf("failed to release transcode lock %s: %v", lockKey, err)
		}
	}()

	if err := w.videoRepo.UpdateStatus(ctx, req.VideoID, req.VideoFileID, models.StatusTranscoding); err != nil {
		return errors.Wrap(err, "mark transcoding")
	}

	result, err := w.transcoder.ConvertToHLS(ctx, req.SourceFilePath, req.VideoFileID)
	if err != nil {
		w.logger.Errorf("transcode failed for file %s: %v", req.VideoFileID, err)
		w.markFailed(ctx, req)
		return nil
	}

	resolution := strings.Join(result.Resolutions, ",")
	if err := w.videoRepo.SetTranscodeResult(ctx, req.VideoID, req.VideoFileID, result.OutputDir, resolution, result.Duration); err != nil {
		w.logger.Errorf("failed to persist transcode result for file %s: %v", req.VideoFileID, err)
		w.markFailed(ctx, req)
		return nil
	}

	event := &models.TranscodeCompleteEvent{
		VideoID:         req.VideoID,
		VideoFileID:     req.VideoFileID,
		OutputDir:       result.OutputDir,
		Resolution:      resolution,
		Duration:        result.Duration,
		UserID:          req.UserID,
		TargetDirectory: "videos/" + req.VideoFileID.String(),
		Timestamp:       time.Now().UnixMilli(),
	}
	if _, err := w.redisRepo.AppendStageEvent(ctx, event); err != nil {
		w.logger.Errorf("failed to append stage event for file %s: %v", req.VideoFileID, err)
		w.markFailed(ctx, req)
		return nil
	}

	w.logger.Infof("transcoded file %s: %s, %ds", req.VideoFileID, resolution, result.Duration)
	return nil
}

func (w *TranscodeWorker) markFailed(ctx context.Context, req *models.TranscodeRequest) {
	if err := w.videoRepo.UpdateStatus(ctx, req.VideoID, req.VideoFileID, models.StatusTranscodeFailed); err != nil {
		w.logger.Errorf("failed to mark file %s transcode_failed: %v", req.VideoFileID, err)
	}
}
