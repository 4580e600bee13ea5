package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/transcoder"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTranscoder struct {
	mock.Mock
}

func (m *mockTranscoder) ConvertToHLS(ctx context.Context, inputPath string, fileID uuid.UUID) (*transcoder.Result, error) {
	args := m.Called(ctx, inputPath, fileID)
	if v := args.Get(0); v != nil {
		return v.(*transcoder.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{WorkerCount: 1, MaxCPUUsage: 100},
		Logger: config.Logger{Development: true, Encoding: "console", Level: "error"},
	}
}

func testLogger(cfg *config.Config) logger.Logger {
	apiLogger := logger.NewApiLogger(cfg)
	apiLogger.InitLogger()
	return apiLogger
}

func testRequest() *models.TranscodeRequest {
	return &models.TranscodeRequest{
		VideoID:        uuid.New(),
		VideoFileID:    uuid.New(),
		SourceFilePath: "/tmp/uploads/source.mp4",
		UserID:         uuid.New(),
		FileName:       "source.mp4",
	}
}

func newTestTranscodeWorker(videoRepo *videos.MockRepository, redisRepo *videos.MockRedisRepository, tc *mockTranscoder) *TranscodeWorker {
	cfg := testConfig()
	return NewTranscodeWorker(cfg, testLogger(cfg), videoRepo, redisRepo, tc)
}

func TestTranscodeWorker_Handle_Success(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	req := testRequest()
	lockKey := videos.TranscodeLockKey + req.VideoFileID.String()

	videoRepo.On("GetVideoFileByID", mock.Anything, req.VideoFileID).
		Return(&models.VideoFile{FileID: req.VideoFileID, VideoID: req.VideoID, Status: models.StatusPendingTranscode}, nil)
	redisRepo.On("TryLock", mock.Anything, lockKey, lockWait, videos.TranscodeLockLease).Return(true, nil)
	videoRepo.On("UpdateStatus", mock.Anything, req.VideoID, req.VideoFileID, models.StatusTranscoding).Return(nil)
	tc.On("ConvertToHLS", mock.Anything, req.SourceFilePath, req.VideoFileID).
		Return(&transcoder.Result{OutputDir: "/tmp/transcoded/" + req.VideoFileID.String(), Resolutions: []string{"480p", "720p"}, Duration: 42}, nil)
	videoRepo.On("SetTranscodeResult", mock.Anything, req.VideoID, req.VideoFileID, "/tmp/transcoded/"+req.VideoFileID.String(), "480p,720p", int64(42)).Return(nil)
	redisRepo.On("AppendStageEvent", mock.Anything, mock.MatchedBy(func(e *models.TranscodeCompleteEvent) bool {
		return e.VideoFileID == req.VideoFileID &&
			e.Resolution == "480p,720p" &&
			e.TargetDirectory == "videos/"+req.VideoFileID.String()
	})).Return("1-0", nil)
	redisRepo.On("Unlock", mock.Anything, lockKey).Return(nil)

	err := w.Handle(context.Background(), req)
	require.NoError(t, err)
	videoRepo.AssertExpectations(t)
	redisRepo.AssertExpectations(t)
	tc.AssertExpectations(t)
}

func TestTranscodeWorker_Handle_StatusGuardSkips(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	req := testRequest()
	videoRepo.On("GetVideoFileByID", mock.Anything, req.VideoFileID).
		Return(&models.VideoFile{FileID: req.VideoFileID, Status: models.StatusTranscoding}, nil)

	err := w.Handle(context.Background(), req)
	require.NoError(t, err)
	redisRepo.AssertNotCalled(t, "TryLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tc.AssertNotCalled(t, "ConvertToHLS", mock.Anything, mock.Anything, mock.Anything)
	videoRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscodeWorker_Handle_LockContentionSkips(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	req := testRequest()
	videoRepo.On("GetVideoFileByID", mock.Anything, req.VideoFileID).
		Return(&models.VideoFile{FileID: req.VideoFileID, Status: models.StatusPendingTranscode}, nil)
	redisRepo.On("TryLock", mock.Anything, mock.Anything, lockWait, videos.TranscodeLockLease).Return(false, nil)

	err := w.Handle(context.Background(), req)
	require.NoError(t, err)
	tc.AssertNotCalled(t, "ConvertToHLS", mock.Anything, mock.Anything, mock.Anything)
	redisRepo.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything)
	videoRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscodeWorker_Handle_TranscodeFailure(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	req := testRequest()
	lockKey := videos.TranscodeLockKey + req.VideoFileID.String()

	videoRepo.On("GetVideoFileByID", mock.Anything, req.VideoFileID).
		Return(&models.VideoFile{FileID: req.VideoFileID, Status: models.StatusPendingTranscode}, nil)
	redisRepo.On("TryLock", mock.Anything, lockKey, lockWait, videos.TranscodeLockLease).Return(true, nil)
	videoRepo.On("UpdateStatus", mock.Anything, req.VideoID, req.VideoFileID, models.StatusTranscoding).Return(nil)
	tc.On("ConvertToHLS", mock.Anything, req.SourceFilePath, req.VideoFileID).
		Return(nil, errors.New("ffmpeg exited with status 1"))
	videoRepo.On("UpdateStatus", mock.Anything, req.VideoID, req.VideoFileID, models.StatusTranscodeFailed).Return(nil)
	redisRepo.On("Unlock", mock.Anything, lockKey).Return(nil)

	err := w.Handle(context.Background(), req)
	require.NoError(t, err)
	redisRepo.AssertNotCalled(t, "AppendStageEvent", mock.Anything, mock.Anything)
	videoRepo.AssertExpectations(t)
	redisRepo.AssertExpectations(t)
}

func TestTranscodeWorker_Handle_MissingFileDropsRequest(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	req := testRequest()
	videoRepo.On("GetVideoFileByID", mock.Anything, req.VideoFileID).Return(nil, videos.ErrNotFound)

	err := w.Handle(context.Background(), req)
	require.NoError(t, err)
	redisRepo.AssertNotCalled(t, "TryLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscodeWorker_Handle_InvalidRequestDropped(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	tc := &mockTranscoder{}
	w := newTestTranscodeWorker(videoRepo, redisRepo, tc)

	err := w.Handle(context.Background(), &models.TranscodeRequest{})
	require.NoError(t, err)
	videoRepo.AssertNotCalled(t, "GetVideoFileByID", mock.Anything, mock.Anything)
}
