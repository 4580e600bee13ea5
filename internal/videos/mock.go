package videos

import (
	"context"
	"time"

	"github.com/vrsio/video-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, videoID)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetVideoFileByID(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error) {
	args := m.Called(ctx, fileID)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, videoID, fileID uuid.UUID, status models.VideoStatus) error {
	args := m.Called(ctx, videoID, fileID, status)
	return args.Error(0)
}

func (m *MockRepository) SetTranscodeResult(ctx context.Context, videoID, fileID uuid.UUID, outputDir, resolution string, duration int64) error {
	args := m.Called(ctx, videoID, fileID, outputDir, resolution, duration)
	return args.Error(0)
}

func (m *MockRepository) MarkPublished(ctx context.Context, videoID, fileID uuid.UUID, fileURL, thumbnailURL string) error {
	args := m.Called(ctx, videoID, fileID, fileURL, thumbnailURL)
	return args.Error(0)
}

func (m *MockRepository) ResetFileStatus(ctx context.Context, fileID uuid.UUID, status models.VideoStatus) error {
	args := m.Called(ctx, fileID, status)
	return args.Error(0)
}

func (m *MockRepository) GetViewCount(ctx context.Context, videoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) IncrementViewCounts(ctx context.Context, deltas map[uuid.UUID]int64) (int64, error) {
	args := m.Called(ctx, deltas)
	return args.Get(0).(int64), args.Error(1)
}

type MockRedisRepository struct {
	mock.Mock
}

func NewMockRedisRepository() *MockRedisRepository {
	return &MockRedisRepository{}
}

func (m *MockRedisRepository) EnqueueTranscode(ctx context.Context, req *models.TranscodeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRedisRepository) DequeueTranscode(ctx context.Context, timeout time.Duration) (*models.TranscodeRequest, error) {
	args := m.Called(ctx, timeout)
	if v := args.Get(0); v != nil {
		return v.(*models.TranscodeRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRedisRepository) TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	args := m.Called(ctx, key, wait, lease)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedisRepository) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepository) AppendStageEvent(ctx context.Context, event *models.TranscodeCompleteEvent) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) EnsureStageGroup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRedisRepository) ReadStageEvents(ctx context.Context, consumer string, count int64, block time.Duration) ([]*models.StageEvent, error) {
	args := m.Called(ctx, consumer, count, block)
	if v := args.Get(0); v != nil {
		return v.([]*models.StageEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRedisRepository) AckStageEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRedisRepository) GetCachedViewCount(ctx context.Context, videoID uuid.UUID) (int64, bool, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockRedisRepository) SeedViewCount(ctx context.Context, videoID uuid.UUID, count int64) error {
	args := m.Called(ctx, videoID, count)
	return args.Error(0)
}

func (m *MockRedisRepository) IncrViewCount(ctx context.Context, videoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisRepository) SetDedupMarker(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, messageID, ttl)
	return args.Bool(0), args.Error(1)
}

type MockAWSRepository struct {
	mock.Mock
}

func NewMockAWSRepository() *MockAWSRepository {
	return &MockAWSRepository{}
}

func (m *MockAWSRepository) UploadDirectory(ctx context.Context, localDir, remotePrefix string) (string, error) {
	args := m.Called(ctx, localDir, remotePrefix)
	return args.String(0), args.Error(1)
}

func (m *MockAWSRepository) UploadFile(ctx context.Context, localPath, key string) (string, error) {
	args := m.Called(ctx, localPath, key)
	return args.String(0), args.Error(1)
}
