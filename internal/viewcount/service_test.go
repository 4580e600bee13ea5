package viewcount

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func TestService_IncreaseViewCount_WarmCache(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	publisher := &mockPublisher{}
	s := NewService(testLogger(), videoRepo, redisRepo, publisher)

	videoID := uuid.New()
	redisRepo.On("GetCachedViewCount", mock.Anything, videoID).Return(int64(12), true, nil)
	redisRepo.On("IncrViewCount", mock.Anything, videoID).Return(int64(13), nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(value []byte) bool {
		var event models.ViewIncrementEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return false
		}
		return event.VideoID == videoID && event.Increment == 1 && event.MessageID != ""
	})).Return(nil)

	require.NoError(t, s.IncreaseViewCount(context.Background(), videoID))
	videoRepo.AssertNotCalled(t, "GetViewCount", mock.Anything, mock.Anything)
	publisher.AssertExpectations(t)
}

func TestService_IncreaseViewCount_ColdCacheSeeds(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	publisher := &mockPublisher{}
	s := NewService(testLogger(), videoRepo, redisRepo, publisher)

	videoID := uuid.New()
	lockKey := videos.ViewLockKey + videoID.String()

	redisRepo.On("GetCachedViewCount", mock.Anything, videoID).Return(int64(0), false, nil)
	redisRepo.On("TryLock", mock.Anything, lockKey, seedLockWait, seedLockLease).Return(true, nil)
	videoRepo.On("GetViewCount", mock.Anything, videoID).Return(int64(100), nil)
	redisRepo.On("SeedViewCount", mock.Anything, videoID, int64(100)).Return(nil)
	redisRepo.On("Unlock", mock.Anything, lockKey).Return(nil)
	redisRepo.On("IncrViewCount", mock.Anything, videoID).Return(int64(101), nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, s.IncreaseViewCount(context.Background(), videoID))
	videoRepo.AssertExpectations(t)
	redisRepo.AssertExpectations(t)
}

func TestService_IncreaseViewCount_SeedRaceDoubleChecks(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	publisher := &mockPublisher{}
	s := NewService(testLogger(), videoRepo, redisRepo, publisher)

	videoID := uuid.New()
	lockKey := videos.ViewLockKey + videoID.String()

	// Cold before the lock, warm after: another caller seeded first.
	redisRepo.On("GetCachedViewCount", mock.Anything, videoID).Return(int64(0), false, nil).Once()
	redisRepo.On("TryLock", mock.Anything, lockKey, seedLockWait, seedLockLease).Return(true, nil)
	redisRepo.On("GetCachedViewCount", mock.Anything, videoID).Return(int64(100), true, nil).Once()
	redisRepo.On("Unlock", mock.Anything, lockKey).Return(nil)
	redisRepo.On("IncrViewCount", mock.Anything, videoID).Return(int64(101), nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, s.IncreaseViewCount(context.Background(), videoID))
	videoRepo.AssertNotCalled(t, "GetViewCount", mock.Anything, mock.Anything)
	redisRepo.AssertNotCalled(t, "SeedViewCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_IncreaseViewCount_PublishFailureSurfaces(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	redisRepo := videos.NewMockRedisRepository()
	publisher := &mockPublisher{}
	s := NewService(testLogger(), videoRepo, redisRepo, publisher)

	videoID := uuid.New()
	redisRepo.On("GetCachedViewCount", mock.Anything, videoID).Return(int64(12), true, nil)
	redisRepo.On("IncrViewCount", mock.Anything, videoID).Return(int64(13), nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	require.Error(t, s.IncreaseViewCount(context.Background(), videoID))
}
