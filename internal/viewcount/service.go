package viewcount

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/google/uuid"
)

const (
	seedLockWait  = 3 * time.Second
	seedLockLease = 10 * time.Second
)

// Service is the ingest side of the view counter: it keeps the cached
// counter warm, increments it, and publishes one increment event per view.
type Service struct {
	logger    logger.Logger
	videoRepo videos.Repository
	redisRepo videos.RedisRepository
	publisher Publisher
}

func NewService(
	log logger.Logger,
	videoRepo videos.Repository,
	redisRepo videos.RedisRepository,
	publisher Publisher,
) *Service {
	return &Service{
		logger:    log,
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		publisher: publisher,
	}
}

func (s *Service) IncreaseViewCount(ctx context.Context, videoID uuid.UUID) error {
	_, cached, err := s.redisRepo.GetCachedViewCount(ctx, videoID)
	if err != nil {
		return err
	}
	if !cached {
		if err := s.seedViewCount(ctx, videoID); err != nil {
			return err
		}
	}

	if _, err := s.redisRepo.IncrViewCount(ctx, videoID); err != nil {
		return err
	}

	event := models.ViewIncrementEvent{
		MessageID: uuid.NewString(),
		VideoID:   videoID,
		Increment: 1,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal view event: %w", err)
	}
	if err := s.publisher.Publish(ctx, event.MessageID, data); err != nil {
		return fmt.Errorf("failed to publish view event: %w", err)
	}
	return nil
}

// seedViewCount loads the authoritative count into the cache under a
// short per-video lock, so a cold counter does not stampede the store.
func (s *Service) seedViewCount(ctx context.Context, videoID uuid.UUID) error {
	lockKey := videos.ViewLockKey + videoID.String()
	acquired, err := s.redisRepo.TryLock(ctx, lockKey, seedLockWait, seedLockLease)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("timed out waiting for view lock on video %s", videoID)
	}
	defer func() {
		if err := s.redisRepo.Unlock(context.Background(), lockKey); err != nil {
			s.logger.Errorf("failed to release view lock %s: %v", lockKey, err)
		}
	}()

	// Double check under the lock, another caller may have seeded already.
	_, cached, err := s.redisRepo.GetCachedViewCount(ctx, videoID)
	if err != nil {
		return err
	}
	if cached {
		return nil
	}

	count, err := s.videoRepo.GetViewCount(ctx, videoID)
	if err != nil {
		return err
	}
	return s.redisRepo.SeedViewCount(ctx, videoID, count)
}
