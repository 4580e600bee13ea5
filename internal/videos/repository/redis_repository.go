package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockRetryInterval = 100 * time.Millisecond

type videoRedisRepo struct {
	redisClient *redis.Client
}

func NewVideoRedisRepo(redisClient *redis.Client) videos.RedisRepository {
	return &videoRedisRepo{
		redisClient: redisClient,
	}
}

func (v *videoRedisRepo) EnqueueTranscode(ctx context.Context, req *models.TranscodeRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal transcode request: %w", err)
	}
	return v.redisClient.LPush(ctx, videos.TranscodeQueueKey, data).Err()
}

func (v *videoRedisRepo) DequeueTranscode(ctx context.Context, timeout time.Duration) (*models.TranscodeRequest, error) {
	res, err := v.redisClient.BRPop(ctx, timeout, videos.TranscodeQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop transcode request: %w", err)
	}
	req := &models.TranscodeRequest{}
	if err = json.Unmarshal([]byte(res[1]), req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcode request: %w", err)
	}
	return req, nil
}

func (v *videoRedisRepo) TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	deadline := time.Now().Add(wait)
	for {
		locked, err := v.redisClient.SetNX(ctx, key, 1, lease).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if locked {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (v *videoRedisRepo) Unlock(ctx context.Context, key string) error {
	return v.redisClient.Del(ctx, key).Err()
}

func (v *videoRedisRepo) AppendStageEvent(ctx context.Context, event *models.TranscodeCompleteEvent) (string, error) {
	id, err := v.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: videos.ProcessStreamKey,
		Values: event.Values(),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append stage event: %w", err)
	}
	return id, nil
}

func (v *videoRedisRepo) EnsureStageGroup(ctx context.Context) error {
	err := v.redisClient.XGroupCreateMkStream(ctx, videos.ProcessStreamKey, videos.ProcessGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (v *videoRedisRepo) ReadStageEvents(ctx context.Context, consumer string, count int64, block time.Duration) ([]*models.StageEvent, error) {
	streams, err := v.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    videos.ProcessGroup,
		Consumer: consumer,
		Streams:  []string{videos.ProcessStreamKey, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stage events: %w", err)
	}

	var events []*models.StageEvent
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			event, parseErr := models.ParseStageEvent(msg.ID, msg.Values)
			if parseErr != nil {
				// Malformed records surface without a variant so the
				// consumer acknowledges them away instead of looping.
				event = &models.StageEvent{ID: msg.ID}
			}
			events = append(events, event)
		}
	}
	return events, nil
}

func (v *videoRedisRepo) AckStageEvent(ctx context.Context, id string) error {
	return v.redisClient.XAck(ctx, videos.ProcessStreamKey, videos.ProcessGroup, id).Err()
}

func (v *videoRedisRepo) GetCachedViewCount(ctx context.Context, videoID uuid.UUID) (int64, bool, error) {
	count, err := v.redisClient.Get(ctx, videos.ViewCountKey+videoID.String()).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get cached view count: %w", err)
	}
	return count, true, nil
}

func (v *videoRedisRepo) SeedViewCount(ctx context.Context, videoID uuid.UUID, count int64) error {
	return v.redisClient.Set(ctx, videos.ViewCountKey+videoID.String(), count, 0).Err()
}

func (v *videoRedisRepo) IncrViewCount(ctx context.Context, videoID uuid.UUID) (int64, error) {
	count, err := v.redisClient.Incr(ctx, videos.ViewCountKey+videoID.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment cached view count: %w", err)
	}
	return count, nil
}

func (v *videoRedisRepo) SetDedupMarker(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	set, err := v.redisClient.SetNX(ctx, videos.ViewDedupKey+messageID, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set dedup marker: %w", err)
	}
	return set, nil
}
