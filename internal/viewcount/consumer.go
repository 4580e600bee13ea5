package viewcount

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"
	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// DedupTTL bounds the redelivery window the dedup markers must cover.
const DedupTTL = 24 * time.Hour

// Fetcher is the slice of kafka.Reader the consumer needs; manual commits
// act as the acknowledgment.
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer applies inbound view increment events to the accumulator,
// deduplicating by message id so at-least-once delivery never counts a
// view twice.
type Consumer struct {
	logger    logger.Logger
	redisRepo videos.RedisRepository
	acc       *Accumulator
	fetcher   Fetcher
}

func NewConsumer(
	log logger.Logger,
	redisRepo videos.RedisRepository,
	acc *Accumulator,
	fetcher Fetcher,
) *Consumer {
	return &Consumer{
		logger:    log,
		redisRepo: redisRepo,
		acc:       acc,
		fetcher:   fetcher,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Errorf("failed to fetch view event: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if err := c.Handle(ctx, msg); err != nil {
			// Left uncommitted, the broker redelivers and the dedup
			// marker decides whether it still counts.
			c.logger.Errorf("failed to handle view event: %v", err)
		}
	}
}

func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	var event models.ViewIncrementEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.MessageID == "" {
		// Unparseable payloads (including connection probes) are dropped.
		return c.fetcher.CommitMessages(ctx, msg)
	}

	novel, err := c.redisRepo.SetDedupMarker(ctx, event.MessageID, DedupTTL)
	if err != nil {
		return err
	}
	if !novel {
		c.logger.Debugf("duplicate view event %s, skipping", event.MessageID)
		return c.fetcher.CommitMessages(ctx, msg)
	}

	c.acc.Add(event.VideoID, event.Increment)
	return c.fetcher.CommitMessages(ctx, msg)
}
