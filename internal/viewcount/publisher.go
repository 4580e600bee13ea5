package viewcount

import (
	"context"

	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher sends view increment events to the broker. Publishing is
// fire-and-forget from the caller's point of view; delivery results come
// back on an async completion callback.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log logger.Logger) Publisher {
	writer.Async = true
	writer.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			log.Errorf("failed to deliver %d view count messages: %v", len(messages), err)
		}
	}
	return &kafkaPublisher{
		writer: writer,
		logger: log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}
