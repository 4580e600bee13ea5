package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/vrsio/video-backend/internal/config"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter builds a writer for the view-count topic, probing the
// brokers with a ping message so a dead cluster fails fast instead of at
// first publish.
func NewKafkaWriter(cfg *config.Config) (*kafka.Writer, error) {
	var err error
	retryCount := cfg.Kafka.RetryCount
	if retryCount <= 0 {
		retryCount = 1
	}

	for attempt := 1; attempt <= retryCount; attempt++ {
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.ViewTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		}

		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			return writer, nil
		}

		writer.Close()
		time.Sleep(time.Duration(cfg.Kafka.RetryInterval) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect kafka writer after %d attempts: %w", retryCount, err)
}

// NewKafkaReader builds a consumer-group reader with manual commits.
func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.ViewTopic,
		GroupID:        cfg.Kafka.ViewGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
}
