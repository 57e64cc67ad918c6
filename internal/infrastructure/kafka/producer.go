package kafka

import (
	"context"
	"fmt"

	"chatterbox/internal/domain/events"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Publish writes the event keyed by message id, so every event of one message
// lands on the same partition.
func (p *Producer) Publish(ctx context.Context, event events.MessageEvent) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   event.Key(),
		Value: payload,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}
