package redis

import (
	"context"
	"fmt"

	"chatterbox/internal/domain/events"

	"github.com/go-redis/redis/v8"
)

// Publisher fans message events out over a redis pub/sub channel.
type Publisher struct {
	Client  *redis.Client
	Channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{
		Client:  client,
		Channel: channel,
	}
}

func (p *Publisher) Publish(ctx context.Context, event events.MessageEvent) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}
	if err := p.Client.Publish(ctx, p.Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.Client.Close()
}
