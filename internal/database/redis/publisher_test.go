package redis_test

import (
	"context"
	"testing"
	"time"

	rdb "chatterbox/internal/database/redis"
	"chatterbox/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return endpoint, func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

func TestPublisher_Publish(t *testing.T) {
	addr, teardown := setupRedis(t)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := rdb.NewRedisClient(ctx, rdb.Options{Addr: addr})
	require.NoError(t, err)

	pub := rdb.NewPublisher(client, "message_events")
	defer pub.Close()

	sub := client.Subscribe(ctx, "message_events")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	event := events.MessageEvent{
		Type:       events.MessageCreated,
		MessageID:  7,
		Body:       "Hello",
		Username:   "Liza",
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(ctx, event))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	got, err := events.Decode([]byte(msg.Payload))
	require.NoError(t, err)
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, event.MessageID, got.MessageID)
	assert.Equal(t, event.Body, got.Body)
	assert.True(t, event.OccurredAt.Equal(got.OccurredAt))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := rdb.NewRedisClient(ctx, rdb.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
