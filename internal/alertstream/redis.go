// Package alertstream fans CRITICAL alert notifications out to live
// subscribers over Redis pub/sub. Persistence of the notification itself is
// the NotificationRepo's job; the stream is a best-effort extra for operator
// dashboards.
package alertstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/staybook/audit-service/internal/models"
)

// Publisher publishes alert notifications on a Redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

// New connects to Redis and returns a Publisher. When url is empty, a noop
// publisher is returned and alerts are only persisted, not streamed.
func New(url, channel string) (*Publisher, error) {
	if url == "" {
		slog.Info("alert stream disabled")
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse alert stream url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect alert stream: %w", err)
	}

	slog.Info("alert stream connected", "channel", channel)
	return &Publisher{client: client, channel: channel}, nil
}

// Publish sends one notification on the channel.
func (p *Publisher) Publish(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
