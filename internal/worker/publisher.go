package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// AlertChannel is the Redis pub/sub channel alerts are published on.
const AlertChannel = "fantasy:alerts"

// AlertMessage is the published payload.
type AlertMessage struct {
	UserID      string             `json:"user_id"`
	Alert       models.PlayerAlert `json:"alert"`
	PublishedAt time.Time          `json:"published_at"`
}

// RedisPublisher publishes alerts through a single pipeline per call.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client, channel: AlertChannel}
}

func (r *RedisPublisher) PublishAlerts(ctx context.Context, userID string, alerts []models.PlayerAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	now := time.Now().UTC()
	for _, a := range alerts {
		raw, err := json.Marshal(AlertMessage{UserID: userID, Alert: a, PublishedAt: now})
		if err != nil {
			return fmt.Errorf("encode alert: %w", err)
		}
		pipe.Publish(ctx, r.channel, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish alerts: %w", err)
	}
	return nil
}
