package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feed-monitor/src/models"

	"github.com/redis/go-redis/v9"
)

// publisher is the slice of the redis client the sink needs
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each report as JSON on a pub/sub channel.
type RedisSink struct {
	client  publisher
	channel string
}

// -----------------------------------------------------------------------------

func NewRedisClient(cfg models.MRedisSinkConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisSink(client publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (r *RedisSink) Name() string { return "redis" }

// -----------------------------------------------------------------------------

func (r *RedisSink) Publish(ctx context.Context, report models.MRateReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("json marshal report: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish report to %s: %w", r.channel, err)
	}
	return nil
}
