package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisSource relays pool events published on a Redis channel into a Bus.
// Deployments that fan events out through Redis run it next to, or instead
// of, the websocket stream.
type RedisSource struct {
	rdb     *redis.Client
	channel string
	bus     *Bus
	logger  *logrus.Logger
}

// NewRedisSource creates a relay reading channel.
func NewRedisSource(opts *redis.Options, channel string, bus *Bus, logger *logrus.Logger) *RedisSource {
	return &RedisSource{
		rdb:     redis.NewClient(opts),
		channel: channel,
		bus:     bus,
		logger:  logger,
	}
}

// Ping checks the Redis connection.
func (r *RedisSource) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Publish sends ev to the relay channel.
func (r *RedisSource) Publish(ctx context.Context, ev Event) error {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes and relays until ctx is done.
func (r *RedisSource) Run(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis: subscribe %s: %w", r.channel, err)
	}
	r.logger.WithField("channel", r.channel).Info("Redis event relay subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			// malformed payloads are logged by the bus
			_ = r.bus.PublishRaw([]byte(msg.Payload))
		}
	}
}

// Close releases the Redis connection.
func (r *RedisSource) Close() error {
	return r.rdb.Close()
}
