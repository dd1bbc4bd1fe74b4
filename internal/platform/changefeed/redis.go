package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured.
const DefaultRedisChannel = "laundry:changes"

// redisClient is the subset of *redis.Client used by the broker.
type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisOptions configures the Redis broker.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisBroker publishes changes as JSON on a Redis pub/sub channel so every API instance sees them.
type RedisBroker struct {
	client  redisClient
	channel string
	logger  func(context.Context, string, map[string]any)
}

var _ Broker = (*RedisBroker)(nil)

// NewRedisBroker dials Redis using opts.
func NewRedisBroker(opts RedisOptions, logger func(context.Context, string, map[string]any)) (*RedisBroker, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("changefeed: redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newRedisBroker(client, opts.Channel, logger), nil
}

func newRedisBroker(client redisClient, channel string, logger func(context.Context, string, map[string]any)) *RedisBroker {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &RedisBroker{client: client, channel: channel, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("changefeed: encode change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("changefeed: redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Change, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("changefeed: redis subscribe: %w", err)
	}

	out := make(chan Change, defaultSubscriberBuffer)
	messages := pubsub.Channel()
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				change, err := decodeChange(msg.Payload)
				if err != nil {
					b.logger(ctx, "changefeed.decode.failed", map[string]any{"error": err.Error()})
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks the Redis connection for readiness probes.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

func decodeChange(payload string) (Change, error) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return Change{}, fmt.Errorf("changefeed: decode change: %w", err)
	}
	if change.Key == "" {
		return Change{}, errors.New("changefeed: change key is empty")
	}
	return change, nil
}
