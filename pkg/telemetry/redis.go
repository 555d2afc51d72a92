package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

func init() {
	RegisterTransport("redis", newRedisSource, newRedisPublisher)
}

// RedisSource subscribes to a pub/sub channel. Payloads are encoded frames.
type RedisSource struct {
	opts   Options
	client *redis.Client
}

func newRedisClient(opts Options) (*redis.Client, error) {
	if opts.URL == "" {
		return nil, errors.New("redis transport requires a URL")
	}
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL %q: %w", opts.URL, err)
	}
	return redis.NewClient(ropts), nil
}

func newRedisSource(opts Options) (Source, error) {
	client, err := newRedisClient(opts)
	if err != nil {
		return nil, err
	}
	return &RedisSource{opts: opts, client: client}, nil
}

// NewRedisSource wraps an existing client.
func NewRedisSource(client *redis.Client, opts Options) *RedisSource {
	opts.Transport = "redis"
	return &RedisSource{opts: opts.withDefaults(), client: client}
}

func (s *RedisSource) Name() string { return "redis" }

// Run implements Source. go-redis reconnects the subscription on its own.
func (s *RedisSource) Run(ctx context.Context, out chan<- Message) error {
	sub := s.client.Subscribe(ctx, s.opts.Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", s.opts.Channel, err)
	}
	s.opts.Logger.Info("redis telemetry subscribed", logging.String("channel", s.opts.Channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if !deliver(ctx, s.opts, []byte(msg.Payload), out) {
				return nil
			}
		}
	}
}

// RedisPublisher publishes frames to a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func newRedisPublisher(opts Options) (Publisher, error) {
	client, err := newRedisClient(opts)
	if err != nil {
		return nil, err
	}
	return &RedisPublisher{client: client, channel: opts.Channel}, nil
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, frame []byte) error {
	if err := p.client.Publish(ctx, p.channel, frame).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
