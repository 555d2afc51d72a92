package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrShutdown is returned when subscribing to a PubSub that has been shut down.
var ErrShutdown = errors.New("pubsub is shut down")

// Policy decides what happens when a subscriber's buffer is full.
type Policy int

const (
	// DropNewest skips the message for that subscriber.
	DropNewest Policy = iota
	// DropOldest evicts the oldest buffered message so the subscriber always
	// ends up holding the most recent state.
	DropOldest
)

// PubSub fans typed messages out to topic subscribers. Publishing never
// blocks on a slow subscriber.
type PubSub[T any] struct {
	subscribers map[string]map[*Subscription[T]]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	bufferSize  int
	policy      Policy
}

// Subscription represents a subscription to a topic
type Subscription[T any] struct {
	topic     string
	channel   chan T
	ps        *PubSub[T]
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	sendMu    sync.Mutex
	dropped   atomic.Int64
}

// Option configures a PubSub.
type Option func(*config)

type config struct {
	bufferSize int
	policy     Policy
}

// WithBufferSize sets each subscription's channel capacity.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithPolicy sets the overflow policy.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// NewPubSub creates a new PubSub instance
func NewPubSub[T any](opts ...Option) *PubSub[T] {
	cfg := config{bufferSize: 100, policy: DropNewest}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PubSub[T]{
		subscribers: make(map[string]map[*Subscription[T]]bool),
		shutdown:    make(chan struct{}),
		bufferSize:  cfg.bufferSize,
		policy:      cfg.policy,
	}
}

// Subscribe creates a new subscription to a topic
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrShutdown
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, ps.bufferSize),
		ps:      ps,
		ctx:     subCtx,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription[T]]bool)
	}
	ps.subscribers[topic][sub] = true
	ps.mu.Unlock()

	// Monitor context cancellation
	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends a message to all subscribers of a topic and returns how many
// received it.
// Uses a snapshot copy to avoid holding lock during potentially slow channel sends.
func (ps *PubSub[T]) Publish(topic string, message T) int {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return 0
	}
	ps.shutdownMu.Unlock()

	ps.mu.RLock()
	topicSubs := ps.subscribers[topic]
	if len(topicSubs) == 0 {
		ps.mu.RUnlock()
		return 0
	}
	subs := make([]*Subscription[T], 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	ps.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.offer(message, ps.policy) {
			delivered++
		}
	}
	return delivered
}

// GetSubscriberCount returns the number of subscribers for a topic
func (ps *PubSub[T]) GetSubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.subscribers[topic] == nil {
		return 0
	}

	return len(ps.subscribers[topic])
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub[T]) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for topic := range ps.subscribers {
		for sub := range ps.subscribers[topic] {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
	ps.mu.Unlock()
}

// Channel returns the subscription's message channel
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Dropped returns how many messages this subscriber missed or had evicted.
func (s *Subscription[T]) Dropped() int64 {
	return s.dropped.Load()
}

// Unsubscribe removes the subscription
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.topic] != nil {
		delete(s.ps.subscribers[s.topic], s)
		if len(s.ps.subscribers[s.topic]) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}

	s.close()
}

// offer delivers message without blocking. sendMu orders it against close so
// a send never hits a closed channel.
func (s *Subscription[T]) offer(message T, policy Policy) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.channel <- message:
		return true
	default:
	}
	if policy != DropOldest {
		s.dropped.Add(1)
		return false
	}
	select {
	case <-s.channel:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.channel <- message:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.sendMu.Lock()
		close(s.channel)
		s.sendMu.Unlock()
	})
}
