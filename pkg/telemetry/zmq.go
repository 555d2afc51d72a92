//go:build zmq
// +build zmq

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

func init() {
	RegisterTransport("zmq", newZMQSource, newZMQPublisher)
}

// ZMQSource connects a SUB socket and reads [topic, frame] multipart messages.
type ZMQSource struct {
	opts Options
}

func newZMQSource(opts Options) (Source, error) {
	if opts.URL == "" {
		return nil, errors.New("zmq source requires a URL")
	}
	return &ZMQSource{opts: opts}, nil
}

func (s *ZMQSource) Name() string { return "zmq" }

func (s *ZMQSource) Run(ctx context.Context, out chan<- Message) error {
	sock, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return fmt.Errorf("failed to create SUB socket: %w", err)
	}
	defer sock.Close()

	if err := sock.Connect(s.opts.URL); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.opts.URL, err)
	}
	if err := sock.SetSubscribe(s.opts.Channel); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	sock.SetRcvtimeo(500 * time.Millisecond)
	s.opts.Logger.Info("zmq telemetry subscribed", logging.String("url", s.opts.URL))

	for {
		if ctx.Err() != nil {
			return nil
		}
		parts, err := sock.RecvMessageBytes(0)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
				continue
			}
			s.opts.Logger.Warn("zmq receive failed", logging.Error(err))
			continue
		}
		if len(parts) < 2 {
			continue
		}
		if !deliver(ctx, s.opts, parts[1], out) {
			return nil
		}
	}
}

// ZMQPublisher binds a PUB socket. zmq sockets are not goroutine-safe, so
// sends are serialized.
type ZMQPublisher struct {
	mu    sync.Mutex
	sock  *zmq.Socket
	topic string
}

func newZMQPublisher(opts Options) (Publisher, error) {
	sock, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Bind(opts.URL); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket: %w", err)
	}
	opts.Logger.Info("zmq telemetry publisher bound", logging.String("url", opts.URL))
	return &ZMQPublisher{sock: sock, topic: opts.Channel}, nil
}

func (p *ZMQPublisher) Publish(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.sock.SendMessage(p.topic, frame)
	return err
}

func (p *ZMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sock.Close()
}
