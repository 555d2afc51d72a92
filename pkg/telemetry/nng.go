//go:build nng
// +build nng

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

func init() {
	RegisterTransport("nng", newNNGSource, newNNGPublisher)
}

// NNGSource dials a mangos PUB socket and reads topic-prefixed frames.
type NNGSource struct {
	opts Options
}

func newNNGSource(opts Options) (Source, error) {
	if opts.URL == "" {
		return nil, errors.New("nng source requires a URL")
	}
	return &NNGSource{opts: opts}, nil
}

func (s *NNGSource) Name() string { return "nng" }

func (s *NNGSource) Run(ctx context.Context, out chan<- Message) error {
	sock, err := sub.NewSocket()
	if err != nil {
		return fmt.Errorf("failed to create SUB socket: %w", err)
	}
	defer sock.Close()

	prefix := []byte(s.opts.Channel + ":")
	if err := sock.SetOption(mangos.OptionSubscribe, prefix); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	sock.SetOption(mangos.OptionRecvDeadline, 500*time.Millisecond)
	sock.SetOption(mangos.OptionReconnectTime, s.opts.ReconnectDelay)

	// Non-blocking dial keeps retrying in the background.
	if err := sock.DialOptions(s.opts.URL, map[string]interface{}{mangos.OptionDialAsynch: true}); err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.opts.URL, err)
	}
	s.opts.Logger.Info("nng telemetry subscribed", logging.String("url", s.opts.URL))

	for {
		if ctx.Err() != nil {
			return nil
		}
		msg, err := sock.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			if errors.Is(err, mangos.ErrClosed) {
				return nil
			}
			s.opts.Logger.Warn("nng receive failed", logging.Error(err))
			continue
		}
		if !deliver(ctx, s.opts, msg[len(prefix):], out) {
			return nil
		}
	}
}

// NNGPublisher listens on a mangos PUB socket.
type NNGPublisher struct {
	sock   mangos.Socket
	prefix []byte
}

func newNNGPublisher(opts Options) (Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(opts.URL); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket: %w", err)
	}
	opts.Logger.Info("nng telemetry publisher bound", logging.String("url", opts.URL))
	return &NNGPublisher{sock: sock, prefix: []byte(opts.Channel + ":")}, nil
}

func (p *NNGPublisher) Publish(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := make([]byte, 0, len(p.prefix)+len(frame))
	msg = append(msg, p.prefix...)
	msg = append(msg, frame...)
	return p.sock.Send(msg)
}

func (p *NNGPublisher) Close() error {
	return p.sock.Close()
}
