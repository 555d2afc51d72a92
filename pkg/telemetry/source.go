package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// Source delivers decoded telemetry messages until ctx is cancelled or the
// transport fails permanently. Run owns its reader goroutines; out is never
// closed by the source.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- Message) error
}

// Publisher sends encoded frames to whoever listens on the transport.
type Publisher interface {
	Publish(ctx context.Context, frame []byte) error
	Close() error
}

// Options configure a transport endpoint.
type Options struct {
	// Transport selects the implementation: websocket, redis, nng or zmq.
	Transport string
	// URL is the endpoint: ws://host/path, redis://host:port/db, tcp://host:port.
	URL string
	// Channel is the redis pub/sub channel or the nng/zmq topic prefix.
	Channel string
	// ReconnectDelay is the pause between reconnect attempts.
	ReconnectDelay time.Duration
	Logger         logging.Logger
	// OnDecodeError is called for every frame that fails to decode.
	OnDecodeError func(err error)
}

// DefaultChannel is used when Options.Channel is empty.
const DefaultChannel = "netviz.telemetry"

// ErrUnknownTransport is returned for transports that are not compiled in.
var ErrUnknownTransport = errors.New("unknown telemetry transport")

type (
	SourceFactory    func(opts Options) (Source, error)
	PublisherFactory func(opts Options) (Publisher, error)
)

var (
	registryMu sync.RWMutex
	sources    = map[string]SourceFactory{}
	publishers = map[string]PublisherFactory{}
)

// RegisterTransport makes a transport available to NewSource/NewPublisher.
// Transports behind build tags register themselves from init.
func RegisterTransport(name string, source SourceFactory, publisher PublisherFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if source != nil {
		sources[name] = source
	}
	if publisher != nil {
		publishers[name] = publisher
	}
}

// Transports lists the compiled-in transport names.
func Transports() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSource builds the source named by opts.Transport.
func NewSource(opts Options) (Source, error) {
	registryMu.RLock()
	factory, ok := sources[opts.Transport]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownTransport, opts.Transport, Transports())
	}
	return factory(opts.withDefaults())
}

// NewPublisher builds the publisher named by opts.Transport.
func NewPublisher(opts Options) (Publisher, error) {
	registryMu.RLock()
	factory, ok := publishers[opts.Transport]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, opts.Transport)
	}
	return factory(opts.withDefaults())
}

func (o Options) withDefaults() Options {
	if o.Channel == "" {
		o.Channel = DefaultChannel
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = time.Second
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	o.Logger = o.Logger.With(logging.Transport(o.Transport))
	return o
}

// deliver decodes frame and forwards it, reporting decode failures.
// It returns false once ctx is done.
func deliver(ctx context.Context, opts Options, frame []byte, out chan<- Message) bool {
	msg, err := DecodeFrame(frame)
	if err != nil {
		opts.Logger.Warn("dropping undecodable telemetry frame", logging.Error(err), logging.Count(len(frame)))
		if opts.OnDecodeError != nil {
			opts.OnDecodeError(err)
		}
		return ctx.Err() == nil
	}
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
