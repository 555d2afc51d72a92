package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

func init() {
	RegisterTransport("websocket", newWebSocketSource, newWebSocketPublisher)
}

// WebSocketSource reads frames from a websocket endpoint, reconnecting until
// its context is cancelled.
type WebSocketSource struct {
	opts   Options
	dialer *websocket.Dialer
}

func newWebSocketSource(opts Options) (Source, error) {
	if opts.URL == "" {
		return nil, errors.New("websocket source requires a URL")
	}
	return &WebSocketSource{opts: opts, dialer: websocket.DefaultDialer}, nil
}

func (s *WebSocketSource) Name() string { return "websocket" }

// Run implements Source.
func (s *WebSocketSource) Run(ctx context.Context, out chan<- Message) error {
	for {
		conn, _, err := s.dialer.DialContext(ctx, s.opts.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.opts.Logger.Warn("websocket dial failed", logging.String("url", s.opts.URL), logging.Error(err))
			if !sleepCtx(ctx, s.opts.ReconnectDelay) {
				return nil
			}
			continue
		}
		s.opts.Logger.Info("websocket telemetry connected", logging.String("url", s.opts.URL))

		err = s.readLoop(ctx, conn, out)
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		s.opts.Logger.Warn("websocket telemetry disconnected", logging.Error(err))
		if !sleepCtx(ctx, s.opts.ReconnectDelay) {
			return nil
		}
	}
}

func (s *WebSocketSource) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Message) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if !deliver(ctx, s.opts, frame, out) {
			return ctx.Err()
		}
	}
}

// Hub is a websocket endpoint broadcasting frames to every connected client.
// Greeting frames are replayed to each client on connect so late joiners
// still see the topology first.
type Hub struct {
	upgrader websocket.Upgrader
	logger   logging.Logger

	mu       sync.Mutex
	clients  map[*hubClient]struct{}
	greeting [][]byte
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*hubClient]struct{}),
	}
}

// SetGreeting replaces the frames replayed to new clients.
func (h *Hub) SetGreeting(frames ...[]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.greeting = frames
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}

	client := &hubClient{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	for _, frame := range h.greeting {
		client.send <- frame
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go h.writePump(client)
	// Drain client reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(client)
				return
			}
		}
	}()
}

func (h *Hub) writePump(c *hubClient) {
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.Close()
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues frame for every client. Slow clients miss frames rather
// than stall the publisher.
func (h *Hub) Broadcast(frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- frame:
			sent++
		default:
		}
	}
	return sent
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}

// hubPublisher serves a Hub on its own listener.
type hubPublisher struct {
	hub    *Hub
	server *http.Server
}

func newWebSocketPublisher(opts Options) (Publisher, error) {
	if opts.URL == "" {
		return nil, errors.New("websocket publisher requires a listen address")
	}
	hub := NewHub(opts.Logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := &http.Server{Addr: opts.URL, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			opts.Logger.Error("websocket publisher stopped", logging.Error(err))
		}
	}()
	return &hubPublisher{hub: hub, server: server}, nil
}

// Hub exposes the underlying hub, e.g. to install a greeting.
func (p *hubPublisher) Hub() *Hub { return p.hub }

func (p *hubPublisher) Publish(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.hub.Broadcast(frame)
	return nil
}

func (p *hubPublisher) Close() error {
	p.hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop websocket publisher: %w", err)
	}
	return nil
}
