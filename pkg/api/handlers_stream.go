package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/pubsub"
)

const streamWriteWait = 5 * time.Second

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 << 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes every published snapshot
// as a JSON text message. A slow client skips straight to the newest one.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sub, err := s.engine.Subscribe(r.Context())
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "snapshot stream unavailable")
		return
	}
	skips := &skipMeter{sub: sub, reg: s.metricsRegistry}
	s.metricsRegistry.StreamSubscribers.Set(float64(s.engine.Subscribers()))
	defer func() {
		sub.Unsubscribe()
		skips.flush()
		s.metricsRegistry.StreamSubscribers.Set(float64(s.engine.Subscribers()))
	}()

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("stream upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("stream client connected", logging.String("remote", r.RemoteAddr))
	defer s.logger.Debug("stream client disconnected", logging.String("remote", r.RemoteAddr))

	if snap := s.engine.Latest(); snap != nil {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}

	ping := time.NewTicker(s.streamPing)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case snap, ok := <-sub.Channel():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteWait))
				return
			}
			skips.flush()
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

// skipMeter adds the snapshots a subscription skipped since the last flush
// to netviz_stream_snapshots_skipped_total.
type skipMeter struct {
	sub  *pubsub.Subscription[*engine.Snapshot]
	reg  *metrics.Registry
	seen int64
}

func (m *skipMeter) flush() {
	dropped := m.sub.Dropped()
	m.reg.RecordStreamSkips(dropped - m.seen)
	m.seen = dropped
}
