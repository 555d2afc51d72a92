package telemetry

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for telemetry message")
		return Message{}
	}
}

func TestNewSourceUnknownTransport(t *testing.T) {
	_, err := NewSource(Options{Transport: "carrier-pigeon"})
	assert.True(t, errors.Is(err, ErrUnknownTransport))
	assert.Contains(t, Transports(), "websocket")
	assert.Contains(t, Transports(), "redis")
}

func TestWebSocketSourceReceivesHubFrames(t *testing.T) {
	hub := NewHub(nil)
	topoFrame, err := EncodeFrame(EventTopology, Topology{InputNodes: 2, OutputNodes: 1}, false)
	require.NoError(t, err)
	hub.SetGreeting(topoFrame)

	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	var decodeErrors atomic.Int32
	src, err := NewSource(Options{
		Transport:      "websocket",
		URL:            "ws" + strings.TrimPrefix(server.URL, "http"),
		ReconnectDelay: 10 * time.Millisecond,
		OnDecodeError:  func(error) { decodeErrors.Add(1) },
	})
	require.NoError(t, err)
	assert.Equal(t, "websocket", src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Message, 8)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, out) }()

	msg := recv(t, out)
	require.Equal(t, MessageTopology, msg.Kind, "greeting replayed first")
	assert.Equal(t, []int{2, 1}, msg.Topology.Layers())

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 3*time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte("garbage"))
	syn, err := NewSynthesizer(Topology{InputNodes: 2, OutputNodes: 1}, 1)
	require.NoError(t, err)
	frame, err := EncodeFrame(EventTrainingUpdate, syn.Next(), true)
	require.NoError(t, err)
	hub.Broadcast(frame)

	msg = recv(t, out)
	require.Equal(t, MessageRecord, msg.Kind)
	assert.Equal(t, 1, msg.Record.Epoch)
	assert.Equal(t, int32(1), decodeErrors.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestRedisSourceAndPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	src := NewRedisSource(client, Options{Channel: "test.telemetry"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Message, 4)
	go src.Run(ctx, out)

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("test.telemetry")) == 1
	}, 3*time.Second, 10*time.Millisecond)

	pub := NewRedisPublisher(client, "test.telemetry")
	frame, err := EncodeFrame(EventStopTraining, nil, false)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, frame))

	msg := recv(t, out)
	assert.Equal(t, MessageControl, msg.Kind)
	assert.Equal(t, ControlStop, msg.Control)
}
