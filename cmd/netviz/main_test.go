package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

func resetFlags(t *testing.T) {
	t.Helper()
	prev := [3]string{configPath, logLevel, logFile}
	t.Cleanup(func() { configPath, logLevel, logFile = prev[0], prev[1], prev[2] })
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "netviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\ntopology:\n  layers: [3, 5, 1]\n"), 0o644))

	configPath, logLevel = path, "debug"
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []int{3, 5, 1}, cfg.Topology.Layers)

	logLevel = "loud"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestSimPublishesOverRedis(t *testing.T) {
	resetFlags(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := client.Subscribe(ctx, "sim.test")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "sim.log")
	err = runSim(ctx, cfg, simOptions{
		transport: "redis",
		url:       "redis://" + mr.Addr(),
		channel:   "sim.test",
		layers:    "2,3,1",
		epochs:    2,
		interval:  time.Millisecond,
		seed:      7,
		compress:  true,
	})
	require.NoError(t, err)

	var events []telemetry.Message
	for len(events) < 3 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		decoded, err := telemetry.DecodeFrame([]byte(msg.Payload))
		require.NoError(t, err)
		events = append(events, decoded)
	}
	assert.Equal(t, telemetry.MessageTopology, events[0].Kind)
	assert.Equal(t, []int{2, 3, 1}, events[0].Topology.Layers())
	assert.Equal(t, telemetry.MessageRecord, events[1].Kind)
	assert.Equal(t, telemetry.MessageRecord, events[2].Kind)
}

func TestSimRejectsBadLayers(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "sim.log")
	err := runSim(context.Background(), cfg, simOptions{transport: "redis", url: "redis://127.0.0.1:1", layers: "x"})
	assert.Error(t, err)
}
