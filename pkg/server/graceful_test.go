package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
}

func TestGracefulServer_ServeUntilCancelled(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), WithShutdownTimeout(time.Second))
	if err := gs.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx) }()

	resp, err := http.Get("http://" + gs.Addr() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if !gs.IsShuttingDown() {
		t.Error("IsShuttingDown() = false after cancel")
	}
	select {
	case <-gs.ShutdownChannel():
	default:
		t.Error("shutdown channel not closed")
	}
}

func TestGracefulServer_AddrBeforeListen(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler())
	if got := gs.Addr(); got != "127.0.0.1:0" {
		t.Errorf("Addr() = %q before Listen", got)
	}
}

func TestGracefulServer_ShutdownTwice(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler())
	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

// TestGracefulServer_ConfigReload tests configuration reload via SIGHUP
func TestGracefulServer_ConfigReload(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler())

	var reloads atomic.Int32
	gs.SetConfigReloadFunc(func() error {
		reloads.Add(1)
		return nil
	})

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx := gs.HandleSignals(parent)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reloads.Load() != 1 {
		t.Errorf("reloads = %d, want 1", reloads.Load())
	}
	if ctx.Err() != nil {
		t.Error("SIGHUP should not cancel the serve context")
	}
}

func TestGracefulServer_ReloadConfig(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler())

	if err := gs.ReloadConfig(); err != nil {
		t.Errorf("ReloadConfig() without func error = %v", err)
	}

	called := false
	gs.SetConfigReloadFunc(func() error {
		called = true
		return nil
	})
	if err := gs.ReloadConfig(); err != nil {
		t.Errorf("ReloadConfig() error = %v", err)
	}
	if !called {
		t.Error("Config reload function was not called")
	}

	wantErr := errors.New("bad config")
	gs.SetConfigReloadFunc(func() error { return wantErr })
	if err := gs.ReloadConfig(); !errors.Is(err, wantErr) {
		t.Errorf("ReloadConfig() error = %v, want %v", err, wantErr)
	}
}
