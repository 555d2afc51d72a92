package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// HandleMessage routes one decoded telemetry message. Topologies that fail
// validation are logged and ignored; the current drawing stays.
func (e *Engine) HandleMessage(msg telemetry.Message) {
	e.noteMessage(msg)
	switch msg.Kind {
	case telemetry.MessageTopology:
		if err := validation.ValidateTopology(msg.Topology); err != nil {
			e.logger.Warn("ignoring topology", logging.Error(err))
			return
		}
		if err := e.Draw(*msg.Topology, nil); err != nil {
			e.logger.Error("draw failed", logging.Error(err))
		}
	case telemetry.MessageRecord:
		e.Update(msg.Record)
	case telemetry.MessageControl:
		e.handleControl(msg.Control)
	}
}

func (e *Engine) handleControl(c telemetry.Control) {
	switch c {
	case telemetry.ControlReset:
		if err := e.Reset(); err != nil {
			e.logger.Error("reset failed", logging.Error(err))
		}
	case telemetry.ControlStop:
		e.Stop()
	case telemetry.ControlStart:
		e.Start()
	}
	e.dirty = true
}

// Control applies a named control action: reset, stop or start.
func (e *Engine) Control(action string) error {
	if err := validation.ValidateControlRequest(&validation.ControlRequest{Action: action}); err != nil {
		return err
	}
	switch action {
	case "reset":
		return e.Reset()
	case "stop":
		e.Stop()
	case "start":
		e.Start()
	}
	e.dirty = true
	return nil
}

func (e *Engine) noteMessage(msg telemetry.Message) {
	at := msg.Received
	if at.IsZero() {
		at = time.Now()
	}
	e.status.mu.Lock()
	e.status.lastMessage = at
	transport := e.status.transport
	e.status.mu.Unlock()

	event := msg.Kind.String()
	if msg.Kind == telemetry.MessageControl {
		event = msg.Control.String()
	}
	e.metrics.RecordTelemetryMessage(transport, event, at)
}

// DecodeError records a frame the source could not decode. Safe for
// concurrent use; sources call it from their reader goroutines.
func (e *Engine) DecodeError(err error) {
	e.logger.Debug("telemetry frame rejected", logging.Error(err))
	e.status.mu.Lock()
	e.status.decodeErrs++
	e.status.mu.Unlock()
	e.metrics.RecordDiagnostic(diagDecode)
}

// Do runs fn on the engine goroutine and waits for its result.
func (e *Engine) Do(ctx context.Context, fn func(*Engine) error) error {
	e.loopMu.Lock()
	exited := e.loopDone
	e.loopMu.Unlock()
	if exited == nil {
		return ErrNotRunning
	}
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case e.commands <- cmd:
	case <-exited:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-exited:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run owns the engine until ctx is done: it drains src (which may be nil),
// serves Do commands and advances a frame every interval, publishing a
// snapshot whenever something changed. When Run returns every snapshot
// subscription is closed and later Subscribe calls fail.
func (e *Engine) Run(ctx context.Context, src telemetry.Source) error {
	e.loopMu.Lock()
	if e.loopDone != nil {
		e.loopMu.Unlock()
		return errors.New("engine loop already running")
	}
	exited := make(chan struct{})
	e.loopDone = exited
	e.loopMu.Unlock()
	defer func() {
		e.snapshots.Shutdown()
		e.loopMu.Lock()
		e.loopDone = nil
		e.loopMu.Unlock()
		close(exited)
	}()

	interval := validation.DefaultOrDuration(e.cfg.Server.FrameInterval, 16*time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	msgs := make(chan telemetry.Message, 64)
	srcErr := make(chan error, 1)
	if src != nil {
		e.setConnected(true)
		e.logger.Info("telemetry source starting", logging.Transport(src.Name()))
		go func() {
			srcErr <- src.Run(ctx, msgs)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			e.setConnected(false)
			e.drainCommands(ctx.Err())
			return nil
		case err := <-srcErr:
			e.setConnected(false)
			if err != nil {
				e.logger.Error("telemetry source stopped", logging.Error(err))
				return fmt.Errorf("telemetry source: %w", err)
			}
			e.logger.Info("telemetry source finished")
		case msg := <-msgs:
			e.HandleMessage(msg)
		case cmd := <-e.commands:
			cmd.done <- cmd.fn(e)
			e.dirty = true
		case now := <-ticker.C:
			e.tick(now)
			continue
		}
		if e.dirty {
			e.publish(time.Now())
		}
	}
}

func (e *Engine) tick(now time.Time) {
	playing := e.Frame(now)
	if playing || e.lastPlaying || e.dirty {
		e.publish(now)
	}
	e.lastPlaying = playing
}

func (e *Engine) drainCommands(err error) {
	for {
		select {
		case cmd := <-e.commands:
			cmd.done <- err
		default:
			return
		}
	}
}

func (e *Engine) setConnected(connected bool) {
	e.status.mu.Lock()
	e.status.connected = connected
	e.status.mu.Unlock()
}
