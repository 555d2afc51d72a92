package engine

import (
	"github.com/dd0wney/cluso-netviz/pkg/health"
)

// TelemetryState reports the inbound stream for health checks. Safe for
// concurrent use.
func (e *Engine) TelemetryState() health.TelemetryState {
	e.status.mu.Lock()
	defer e.status.mu.Unlock()
	return health.TelemetryState{
		Transport:   e.status.transport,
		Connected:   e.status.connected,
		LastMessage: e.status.lastMessage,
		DecodeErrs:  e.status.decodeErrs,
	}
}

// EngineState reports drawing state for health checks. Safe for concurrent use.
func (e *Engine) EngineState() health.EngineState {
	e.status.mu.Lock()
	defer e.status.mu.Unlock()
	return health.EngineState{
		Drawn:     e.status.drawn,
		Stopped:   e.stopped.Load(),
		Buffered:  e.status.buffered,
		BufferCap: e.cfg.Buffer.Size,
		Epoch:     e.status.epoch,
	}
}

// RegisterHealthChecks installs the engine, telemetry and loop checks on hc.
func (e *Engine) RegisterHealthChecks(hc *health.Checker) {
	hc.Register("engine", health.ScopeHealth|health.ScopeReady, health.EngineCheck(e.EngineState))
	hc.Register("telemetry", health.ScopeHealth, health.TelemetryCheck(e.TelemetryState, e.cfg.Telemetry.StaleAfter))
	hc.Register("loop", health.ScopeLive, e.loopCheck)
}

func (e *Engine) loopCheck() health.Check {
	if !e.Running() {
		return health.Check{Name: "loop", Status: health.StatusUnhealthy, Message: "Engine loop not running"}
	}
	return health.Check{Name: "loop", Status: health.StatusHealthy, Message: "Engine loop running"}
}

// Running reports whether Run is serving the engine.
func (e *Engine) Running() bool {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	return e.loopDone != nil
}
