package health

import "time"

// Static returns a check that always reports healthy with msg.
func Static(name, msg string) CheckFunc {
	return func() Check {
		return Check{Name: name, Status: StatusHealthy, Message: msg}
	}
}

// TelemetryState describes the inbound telemetry stream.
type TelemetryState struct {
	Transport   string
	Connected   bool
	LastMessage time.Time
	DecodeErrs  int64
}

// TelemetryCheck reports the telemetry source. A stream that has been quiet
// for longer than staleAfter is degraded; a disconnected one is unhealthy
// unless no source is configured at all.
func TelemetryCheck(getState func() TelemetryState, staleAfter time.Duration) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "telemetry",
			Details: make(map[string]any),
		}

		state := getState()
		check.Details["transport"] = state.Transport
		check.Details["connected"] = state.Connected
		check.Details["decode_errors"] = state.DecodeErrs
		if !state.LastMessage.IsZero() {
			check.Details["last_message"] = state.LastMessage
		}

		switch {
		case state.Transport == "":
			check.Status = StatusHealthy
			check.Message = "No telemetry source configured"
		case !state.Connected:
			check.Status = StatusUnhealthy
			check.Message = "Telemetry source not running"
		case state.LastMessage.IsZero():
			check.Status = StatusHealthy
			check.Message = "Waiting for first message"
		case staleAfter > 0 && time.Since(state.LastMessage) > staleAfter:
			check.Status = StatusDegraded
			check.Message = "Telemetry stream is stale"
		default:
			check.Status = StatusHealthy
			check.Message = "Receiving telemetry"
		}

		return check
	}
}

// EngineState describes the visualization engine.
type EngineState struct {
	Drawn     bool
	Stopped   bool
	Buffered  int
	BufferCap int
	Epoch     int
}

// EngineCheck reports whether a graph is drawn and whether the pre-draw
// buffer is close to overflowing.
func EngineCheck(getState func() EngineState) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "engine",
			Details: make(map[string]any),
		}

		state := getState()
		check.Details["drawn"] = state.Drawn
		check.Details["stopped"] = state.Stopped
		check.Details["buffered"] = state.Buffered
		check.Details["epoch"] = state.Epoch

		switch {
		case !state.Drawn && state.BufferCap > 0 && state.Buffered >= state.BufferCap:
			check.Status = StatusDegraded
			check.Message = "Records are being dropped while waiting for a topology"
		case !state.Drawn:
			check.Status = StatusHealthy
			check.Message = "Waiting for topology"
		default:
			check.Status = StatusHealthy
			check.Message = "Graph drawn"
		}

		return check
	}
}

// MemoryCheck degrades when the heap holds more than 90% of the memory
// obtained from the OS.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		alloc, sys := getUsage()
		check := Check{
			Name:    "memory",
			Status:  StatusHealthy,
			Message: "Memory usage normal",
			Details: map[string]any{"alloc_bytes": alloc, "sys_bytes": sys},
		}
		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}
