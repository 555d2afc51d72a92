package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// statusFor maps an engine command error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, network.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, network.ErrNotDrawn):
		return http.StatusConflict
	case errors.Is(err, visualization.ErrInvalidTopology), errors.Is(err, validation.ErrTopology):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotRunning):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeError converts an engine error to a client message. Client
// errors carry their own text; internal ones are logged and replaced.
func (s *Server) sanitizeError(err error, operation string) (int, string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Operation(operation), logging.Error(err))
		return status, fmt.Sprintf("%s failed", operation)
	}
	return status, err.Error()
}

// command runs fn on the engine loop, bounded by the server's command timeout.
func (s *Server) command(r *http.Request, fn func(*engine.Engine) error) error {
	ctx, cancel := context.WithTimeout(r.Context(), s.commandTimeout)
	defer cancel()
	return s.engine.Do(ctx, fn)
}

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{r: r, w: w, server: s}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	dec := json.NewDecoder(rd.r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// Validate runs fn and records its error as a bad request.
func (rd *requestDecoder) Validate(fn func() error) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := fn(); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// RespondError sends the error response and returns true if there was an error.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// nodeIDFromPath reads the {layer} and {index} path values. On failure it
// writes a 400 and returns false.
func (s *Server) nodeIDFromPath(w http.ResponseWriter, r *http.Request) (network.NodeID, bool) {
	layer, err := strconv.Atoi(r.PathValue("layer"))
	if err != nil || layer < 0 {
		s.respondError(w, http.StatusBadRequest, "Invalid layer")
		return network.NodeID{}, false
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		s.respondError(w, http.StatusBadRequest, "Invalid index")
		return network.NodeID{}, false
	}
	return network.NodeID{Layer: layer, Index: index}, true
}

// latest returns the last published snapshot, or writes a 503 when the
// engine has not published yet.
func (s *Server) latest(w http.ResponseWriter) (*engine.Snapshot, bool) {
	snap := s.engine.Latest()
	if snap == nil {
		s.respondError(w, http.StatusServiceUnavailable, "No snapshot published yet")
		return nil, false
	}
	return snap, true
}
