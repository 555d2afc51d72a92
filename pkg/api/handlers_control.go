package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// handleControl applies reset, stop or start on the engine loop.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	if err := validation.ValidateControlRequest(&validation.ControlRequest{Action: action}); err != nil {
		s.respondError(w, http.StatusBadRequest, "Unknown control action "+action)
		return
	}

	var after *engine.Snapshot
	err := s.command(r, func(e *engine.Engine) error {
		if err := e.Control(action); err != nil {
			return err
		}
		after = e.Snapshot()
		return nil
	})
	if err != nil {
		status, msg := s.sanitizeError(err, "control "+action)
		s.respondError(w, status, msg)
		return
	}

	s.logger.Info("control applied", logging.Operation(action))
	s.respondJSON(w, http.StatusOK, ControlResponse{
		Action:  action,
		Stopped: after.Scheduler.Stopped,
		State:   after.Scheduler.State,
		Drawn:   after.Drawn,
	})
}

// handleMoveNode drags a node; incident links and an attached popup follow.
func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeIDFromPath(w, r)
	if !ok {
		return
	}
	var req MoveNodeRequest
	if s.NewRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error {
			return validation.ValidateMoveRequest(&validation.MoveRequest{X: req.X, Y: req.Y})
		}).
		RespondError() {
		return
	}

	var moved network.NodeSnapshot
	err := s.command(r, func(e *engine.Engine) error {
		if err := e.MoveNode(id, req.X, req.Y); err != nil {
			return err
		}
		moved, _ = e.Snapshot().Node(id)
		return nil
	})
	if err != nil {
		status, msg := s.sanitizeError(err, "move node")
		s.respondError(w, status, msg)
		return
	}
	s.respondJSON(w, http.StatusOK, moved)
}

// handleResize changes the viewport. While a run plays the relayout waits
// for the scheduler, so the response reports whether it is still pending.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}

	var pending bool
	err := s.command(r, func(e *engine.Engine) error {
		if err := e.Resize(req.Width, req.Height); err != nil {
			return err
		}
		pending = e.ResizePending()
		return nil
	})
	if err != nil {
		status, msg := s.sanitizeError(err, "resize")
		s.respondError(w, status, msg)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"width":   req.Width,
		"height":  req.Height,
		"pending": pending,
	})
}

// handleTopology redraws the graph with the given layer sizes.
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	var req TopologyRequest
	if s.NewRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateLayers(req.Layers) }).
		RespondError() {
		return
	}

	var after *engine.Snapshot
	err := s.command(r, func(e *engine.Engine) error {
		if err := e.Draw(telemetry.TopologyFromLayers(req.Layers), nil); err != nil {
			return err
		}
		after = e.Snapshot()
		return nil
	})
	if err != nil {
		status, msg := s.sanitizeError(err, "draw")
		s.respondError(w, status, msg)
		return
	}
	s.logger.Info("topology drawn via API", logging.Topology(req.Layers))
	s.respondJSON(w, http.StatusOK, GraphResponse{
		Version: after.Version,
		Drawn:   after.Drawn,
		Layers:  after.Graph.Layers,
		Width:   after.Graph.Width,
		Height:  after.Graph.Height,
		Nodes:   after.Graph.Nodes,
		Links:   after.Graph.Links,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	err := s.command(r, func(e *engine.Engine) error {
		e.Clear()
		return nil
	})
	if err != nil {
		status, msg := s.sanitizeError(err, "clear")
		s.respondError(w, status, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
