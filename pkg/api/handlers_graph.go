package api

import (
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
)

// handleSnapshot serves the whole last published snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	nodes := make([]network.NodeSnapshot, len(snap.Graph.Nodes))
	for i, n := range snap.Graph.Nodes {
		n.History = nil
		nodes[i] = n
	}
	s.respondJSON(w, http.StatusOK, GraphResponse{
		Version:  snap.Version,
		Drawn:    snap.Drawn,
		Buffered: snap.Buffered,
		Layers:   snap.Graph.Layers,
		Epoch:    snap.Graph.Epoch,
		Loss:     snap.Graph.Loss,
		Width:    snap.Graph.Width,
		Height:   snap.Graph.Height,
		Nodes:    nodes,
		Links:    snap.Graph.Links,
	})
}

// handleNodes lists nodes; ?layer=k restricts the list to one layer.
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	layer := -1
	if raw := r.URL.Query().Get("layer"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 0 {
			s.respondError(w, http.StatusBadRequest, "Invalid layer")
			return
		}
		layer = k
	}

	snap, ok := s.latest(w)
	if !ok {
		return
	}
	nodes := make([]network.NodeSnapshot, 0, len(snap.Graph.Nodes))
	for _, n := range snap.Graph.Nodes {
		if layer >= 0 && n.ID.Layer != layer {
			continue
		}
		nodes = append(nodes, n)
	}
	s.respondJSON(w, http.StatusOK, NodesResponse{Version: snap.Version, Count: len(nodes), Nodes: nodes})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeIDFromPath(w, r)
	if !ok {
		return
	}
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	if err := validation.ValidateNodeRef(snap.Graph.Layers, id.Layer, id.Index); err != nil {
		s.respondError(w, http.StatusNotFound, "Node "+id.String()+" not found: "+err.Error())
		return
	}
	node, found := snap.Node(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "Node "+id.String()+" not found")
		return
	}
	s.respondJSON(w, http.StatusOK, node)
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	links := snap.Graph.Links
	if links == nil {
		links = []network.LinkSnapshot{}
	}
	s.respondJSON(w, http.StatusOK, LinksResponse{Version: snap.Version, Count: len(links), Links: links})
}

func (s *Server) handlePopup(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, snap.Popup)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"version":   snap.Version,
		"scheduler": snap.Scheduler,
		"tokens":    snap.Tokens,
	})
}

// handleScene exports the drawn graph in the layout scene format.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	data, err := snap.Graph.Scene().ExportJSON()
	if err != nil {
		s.logger.Error("scene export failed", logging.Error(err))
		s.respondError(w, http.StatusInternalServerError, "scene export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
