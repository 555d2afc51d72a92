package api

import (
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Checks    map[string]any `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GraphResponse is the drawn graph without per-node history.
type GraphResponse struct {
	Version  uint64                 `json:"version"`
	Drawn    bool                   `json:"drawn"`
	Buffered int                    `json:"buffered"`
	Layers   []int                  `json:"layers"`
	Epoch    int                    `json:"epoch"`
	Loss     telemetry.Value        `json:"loss"`
	Width    float64                `json:"width"`
	Height   float64                `json:"height"`
	Nodes    []network.NodeSnapshot `json:"nodes"`
	Links    []network.LinkSnapshot `json:"links"`
}

// NodesResponse lists nodes, optionally of one layer.
type NodesResponse struct {
	Version uint64                 `json:"version"`
	Count   int                    `json:"count"`
	Nodes   []network.NodeSnapshot `json:"nodes"`
}

// LinksResponse lists every link.
type LinksResponse struct {
	Version uint64                 `json:"version"`
	Count   int                    `json:"count"`
	Links   []network.LinkSnapshot `json:"links"`
}

// MoveNodeRequest is the body of POST /api/nodes/{layer}/{index}/move.
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ResizeRequest is the body of POST /api/viewport.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TopologyRequest is the body of POST /api/topology: layer sizes, input first.
type TopologyRequest struct {
	Layers []int `json:"layers"`
}

// ControlResponse reports scheduler state after a control action.
type ControlResponse struct {
	Action  string `json:"action"`
	Stopped bool   `json:"stopped"`
	State   string `json:"state"`
	Drawn   bool   `json:"drawn"`
}
