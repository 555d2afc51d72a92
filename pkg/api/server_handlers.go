package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-netviz/pkg/health"
)

// routes registers every endpoint on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /health/ready", s.healthChecker.Handler(health.ScopeReady, true))
	mux.Handle("GET /health/live", s.healthChecker.Handler(health.ScopeLive, true))
	mux.Handle("GET /metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{Registry: s.metricsRegistry.GetPrometheusRegistry()},
	))

	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/nodes", s.handleNodes)
	mux.HandleFunc("GET /api/nodes/{layer}/{index}", s.handleNode)
	mux.HandleFunc("GET /api/links", s.handleLinks)
	mux.HandleFunc("GET /api/popup", s.handlePopup)
	mux.HandleFunc("GET /api/tokens", s.handleTokens)
	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/stream", s.handleStream)

	mux.HandleFunc("POST /api/control/{action}", s.handleControl)
	mux.HandleFunc("POST /api/nodes/{layer}/{index}/move", s.handleMoveNode)
	mux.HandleFunc("POST /api/viewport", s.handleResize)
	mux.HandleFunc("POST /api/topology", s.handleTopology)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	mux.Handle("POST /graphql", s.graphqlHandler)

	return mux
}

// handleHealth reports the aggregate of every registered check. Unhealthy
// maps to 503 so load balancers can act on the status code alone.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.healthChecker.Run(health.ScopeHealth)
	checks := make(map[string]any, len(resp.Checks))
	for name, c := range resp.Checks {
		checks[name] = c
	}

	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, HealthResponse{
		Status:    string(resp.Status),
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Checks:    checks,
	})
}
