package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netviz/pkg/api/middleware"
)

// Handler returns the fully wrapped HTTP handler. The metrics middleware
// wraps the mux directly so it sees the matched route pattern.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = middleware.Metrics(s.metricsRegistry)(h)
	h = middleware.BodySizeLimit(maxBodyBytes)(h)
	h = middleware.CORS(s.corsConfig)(h)
	h = middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{TLSEnabled: s.tlsEnabled})(h)
	h = middleware.Logging(s.logger, middleware.GetRequestID)(h)
	h = middleware.RequestID()(h)
	h = middleware.PanicRecovery(s.logger)(h)
	return h
}
