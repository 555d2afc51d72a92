package api

import (
	"os"
	"strings"

	"github.com/dd0wney/cluso-netviz/pkg/api/middleware"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// SetCORSConfig sets the CORS configuration for the server
func (s *Server) SetCORSConfig(cfg *middleware.CORSConfig) {
	s.corsConfig = cfg
}

// SetTLSEnabled turns on HSTS for servers behind TLS.
func (s *Server) SetTLSEnabled(enabled bool) {
	s.tlsEnabled = enabled
}

// InitCORSFromEnv reads CORS_ALLOWED_ORIGINS, a comma-separated origin list
// ("*" allows any). Unset means no cross-origin access.
func (s *Server) InitCORSFromEnv() {
	s.corsConfig = middleware.DefaultCORSConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		return
	}
	var origins []string
	for _, o := range strings.Split(originsEnv, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	s.corsConfig.AllowedOrigins = origins
	s.corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	for _, o := range origins {
		if o == "*" {
			s.logger.Warn("CORS allows all origins")
			break
		}
	}
	s.logger.Info("CORS configured", logging.Count(len(origins)))
}
