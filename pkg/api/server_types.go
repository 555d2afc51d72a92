package api

import (
	"sync"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/api/middleware"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/graphql"
	"github.com/dd0wney/cluso-netviz/pkg/health"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
)

// maxBodyBytes bounds every request body; the API only accepts small
// command payloads.
const maxBodyBytes = 64 << 10

// Server serves engine snapshots over HTTP and forwards mutations to the
// engine loop. It never touches engine state directly.
type Server struct {
	engine          *engine.Engine
	graphqlHandler  *graphql.GraphQLHandler
	metricsRegistry *metrics.Registry
	healthChecker   *health.Checker
	logger          logging.Logger
	corsConfig      *middleware.CORSConfig
	tlsEnabled      bool
	commandTimeout  time.Duration
	streamPing      time.Duration
	startTime       time.Time
	version         string

	metricsStopCh   chan struct{}
	metricsStopOnce sync.Once
	metricsWg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithHealthChecker replaces the health checker. The engine checks are
// registered on it either way.
func WithHealthChecker(hc *health.Checker) Option {
	return func(s *Server) { s.healthChecker = hc }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithCommandTimeout bounds how long a mutation waits for the engine loop.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Server) { s.commandTimeout = d }
}
