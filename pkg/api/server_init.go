package api

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/graphql"
	"github.com/dd0wney/cluso-netviz/pkg/health"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

// NewServer creates the API server for eng. Metrics come from the engine's
// registry so HTTP and engine series are exported together.
func NewServer(eng *engine.Engine, opts ...Option) (*Server, error) {
	s := &Server{
		engine:          eng,
		metricsRegistry: eng.Metrics(),
		logger:          logging.NewNopLogger(),
		commandTimeout:  5 * time.Second,
		streamPing:      30 * time.Second,
		startTime:       time.Now(),
		version:         "dev",
		metricsStopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("api"))

	schema, err := graphql.GenerateSchema(eng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate GraphQL schema: %w", err)
	}
	s.graphqlHandler = graphql.NewGraphQLHandler(schema, graphql.DefaultMaxDepth)

	if s.healthChecker == nil {
		s.healthChecker = health.NewChecker()
	}
	eng.RegisterHealthChecks(s.healthChecker)
	s.healthChecker.Register("api", health.ScopeLive, health.Static("api", "Serving"))
	s.healthChecker.Register("memory", health.ScopeHealth, health.MemoryCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	s.InitCORSFromEnv()
	return s, nil
}
