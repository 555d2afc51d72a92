package api

import (
	"context"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/server"
)

// Start serves the API on cfg.Addr until ctx is done. When ready is not
// nil it receives the bound address once the socket is listening.
func (s *Server) Start(ctx context.Context, cfg config.ServerConfig, reload server.ConfigReloadFunc, ready func(addr string)) error {
	gs := server.NewGracefulServer(cfg.Addr, s.Handler(),
		server.WithLogger(s.logger),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if reload != nil {
		gs.SetConfigReloadFunc(reload)
	}
	if err := gs.Listen(); err != nil {
		return err
	}
	if ready != nil {
		ready(gs.Addr())
	}

	s.metricsWg.Add(1)
	go s.updateMetricsPeriodically()
	defer s.StopMetrics()

	return gs.Serve(gs.HandleSignals(ctx))
}
