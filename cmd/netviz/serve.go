package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netviz/pkg/api"
	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		transport string
		url       string
		tlsHSTS   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine headless behind the snapshot API",
		Long: `Run the engine loop without a terminal and serve snapshots over HTTP.

  netviz serve                                   # draw on first topology message
  netviz serve --transport websocket --url ws://localhost:8765/ws
  netviz serve --transport redis --url redis://localhost:6379/0

SIGHUP reloads the config file: log level and viewport changes apply live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if transport != "" {
				cfg.Telemetry.Transport = transport
			}
			if url != "" {
				cfg.Telemetry.URL = url
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg, tlsHSTS)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&transport, "transport", "", "Telemetry transport: "+fmt.Sprint(telemetry.Transports()))
	cmd.Flags().StringVar(&url, "url", "", "Telemetry endpoint URL")
	cmd.Flags().BoolVar(&tlsHSTS, "hsts", false, "Send HSTS headers (when behind a TLS proxy)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, hsts bool) error {
	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	eng := engine.New(cfg, engine.WithLogger(logger))

	var src telemetry.Source
	if cfg.Telemetry.Transport != "" {
		opts := cfg.SourceOptions(logger)
		opts.OnDecodeError = eng.DecodeError
		if src, err = telemetry.NewSource(opts); err != nil {
			return err
		}
	}

	srv, err := api.NewServer(eng, api.WithLogger(logger), api.WithVersion(version))
	if err != nil {
		return err
	}
	srv.SetTLSEnabled(hsts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- eng.Run(ctx, src)
		cancel()
	}()

	reload := func() error { return reloadConfig(ctx, eng, logger) }
	ready := func(addr string) {
		Good.Printf("  serving on http://%s\n", addr)
		Subtle.Printf("  graphql  http://%s/graphql\n  stream   ws://%s/api/stream\n", addr, addr)
	}

	serveErr := srv.Start(ctx, cfg.Server, reload, ready)
	cancel()
	runErr := <-engineErr
	return errors.Join(serveErr, runErr)
}

// reloadConfig re-reads the config file and applies what can change while
// running: log level and viewport size.
func reloadConfig(ctx context.Context, eng *engine.Engine, logger *logging.JSONLogger) error {
	next, err := loadConfig()
	if err != nil {
		return err
	}
	logger.SetLevel(next.LogLevel())

	vp := next.Viewport
	return eng.Do(ctx, func(e *engine.Engine) error {
		cur := e.Graph().Config().Layout
		if cur.Width == vp.Width && cur.Height == vp.Height {
			return nil
		}
		return e.Resize(vp.Width, vp.Height)
	})
}
