package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/tui"
)

func tuiCmd() *cobra.Command {
	var (
		transport string
		url       string
		layers    string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Watch the network train in the terminal",
		Long: `Draw the network on a character canvas and animate incoming telemetry.

Hover a node to open its popup, drag it to move it.
Keys: s stop, g start, r reset, q quit.

  netviz tui                                         # default topology, no telemetry
  netviz tui --transport websocket --url ws://localhost:8765/ws`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Telemetry.Transport = transport
			}
			if url != "" {
				cfg.Telemetry.URL = url
			}
			if cfg.Log.File == "" {
				cfg.Log.File = filepath.Join(".netviz", "tui.log")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, closer, err := newLogger(cfg, io.Discard)
			if err != nil {
				return err
			}
			defer closer.Close()

			eng := engine.New(cfg, engine.WithLogger(logger))
			topo := cfg.DefaultTopology()
			if layers != "" {
				sizes, err := config.ParseLayers(layers)
				if err != nil {
					return err
				}
				topo = telemetry.TopologyFromLayers(sizes)
			}
			if cfg.Telemetry.Transport == "" || layers != "" {
				if err := eng.Draw(topo, nil); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var opts []tui.Option
			opts = append(opts, tui.WithLogger(logger))
			if cfg.Telemetry.Transport != "" {
				srcOpts := cfg.SourceOptions(logger)
				srcOpts.OnDecodeError = eng.DecodeError
				src, err := telemetry.NewSource(srcOpts)
				if err != nil {
					return err
				}
				msgs := make(chan telemetry.Message, 64)
				errs := make(chan error, 1)
				go func() {
					errs <- src.Run(ctx, msgs)
					close(msgs)
				}()
				opts = append(opts, tui.WithMessages(msgs), tui.WithSourceErrors(errs))
			}

			p := tea.NewProgram(tui.NewModel(eng, opts...),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Telemetry transport: "+fmt.Sprint(telemetry.Transports()))
	cmd.Flags().StringVar(&url, "url", "", "Telemetry endpoint URL")
	cmd.Flags().StringVar(&layers, "layers", "", "Draw these layer sizes at start, input first")
	return cmd
}
