package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/server"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

type simOptions struct {
	transport   string
	url         string
	channel     string
	layers      string
	epochs      int
	interval    time.Duration
	seed        int64
	compress    bool
	metricsAddr string
}

func simCmd() *cobra.Command {
	var opts simOptions

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Publish synthetic training telemetry",
		Long: `Run a synthetic trainer that publishes a topology and one epoch record per tick.

  netviz sim                                          # websocket hub on :8765/ws
  netviz sim --transport redis --url redis://localhost:6379/0
  netviz sim --layers 3,8,4,1 --epochs 200 --compress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runSim(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "websocket", "Publish transport: "+fmt.Sprint(telemetry.Transports()))
	cmd.Flags().StringVar(&opts.url, "url", ":8765", "Listen address (websocket) or endpoint URL")
	cmd.Flags().StringVar(&opts.channel, "channel", telemetry.DefaultChannel, "Redis channel or topic prefix")
	cmd.Flags().StringVar(&opts.layers, "layers", "", "Layer sizes, input first (default from config)")
	cmd.Flags().IntVar(&opts.epochs, "epochs", 0, "Stop after this many epochs (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 500*time.Millisecond, "Time between epochs")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Snappy-compress frames")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve publish metrics on this address")
	return cmd
}

func runSim(ctx context.Context, cfg *config.Config, opts simOptions) error {
	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	layers := cfg.Topology.Layers
	if opts.layers != "" {
		if layers, err = config.ParseLayers(opts.layers); err != nil {
			return err
		}
	}
	synth, err := telemetry.NewSynthesizer(telemetry.TopologyFromLayers(layers), opts.seed)
	if err != nil {
		return err
	}

	pub, err := telemetry.NewPublisher(telemetry.Options{
		Transport: opts.transport,
		URL:       opts.url,
		Channel:   opts.channel,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer pub.Close()

	reg := metrics.NewRegistry()
	gs := server.NewGracefulServer(opts.metricsAddr, promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}),
		server.WithLogger(logger))
	ctx = gs.HandleSignals(ctx)
	if opts.metricsAddr != "" {
		go func() {
			if err := gs.Serve(ctx); err != nil {
				logger.Error("metrics server stopped", logging.Error(err))
			}
		}()
	}

	topoFrame, err := telemetry.EncodeFrame(telemetry.EventTopology, synth.Topology(), opts.compress)
	if err != nil {
		return err
	}
	if h, ok := pub.(interface{ Hub() *telemetry.Hub }); ok {
		h.Hub().SetGreeting(topoFrame)
	}
	err = pub.Publish(ctx, topoFrame)
	reg.RecordPublish(opts.transport, err)
	if err != nil {
		return fmt.Errorf("publish topology: %w", err)
	}

	Banner("synthetic trainer")
	fmt.Printf("  %s  %v\n", Brand.Sprintf("%-10s", "Layers"), layers)
	fmt.Printf("  %s  %s %s\n", Brand.Sprintf("%-10s", "Transport"), opts.transport, Subtle.Sprint(opts.url))
	if opts.compress {
		fmt.Printf("  %s  snappy\n", Brand.Sprintf("%-10s", "Frames"))
	}
	fmt.Println()

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()
	for sent := 0; opts.epochs == 0 || sent < opts.epochs; {
		select {
		case <-ctx.Done():
			Subtle.Println("  interrupted")
			return nil
		case <-ticker.C:
		}

		rec := synth.Next()
		frame, err := telemetry.EncodeFrame(telemetry.EventTrainingUpdate, rec, opts.compress)
		if err != nil {
			return err
		}
		err = pub.Publish(ctx, frame)
		reg.RecordPublish(opts.transport, err)
		if err != nil {
			Warn.Printf("  epoch %d not published: %v\n", rec.Epoch, err)
			logger.Warn("publish failed", logging.Epoch(rec.Epoch), logging.Error(err))
			continue
		}
		sent++
		fmt.Printf("  %s epoch %-5d loss %s %s\n", Good.Sprint("✓"), rec.Epoch, rec.Loss, Subtle.Sprintf("(%d bytes)", len(frame)))
	}

	Good.Printf("\n  published %d epochs\n", opts.epochs)
	return nil
}
