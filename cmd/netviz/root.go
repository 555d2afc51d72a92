package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "netviz",
	Short: "Live feed-forward network visualization",
	Long: Brand.Sprint("netviz") + " lays out a layered network and animates training telemetry\n" +
		Subtle.Sprint("Run a terminal view, a snapshot API, or a synthetic trainer"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("netviz {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		serveCmd(),
		simCmd(),
		tuiCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "netviz: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger opens the configured log destination. fallback receives logs
// when no file is configured.
func newLogger(cfg *config.Config, fallback io.Writer) (*logging.JSONLogger, io.Closer, error) {
	if cfg.Log.File != "" {
		return logging.NewFileLogger(cfg.Log.File, cfg.LogLevel())
	}
	return logging.NewJSONLogger(fallback, cfg.LogLevel()), io.NopCloser(nil), nil
}
