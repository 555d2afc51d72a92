// Package config loads netviz settings from YAML or TOML files and NETVIZ_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netviz/pkg/animation"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
	"github.com/dd0wney/cluso-netviz/pkg/validation"
	"github.com/dd0wney/cluso-netviz/pkg/visualization"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the full netviz configuration.
type Config struct {
	Viewport  visualization.LayoutConfig `yaml:"viewport" toml:"viewport"`
	Animation animation.Config           `yaml:"animation" toml:"animation"`
	Popup     interaction.Config         `yaml:"popup" toml:"popup"`
	Firing    FiringConfig               `yaml:"firing" toml:"firing"`
	Telemetry TelemetryConfig            `yaml:"telemetry" toml:"telemetry"`
	Server    ServerConfig               `yaml:"server" toml:"server"`
	Log       LogConfig                  `yaml:"log" toml:"log"`
	Topology  TopologyConfig             `yaml:"topology" toml:"topology"`
	Buffer    BufferConfig               `yaml:"buffer" toml:"buffer"`
}

// FiringConfig controls the firing marker.
type FiringConfig struct {
	Enabled   bool    `yaml:"enabled" toml:"enabled"`
	Threshold float64 `yaml:"threshold" toml:"threshold"`
}

// TelemetryConfig selects the inbound stream. An empty transport runs the
// engine without a source.
type TelemetryConfig struct {
	Transport      string        `yaml:"transport" toml:"transport"`
	URL            string        `yaml:"url" toml:"url"`
	Channel        string        `yaml:"channel" toml:"channel"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" toml:"reconnect_delay"`
	StaleAfter     time.Duration `yaml:"stale_after" toml:"stale_after"`
}

// ServerConfig configures `netviz serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	FrameInterval   time.Duration `yaml:"frame_interval" toml:"frame_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// LogConfig configures the JSON logger.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// File receives log lines instead of stderr. The TUI always logs to a file.
	File string `yaml:"file" toml:"file"`
}

// TopologyConfig is the network drawn on reset.
type TopologyConfig struct {
	Layers []int `yaml:"layers" toml:"layers"`
	// AutoDraw draws [input_size, hidden..., output] from the first record
	// when no topology message has arrived.
	AutoDraw bool `yaml:"auto_draw" toml:"auto_draw"`
}

// BufferConfig bounds the records held before a topology is drawn.
type BufferConfig struct {
	Size int `yaml:"size" toml:"size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Viewport:  visualization.DefaultLayoutConfig(),
		Animation: animation.DefaultConfig(),
		Popup:     interaction.DefaultConfig(),
		Firing:    FiringConfig{Enabled: true, Threshold: 0.5},
		Telemetry: TelemetryConfig{
			Channel:        telemetry.DefaultChannel,
			ReconnectDelay: time.Second,
			StaleAfter:     30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			FrameInterval:   16 * time.Millisecond,
			ShutdownTimeout: 5 * time.Second,
		},
		Log:      LogConfig{Level: "info"},
		Topology: TopologyConfig{Layers: []int{4, 4, 2, 1}},
		Buffer:   BufferConfig{Size: 16},
	}
}

// Load reads path (if non-empty) over the defaults, applies NETVIZ_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes path into c, picking the format from the extension.
// Keys missing from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	v := validation.NewConfigValidator("viewport").
		PositiveFloat("width", c.Viewport.Width).
		PositiveFloat("height", c.Viewport.Height).
		PositiveFloat("node_radius", c.Viewport.NodeRadius)
	errs := v.Errors()

	v = validation.NewConfigValidator("animation").
		PositiveFloat("scale_factor", c.Animation.ScaleFactor).
		MinDuration("min_hop", c.Animation.MinHop, time.Millisecond).
		MinDuration("max_hop", c.Animation.MaxHop, c.Animation.MinHop).
		Positive("queue_size", c.Animation.QueueSize)
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("popup").
		RangeDuration("hide_delay", c.Popup.HideDelay, 0, 10*time.Second).
		PositiveFloat("width", c.Popup.Width).
		PositiveFloat("height", c.Popup.Height)
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("firing").
		When(c.Firing.Enabled, func(v *validation.ConfigValidator) {
			v.RangeFloat("threshold", c.Firing.Threshold, -math.MaxFloat64, math.MaxFloat64)
		})
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("telemetry").
		OneOf("transport", c.Telemetry.Transport, []string{"", "websocket", "redis", "nng", "zmq"}).
		When(c.Telemetry.Transport != "", func(v *validation.ConfigValidator) {
			v.Required("url", c.Telemetry.URL).
				Custom("source", func() error {
					return validation.ValidateSourceRequest(&validation.SourceRequest{
						Transport: c.Telemetry.Transport,
						URL:       c.Telemetry.URL,
						Channel:   c.Telemetry.Channel,
					})
				}).
				MinDuration("reconnect_delay", c.Telemetry.ReconnectDelay, 10*time.Millisecond)
		})
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("server").
		Required("addr", c.Server.Addr).
		RangeDuration("frame_interval", c.Server.FrameInterval, time.Millisecond, time.Second)
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("log").
		OneOf("level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "warning", "error"})
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("topology").
		Custom("layers", func() error { return validation.ValidateLayers(c.Topology.Layers) })
	errs = append(errs, v.Errors()...)

	v = validation.NewConfigValidator("buffer").
		RangeInt("size", c.Buffer.Size, 1, 4096)
	errs = append(errs, v.Errors()...)

	return errors.Join(errs...)
}

// NetworkConfig returns the graph settings.
func (c *Config) NetworkConfig() network.Config {
	return network.Config{
		Layout:          c.Viewport,
		FiringEnabled:   c.Firing.Enabled,
		FiringThreshold: c.Firing.Threshold,
	}
}

// DefaultTopology returns the topology drawn on reset.
func (c *Config) DefaultTopology() telemetry.Topology {
	return telemetry.TopologyFromLayers(c.Topology.Layers)
}

// SourceOptions returns the telemetry transport options.
func (c *Config) SourceOptions(logger logging.Logger) telemetry.Options {
	return telemetry.Options{
		Transport:      c.Telemetry.Transport,
		URL:            c.Telemetry.URL,
		Channel:        validation.DefaultOr(c.Telemetry.Channel, telemetry.DefaultChannel),
		ReconnectDelay: c.Telemetry.ReconnectDelay,
		Logger:         logger,
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
