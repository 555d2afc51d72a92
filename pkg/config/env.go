package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NETVIZ_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key   string
	apply func(c *Config, raw string) error
}

func stringVar(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*dst(c) = raw
		return nil
	}
}

func floatVar(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, raw string) error {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

func intVar(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func durationVar(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, raw string) error {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

func boolVar(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

var envBindings = []envBinding{
	{"WIDTH", floatVar(func(c *Config) *float64 { return &c.Viewport.Width })},
	{"HEIGHT", floatVar(func(c *Config) *float64 { return &c.Viewport.Height })},
	{"NODE_RADIUS", floatVar(func(c *Config) *float64 { return &c.Viewport.NodeRadius })},
	{"SCALE_FACTOR", floatVar(func(c *Config) *float64 { return &c.Animation.ScaleFactor })},
	{"MIN_HOP", durationVar(func(c *Config) *time.Duration { return &c.Animation.MinHop })},
	{"MAX_HOP", durationVar(func(c *Config) *time.Duration { return &c.Animation.MaxHop })},
	{"HIDE_DELAY", durationVar(func(c *Config) *time.Duration { return &c.Popup.HideDelay })},
	{"FIRING", boolVar(func(c *Config) *bool { return &c.Firing.Enabled })},
	{"FIRING_THRESHOLD", floatVar(func(c *Config) *float64 { return &c.Firing.Threshold })},
	{"TRANSPORT", stringVar(func(c *Config) *string { return &c.Telemetry.Transport })},
	{"URL", stringVar(func(c *Config) *string { return &c.Telemetry.URL })},
	{"CHANNEL", stringVar(func(c *Config) *string { return &c.Telemetry.Channel })},
	{"RECONNECT_DELAY", durationVar(func(c *Config) *time.Duration { return &c.Telemetry.ReconnectDelay })},
	{"ADDR", stringVar(func(c *Config) *string { return &c.Server.Addr })},
	{"FRAME_INTERVAL", durationVar(func(c *Config) *time.Duration { return &c.Server.FrameInterval })},
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FILE", stringVar(func(c *Config) *string { return &c.Log.File })},
	{"AUTO_DRAW", boolVar(func(c *Config) *bool { return &c.Topology.AutoDraw })},
	{"BUFFER_SIZE", intVar(func(c *Config) *int { return &c.Buffer.Size })},
	{"TOPOLOGY", func(c *Config, raw string) error {
		layers, err := ParseLayers(raw)
		if err != nil {
			return err
		}
		c.Topology.Layers = layers
		return nil
	}},
}

// ApplyEnv overrides c from NETVIZ_* variables. LOG_LEVEL is honoured when
// NETVIZ_LOG_LEVEL is unset.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if level, ok := lookup("LOG_LEVEL"); ok && level != "" {
		c.Log.Level = level
	}
	for _, b := range envBindings {
		raw, ok := lookup(EnvPrefix + b.key)
		if !ok || raw == "" {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, b.key, raw, err)
		}
	}
	return nil
}

// ParseLayers parses "4,4,2,1" or "4 4 2 1" into layer sizes.
func ParseLayers(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty layer list")
	}
	layers := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("layer size %q: %w", f, err)
		}
		layers = append(layers, n)
	}
	return layers, nil
}
