// Package config loads the simulator's runtime knobs via viper: a YAML
// file plus LOBSIM_-prefixed environment overrides, following the
// mapstructure-tagged-struct pattern used across the pack's service
// configs.
//
// Grounded on wyfcoding-financialTrading/pkg/config/config.go (viper.New,
// SetEnvPrefix/AutomaticEnv/SetEnvKeyReplacer, SetDefault then Unmarshal,
// a Validate pass after loading), trimmed to the parameters this
// simulator actually has -- no HTTP/gRPC/database/Redis/Kafka sections,
// since nothing in SPEC_FULL.md models a network or storage surface.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every knob simulator.Config and the bus/feed packages
// expose, loadable from a YAML file and/or environment variables.
type Config struct {
	// Feeders is the number of synthetic producer goroutines. Zero
	// selects runtime.NumCPU()-1 (floored at 1), mirroring the original's
	// hardware_concurrency()-1.
	Feeders int `mapstructure:"feeders" default:"0"`

	// BusRingCapacity is the power-of-two SPSC ring capacity allocated
	// per bus listener. Zero selects the bus package's own default
	// (4096).
	BusRingCapacity int `mapstructure:"bus_ring_capacity" default:"4096"`

	// Backpressure is one of "drop", "block", "spinyield" and governs
	// every listener the simulator's own live-view bundle registers.
	Backpressure string `mapstructure:"backpressure" default:"spinyield"`

	// LiveView starts the simulator with the OrderBookView/
	// StatsCollector/OrderTracker bundle already registered.
	LiveView bool `mapstructure:"live_view" default:"true"`

	// RenderIntervalMs, in milliseconds, is how often cmd/simulator
	// renders the live-view bundle to stdout. Zero disables periodic
	// rendering (the bundle still runs, just unrendered).
	RenderIntervalMs int `mapstructure:"render_interval_ms" default:"500"`

	// Log controls the zap logger construction.
	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects between zap's production (JSON) and development
// (console, colorized) presets, the same two presets zap ships and the
// pack's services pick between by environment.
type LogConfig struct {
	Level       string `mapstructure:"level" default:"info"`
	Development bool   `mapstructure:"development" default:"false"`
}

// Load reads configPath (if non-empty) as YAML, applies LOBSIM_-prefixed
// environment overrides, and unmarshals into a validated Config. A
// missing configPath is not an error: defaults and environment
// overrides still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("LOBSIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feeders", 0)
	v.SetDefault("bus_ring_capacity", 4096)
	v.SetDefault("backpressure", "spinyield")
	v.SetDefault("live_view", true)
	v.SetDefault("render_interval_ms", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate rejects configuration combinations the simulator cannot act
// on, mirroring wyfcoding's config.Validate port range check.
func (c *Config) Validate() error {
	if c.Feeders < 0 {
		return fmt.Errorf("feeders must be >= 0, got %d", c.Feeders)
	}
	if c.BusRingCapacity < 0 {
		return fmt.Errorf("bus_ring_capacity must be >= 0, got %d", c.BusRingCapacity)
	}
	switch strings.ToLower(c.Backpressure) {
	case "drop", "block", "spinyield":
	default:
		return fmt.Errorf("backpressure must be one of drop|block|spinyield, got %q", c.Backpressure)
	}
	if c.RenderIntervalMs < 0 {
		return fmt.Errorf("render_interval_ms must be >= 0, got %d", c.RenderIntervalMs)
	}
	return nil
}
