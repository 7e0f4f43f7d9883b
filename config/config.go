// Package config loads the simulator configuration from YAML or TOML files
// with environment variable overrides, and can watch the file for live
// retuning of the pacer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalidSpeed      = errors.New("config: speed factor cannot be negative")
	ErrNoSymbols         = errors.New("config: at least one symbol is required")
)

// EnvPrefix is prepended to every env override, e.g. SIMBUS_SPEED_FACTOR.
const EnvPrefix = "SIMBUS_"

// MetricsConfig configures the optional exporters.
type MetricsConfig struct {
	// StatsdAddr enables the Datadog/StatsD exporter when non-empty,
	// e.g. "127.0.0.1:8125".
	StatsdAddr string `json:"statsdAddr" yaml:"statsdAddr" toml:"statsd_addr" env:"STATSD_ADDR"`

	// FlushIntervalMS is the StatsD flush interval in milliseconds.
	FlushIntervalMS int `json:"flushIntervalMs" yaml:"flushIntervalMs" toml:"flush_interval_ms" env:"FLUSH_INTERVAL_MS"`

	// Namespace is the metric prefix for both exporters.
	Namespace string `json:"namespace" yaml:"namespace" toml:"namespace" env:"METRICS_NAMESPACE"`
}

// Config is the simulator configuration.
type Config struct {
	// Symbols are the instruments the demo venue serves.
	Symbols []string `json:"symbols" yaml:"symbols" toml:"symbols"`

	// SpeedFactor maps logical time to wall time; 2 runs twice as fast as
	// real time, 0 disables pacing entirely.
	SpeedFactor float64 `json:"speedFactor" yaml:"speedFactor" toml:"speed_factor" env:"SPEED_FACTOR"`

	// GraceMS is how long the pacer waits for external producers when the
	// queue drains, in milliseconds.
	GraceMS int `json:"graceMs" yaml:"graceMs" toml:"grace_ms" env:"GRACE_MS"`

	// HTTPAddr serves health, stats and Prometheus metrics when non-empty.
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr" toml:"http_addr" env:"HTTP_ADDR"`

	// InjectQueueSize bounds the external producer queue.
	InjectQueueSize int `json:"injectQueueSize" yaml:"injectQueueSize" toml:"inject_queue_size" env:"INJECT_QUEUE_SIZE"`

	// OrderTimeoutMS is the lifetime the demo order feed requests for its
	// limit orders, in milliseconds of logical time.
	OrderTimeoutMS int `json:"orderTimeoutMs" yaml:"orderTimeoutMs" toml:"order_timeout_ms" env:"ORDER_TIMEOUT_MS"`

	Metrics MetricsConfig `json:"metrics" yaml:"metrics" toml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Symbols:         []string{"BTCUSD"},
		SpeedFactor:     1.0,
		GraceMS:         50,
		HTTPAddr:        ":8095",
		InjectQueueSize: 1024,
		OrderTimeoutMS:  250,
		Metrics: MetricsConfig{
			FlushIntervalMS: 10_000,
			Namespace:       "simbus",
		},
	}
}

// Load reads the file at path (YAML or TOML by extension), applies env
// overrides, and validates. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := applyEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the system assumes.
func (c *Config) Validate() error {
	if c.SpeedFactor < 0 {
		return ErrInvalidSpeed
	}
	if len(c.Symbols) == 0 {
		return ErrNoSymbols
	}
	return nil
}

// applyEnv overrides struct fields carrying an `env` tag from EnvPrefix-
// prefixed environment variables, recursing into nested structs. Values are
// cast to the field's type.
func applyEnv(rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := applyEnv(value); err != nil {
				return err
			}
			continue
		}

		tag := field.Tag.Get("env")
		if tag == "" {
			continue
		}
		raw, ok := os.LookupEnv(EnvPrefix + tag)
		if !ok {
			continue
		}

		converted, err := cast.FromType(raw, field.Type)
		if err != nil {
			return fmt.Errorf("casting %s%s: %w", EnvPrefix, tag, err)
		}
		value.Set(reflect.ValueOf(converted))
	}
	return nil
}
