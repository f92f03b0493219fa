// Package config loads runtime configuration from files, environment
// variables and command-line flags, and wires the configured
// subsystems together.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/picotel/picotel/logging"
	"github.com/picotel/picotel/stream"
	"github.com/picotel/picotel/telemetry"
)

// Config is the root configuration for an instrumented process.
type Config struct {
	Telemetry telemetry.Config `mapstructure:"telemetry"`
	Stream    StreamConfig     `mapstructure:"stream"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// StreamConfig controls the metric stream.
type StreamConfig struct {
	// MinInterval is the minimum spacing between published events per
	// metric name. Zero disables rate limiting.
	MinInterval time.Duration `mapstructure:"min_interval"`
	// Alerts holds threshold rules in the form "pattern > value" or
	// "pattern < value".
	Alerts []string `mapstructure:"alerts"`
}

// Build constructs a Stream from the configuration, registering every
// parsed alert rule.
func (c StreamConfig) Build() (*stream.Stream, error) {
	alerts, err := ParseAlerts(c.Alerts)
	if err != nil {
		return nil, err
	}
	s := stream.NewWithInterval(c.MinInterval)
	for _, a := range alerts {
		s.AddAlert(a)
	}
	return s, nil
}

// TracingConfig controls OTLP span export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
}

// ShouldPropagate reports whether W3C trace headers should be injected
// into outgoing requests.
func (c TracingConfig) ShouldPropagate() bool {
	return c.Enabled && c.Propagate
}

// ResolveServiceName returns the configured service name, consulting
// OTEL_SERVICE_NAME before falling back to the given default.
func (c TracingConfig) ResolveServiceName(fallback string) string {
	if c.ServiceName != "" {
		return c.ServiceName
	}
	if env := os.Getenv("OTEL_SERVICE_NAME"); env != "" {
		return env
	}
	return fallback
}

// ResolveEndpoint returns the configured collector endpoint, consulting
// OTEL_EXPORTER_OTLP_ENDPOINT when none is set. Empty means no export.
func (c TracingConfig) ResolveEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Filter string `mapstructure:"filter"`
	Format string `mapstructure:"format"`
}

// Logger builds a logger from the configuration.
func (c LoggingConfig) Logger() *slog.Logger {
	return logging.New(c.Filter, c.Format)
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		// Collection is opt-in for embedding applications; the library
		// constructors enable it explicitly.
		Telemetry: telemetry.Config{
			SnapshotInterval: telemetry.DefaultSnapshotInterval,
		},
		Stream: StreamConfig{
			MinInterval: stream.DefaultMinInterval,
		},
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// Load reads configuration from the file at path, merged with
// PICOTEL_* environment variables. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PICOTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.snapshot_interval", def.Telemetry.SnapshotInterval)
	v.SetDefault("telemetry.max_samples", def.Telemetry.MaxSamples)
	v.SetDefault("stream.min_interval", def.Stream.MinInterval)
	v.SetDefault("tracing.protocol", def.Tracing.Protocol)
	v.SetDefault("tracing.sample_rate", def.Tracing.SampleRate)
}

func validate(cfg *Config) error {
	if cfg.Telemetry.MaxSamples < 0 {
		return fmt.Errorf("config: telemetry.max_samples must not be negative, got %d", cfg.Telemetry.MaxSamples)
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("config: tracing.sample_rate must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRate)
	}
	switch strings.ToLower(cfg.Tracing.Protocol) {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("config: unsupported tracing.protocol %q: use \"grpc\" or \"http\"", cfg.Tracing.Protocol)
	}
	if _, err := ParseAlerts(cfg.Stream.Alerts); err != nil {
		return err
	}
	return nil
}
