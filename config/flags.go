package config

import (
	"github.com/spf13/pflag"

	"github.com/picotel/picotel/stream"
	"github.com/picotel/picotel/telemetry"
)

// RegisterFlags adds the configuration flags to a flag set. Callers
// embedding the library in a larger program can merge these into
// their own flag handling.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Bool("telemetry", false, "Enable the telemetry aggregator")
	flags.Duration("snapshot-interval", telemetry.DefaultSnapshotInterval, "Cadence at which telemetry snapshots come due")
	flags.Int("max-samples", 0, "Maximum retained duration samples per operation (0 uses the default)")

	flags.Duration("stream-interval", stream.DefaultMinInterval, "Minimum spacing between published events per metric")
	flags.StringSlice("alert", nil, "Threshold alert rule in 'pattern > value' or 'pattern < value' form")

	flags.Bool("tracing", false, "Enable OTLP span export")
	flags.String("otlp-endpoint", "", "OTLP collector endpoint")
	flags.String("otlp-protocol", "grpc", "OTLP transport protocol (grpc or http)")
	flags.Bool("otlp-insecure", false, "Disable TLS for the OTLP connection")
	flags.String("service-name", "", "Service name reported on exported spans")
	flags.Float64("sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")

	flags.String("log-level", "", "Log level (debug, info, warn, error; empty disables logging)")
	flags.String("log-format", "", "Log format (text or json)")
}

// ApplyFlags overlays flag values that were explicitly set onto cfg.
func ApplyFlags(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	apply := func(name string, set func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		err = set()
	}

	apply("telemetry", func() error {
		v, e := flags.GetBool("telemetry")
		cfg.Telemetry.Enabled = v
		return e
	})
	apply("snapshot-interval", func() error {
		v, e := flags.GetDuration("snapshot-interval")
		cfg.Telemetry.SnapshotInterval = v
		return e
	})
	apply("max-samples", func() error {
		v, e := flags.GetInt("max-samples")
		cfg.Telemetry.MaxSamples = v
		return e
	})
	apply("stream-interval", func() error {
		v, e := flags.GetDuration("stream-interval")
		cfg.Stream.MinInterval = v
		return e
	})
	apply("alert", func() error {
		v, e := flags.GetStringSlice("alert")
		cfg.Stream.Alerts = v
		return e
	})
	apply("tracing", func() error {
		v, e := flags.GetBool("tracing")
		cfg.Tracing.Enabled = v
		return e
	})
	apply("otlp-endpoint", func() error {
		v, e := flags.GetString("otlp-endpoint")
		cfg.Tracing.Endpoint = v
		return e
	})
	apply("otlp-protocol", func() error {
		v, e := flags.GetString("otlp-protocol")
		cfg.Tracing.Protocol = v
		return e
	})
	apply("otlp-insecure", func() error {
		v, e := flags.GetBool("otlp-insecure")
		cfg.Tracing.Insecure = v
		return e
	})
	apply("service-name", func() error {
		v, e := flags.GetString("service-name")
		cfg.Tracing.ServiceName = v
		return e
	})
	apply("sample-rate", func() error {
		v, e := flags.GetFloat64("sample-rate")
		cfg.Tracing.SampleRate = v
		return e
	})
	apply("log-level", func() error {
		v, e := flags.GetString("log-level")
		cfg.Logging.Filter = v
		return e
	})
	apply("log-format", func() error {
		v, e := flags.GetString("log-format")
		cfg.Logging.Format = v
		return e
	})

	if err != nil {
		return err
	}
	return validate(cfg)
}
